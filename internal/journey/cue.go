package journey

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
)

// CompileCUE parses a CUE value into a Journey. The value should be the
// journey struct itself, keyed by its id:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`journey: "JRN-104": { ... }`)
//	j, err := journey.CompileCUE(v.LookupPath(cue.ParsePath(`journey."JRN-104"`)))
//
// The struct label becomes the journey id unless an explicit id field
// overrides it.
func CompileCUE(v cue.Value) (*Journey, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	j := &Journey{}

	// Journey id from the struct label (the path selector).
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		j.ID = strings.Trim(labels[len(labels)-1].String(), `"`)
	}
	if idVal := v.LookupPath(cue.ParsePath("id")); idVal.Exists() {
		id, err := idVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		j.ID = id
	}

	var err error
	if j.Title, err = requiredString(v, "title", j.ID); err != nil {
		return nil, err
	}
	if j.Status, err = requiredString(v, "status", j.ID); err != nil {
		return nil, err
	}
	if j.Tier, err = optionalString(v, "tier"); err != nil {
		return nil, err
	}
	if j.Actor, err = optionalString(v, "actor"); err != nil {
		return nil, err
	}

	if j.Criteria, err = parseCriteria(v, j.ID); err != nil {
		return nil, err
	}
	if j.Steps, err = optionalStringList(v, "steps"); err != nil {
		return nil, err
	}
	if j.AsyncSignals, err = optionalStringList(v, "async_signals"); err != nil {
		return nil, err
	}
	if j.Data, err = parseData(v); err != nil {
		return nil, err
	}

	if err := j.Validate(); err != nil {
		return nil, attachPos(err, v)
	}
	return j, nil
}

// parseCriteria extracts the ordered acceptance criteria list.
func parseCriteria(v cue.Value, journeyID string) ([]Criterion, error) {
	critVal := v.LookupPath(cue.ParsePath("criteria"))
	if !critVal.Exists() {
		return nil, nil
	}

	iter, err := critVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var criteria []Criterion
	for iter.Next() {
		cv := iter.Value()
		var c Criterion
		if c.ID, err = requiredString(cv, "id", journeyID); err != nil {
			return nil, err
		}
		if c.Title, err = optionalString(cv, "title"); err != nil {
			return nil, err
		}
		if c.Steps, err = optionalStringList(cv, "steps"); err != nil {
			return nil, err
		}
		if len(c.Steps) == 0 {
			return nil, &ParseError{
				JourneyID: journeyID,
				Field:     fmt.Sprintf("criteria.%s.steps", c.ID),
				Message:   "criterion steps are required",
				Pos:       cv.Pos(),
			}
		}
		criteria = append(criteria, c)
	}
	return criteria, nil
}

// parseData extracts the optional data-hint map.
func parseData(v cue.Value) (map[string]string, error) {
	dataVal := v.LookupPath(cue.ParsePath("data"))
	if !dataVal.Exists() {
		return nil, nil
	}
	iter, err := dataVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	data := make(map[string]string)
	for iter.Next() {
		val, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		data[strings.Trim(iter.Label(), `"`)] = val
	}
	return data, nil
}

func requiredString(v cue.Value, field, journeyID string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &ParseError{
			JourneyID: journeyID,
			Field:     field,
			Message:   field + " is required",
			Pos:       v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalStringList(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// attachPos adds CUE position info to a ParseError that lacks it.
func attachPos(err error, v cue.Value) error {
	if pe, ok := err.(*ParseError); ok && !pe.Pos.IsValid() {
		pe.Pos = v.Pos()
	}
	return err
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &ParseError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
