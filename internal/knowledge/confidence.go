package knowledge

import "time"

// initialConfidence is assigned on record creation: one observed success
// is evidence, not proof, so a fresh record starts midway and earns the
// rest through reapplication.
const initialConfidence = 0.5

// clamp01 bounds confidence to [0,1] under any reinforcement or decay
// sequence.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// pushWindow appends an outcome to the rolling window, keeping at most
// size entries (most recent last).
func pushWindow(window []float64, outcome float64, size int) []float64 {
	window = append(window, outcome)
	if size > 0 && len(window) > size {
		window = window[len(window)-size:]
	}
	return window
}

// recencyWeighted computes the recency-weighted mean of the window:
// entry i carries weight i+1, so recent outcomes dominate without older
// ones vanishing.
func recencyWeighted(window []float64) float64 {
	if len(window) == 0 {
		return 0
	}
	var sum, weights float64
	for i, v := range window {
		w := float64(i + 1)
		sum += w * v
		weights += w
	}
	return sum / weights
}

// recompute derives confidence from the historical success rate and the
// recency-weighted rolling window. The window dominates: a record whose
// recent applications fail should lose trust faster than its lifetime
// average suggests.
func recompute(successRate float64, window []float64) float64 {
	return clamp01(0.4*successRate + 0.6*recencyWeighted(window))
}

// reinforceStats updates the running occurrence/success statistics for
// one reapplication and returns the refreshed values.
func reinforceStats(occurrences int, successRate float64, success bool) (int, float64) {
	outcome := 0.0
	if success {
		outcome = 1.0
	}
	n := occurrences + 1
	rate := (successRate*float64(occurrences) + outcome) / float64(n)
	return n, rate
}

// lastReinforced returns the timestamp decay is measured from.
func lastReinforced(lastSuccess, firstSeen time.Time) time.Time {
	if !lastSuccess.IsZero() {
		return lastSuccess
	}
	return firstSeen
}

// EffectiveState computes the lifecycle state a record is in at "now"
// without mutating it. Archived is sticky; everything else is derived
// from the reinforcement timestamps, so a record left untouched for two
// horizons reads as stale even if no sweep has run yet.
func EffectiveState(stored State, lastSuccess, firstSeen time.Time, now time.Time, horizon time.Duration) State {
	if stored == StateArchived {
		return StateArchived
	}
	if horizon <= 0 {
		return stored
	}
	idle := now.Sub(lastReinforced(lastSuccess, firstSeen))
	switch {
	case idle > 2*horizon:
		return StateStale
	case idle > horizon:
		// A never-applied record decays too; it just skips the active
		// stop on the way down.
		return StateDecaying
	default:
		return stored
	}
}

// applyTransition advances the stored state for one successful or failed
// reapplication. Success always lands on active (reactivation included);
// failure leaves the state where it is so the decay clock keeps running.
func applyTransition(stored State, success bool) State {
	if stored == StateArchived {
		return StateArchived
	}
	if success {
		return StateActive
	}
	return stored
}
