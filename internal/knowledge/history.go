package knowledge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// dayFormat names one history file per calendar day. Day rotation needs
// no coordination: the name derives from the event's own timestamp.
const dayFormat = "2006-01-02"

// historyPath returns the day file for a timestamp.
func (s *Store) historyPath(t time.Time) string {
	return filepath.Join(s.root, historyDirName, t.UTC().Format(dayFormat)+".jsonl")
}

// AppendHistory appends one event to its calendar-day file. Appends are
// serialized under the store lock; each event is a single JSON line.
func (s *Store) AppendHistory(ctx context.Context, ev HistoryEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.clock.Now()
	}
	return s.withLock(ctx, func() error {
		return s.appendHistoryLocked(ev)
	})
}

// appendHistoryLocked writes the event line. Must run under the lock.
func (s *Store) appendHistoryLocked(ev HistoryEvent) error {
	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal history event: %w", err)
	}
	line = append(line, '\n')

	path := s.historyPath(ev.Timestamp)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open history %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("append history %s: %w", path, err)
	}
	return f.Sync()
}

// History reads the events of one calendar day in append order. Lock-free:
// appends are whole lines, so a concurrent reader sees a consistent
// prefix. Unparseable lines are skipped (a torn final line is not an
// error, it is an append in flight).
func (s *Store) History(day time.Time) ([]HistoryEvent, error) {
	path := s.historyPath(day)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	defer f.Close()

	var events []HistoryEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev HistoryEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan history %s: %w", path, err)
	}
	return events, nil
}

// extractionsToday counts the day's recorded extractions for one journey
// straight from the durable log. Never an in-memory counter: the count
// must survive process restarts. Must run under the lock so the
// check-then-record sequence in the record operations is atomic.
func (s *Store) extractionsToday(journeyID string, now time.Time) (int, error) {
	events, err := s.History(now)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, ev := range events {
		if ev.JourneyID != journeyID {
			continue
		}
		if ev.Kind == EventLessonRecorded || ev.Kind == EventComponentRecorded {
			n++
		}
	}
	return n, nil
}

// checkRateLimit enforces the per-journey daily extraction cap. Returns a
// RateLimitError (a surfaced skip, not a failure) when the cap is hit,
// and logs the skip. Must run under the lock.
func (s *Store) checkRateLimit(journeyID string, now time.Time) error {
	if s.cfg.DailyExtractionLimit <= 0 {
		return nil
	}
	n, err := s.extractionsToday(journeyID, now)
	if err != nil {
		return err
	}
	if n >= s.cfg.DailyExtractionLimit {
		day := now.UTC().Format(dayFormat)
		s.logger.Info("extraction rate limit reached",
			zap.String("journey_id", journeyID),
			zap.String("day", day))
		if err := s.appendHistoryLocked(HistoryEvent{
			Timestamp: now,
			Kind:      EventRateLimited,
			JourneyID: journeyID,
		}); err != nil {
			return err
		}
		return &RateLimitError{JourneyID: journeyID, Day: day, Limit: s.cfg.DailyExtractionLimit}
	}
	return nil
}
