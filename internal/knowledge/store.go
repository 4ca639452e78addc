package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// Store file names under the root directory.
const (
	lessonsFileName    = "lessons.json"
	componentsFileName = "components.json"
	historyDirName     = "history"
	lockFileName       = "store.lock"
)

// Store is the file-backed pattern store. Mutations serialize on one
// advisory lock with a bounded wait and promote atomically via rename;
// reads never take the lock and see a stale-but-consistent snapshot.
type Store struct {
	root   string
	cfg    Config
	clock  Clock
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock (tests).
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger attaches a logger for quarantine and rate-limit warnings.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open creates or opens a store rooted at dir. Idempotent.
func Open(dir string, cfg Config, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, historyDirName), 0o755); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s := &Store{
		root:   dir,
		cfg:    cfg,
		clock:  SystemClock{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// withLock runs fn while holding the store's exclusive advisory lock.
// A lock that cannot be acquired within cfg.LockTimeout fails the
// operation with a retryable LockTimeoutError instead of hanging.
func (s *Store) withLock(ctx context.Context, fn func() error) error {
	fl := flock.New(filepath.Join(s.root, lockFileName))
	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.LockTimeout)
	defer cancel()

	ok, err := fl.TryLockContext(lockCtx, s.cfg.LockRetryDelay)
	if err != nil || !ok {
		return &LockTimeoutError{Path: fl.Path(), Timeout: s.cfg.LockTimeout, Err: err}
	}
	defer fl.Unlock()

	return fn()
}

// loadLessons reads lessons.json without touching the file. A missing
// file is an empty store; a corrupt or version-mismatched file yields a
// CorruptStoreError and an empty set for this record kind only. The file
// stays in place: only lock holders may move it aside, since a lock-free
// rename could race a writer's atomic promote.
func (s *Store) loadLessons() ([]Lesson, error) {
	path := filepath.Join(s.root, lessonsFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read lessons: %w", err)
	}

	var f lessonsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, s.corrupt(path, fmt.Errorf("parse lessons: %w", err))
	}
	if f.SchemaVersion != CurrentSchemaVersion {
		return nil, s.corrupt(path, fmt.Errorf("lessons schema version %d, want %d", f.SchemaVersion, CurrentSchemaVersion))
	}
	return f.Lessons, nil
}

// loadComponents reads components.json with the same contract as
// loadLessons.
func (s *Store) loadComponents() ([]Component, error) {
	path := filepath.Join(s.root, componentsFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read components: %w", err)
	}

	var f componentsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, s.corrupt(path, fmt.Errorf("parse components: %w", err))
	}
	if f.SchemaVersion != CurrentSchemaVersion {
		return nil, s.corrupt(path, fmt.Errorf("components schema version %d, want %d", f.SchemaVersion, CurrentSchemaVersion))
	}
	return f.Components, nil
}

// loadLessonsLocked is loadLessons plus quarantine of a corrupt file.
// Must run under the store lock.
func (s *Store) loadLessonsLocked() ([]Lesson, error) {
	lessons, err := s.loadLessons()
	s.quarantineOnCorrupt(err)
	return lessons, err
}

// loadComponentsLocked is loadComponents plus quarantine. Must run under
// the store lock.
func (s *Store) loadComponentsLocked() ([]Component, error) {
	components, err := s.loadComponents()
	s.quarantineOnCorrupt(err)
	return components, err
}

// corrupt reports an unreadable record file. The warning is logged here
// so lock-free readers surface it too.
func (s *Store) corrupt(path string, cause error) *CorruptStoreError {
	ce := &CorruptStoreError{Path: path, Err: cause}
	s.logger.Warn("store file is corrupt",
		zap.String("path", path),
		zap.Error(cause))
	return ce
}

// quarantineOnCorrupt moves a corrupt record file aside so the next write
// starts from a clean slate, recording the destination on the error.
func (s *Store) quarantineOnCorrupt(err error) {
	var ce *CorruptStoreError
	if !errors.As(err, &ce) || ce.QuarantinePath != "" {
		return
	}
	qpath := fmt.Sprintf("%s.corrupt-%d", ce.Path, s.clock.Now().Unix())
	if rerr := os.Rename(ce.Path, qpath); rerr != nil {
		return // leave in place, the warning already fired
	}
	ce.QuarantinePath = qpath
	s.logger.Warn("store file quarantined",
		zap.String("path", ce.Path),
		zap.String("quarantine", qpath))
}

// writeLessons atomically replaces lessons.json. Must run under the lock.
func (s *Store) writeLessons(lessons []Lesson) error {
	return atomicWriteJSON(filepath.Join(s.root, lessonsFileName), lessonsFile{
		SchemaVersion: CurrentSchemaVersion,
		Lessons:       lessons,
	})
}

// writeComponents atomically replaces components.json. Must run under the
// lock.
func (s *Store) writeComponents(components []Component) error {
	return atomicWriteJSON(filepath.Join(s.root, componentsFileName), componentsFile{
		SchemaVersion: CurrentSchemaVersion,
		Components:    components,
	})
}
