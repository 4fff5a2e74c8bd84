package rules

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/0xERR0R/argus/config"
	"github.com/0xERR0R/argus/evt"
	"github.com/0xERR0R/argus/log"
	"github.com/0xERR0R/argus/model"

	"github.com/sirupsen/logrus"
)

// AppendResult outcome of a successful Append
type AppendResult int

const (
	// AppendCreated the domain was written to the rule file
	AppendCreated AppendResult = iota
	// AppendSkipped the domain was already present
	AppendSkipped
)

func (r AppendResult) String() string {
	names := [...]string{
		"created",
		"skipped",
	}

	return names[r]
}

// Store owns the rule file and caches its content as a Snapshot
type Store struct {
	path         string
	pollInterval time.Duration

	snapshot atomic.Pointer[Snapshot]
	marker   atomic.Pointer[changeMarker]

	loadLock   sync.Mutex
	loadCount  int
	appendLock sync.Mutex
}

func logger() *logrus.Entry {
	return log.PrefixedLog("rule_store")
}

// NewStore creates the store and performs the initial load. The returned store is usable
// even if the initial load failed, it serves an empty set until the next successful reload.
func NewStore(cfg config.Rules) (*Store, error) {
	s := &Store{
		path:         cfg.File,
		pollInterval: cfg.PollInterval.ToDuration(),
	}

	s.snapshot.Store(NewSnapshot())

	return s, s.Load()
}

// Path returns the rule file path
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns the current rule set
func (s *Store) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Load reads the whole rule file and replaces the snapshot
func (s *Store) Load() error {
	s.loadLock.Lock()
	defer s.loadLock.Unlock()

	// stat before reading: a write racing with the read changes the marker and is picked up by the next poll
	marker, err := statFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: can't stat rule file '%s': %v", model.ErrStorageFailure, s.path, err)
	}

	domains, err := readRuleFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: can't read rule file '%s': %v", model.ErrStorageFailure, s.path, err)
	}

	snapshot := NewSnapshot(domains...)

	s.snapshot.Store(snapshot)
	s.marker.Store(&marker)

	kind := "initial"
	if s.loadCount > 0 {
		kind = "reloaded"
	}

	s.loadCount++

	logger().WithField("file", s.path).Infof("%d domains %s", snapshot.Len(), kind)

	evt.Bus().Publish(evt.RulesReloaded, snapshot.Len())

	return nil
}

// HasChangedSinceLastLoad compares the current file state with the state of the last successful load
func (s *Store) HasChangedSinceLastLoad() bool {
	last := s.marker.Load()
	if last == nil {
		return true
	}

	current, err := statFile(s.path)
	if err != nil {
		// let Load report the error
		return true
	}

	return !current.equals(*last)
}

// ReadDomains reads the rule file without touching the cached snapshot
func (s *Store) ReadDomains() ([]string, error) {
	domains, err := readRuleFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: can't read rule file '%s': %v", model.ErrStorageFailure, s.path, err)
	}

	return domains, nil
}

// Append adds a domain to the rule file unless it is already present.
// The cached snapshot is updated by the poller.
func (s *Store) Append(domain string) (AppendResult, error) {
	d := NormalizeDomain(domain)

	if err := validateDomain(d); err != nil {
		return AppendSkipped, err
	}

	s.appendLock.Lock()
	defer s.appendLock.Unlock()

	existing, err := readRuleFile(s.path)
	if err != nil {
		return AppendSkipped, fmt.Errorf("%w: can't read rule file '%s': %v", model.ErrStorageFailure, s.path, err)
	}

	for _, e := range existing {
		if e == d {
			logger().WithField("domain", log.EscapeInput(d)).Info("domain already present, skipping")

			return AppendSkipped, nil
		}
	}

	if err := appendLine(s.path, d); err != nil {
		return AppendSkipped, fmt.Errorf("%w: can't write rule file '%s': %v", model.ErrStorageFailure, s.path, err)
	}

	logger().WithField("domain", log.EscapeInput(d)).Info("domain added")

	evt.Bus().Publish(evt.RuleAdded, d)

	return AppendCreated, nil
}

func validateDomain(d string) error {
	if d == "" {
		return fmt.Errorf("%w: domain must not be empty", model.ErrInvalidArgument)
	}

	if strings.HasPrefix(d, "#") {
		return fmt.Errorf("%w: domain must not start with '#'", model.ErrInvalidArgument)
	}

	if strings.IndexFunc(d, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: domain must not contain whitespace", model.ErrInvalidArgument)
	}

	return nil
}

func appendLine(path, line string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	defer f.Close()

	prefix, err := newlinePrefix(f)
	if err != nil {
		return err
	}

	if _, err := f.WriteString(prefix + line + "\n"); err != nil {
		return err
	}

	if err := f.Sync(); err != nil {
		return err
	}

	return f.Close()
}

// newlinePrefix returns "\n" if the file is not empty and doesn't end with a line break
func newlinePrefix(f *os.File) (string, error) {
	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	if info.Size() == 0 {
		return "", nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && err != io.EOF {
		return "", err
	}

	if last[0] == '\n' {
		return "", nil
	}

	return "\n", nil
}

// Start polls the rule file for changes until ctx is done
func (s *Store) Start(ctx context.Context) {
	if s.pollInterval <= 0 {
		logger().Info("rule file polling disabled")

		return
	}

	go s.periodicUpdate(ctx)
}

func (s *Store) periodicUpdate(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reloadIfChanged()
		case <-ctx.Done():
			return
		}
	}
}

func (s *Store) reloadIfChanged() {
	if !s.HasChangedSinceLastLoad() {
		return
	}

	logger().Info("rule file change detected, reloading")

	if err := s.Load(); err != nil {
		logger().Error("can't reload rules, keeping previous set: ", err)
	}
}
