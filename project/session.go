package project

import (
	"fmt"
	"sync"
	"time"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/jvchiappini/motioner"
)

const (
	sessionObject   = "session"
	sessionProperty = "autosave.yaml"

	// DefaultAutosaveInterval is the debounce window between an edit and
	// the autosave write it triggers.
	DefaultAutosaveInterval = 3 * time.Second
)

// Document is the autosaved unit: the project settings plus the authored
// scene text.
type Document struct {
	Settings Settings `yaml:"settings"`
	Source   string   `yaml:"source"`
}

// Session persists a Document through a gdata manager with debounced
// autosave. A nil manager degrades to in-memory mode: edits are kept but
// Flush writes nowhere, which keeps hosts without a writable data dir
// working.
type Session struct {
	mu      sync.Mutex
	manager *gdata.Manager
	doc     Document
	dirty   bool
	dirtyAt time.Time

	interval time.Duration
	now      func() time.Time
}

// OpenSession restores the previous autosave from the manager, or starts a
// fresh document with default settings when none exists.
func OpenSession(manager *gdata.Manager) (*Session, error) {
	s := NewSession(manager)
	if err := s.Restore(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSession creates a session without restoring prior state.
func NewSession(manager *gdata.Manager) *Session {
	if manager == nil {
		motioner.Logger().Warn("project: no data manager, autosave disabled")
	}
	return &Session{
		manager:  manager,
		doc:      Document{Settings: Default()},
		interval: DefaultAutosaveInterval,
		now:      time.Now,
	}
}

// Document returns a copy of the current document.
func (s *Session) Document() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// SetSource replaces the authored scene text and marks the session dirty.
func (s *Session) SetSource(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.Source == text {
		return
	}
	s.doc.Source = text
	s.markDirtyLocked()
}

// SetSettings replaces the project settings and marks the session dirty.
// Invalid settings are rejected.
func (s *Session) SetSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.Settings == settings {
		return nil
	}
	s.doc.Settings = settings
	s.markDirtyLocked()
	return nil
}

// MarkDirty schedules an autosave even when the document was mutated
// through an aliased reference.
func (s *Session) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markDirtyLocked()
}

func (s *Session) markDirtyLocked() {
	if !s.dirty {
		s.dirtyAt = s.now()
	}
	s.dirty = true
}

// Dirty reports whether unflushed edits exist.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Autosave flushes if the session is dirty and the debounce window since
// the first pending edit has elapsed. Hosts call it from their frame loop.
func (s *Session) Autosave() error {
	s.mu.Lock()
	due := s.dirty && s.now().Sub(s.dirtyAt) >= s.interval
	s.mu.Unlock()
	if !due {
		return nil
	}
	return s.Flush()
}

// Flush writes the document immediately if dirty. In degraded mode the
// dirty flag is cleared without a write.
func (s *Session) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	if s.manager == nil {
		s.dirty = false
		return nil
	}

	data, err := yaml.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("project: marshal session: %w", err)
	}
	if err := s.manager.SaveObjectProp(sessionObject, sessionProperty, data); err != nil {
		return fmt.Errorf("project: save session: %w", err)
	}
	s.dirty = false
	motioner.Logger().Debug("project: session flushed", "bytes", len(data))
	return nil
}

// Restore loads the last autosaved document. A missing autosave leaves the
// current document untouched; a corrupt one is reported as an error.
func (s *Session) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.manager == nil {
		return nil
	}
	if !s.manager.ObjectPropExists(sessionObject, sessionProperty) {
		return nil
	}
	data, err := s.manager.LoadObjectProp(sessionObject, sessionProperty)
	if err != nil {
		return fmt.Errorf("project: load session: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("project: parse session: %w", err)
	}
	if err := doc.Settings.Validate(); err != nil {
		return fmt.Errorf("project: restored settings invalid: %w", err)
	}
	s.doc = doc
	s.dirty = false
	return nil
}
