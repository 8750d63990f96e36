// Package session keeps an in-memory mirror of the process collection
// consistent with the document store and applies the admin's edits to both.
//
// A Session is the only owner of the mirror, the active selection and the
// draft buffer. Every operation holds the session lock for its whole duration,
// store round trips included, so concurrent callers are applied one at a time
// instead of racing on the area list.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/sorteio-admin/internal/cache"
	"github.com/debemdeboas/sorteio-admin/internal/editor"
	"github.com/debemdeboas/sorteio-admin/internal/model"
	"github.com/debemdeboas/sorteio-admin/internal/repository"
	"github.com/debemdeboas/sorteio-admin/internal/util"
)

var (
	ErrNoProcessSelected   = errors.New("no process selected")
	ErrUnknownProcess      = errors.New("unknown process")
	ErrAreaIndexOutOfRange = errors.New("area index out of range")

	// ErrProcessNotFound is only returned with Options.StrictLookup.
	ErrProcessNotFound = errors.New("process document not found in store")
)

var sessionLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	sessionLogger = l
}

type LookupMode string

const (
	// LookupKey resolves a process document with a direct keyed read.
	LookupKey LookupMode = "key"
	// LookupScan lists the whole collection and matches on the name field.
	LookupScan LookupMode = "scan"
)

type Options struct {
	Lookup LookupMode

	// StrictLookup makes edits fail with ErrProcessNotFound when the active
	// process has no document in the store. Otherwise the store write is
	// skipped and only the mirror changes.
	StrictLookup bool

	// OnPublish runs after a selection was stored, with the session lock held.
	OnPublish func(sel model.PublishedSelection)
}

type Session struct {
	mu sync.Mutex

	repo repository.DocumentRepository
	opts Options

	names  []model.ProcessName
	areas  *cache.Cache[model.ProcessName, []model.Area]
	active model.ProcessName
	draft  *editor.Draft

	now func() time.Time
}

func New(repo repository.DocumentRepository, opts Options) *Session {
	if opts.Lookup == "" {
		opts.Lookup = LookupKey
	}
	return &Session{
		repo:  repo,
		opts:  opts,
		areas: cache.NewCache[model.ProcessName, []model.Area](),
		draft: editor.NewDraft(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Load replaces the mirror with the full content of the store. The active
// selection survives when its process still exists.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("error loading processes: %w", err)
	}

	names := make([]model.ProcessName, 0, len(docs))
	areas := make(map[model.ProcessName][]model.Area, len(docs))
	for _, doc := range docs {
		if util.IsBlank(string(doc.Name)) {
			sessionLogger.Warn().Str("id", doc.ID).Msg("Skipping process document without a name")
			continue
		}
		if _, dup := areas[doc.Name]; dup {
			sessionLogger.Warn().Str("id", doc.ID).Str("process", string(doc.Name)).Msg("Skipping duplicate process name")
			continue
		}
		names = append(names, doc.Name)
		areas[doc.Name] = model.CloneAreas(doc.Areas)
	}

	s.names = names
	s.areas.SetTo(areas)
	if s.active != "" && !s.areas.Has(s.active) {
		s.active = ""
		s.draft.Reset()
	}

	sessionLogger.Info().Int("processes", len(names)).Msg("Processes loaded")
	return nil
}

// ListProcesses returns the process names in load order, followed by the ones
// created through this session.
func (s *Session) ListProcesses() []model.ProcessName {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.names)
}

func (s *Session) Active() model.ProcessName {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// AreaCount is the length of the active process area list, 0 without selection.
func (s *Session) AreaCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.areaCountLocked()
}

func (s *Session) areaCountLocked() int {
	if s.active == "" {
		return 0
	}
	areas, _ := s.areas.Get(s.active)
	return len(areas)
}

// Areas returns a copy of the mirrored areas of name.
func (s *Session) Areas(name model.ProcessName) ([]model.Area, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	areas, ok := s.areas.Get(name)
	if !ok {
		return nil, false
	}
	return model.CloneAreas(areas), true
}

// CreateProcess adds name to the store and the mirror unless it is already
// known, then selects it. Blank names are ignored.
func (s *Session) CreateProcess(ctx context.Context, name model.ProcessName) error {
	if util.IsBlank(string(name)) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.areas.Has(name) {
		if err := s.repo.Put(ctx, model.NewProcessDocument(name)); err != nil {
			return fmt.Errorf("error creating process %q: %w", name, err)
		}
		s.names = append(s.names, name)
		s.areas.Set(name, []model.Area{})
		sessionLogger.Info().Str("process", string(name)).Msg("Process created")
	}

	s.selectLocked(name)
	return nil
}

// SelectProcess changes the active process without touching the store.
// Switching to a different process discards the draft. An empty name clears
// the selection.
func (s *Session) SelectProcess(name model.ProcessName) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name != "" && !s.areas.Has(name) {
		return fmt.Errorf("%w: %s", ErrUnknownProcess, name)
	}
	s.selectLocked(name)
	return nil
}

func (s *Session) selectLocked(name model.ProcessName) {
	if name == s.active {
		return
	}
	s.active = name
	s.draft.Reset()
}

// State is everything the presentation layer renders, taken atomically.
type State struct {
	Processes []model.ProcessName `json:"processes"`
	Active    model.ProcessName   `json:"active"`
	AreaCount int                 `json:"areaCount"`
	Areas     []model.Area        `json:"areas"`
	Draft     DraftState          `json:"draft"`
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Processes: slices.Clone(s.names),
		Active:    s.active,
		AreaCount: s.areaCountLocked(),
		Areas:     []model.Area{},
		Draft:     s.draftStateLocked(),
	}
	if st.Processes == nil {
		st.Processes = []model.ProcessName{}
	}
	if s.active != "" {
		areas, _ := s.areas.Get(s.active)
		st.Areas = model.CloneAreas(areas)
	}
	return st
}
