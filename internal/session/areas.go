package session

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/debemdeboas/sorteio-admin/internal/editor"
	"github.com/debemdeboas/sorteio-admin/internal/model"
	"github.com/debemdeboas/sorteio-admin/internal/repository"
)

// DraftState is a read-only view of the draft buffer.
type DraftState struct {
	Area      model.Area `json:"area"`
	Editing   bool       `json:"editing"`
	EditIndex int        `json:"editIndex"`
}

func (s *Session) Draft() DraftState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draftStateLocked()
}

func (s *Session) draftStateLocked() DraftState {
	idx, editing := s.draft.EditIndex()
	st := DraftState{Area: s.draft.Snapshot(), Editing: editing}
	if editing {
		st.EditIndex = idx
	}
	return st
}

// UpdateDraft applies fn to the draft buffer. The store is not touched.
func (s *Session) UpdateDraft(fn func(d *editor.Draft) error) (DraftState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.draft); err != nil {
		return s.draftStateLocked(), err
	}
	return s.draftStateLocked(), nil
}

// BeginEdit loads the area at index of the active process into the draft,
// silently replacing whatever the draft held.
func (s *Session) BeginEdit(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == "" {
		return ErrNoProcessSelected
	}
	areas, _ := s.areas.Get(s.active)
	if index < 0 || index >= len(areas) {
		return fmt.Errorf("%w: %d of %d", ErrAreaIndexOutOfRange, index, len(areas))
	}

	s.draft.Load(index, areas[index])
	return nil
}

// SaveArea writes draft into the active process: in place when the draft is
// editing an index, appended otherwise. The mirror changes only after the
// store accepted the new list, and the draft is cleared afterwards.
func (s *Session) SaveArea(ctx context.Context, draft model.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveAreaLocked(ctx, draft)
}

// SaveDraft saves the current content of the draft buffer.
func (s *Session) SaveDraft(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveAreaLocked(ctx, s.draft.Snapshot())
}

func (s *Session) saveAreaLocked(ctx context.Context, draft model.Area) error {
	if s.active == "" {
		return ErrNoProcessSelected
	}

	current, _ := s.areas.Get(s.active)
	updated := model.CloneAreas(current)

	if idx, editing := s.draft.EditIndex(); editing {
		if idx >= len(updated) {
			return fmt.Errorf("%w: %d of %d", ErrAreaIndexOutOfRange, idx, len(updated))
		}
		updated[idx] = draft.Clone()
	} else {
		updated = append(updated, draft.Clone())
	}

	if err := s.writeAreasLocked(ctx, s.active, updated); err != nil {
		return err
	}

	s.areas.Set(s.active, updated)
	s.draft.Reset()
	return nil
}

// RemoveArea drops the area at index from the active process. An edit in
// progress follows its area: it is retargeted when a lower index is removed,
// and turned into a new-area draft when its own area is removed.
func (s *Session) RemoveArea(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == "" {
		return ErrNoProcessSelected
	}

	current, _ := s.areas.Get(s.active)
	if index < 0 || index >= len(current) {
		return fmt.Errorf("%w: %d of %d", ErrAreaIndexOutOfRange, index, len(current))
	}
	updated := slices.Delete(model.CloneAreas(current), index, index+1)

	if err := s.writeAreasLocked(ctx, s.active, updated); err != nil {
		return err
	}
	s.areas.Set(s.active, updated)

	if idx, editing := s.draft.EditIndex(); editing {
		switch {
		case idx == index:
			s.draft.Detach()
		case idx > index:
			s.draft.Retarget(idx - 1)
		}
	}
	return nil
}

// writeAreasLocked persists the full area list of name. A process whose
// document cannot be resolved is skipped (logged) unless StrictLookup is set.
func (s *Session) writeAreasLocked(ctx context.Context, name model.ProcessName, areas []model.Area) error {
	id, err := s.resolveLocked(ctx, name)
	if err == nil {
		err = s.repo.UpdateAreas(ctx, id, areas)
	}

	switch {
	case err == nil:
		sessionLogger.Debug().Str("process", string(name)).Int("areas", len(areas)).Msg("Areas written")
		return nil
	case errors.Is(err, repository.ErrDocumentNotFound):
		if s.opts.StrictLookup {
			return fmt.Errorf("%w: %s", ErrProcessNotFound, name)
		}
		sessionLogger.Warn().Str("process", string(name)).Msg("Process document not found, store write skipped")
		return nil
	default:
		return fmt.Errorf("error writing areas of %q: %w", name, err)
	}
}

// resolveLocked maps a process name to the store's internal document ID.
func (s *Session) resolveLocked(ctx context.Context, name model.ProcessName) (string, error) {
	if s.opts.Lookup == LookupScan {
		docs, err := s.repo.ListAll(ctx)
		if err != nil {
			return "", err
		}
		for _, doc := range docs {
			if doc.Name == name {
				return doc.ID, nil
			}
		}
		return "", fmt.Errorf("process %q: %w", name, repository.ErrDocumentNotFound)
	}

	doc, err := s.repo.GetByKey(ctx, name)
	if err != nil {
		return "", err
	}
	return doc.ID, nil
}
