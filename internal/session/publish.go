package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/debemdeboas/sorteio-admin/internal/model"
)

// Publish stores a copy of the active process areas as the published
// selection, replacing the previous one. The mirror is not modified.
func (s *Session) Publish(ctx context.Context) (*model.PublishedSelection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == "" {
		return nil, ErrNoProcessSelected
	}

	areas, _ := s.areas.Get(s.active)
	sel := &model.PublishedSelection{
		ID:          uuid.NewString(),
		ProcessName: s.active,
		Areas:       model.CloneAreas(areas),
		PublishedAt: s.now(),
	}

	if err := s.repo.PutSelection(ctx, sel); err != nil {
		return nil, fmt.Errorf("error publishing %q: %w", s.active, err)
	}

	sessionLogger.Info().
		Str("process", string(sel.ProcessName)).
		Str("publish_id", sel.ID).
		Int("areas", len(sel.Areas)).
		Msg("Selection published")

	if s.opts.OnPublish != nil {
		c := *sel
		c.Areas = model.CloneAreas(sel.Areas)
		s.opts.OnPublish(c)
	}

	out := *sel
	out.Areas = model.CloneAreas(sel.Areas)
	return &out, nil
}

// Published reads the current published selection back from the store.
func (s *Session) Published(ctx context.Context) (*model.PublishedSelection, error) {
	return s.repo.GetSelection(ctx)
}
