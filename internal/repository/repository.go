// Package repository stores process documents and the published selection.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/debemdeboas/sorteio-admin/internal/model"
	"github.com/debemdeboas/sorteio-admin/internal/util"
	"github.com/rs/zerolog"
)

var ErrDocumentNotFound = errors.New("document not found")

// SelectionID is the key of the singleton published selection document.
const SelectionID = "sorteio"

type DocumentRepository interface {
	// ListAll returns every process document in creation order.
	ListAll(ctx context.Context) ([]model.ProcessDocument, error)

	// GetByKey returns the document whose name is name, or ErrDocumentNotFound.
	GetByKey(ctx context.Context, name model.ProcessName) (*model.ProcessDocument, error)

	// Put creates or overwrites the document keyed by doc.ID.
	Put(ctx context.Context, doc *model.ProcessDocument) error

	// UpdateAreas replaces only the areas field of the document with the given
	// internal ID, or returns ErrDocumentNotFound.
	UpdateAreas(ctx context.Context, id string, areas []model.Area) error

	// PutSelection overwrites the published selection.
	PutSelection(ctx context.Context, sel *model.PublishedSelection) error

	// GetSelection returns the published selection, or ErrDocumentNotFound
	// when nothing was published yet.
	GetSelection(ctx context.Context) (*model.PublishedSelection, error)

	Close() error
}

var repoLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

// encodeAreas returns the canonical JSON of areas and its content hash.
func encodeAreas(areas []model.Area) ([]byte, string, error) {
	data, err := json.Marshal(model.CloneAreas(areas))
	if err != nil {
		return nil, "", fmt.Errorf("error encoding areas: %w", err)
	}
	return data, util.ContentHash(data), nil
}

func decodeAreas(data []byte) ([]model.Area, error) {
	if len(data) == 0 {
		return []model.Area{}, nil
	}
	var areas []model.Area
	if err := json.Unmarshal(data, &areas); err != nil {
		return nil, fmt.Errorf("error decoding areas: %w", err)
	}
	return model.CloneAreas(areas), nil
}
