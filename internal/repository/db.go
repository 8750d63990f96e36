package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/debemdeboas/sorteio-admin/internal/db"
	"github.com/debemdeboas/sorteio-admin/internal/model"
	"github.com/debemdeboas/sorteio-admin/internal/util/compression"
)

type DBRepository struct { // implements DocumentRepository
	db         db.DB
	compressor compression.Compressor
}

func NewDBRepository(db db.DB) *DBRepository {
	return &DBRepository{
		db:         db,
		compressor: compression.ZstdCompressor{},
	}
}

func (r *DBRepository) packAreas(areas []model.Area) ([]byte, string, error) {
	data, hash, err := encodeAreas(areas)
	if err != nil {
		return nil, "", err
	}
	compressed, err := r.compressor.Compress(data)
	if err != nil {
		return nil, "", fmt.Errorf("error compressing areas: %w", err)
	}
	return compressed, hash, nil
}

func (r *DBRepository) unpackAreas(compressed []byte) ([]model.Area, error) {
	if len(compressed) == 0 {
		return []model.Area{}, nil
	}
	data, err := r.compressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing areas: %w", err)
	}
	return decodeAreas(data)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *DBRepository) scanDocument(row rowScanner) (*model.ProcessDocument, error) {
	var doc model.ProcessDocument
	var compressed []byte
	var hash sql.NullString
	var created, modified sql.NullTime

	if err := row.Scan(&doc.ID, &doc.Name, &compressed, &hash, &created, &modified); err != nil {
		return nil, err
	}

	areas, err := r.unpackAreas(compressed)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", doc.ID, err)
	}
	doc.Areas = areas
	doc.AreasHash = hash.String
	doc.CreatedDate = created.Time
	doc.ModifiedDate = modified.Time

	return &doc, nil
}

func (r *DBRepository) ListAll(ctx context.Context) ([]model.ProcessDocument, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, areas, areas_hash, created_at, modified_at FROM processes ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("error querying processes: %w", err)
	}
	defer rows.Close()

	docs := make([]model.ProcessDocument, 0)
	for rows.Next() {
		doc, err := r.scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning process: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating processes: %w", err)
	}

	return docs, nil
}

func (r *DBRepository) GetByKey(ctx context.Context, name model.ProcessName) (*model.ProcessDocument, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, areas, areas_hash, created_at, modified_at FROM processes WHERE name = ?`, name)

	doc, err := r.scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("process %q: %w", name, ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading process %q: %w", name, err)
	}
	return doc, nil
}

func (r *DBRepository) Put(ctx context.Context, doc *model.ProcessDocument) error {
	compressed, hash, err := r.packAreas(doc.Areas)
	if err != nil {
		return err
	}

	created := doc.CreatedDate
	if created.IsZero() {
		created = time.Now().UTC()
	}

	res, err := r.db.Exec(ctx,
		`INSERT INTO processes (id, name, areas, areas_hash, created_at, modified_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, areas = excluded.areas, areas_hash = excluded.areas_hash, modified_at = excluded.modified_at`,
		doc.ID, doc.Name, compressed, hash, created, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("error saving process %q: %w", doc.Name, err)
	}

	doc.AreasHash = hash
	repoLogger.Debug().Interface("result", res).Str("process", string(doc.Name)).Msg("Process saved")
	return nil
}

func (r *DBRepository) UpdateAreas(ctx context.Context, id string, areas []model.Area) error {
	compressed, hash, err := r.packAreas(areas)
	if err != nil {
		return err
	}

	res, err := r.db.Exec(ctx,
		`UPDATE processes SET areas = ?, areas_hash = ?, modified_at = ? WHERE id = ?`,
		compressed, hash, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("error updating areas of %q: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error updating areas of %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("process id %q: %w", id, ErrDocumentNotFound)
	}

	repoLogger.Debug().Str("id", id).Int("areas", len(areas)).Msg("Areas updated")
	return nil
}

func (r *DBRepository) PutSelection(ctx context.Context, sel *model.PublishedSelection) error {
	compressed, _, err := r.packAreas(sel.Areas)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT OR REPLACE INTO selection (id, publish_id, process_name, areas, published_at) VALUES (?, ?, ?, ?, ?)`,
		SelectionID, sel.ID, sel.ProcessName, compressed, sel.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving selection: %w", err)
	}
	return nil
}

func (r *DBRepository) GetSelection(ctx context.Context) (*model.PublishedSelection, error) {
	var sel model.PublishedSelection
	var publishID, processName sql.NullString
	var compressed []byte
	var publishedAt sql.NullTime

	err := r.db.QueryRow(ctx,
		`SELECT publish_id, process_name, areas, published_at FROM selection WHERE id = ?`, SelectionID,
	).Scan(&publishID, &processName, &compressed, &publishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("selection: %w", ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading selection: %w", err)
	}

	areas, err := r.unpackAreas(compressed)
	if err != nil {
		return nil, fmt.Errorf("selection: %w", err)
	}

	sel.ID = publishID.String
	sel.ProcessName = model.ProcessName(processName.String)
	sel.Areas = areas
	sel.PublishedAt = publishedAt.Time
	return &sel, nil
}

func (r *DBRepository) Close() error {
	return r.db.Close()
}
