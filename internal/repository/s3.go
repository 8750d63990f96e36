package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	"github.com/debemdeboas/sorteio-admin/internal/model"
	"github.com/debemdeboas/sorteio-admin/internal/util/compression"
)

const (
	s3ProcessesDir = "processos/"
	s3JSONSuffix   = ".json"

	// Objects fetched in parallel by ListAll.
	s3FetchLimit = 8
)

// S3API is the subset of *s3.Client used by S3Repository.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Options struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Repository stores each process as a JSON object under <prefix>processos/
// and the published selection as <prefix>sorteio.json. Bodies are gzip encoded.
type S3Repository struct { // implements DocumentRepository
	client S3API
	bucket string
	prefix string

	compressor compression.Compressor

	// Read-modify-write in UpdateAreas is not atomic on S3.
	writeMu sync.Mutex
}

type s3Document struct {
	Name       model.ProcessName `json:"nome"`
	Areas      []model.Area      `json:"areas"`
	CreatedAt  time.Time         `json:"createdAt"`
	ModifiedAt time.Time         `json:"modifiedAt"`
}

func NewS3Repository(ctx context.Context, opts S3Options) (*S3Repository, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("error loading S3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3RepositoryWithClient(client, opts.Bucket, opts.Prefix), nil
}

func NewS3RepositoryWithClient(client S3API, bucket, prefix string) *S3Repository {
	return &S3Repository{
		client:     client,
		bucket:     bucket,
		prefix:     prefix,
		compressor: compression.GzipCompressor{},
	}
}

func (r *S3Repository) documentKey(id string) string {
	return r.prefix + s3ProcessesDir + url.PathEscape(id) + s3JSONSuffix
}

func (r *S3Repository) selectionKey() string {
	return r.prefix + SelectionID + s3JSONSuffix
}

// idFromKey reverses documentKey; ok is false for keys that are not documents.
func (r *S3Repository) idFromKey(key string) (string, bool) {
	rest, found := strings.CutPrefix(key, r.prefix+s3ProcessesDir)
	if !found || strings.Contains(rest, "/") {
		return "", false
	}
	rest, found = strings.CutSuffix(rest, s3JSONSuffix)
	if !found || rest == "" {
		return "", false
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return id, true
}

func isNoSuchKey(err error) bool {
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}

func (r *S3Repository) getJSON(ctx context.Context, key string, v any) error {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return fmt.Errorf("%s: %w", key, ErrDocumentNotFound)
		}
		return fmt.Errorf("error fetching %s: %w", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", key, err)
	}

	if aws.ToString(out.ContentEncoding) == r.compressor.Encoding() {
		body, err = r.compressor.Decompress(body)
		if err != nil {
			return fmt.Errorf("error decompressing %s: %w", key, err)
		}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("error decoding %s: %w", key, err)
	}
	return nil
}

func (r *S3Repository) putJSON(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", key, err)
	}
	compressed, err := r.compressor.Compress(body)
	if err != nil {
		return fmt.Errorf("error compressing %s: %w", key, err)
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(r.bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(compressed),
		ContentType:     aws.String("application/json"),
		ContentEncoding: aws.String(r.compressor.Encoding()),
	})
	if err != nil {
		return fmt.Errorf("error storing %s: %w", key, err)
	}
	return nil
}

func (r *S3Repository) readDocument(ctx context.Context, id string) (*model.ProcessDocument, error) {
	var body s3Document
	if err := r.getJSON(ctx, r.documentKey(id), &body); err != nil {
		return nil, err
	}

	_, hash, err := encodeAreas(body.Areas)
	if err != nil {
		return nil, err
	}

	return &model.ProcessDocument{
		ID:           id,
		Name:         body.Name,
		Areas:        model.CloneAreas(body.Areas),
		AreasHash:    hash,
		CreatedDate:  body.CreatedAt,
		ModifiedDate: body.ModifiedAt,
	}, nil
}

func (r *S3Repository) writeDocument(ctx context.Context, doc *model.ProcessDocument) error {
	_, hash, err := encodeAreas(doc.Areas)
	if err != nil {
		return err
	}

	body := s3Document{
		Name:       doc.Name,
		Areas:      model.CloneAreas(doc.Areas),
		CreatedAt:  doc.CreatedDate,
		ModifiedAt: time.Now().UTC(),
	}
	if body.CreatedAt.IsZero() {
		body.CreatedAt = body.ModifiedAt
	}

	if err := r.putJSON(ctx, r.documentKey(doc.ID), body); err != nil {
		return err
	}
	doc.AreasHash = hash
	return nil
}

func (r *S3Repository) ListAll(ctx context.Context) ([]model.ProcessDocument, error) {
	var ids []string

	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(r.prefix + s3ProcessesDir),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error listing processes: %w", err)
		}
		for _, obj := range page.Contents {
			if id, ok := r.idFromKey(aws.ToString(obj.Key)); ok {
				ids = append(ids, id)
			}
		}
	}

	docs := make([]model.ProcessDocument, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s3FetchLimit)
	for i, id := range ids {
		g.Go(func() error {
			doc, err := r.readDocument(gctx, id)
			if err != nil {
				return err
			}
			docs[i] = *doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// S3 lists keys alphabetically; creation order comes from the body.
	slices.SortStableFunc(docs, func(a, b model.ProcessDocument) int {
		return a.CreatedDate.Compare(b.CreatedDate)
	})

	repoLogger.Debug().Int("count", len(docs)).Str("bucket", r.bucket).Msg("Processes listed")
	return docs, nil
}

func (r *S3Repository) GetByKey(ctx context.Context, name model.ProcessName) (*model.ProcessDocument, error) {
	doc, err := r.readDocument(ctx, string(name))
	if err != nil {
		return nil, err
	}
	if doc.Name != name {
		return nil, fmt.Errorf("process %q: %w", name, ErrDocumentNotFound)
	}
	return doc, nil
}

func (r *S3Repository) Put(ctx context.Context, doc *model.ProcessDocument) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	return r.writeDocument(ctx, doc)
}

func (r *S3Repository) UpdateAreas(ctx context.Context, id string, areas []model.Area) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	doc, err := r.readDocument(ctx, id)
	if err != nil {
		return err
	}
	doc.Areas = areas
	return r.writeDocument(ctx, doc)
}

func (r *S3Repository) PutSelection(ctx context.Context, sel *model.PublishedSelection) error {
	c := *sel
	c.Areas = model.CloneAreas(sel.Areas)
	return r.putJSON(ctx, r.selectionKey(), c)
}

func (r *S3Repository) GetSelection(ctx context.Context) (*model.PublishedSelection, error) {
	var sel model.PublishedSelection
	if err := r.getJSON(ctx, r.selectionKey(), &sel); err != nil {
		return nil, err
	}
	sel.Areas = model.CloneAreas(sel.Areas)
	return &sel, nil
}

func (r *S3Repository) Close() error {
	return nil
}
