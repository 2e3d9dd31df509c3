package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wynotes/go-notes/internal/logging"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

var (
	// ErrStoreRequired reports that no object store has been configured.
	ErrStoreRequired = errors.New("media: object store required")
	// ErrUploadEmpty indicates an upload without a body.
	ErrUploadEmpty = errors.New("media: upload body required")
	// ErrUploadTooLarge indicates an upload above the configured limit.
	ErrUploadTooLarge = errors.New("media: upload exceeds size limit")
	// ErrUnknownUploadKind indicates an unsupported upload destination.
	ErrUnknownUploadKind = errors.New("media: unknown upload kind")
	// ErrOwnerRequired indicates an avatar upload without an owning account.
	ErrOwnerRequired = errors.New("media: owner required")
)

// DefaultMaxUploadBytes caps a single upload when no limit is configured.
const DefaultMaxUploadBytes int64 = 5 << 20

// UploadKind selects the folder an upload lands in.
type UploadKind string

const (
	UploadAvatar       UploadKind = "avatar"
	UploadArticleImage UploadKind = "article-image"
)

// ReferenceSource yields text that may reference stored files: URLs,
// markdown bodies or HTML fragments.
type ReferenceSource interface {
	MediaReferences(ctx context.Context) ([]string, error)
}

// ReferenceSourceFunc adapts a function to ReferenceSource.
type ReferenceSourceFunc func(ctx context.Context) ([]string, error)

func (f ReferenceSourceFunc) MediaReferences(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// Report summarises a cleanup scan.
type Report struct {
	TotalFiles  int      `json:"totalFiles"`
	UsedFiles   int      `json:"usedFiles"`
	OrphanCount int      `json:"orphanCount"`
	Orphans     []string `json:"orphans"`
}

// DeleteResult lists what a cleanup delete removed and what it kept.
type DeleteResult struct {
	Deleted []string `json:"deleted"`
	Skipped []string `json:"skipped,omitempty"`
}

// Upload describes a file to store.
type Upload struct {
	Kind        UploadKind
	OwnerID     uuid.UUID
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult is the stored object and its public URL.
type UploadResult struct {
	Key       string `json:"key"`
	PublicURL string `json:"publicUrl"`
}

// Service tracks uploaded files and removes those nothing references.
type Service interface {
	Upload(ctx context.Context, upload Upload) (*UploadResult, error)
	Scan(ctx context.Context) (*Report, error)
	Delete(ctx context.Context, keys []string) (*DeleteResult, error)
}

// ServiceOption customises the media service behaviour.
type ServiceOption func(*service)

// WithReferenceSources appends sources consulted during scans.
func WithReferenceSources(sources ...ReferenceSource) ServiceOption {
	return func(s *service) {
		for _, src := range sources {
			if src != nil {
				s.sources = append(s.sources, src)
			}
		}
	}
}

// WithMaxUploadBytes overrides DefaultMaxUploadBytes.
func WithMaxUploadBytes(limit int64) ServiceOption {
	return func(s *service) {
		if limit > 0 {
			s.maxUpload = limit
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNow overrides the clock used to name uploads.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

type service struct {
	store     interfaces.ObjectStore
	locator   *Locator
	sources   []ReferenceSource
	maxUpload int64
	logger    interfaces.Logger
	now       func() time.Time
}

// NewService constructs the media service over store, resolving public URLs with locator.
func NewService(store interfaces.ObjectStore, locator *Locator, opts ...ServiceOption) (Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if locator == nil {
		return nil, ErrInvalidBaseURL
	}
	s := &service{
		store:     store,
		locator:   locator,
		maxUpload: DefaultMaxUploadBytes,
		logger:    logging.NoOp(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *service) Upload(ctx context.Context, upload Upload) (*UploadResult, error) {
	if upload.Body == nil || upload.Size == 0 {
		return nil, ErrUploadEmpty
	}
	if upload.Size > s.maxUpload {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrUploadTooLarge, upload.Size, s.maxUpload)
	}

	name := fmt.Sprintf("%s_%d.%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:12], s.now().UnixMilli(), SafeExt(upload.Filename))
	var key string
	switch upload.Kind {
	case UploadAvatar:
		if upload.OwnerID == uuid.Nil {
			return nil, ErrOwnerRequired
		}
		key = "avatars/" + upload.OwnerID.String() + "/" + name
	case UploadArticleImage:
		key = "articles/" + name
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownUploadKind, upload.Kind)
	}

	contentType := strings.TrimSpace(upload.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.store.Put(ctx, key, upload.Body, upload.Size, contentType); err != nil {
		return nil, err
	}
	s.logger.Info("media.upload.stored", "key", key, "kind", string(upload.Kind), "size", upload.Size)
	return &UploadResult{Key: key, PublicURL: s.locator.PublicURL(key)}, nil
}

func (s *service) Scan(ctx context.Context) (*Report, error) {
	objects, used, err := s.inventory(ctx)
	if err != nil {
		return nil, err
	}
	orphans := make([]string, 0)
	for _, obj := range objects {
		if _, ok := used[obj.Key]; !ok {
			orphans = append(orphans, obj.Key)
		}
	}
	sort.Strings(orphans)

	report := &Report{
		TotalFiles:  len(objects),
		UsedFiles:   len(used),
		OrphanCount: len(orphans),
		Orphans:     orphans,
	}
	s.logger.Info("media.cleanup.scanned", "total", report.TotalFiles, "used", report.UsedFiles, "orphans", report.OrphanCount)
	return report, nil
}

// Delete re-checks every key against a fresh scan and only removes objects
// that are still unreferenced.
func (s *service) Delete(ctx context.Context, keys []string) (*DeleteResult, error) {
	result := &DeleteResult{Deleted: []string{}}
	if len(keys) == 0 {
		return result, nil
	}
	objects, used, err := s.inventory(ctx)
	if err != nil {
		return nil, err
	}
	present := make(map[string]struct{}, len(objects))
	for _, obj := range objects {
		present[obj.Key] = struct{}{}
	}

	seen := map[string]struct{}{}
	for _, key := range keys {
		key = strings.Trim(strings.TrimSpace(key), "/")
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		_, exists := present[key]
		_, referenced := used[key]
		if !exists || referenced {
			result.Skipped = append(result.Skipped, key)
			continue
		}
		result.Deleted = append(result.Deleted, key)
	}
	sort.Strings(result.Deleted)
	sort.Strings(result.Skipped)

	if len(result.Deleted) > 0 {
		if err := s.store.Delete(ctx, result.Deleted...); err != nil {
			return nil, err
		}
	}
	s.logger.Info("media.cleanup.deleted", "deleted", len(result.Deleted), "skipped", len(result.Skipped))
	return result, nil
}

func (s *service) inventory(ctx context.Context) ([]interfaces.ObjectInfo, map[string]struct{}, error) {
	objects, err := s.store.List(ctx, "")
	if err != nil {
		return nil, nil, fmt.Errorf("media: list bucket %s: %w", s.store.Bucket(), err)
	}
	used := map[string]struct{}{}
	for _, src := range s.sources {
		texts, err := src.MediaReferences(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("media: collect references: %w", err)
		}
		for _, text := range texts {
			for _, key := range s.locator.Keys(text) {
				used[key] = struct{}{}
			}
		}
	}
	return objects, used, nil
}

// SafeExt returns a short lowercase alphanumeric extension for name, or "bin".
func SafeExt(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx == -1 {
		return "bin"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(name[idx+1:]) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == 10 {
			break
		}
	}
	if b.Len() == 0 {
		return "bin"
	}
	return b.String()
}
