package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/wynotes/go-notes/pkg/interfaces"
)

var (
	ErrBucketRequired = errors.New("media: bucket required")
	ErrKeyRequired    = errors.New("media: object key required")
)

// MemoryStore keeps objects in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

var _ interfaces.ObjectStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory bucket.
func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{bucket: bucket, objects: map[string]memoryObject{}}
}

func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	key = strings.Trim(key, "/")
	if key == "" {
		return ErrKeyRequired
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if r != nil {
		if _, err := io.Copy(&buf, r); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.objects[key] = memoryObject{data: buf.Bytes(), contentType: contentType}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) List(ctx context.Context, prefix string) ([]interfaces.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]interfaces.ObjectInfo, 0, len(m.objects))
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, interfaces.ObjectInfo{Key: key, Size: int64(len(obj.data))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.objects, key)
	}
	return nil
}

func (m *MemoryStore) Bucket() string { return m.bucket }

// ContentType reports the stored content type of key.
func (m *MemoryStore) ContentType(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.contentType, ok
}
