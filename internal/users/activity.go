package users

import (
	"context"
	"sort"
	"sync"

	"github.com/wynotes/go-notes/pkg/interfaces"
)

// MemoryActivitySink keeps administrative activity in memory for the admin
// log view.
type MemoryActivitySink struct {
	mu      sync.RWMutex
	records []interfaces.ActivityRecord
	limit   int
}

var _ interfaces.ActivitySink = (*MemoryActivitySink)(nil)

// NewMemoryActivitySink keeps at most limit records; zero keeps everything.
func NewMemoryActivitySink(limit int) *MemoryActivitySink {
	return &MemoryActivitySink{limit: limit}
}

func (m *MemoryActivitySink) Log(_ context.Context, record interfaces.ActivityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, cloneRecord(record))
	if m.limit > 0 && len(m.records) > m.limit {
		m.records = append([]interfaces.ActivityRecord(nil), m.records[len(m.records)-m.limit:]...)
	}
	return nil
}

// Records returns the stored records, newest first.
func (m *MemoryActivitySink) Records() []interfaces.ActivityRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]interfaces.ActivityRecord, len(m.records))
	for i, record := range m.records {
		out[i] = cloneRecord(record)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out
}

// LoggerActivitySink forwards activity records to a structured logger.
type LoggerActivitySink struct {
	Logger interfaces.Logger
}

func (l LoggerActivitySink) Log(_ context.Context, record interfaces.ActivityRecord) error {
	if l.Logger == nil {
		return nil
	}
	l.Logger.Info("users.activity",
		"verb", record.Verb,
		"actor_id", record.ActorID.String(),
		"object_type", record.ObjectType,
		"object_id", record.ObjectID,
		"data", record.Data,
	)
	return nil
}

// MultiActivitySink fans records out to every sink and returns the first
// error.
type MultiActivitySink []interfaces.ActivitySink

func (m MultiActivitySink) Log(ctx context.Context, record interfaces.ActivityRecord) error {
	var first error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Log(ctx, record); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func cloneRecord(record interfaces.ActivityRecord) interfaces.ActivityRecord {
	if record.Data != nil {
		data := make(map[string]any, len(record.Data))
		for k, v := range record.Data {
			data[k] = v
		}
		record.Data = data
	}
	return record
}
