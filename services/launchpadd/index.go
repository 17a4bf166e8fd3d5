package launchpadd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"launchpad/core/events"
)

// EventRecord is one committed module event.
type EventRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Seq        uint64    `gorm:"uniqueIndex" json:"seq"`
	Type       string    `gorm:"size:64;index" json:"type"`
	Offering   *uint64   `gorm:"index" json:"offering,omitempty"`
	Attributes string    `gorm:"type:text" json:"-"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

// Attrs decodes the stored attribute map.
func (r EventRecord) Attrs() (map[string]string, error) {
	out := map[string]string{}
	if r.Attributes == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(r.Attributes), &out); err != nil {
		return nil, fmt.Errorf("event index: decode attributes of seq %d: %w", r.Seq, err)
	}
	return out, nil
}

// EventFilter narrows an index query.
type EventFilter struct {
	Type     string
	Offering *uint64
	AfterSeq uint64
	Limit    int
}

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// EventIndex persists committed events to SQLite and serves queries. It
// implements events.Emitter.
type EventIndex struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time

	mu  sync.Mutex
	seq uint64
}

// NewEventIndex migrates the schema and resumes the sequence counter.
func NewEventIndex(db *gorm.DB, logger *slog.Logger) (*EventIndex, error) {
	if db == nil {
		return nil, fmt.Errorf("event index: database required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.AutoMigrate(&EventRecord{}); err != nil {
		return nil, fmt.Errorf("event index: migrate: %w", err)
	}
	var last EventRecord
	res := db.Order("seq desc").Limit(1).Find(&last)
	if res.Error != nil {
		return nil, fmt.Errorf("event index: resume: %w", res.Error)
	}
	return &EventIndex{db: db, logger: logger, now: time.Now, seq: last.Seq}, nil
}

// Emit implements events.Emitter. Failures are logged since emission happens
// after the state unit has committed.
func (x *EventIndex) Emit(evt events.Event) {
	if x == nil {
		return
	}
	if _, err := x.Record(context.Background(), evt); err != nil {
		x.logger.Error("event index write failed",
			slog.String("component", "event_index"),
			slog.String("error", err.Error()))
	}
}

// Record stores evt and returns the persisted row.
func (x *EventIndex) Record(ctx context.Context, evt events.Event) (*EventRecord, error) {
	flat := events.Flatten(evt)
	if flat == nil {
		return nil, fmt.Errorf("event index: nil event")
	}
	attrs, err := json.Marshal(flat.Attributes)
	if err != nil {
		return nil, err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	rec := &EventRecord{
		ID:         uuid.New(),
		Seq:        x.seq + 1,
		Type:       flat.Type,
		Attributes: string(attrs),
		CreatedAt:  x.now().UTC(),
	}
	if raw, ok := flat.Attributes["offering"]; ok {
		if idx, err := strconv.ParseUint(raw, 10, 64); err == nil {
			rec.Offering = &idx
		}
	}
	if err := x.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	x.seq = rec.Seq
	return rec, nil
}

// Query returns matching events in commit order.
func (x *EventIndex) Query(ctx context.Context, filter EventFilter) ([]EventRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}
	q := x.db.WithContext(ctx).Model(&EventRecord{}).Where("seq > ?", filter.AfterSeq)
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Offering != nil {
		q = q.Where("offering = ?", *filter.Offering)
	}
	var out []EventRecord
	if err := q.Order("seq asc").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
