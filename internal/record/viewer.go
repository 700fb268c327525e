package record

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/orderdesk/internal/logging"
)

// Record is a single platform record. Fields are keyed by qualified API name
// ("Lead.FirstName").
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Get returns the raw value of a qualified field, or nil when it is absent
func (r *Record) Get(name string) any {
	if r == nil {
		return nil
	}
	return r.Fields[name]
}

// Fetcher retrieves a record with the requested fields
type Fetcher interface {
	FetchRecord(ctx context.Context, id string, fields []string) (*Record, error)
}

// Field is a labelled, formatted value
type Field struct {
	Name  string
	Label string
	Value Value
}

// FieldGroup is a formatted Group
type FieldGroup struct {
	Name   string
	Fields []Field
}

// Header holds the summary values shown above the groups
type Header struct {
	Name    string
	Status  string
	Rating  string
	Company string
}

// Viewer loads one record and exposes it grouped and formatted.
// It never retries; a failed load stays failed until Reload.
type Viewer struct {
	mu        sync.RWMutex
	fetcher   Fetcher
	recordID  string
	layout    Layout
	formatter Formatter

	record *Record
	err    error
}

// NewViewer creates a viewer for recordID. Nothing is fetched until Load.
func NewViewer(fetcher Fetcher, recordID string, layout Layout, formatter Formatter) *Viewer {
	return &Viewer{
		fetcher:   fetcher,
		recordID:  recordID,
		layout:    layout,
		formatter: formatter,
	}
}

// RecordID returns the id of the viewed record
func (v *Viewer) RecordID() string {
	return v.recordID
}

// Load fetches the record once. The result replaces any previous snapshot.
func (v *Viewer) Load(ctx context.Context) error {
	fields := v.layout.Fields()
	logging.Debug("Fetching record",
		zap.String("record_id", v.recordID),
		zap.Int("fields", len(fields)),
	)

	rec, err := v.fetcher.FetchRecord(ctx, v.recordID, fields)
	if err == nil && rec == nil {
		err = fmt.Errorf("record %s: empty response", v.recordID)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.record, v.err = nil, err
		logging.Warn("Failed to load record", zap.String("record_id", v.recordID), zap.Error(err))
		return err
	}
	v.record, v.err = rec, nil
	return nil
}

// Reload discards the snapshot and fetches again
func (v *Viewer) Reload(ctx context.Context) error {
	v.mu.Lock()
	v.record, v.err = nil, nil
	v.mu.Unlock()
	return v.Load(ctx)
}

// IsLoading reports whether neither data nor an error is present
func (v *Viewer) IsLoading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.record == nil && v.err == nil
}

// Err returns the load error, if any
func (v *Viewer) Err() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.err
}

// Record returns the loaded record or nil
func (v *Viewer) Record() *Record {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.record
}

// Groups returns every group of the layout formatted from the snapshot.
// Without data the groups are empty.
func (v *Viewer) Groups() []FieldGroup {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]FieldGroup, 0, len(v.layout.Groups))
	for _, g := range v.layout.Groups {
		out = append(out, FieldGroup{Name: g.Name, Fields: v.mapFieldsLocked(g.Fields)})
	}
	return out
}

// Group returns the named group, or nil if the layout has no such group
func (v *Viewer) Group(name string) []Field {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, g := range v.layout.Groups {
		if g.Name == name {
			return v.mapFieldsLocked(g.Fields)
		}
	}
	return nil
}

func (v *Viewer) mapFieldsLocked(fields []string) []Field {
	if v.record == nil {
		return []Field{}
	}
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		q := v.layout.Qualify(f)
		out = append(out, Field{
			Name:  q,
			Label: FormatLabel(q),
			Value: v.formatter.Value(q, v.record.Get(q)),
		})
	}
	return out
}

// Header returns the summary values as plain text
func (v *Viewer) Header() Header {
	v.mu.RLock()
	defer v.mu.RUnlock()

	get := func(f string) string {
		if f == "" || v.record == nil {
			return ""
		}
		raw := v.record.Get(v.layout.Qualify(f))
		if isEmpty(raw) {
			return ""
		}
		return stringify(raw)
	}
	h := v.layout.Header
	return Header{
		Name:    get(h.Name),
		Status:  get(h.Status),
		Rating:  get(h.Rating),
		Company: get(h.Company),
	}
}
