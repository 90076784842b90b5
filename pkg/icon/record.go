package icon

import (
	"slices"

	"github.com/matzehuels/pangolin/pkg/errors"
)

// Record is one compiled icon.
type Record struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"name"`
	Tags        []string `json:"tags"`
	PathData    string   `json:"path"`

	// Diagnostic is only set on placeholder records returned by a search
	// without a mode. Real icons never carry one.
	Diagnostic string `json:"err,omitempty"`
}

// NewRecord creates a record whose display name equals its id.
// A nil tags slice is replaced by an empty one.
func NewRecord(id string, tags []string, pathData string) Record {
	if tags == nil {
		tags = []string{}
	}
	return Record{
		ID:          id,
		DisplayName: id,
		Tags:        slices.Clone(tags),
		PathData:    pathData,
	}
}

// IsDiagnostic reports whether r is a search placeholder rather than an icon.
func (r Record) IsDiagnostic() bool {
	return r.Diagnostic != ""
}

// clone returns a copy of r that shares no slices with it.
func (r Record) clone() Record {
	r.Tags = slices.Clone(r.Tags)
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return r
}

// Registry is an ordered, immutable mapping from icon id to record.
// The zero value is an empty registry. Registries are safe for concurrent
// reads.
type Registry struct {
	ids  []string
	byID map[string]Record
}

// Len returns the number of icons.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ids)
}

// IDs returns the icon ids in insertion order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.ids)
}

// Records returns copies of all records in insertion order.
func (r *Registry) Records() []Record {
	if r == nil {
		return nil
	}
	out := make([]Record, len(r.ids))
	for i, id := range r.ids {
		out[i] = r.byID[id].clone()
	}
	return out
}

// Get returns the record for id.
func (r *Registry) Get(id string) (Record, bool) {
	if r == nil {
		return Record{}, false
	}
	rec, ok := r.byID[id]
	if !ok {
		return Record{}, false
	}
	return rec.clone(), true
}

// Builder accumulates records into a registry. It is not safe for
// concurrent use; insertion order is the order of Add calls.
type Builder struct {
	ids    []string
	byID   map[string]Record
	frozen bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{byID: make(map[string]Record)}
}

// Add inserts rec. It fails with DUPLICATE_ICON when the id is already
// present and with MALFORMED_NAME when the id is empty.
func (b *Builder) Add(rec Record) error {
	if b.frozen {
		return errors.New(errors.ErrCodeInternal, "registry already built")
	}
	if rec.ID == "" {
		return errors.New(errors.ErrCodeMalformedName, "icon id cannot be empty")
	}
	if _, exists := b.byID[rec.ID]; exists {
		return errors.New(errors.ErrCodeDuplicateIcon, "duplicate icon id %q", rec.ID)
	}
	if rec.DisplayName == "" {
		rec.DisplayName = rec.ID
	}
	b.ids = append(b.ids, rec.ID)
	b.byID[rec.ID] = rec.clone()
	return nil
}

// Has reports whether id was already added.
func (b *Builder) Has(id string) bool {
	_, ok := b.byID[id]
	return ok
}

// Len returns the number of records added so far.
func (b *Builder) Len() int {
	return len(b.ids)
}

// Build freezes the builder and returns the registry. Further Add calls fail.
func (b *Builder) Build() *Registry {
	b.frozen = true
	return &Registry{ids: b.ids, byID: b.byID}
}
