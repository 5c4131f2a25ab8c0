package records

import "go.mongodb.org/mongo-driver/bson"

// FieldMap is an insertion-ordered mapping of canonical field name to
// typed value. Order matters because the persisted document mirrors
// the provider's column order.
type FieldMap struct {
	keys   []string
	values map[string]any
}

// NewFieldMap returns an empty field map.
func NewFieldMap() *FieldMap {
	return &FieldMap{values: make(map[string]any)}
}

// Set stores a value, appending the key on first use.
func (m *FieldMap) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether the key is present.
func (m *FieldMap) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Value returns the value for key, nil when absent.
func (m *FieldMap) Value(key string) any {
	return m.values[key]
}

// Keys returns the keys in insertion order.
func (m *FieldMap) Keys() []string {
	return m.keys
}

// Len returns the number of stored fields.
func (m *FieldMap) Len() int {
	return len(m.keys)
}

// BSON renders the map as an order-preserving document.
func (m *FieldMap) BSON() bson.D {
	doc := make(bson.D, 0, len(m.keys))
	for _, k := range m.keys {
		doc = append(doc, bson.E{Key: k, Value: m.values[k]})
	}
	return doc
}
