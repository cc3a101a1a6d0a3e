package domain

// Document is a hash record stored under Key.
// Documents are owned by the store; the core only reads and re-writes them.
type Document struct {
	// Key is the prefix plus identifier, e.g. "Tweet:1".
	Key string

	// Fields maps field name to value. Any subset of the schema may be present.
	Fields map[string]string
}

// Get returns the value of a field and whether it is present.
func (d Document) Get(name string) (string, bool) {
	v, ok := d.Fields[name]
	return v, ok
}

// Present returns the schema fields this document populates, in schema order.
func (d Document) Present(s Schema) []string {
	present := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if _, ok := d.Fields[f.Name]; ok {
			present = append(present, f.Name)
		}
	}
	return present
}
