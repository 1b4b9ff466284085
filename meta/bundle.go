package meta

// ExtractedBundle is the transient output of one introspector run: a
// mapping from element kind to one or many attribute dicts. It is
// passed opaquely to the reconciler.
type ExtractedBundle struct {
	Elements map[Kind][]Attrs `json:"elements"`

	// HeaderDump is the textual header rendering for formats that
	// produce one (NetCDF). The reconciler string-matches against it
	// to detect metadata that has gone stale.
	HeaderDump string `json:"header_dump,omitempty"`
}

func NewBundle() *ExtractedBundle {
	return &ExtractedBundle{Elements: map[Kind][]Attrs{}}
}

// Add appends one element instance of the given kind.
func (b *ExtractedBundle) Add(kind Kind, attrs Attrs) {
	b.Elements[kind] = append(b.Elements[kind], attrs)
}

// Set replaces all instances of the given kind.
func (b *ExtractedBundle) Set(kind Kind, attrs ...Attrs) {
	b.Elements[kind] = attrs
}

// Has reports whether the extraction produced the kind at all. Absent
// kinds leave existing store state untouched during reconciliation.
func (b *ExtractedBundle) Has(kind Kind) bool {
	_, ok := b.Elements[kind]
	return ok
}

// One returns the single instance of a singleton kind, or nil.
func (b *ExtractedBundle) One(kind Kind) Attrs {
	if list := b.Elements[kind]; len(list) > 0 {
		return list[0]
	}
	return nil
}

// All returns every instance of a kind in extraction order.
func (b *ExtractedBundle) All(kind Kind) []Attrs {
	return b.Elements[kind]
}
