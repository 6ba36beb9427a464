package cf

// Index maps string identifiers to a dense integer range [0, n) and back.
// Positions are assigned in first-seen order, which keeps builds from the
// same event sequence reproducible and gives tie-breaking a stable meaning.
// An Index is append-only during a build and read-only afterwards.
type Index struct {
	ids []string
	pos map[string]int
}

func newIndex() *Index {
	return &Index{pos: make(map[string]int)}
}

// add returns the position of id, assigning the next free position if the
// identifier has not been seen before.
func (ix *Index) add(id string) int {
	if p, ok := ix.pos[id]; ok {
		return p
	}
	p := len(ix.ids)
	ix.ids = append(ix.ids, id)
	ix.pos[id] = p
	return p
}

// Lookup returns the position of id and whether it is present.
func (ix *Index) Lookup(id string) (int, bool) {
	p, ok := ix.pos[id]
	return p, ok
}

// ID returns the identifier at position p.
func (ix *Index) ID(p int) string {
	return ix.ids[p]
}

// Len returns the number of distinct identifiers.
func (ix *Index) Len() int {
	return len(ix.ids)
}

// IDs returns a copy of all identifiers in position order.
func (ix *Index) IDs() []string {
	out := make([]string, len(ix.ids))
	copy(out, ix.ids)
	return out
}
