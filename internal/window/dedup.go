package window

// DefaultDedupCapacity bounds the set of processed signatures.
const DefaultDedupCapacity = 1000

// DedupSet remembers recently processed signatures.
// Once full, inserting a new signature forgets the least recently inserted one.
type DedupSet struct {
	seen  map[string]struct{}
	order *Series[string]
}

// NewDedupSet creates a set holding at most capacity signatures.
func NewDedupSet(capacity int) *DedupSet {
	order := NewSeries[string](capacity)
	return &DedupSet{
		seen:  make(map[string]struct{}, order.Cap()),
		order: order,
	}
}

// Add records sig. It returns false when sig was already present.
// The empty signature is never recorded and always reported as new.
func (d *DedupSet) Add(sig string) bool {
	if sig == "" {
		return true
	}
	if _, ok := d.seen[sig]; ok {
		return false
	}

	if old, evicted := d.order.Append(sig); evicted {
		delete(d.seen, old)
	}
	d.seen[sig] = struct{}{}
	return true
}

// Contains reports whether sig is in the set.
func (d *DedupSet) Contains(sig string) bool {
	_, ok := d.seen[sig]
	return ok
}

// Len returns the number of remembered signatures.
func (d *DedupSet) Len() int {
	return len(d.seen)
}

// Reset forgets every signature.
func (d *DedupSet) Reset() {
	d.seen = make(map[string]struct{}, d.order.Cap())
	d.order.Reset()
}
