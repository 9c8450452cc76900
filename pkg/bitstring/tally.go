package bitstring

const (
	MethodRandom  = "random"
	MethodMinFlux = "minflux"
)

// Entry is one distinct pruning outcome.
type Entry struct {
	Bitstring   Bitstring
	Occurrences int
	Reactions   int
	Method      string
}

// Tally counts how often each distinct outcome was seen. It is not safe for
// concurrent use.
type Tally struct {
	method string
	counts map[Bitstring]int
	order  []Bitstring
}

func NewTally(method string) *Tally {
	return &Tally{
		method: method,
		counts: map[Bitstring]int{},
	}
}

// Add records one occurrence of b and reports whether b was new.
func (t *Tally) Add(b Bitstring) bool {
	n, seen := t.counts[b]
	if !seen {
		t.order = append(t.order, b)
	}
	t.counts[b] = n + 1
	return !seen
}

func (t *Tally) Count(b Bitstring) int {
	return t.counts[b]
}

// Len returns the number of distinct outcomes.
func (t *Tally) Len() int {
	return len(t.order)
}

// Total returns the number of recorded outcomes.
func (t *Tally) Total() int {
	total := 0
	for _, n := range t.counts {
		total += n
	}
	return total
}

// Entries returns the distinct outcomes in the order they were first seen.
func (t *Tally) Entries() []Entry {
	entries := make([]Entry, 0, len(t.order))
	for _, b := range t.order {
		entries = append(entries, Entry{
			Bitstring:   b,
			Occurrences: t.counts[b],
			Reactions:   b.Count(),
			Method:      t.method,
		})
	}
	return entries
}
