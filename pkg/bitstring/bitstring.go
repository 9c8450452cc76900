package bitstring

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/stringchem/netprune/pkg/api"
	"lukechampine.com/blake3"
)

var (
	ErrNotSubset      = errors.New("pruned network is not a subnetwork of the reference")
	ErrLengthMismatch = errors.New("bitstring length does not match reference")
)

// Bitstring marks which reactions of a reference network are present in a
// pruned network, one '0' or '1' per reference reaction in canonical order.
type Bitstring string

// Count returns the number of reactions present.
func (b Bitstring) Count() int {
	return strings.Count(string(b), "1")
}

func (b Bitstring) String() string {
	return string(b)
}

// Reference fixes the canonical reaction order of a full network. All
// bitstrings encoded against the same Reference are comparable.
type Reference struct {
	ids   []string
	index map[string]int
}

// NewReference takes the canonical order from all reactions of the full network.
func NewReference(full *api.Network) *Reference {
	return NewReferenceFromIDs(full.ReactionIDs()...)
}

// NewReferenceFromIDs builds a reference from reaction IDs. Duplicates are
// ignored and the order is ascending by ID regardless of the input order.
func NewReferenceFromIDs(ids ...string) *Reference {
	r := &Reference{index: make(map[string]int, len(ids))}
	sorted := append([]string{}, ids...)
	sort.Strings(sorted)
	for _, id := range sorted {
		if _, exists := r.index[id]; exists {
			continue
		}
		r.index[id] = len(r.ids)
		r.ids = append(r.ids, id)
	}
	return r
}

func (r *Reference) Len() int {
	return len(r.ids)
}

func (r *Reference) IDs() []string {
	return append([]string{}, r.ids...)
}

// Encode returns the bitstring of a pruned network.
func (r *Reference) Encode(pruned *api.Network) (Bitstring, error) {
	return r.EncodeIDs(pruned.ReactionIDs())
}

func (r *Reference) EncodeIDs(ids []string) (Bitstring, error) {
	bits := make([]byte, len(r.ids))
	for i := range bits {
		bits[i] = '0'
	}
	for _, id := range ids {
		i, ok := r.index[id]
		if !ok {
			return "", fmt.Errorf("%w: unknown reaction %s", ErrNotSubset, id)
		}
		bits[i] = '1'
	}
	return Bitstring(bits), nil
}

// Decode returns the IDs of the reactions present in b, in canonical order.
func (r *Reference) Decode(b Bitstring) ([]string, error) {
	if len(b) != len(r.ids) {
		return nil, fmt.Errorf("%w: got %d bits, reference has %d reactions", ErrLengthMismatch, len(b), len(r.ids))
	}
	ids := []string{}
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case '1':
			ids = append(ids, r.ids[i])
		case '0':
		default:
			return nil, fmt.Errorf("invalid bit %q at position %d", b[i], i)
		}
	}
	return ids, nil
}

// Digest identifies the reference by its ordered reaction IDs.
func (r *Reference) Digest() string {
	hasher := blake3.New(32, nil)
	for _, id := range r.ids {
		hasher.Write([]byte(id))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// Encode is a shortcut for NewReference(full).Encode(pruned).
func Encode(full, pruned *api.Network) (Bitstring, error) {
	return NewReference(full).Encode(pruned)
}
