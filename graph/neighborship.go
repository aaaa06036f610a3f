package graph

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/pkg/errors"

	"strata.lol/ratel/keys"
	"strata.lol/ratel/keys/index"
	"strata.lol/ratel/keys/integer"
)

const (
	// DefaultEdgeID is the id of edges upserted without one.
	DefaultEdgeID = math.MaxInt64
	// DegreeMissing is the degree reported for a vertex that is not stored.
	DegreeMissing = math.MaxUint32
	// NeighborshipLen is the size of one neighborship in an adjacency record.
	NeighborshipLen = 16
)

var (
	// ErrCorruption is returned when an adjacency record is not a whole number
	// of neighborships. It is not recoverable by retrying.
	ErrCorruption = errors.New("adjacency record is corrupt")
	// ErrUnknownRole is returned by queries given the Unknown role.
	ErrUnknownRole = errors.New("unknown vertex role")
)

// Edge is a directed edge. Several edges may join the same pair of vertices
// if their ids differ.
type Edge struct {
	Source, Target, ID int64
}

// Neighborship is one entry of an adjacency record: the vertex at the other
// end of an edge and the id of that edge.
type Neighborship struct {
	Neighbor, Edge int64
}

// Less orders neighborships by neighbor, then edge id.
func (n Neighborship) Less(o Neighborship) bo {
	return n.Neighbor < o.Neighbor || (n.Neighbor == o.Neighbor && n.Edge < o.Edge)
}

// vertexKey is the store key of the role record of vertex v:
//
//	[ 8 byte order preserving vertex id ][ 1 byte role ]
func vertexKey(v int64, r Role) by {
	return keys.Write(integer.New(v), index.New(byte(r)))
}

// decode parses an adjacency record. The slice is a new allocation.
func decode(b by) (ns []Neighborship, err er) {
	if len(b)%NeighborshipLen != 0 {
		err = errors.Wrapf(ErrCorruption, "record of %d bytes", len(b))
		return
	}
	ns = make([]Neighborship, len(b)/NeighborshipLen)
	for i := range ns {
		o := i * NeighborshipLen
		ns[i].Neighbor = int64(binary.LittleEndian.Uint64(b[o:]))
		ns[i].Edge = int64(binary.LittleEndian.Uint64(b[o+8:]))
	}
	return
}

// decodeFlat parses an adjacency record into alternating neighbor and edge
// values, for strided access to either column.
func decodeFlat(b by) (flat []int64, err er) {
	if len(b)%NeighborshipLen != 0 {
		err = errors.Wrapf(ErrCorruption, "record of %d bytes", len(b))
		return
	}
	flat = make([]int64, len(b)/8)
	for i := range flat {
		flat[i] = int64(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return
}

func encode(ns []Neighborship) (b by) {
	b = make(by, len(ns)*NeighborshipLen)
	for i, n := range ns {
		o := i * NeighborshipLen
		binary.LittleEndian.PutUint64(b[o:], uint64(n.Neighbor))
		binary.LittleEndian.PutUint64(b[o+8:], uint64(n.Edge))
	}
	return
}

// degree is the number of neighborships in a record of l bytes.
func degree(l no) (d uint32, err er) {
	if l%NeighborshipLen != 0 {
		err = errors.Wrapf(ErrCorruption, "record of %d bytes", l)
		return
	}
	return uint32(l / NeighborshipLen), nil
}

// insert adds n to the sorted list unless it is already there.
func insert(ns []Neighborship, n Neighborship) (out []Neighborship, added bo) {
	i := sort.Search(len(ns), func(i no) bo { return !ns[i].Less(n) })
	if i < len(ns) && ns[i] == n {
		return ns, false
	}
	ns = append(ns, Neighborship{})
	copy(ns[i+1:], ns[i:])
	ns[i] = n
	return ns, true
}

// remove deletes n from the sorted list if it is there.
func remove(ns []Neighborship, n Neighborship) (out []Neighborship, removed bo) {
	i := sort.Search(len(ns), func(i no) bo { return !ns[i].Less(n) })
	if i == len(ns) || ns[i] != n {
		return ns, false
	}
	return append(ns[:i], ns[i+1:]...), true
}
