package strided

// Tape holds variable length byte strings as one buffer plus per-task offsets and lengths.
type Tape struct {
	Data    []byte
	Offsets T[uint32]
	Lengths T[uint32]
}

// TapeOf concatenates items into a new Tape.
func TapeOf[V ~string | ~[]byte](items ...V) (t Tape) {
	var size int
	for _, it := range items {
		size += len(it)
	}
	data := make([]byte, 0, size)
	offs := make([]uint32, len(items))
	lens := make([]uint32, len(items))
	for i, it := range items {
		offs[i] = uint32(len(data))
		lens[i] = uint32(len(it))
		data = append(data, it...)
	}
	return Tape{Data: data, Offsets: Dense(offs), Lengths: Dense(lens)}
}

// BroadcastTape repeats one string for count tasks.
func BroadcastTape[V ~string | ~[]byte](v V, count int) Tape {
	return Tape{
		Data:    []byte(v),
		Offsets: Broadcast(uint32(0), count),
		Lengths: Broadcast(uint32(len(v)), count),
	}
}

// At returns the bytes of task i, sharing memory with the tape.
func (t Tape) At(i int) []byte {
	off := t.Offsets.At(i)
	return t.Data[off : off+t.Lengths.At(i) : off+t.Lengths.At(i)]
}

// Len is the number of tasks described by the tape.
func (t Tape) Len() int {
	if t.Offsets.Broadcasts() {
		return t.Lengths.Len()
	}
	return t.Offsets.Len()
}

// Broadcasts is true when every task reads the same string.
func (t Tape) Broadcasts() bool { return t.Offsets.Broadcasts() && t.Lengths.Broadcasts() }

// Fits reports whether the tape can supply n tasks, every one within Data.
func (t Tape) Fits(n int) bool {
	if !t.Offsets.Fits(n) || !t.Lengths.Fits(n) {
		return false
	}
	for i := range n {
		if uint64(t.Offsets.At(i))+uint64(t.Lengths.At(i)) > uint64(len(t.Data)) {
			return false
		}
	}
	return true
}

// Octets is a presence bitmap, task i is bit i%8 of byte i/8.
type Octets []byte

// NewOctets allocates a cleared bitmap for n tasks.
func NewOctets(n int) Octets { return make(Octets, (n+7)/8) }

// Get reports bit i.
func (o Octets) Get(i int) bool { return o[i/8]&(1<<(i%8)) != 0 }

// Set assigns bit i.
func (o Octets) Set(i int, v bool) {
	if v {
		o[i/8] |= 1 << (i % 8)
	} else {
		o[i/8] &^= 1 << (i % 8)
	}
}
