package headinject

import (
	"io"
	"iter"
)

// MaxSlices is the largest number of slices a single Write or End can return.
const MaxSlices = 4

// Slice is a borrowed view of output bytes.
//
// When FromIncomingChunk is true, Bytes aliases the chunk passed to the Write
// call that produced it and is valid as long as that chunk is. Otherwise Bytes
// points into memory owned by the injector (pending buffer, padding, payload)
// and is valid until the next call on the same injector.
type Slice struct {
	Bytes             []byte
	FromIncomingChunk bool
}

// Len returns the number of bytes in the slice.
func (s Slice) Len() int {
	return len(s.Bytes)
}

// Result lists the slices to forward, in order, after one Write or End.
//
// Result is a fixed-size value so producing one never allocates. Slots beyond
// Len are zero.
type Result struct {
	slices   [MaxSlices]Slice
	n        uint8
	injected bool
}

// Len returns the number of slices, 0 through MaxSlices.
func (r Result) Len() int {
	return int(r.n)
}

// Slice returns slice i. It panics if i is out of range.
func (r Result) Slice(i int) Slice {
	if i < 0 || i >= int(r.n) {
		panic("headinject: result slice index out of range")
	}
	return r.slices[i]
}

// Injected reports whether the payload has been emitted, by this call or an
// earlier one.
func (r Result) Injected() bool {
	return r.injected
}

// All iterates over the slices in output order.
func (r Result) All() iter.Seq2[int, Slice] {
	return func(yield func(int, Slice) bool) {
		for i := 0; i < int(r.n); i++ {
			if !yield(i, r.slices[i]) {
				return
			}
		}
	}
}

// Size returns the total number of bytes across all slices.
func (r Result) Size() int {
	total := 0
	for i := 0; i < int(r.n); i++ {
		total += len(r.slices[i].Bytes)
	}
	return total
}

// WriteTo writes every slice to w in order.
func (r Result) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i := 0; i < int(r.n); i++ {
		n, err := w.Write(r.slices[i].Bytes)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// AppendTo appends every slice to dst and returns the extended buffer.
func (r Result) AppendTo(dst []byte) []byte {
	for i := 0; i < int(r.n); i++ {
		dst = append(dst, r.slices[i].Bytes...)
	}
	return dst
}

// push appends b unless it is empty.
func (r *Result) push(b []byte, fromChunk bool) {
	if len(b) == 0 {
		return
	}
	r.slices[r.n] = Slice{Bytes: b, FromIncomingChunk: fromChunk}
	r.n++
}
