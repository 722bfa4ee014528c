package headinject

import (
	"context"
	"io"
	"iter"
	"sync/atomic"
)

type sessionState uint8

const (
	stateOpen sessionState = iota
	stateEnded
	stateReleased
)

// Session is the handle a host uses to inject a payload into one document.
//
// Its fields are private; a host only creates it, calls Write for every chunk,
// calls End once, and calls Release once. The rules of use are:
//
//   - Write and End must not overlap. A Session is owned by one goroutine at a
//     time; a second concurrent call panics.
//   - Write after End, a second End, and any call after Release panic.
//   - An Output is valid until the next call on its Session or until Release.
//     Reading it afterwards panics. Slices that are not FromIncomingChunk must
//     be consumed (written out or copied) inside that window.
//
// Violations panic with a *ContractError rather than return an error, as a
// session that kept going would emit corrupted documents.
type Session struct {
	inj   Injector
	state sessionState
	busy  atomic.Bool
	gen   atomic.Uint64

	bytesIn  int
	bytesOut int
}

// NewSession creates a Session for payload. The payload is borrowed and must
// stay unmodified until the Session is released.
func NewSession(payload []byte) *Session {
	s := &Session{inj: Injector{payload: payload}}
	emitSessionCreated(context.Background(), len(payload))
	return s
}

// Write feeds the next chunk of the document and returns the bytes to forward.
func (s *Session) Write(chunk []byte) Output {
	s.enter("write")
	defer s.leave()

	if s.state == stateEnded {
		violation(ErrSessionEnded, "write")
	}

	wasInjected := s.inj.injected
	res := s.inj.Write(chunk)
	s.bytesIn += len(chunk)
	s.bytesOut += res.Size()
	if res.injected && !wasInjected {
		emitSessionInjected(context.Background(), len(s.inj.payload), s.bytesIn)
	}
	return s.output(res)
}

// End finishes the document and returns the remaining bytes to forward,
// including padding when the payload was never injected.
func (s *Session) End() Output {
	s.enter("end")
	defer s.leave()

	if s.state == stateEnded {
		violation(ErrSessionEnded, "end")
	}
	s.state = stateEnded

	res := s.inj.End()
	s.bytesOut += res.Size()

	outcome, padding := OutcomeInjected, 0
	if !res.injected {
		outcome, padding = OutcomePadded, len(s.inj.payload)
	}
	emitSessionEnded(context.Background(), outcome, s.bytesIn, s.bytesOut, padding)
	return s.output(res)
}

// Injected reports whether the payload has been emitted.
func (s *Session) Injected() bool {
	return s.inj.injected
}

// Release frees the buffers held by the Session. Outputs obtained earlier
// become invalid. The Session must not be used afterwards.
func (s *Session) Release() {
	s.enter("release")
	defer s.leave()

	s.state = stateReleased
	s.gen.Add(1)
	s.inj = Injector{}
	emitSessionReleased(context.Background(), s.bytesIn, s.bytesOut)
}

// reset reopens the Session for a new document, keeping its buffers.
func (s *Session) reset(payload []byte) {
	s.enter("reset")
	defer s.leave()

	s.gen.Add(1)
	s.inj.Reset(payload)
	s.state = stateOpen
	s.bytesIn, s.bytesOut = 0, 0
}

func (s *Session) enter(op string) {
	if !s.busy.CompareAndSwap(false, true) {
		violation(ErrConcurrentCall, op)
	}
	if s.state == stateReleased {
		s.busy.Store(false)
		violation(ErrSessionReleased, op)
	}
}

func (s *Session) leave() {
	s.busy.Store(false)
}

func (s *Session) output(res Result) Output {
	return Output{res: res, owner: s, gen: s.gen.Add(1)}
}

// Output is the result of Session.Write or Session.End: at most MaxSlices
// slices to forward in order, and whether the payload has been injected.
//
// An Output borrows memory from its Session. It expires at the next call on
// the Session or at Release; accessing slices of an expired Output panics.
type Output struct {
	res   Result
	owner *Session
	gen   uint64
}

// Len returns the number of slices.
func (o Output) Len() int {
	return o.res.Len()
}

// Injected reports whether the payload has been emitted, by this call or an
// earlier one.
func (o Output) Injected() bool {
	return o.res.injected
}

// Valid reports whether the Output can still be read.
func (o Output) Valid() bool {
	return o.owner == nil || o.owner.gen.Load() == o.gen
}

// Slice returns slice i.
func (o Output) Slice(i int) Slice {
	o.check()
	return o.res.Slice(i)
}

// All iterates over the slices in output order.
func (o Output) All() iter.Seq2[int, Slice] {
	return func(yield func(int, Slice) bool) {
		for i := 0; i < o.res.Len(); i++ {
			o.check()
			if !yield(i, o.res.slices[i]) {
				return
			}
		}
	}
}

// WriteTo writes every slice to w in order.
func (o Output) WriteTo(w io.Writer) (int64, error) {
	o.check()
	return o.res.WriteTo(w)
}

// AppendTo appends every slice to dst and returns the extended buffer.
func (o Output) AppendTo(dst []byte) []byte {
	o.check()
	return o.res.AppendTo(dst)
}

func (o Output) check() {
	if !o.Valid() {
		violation(ErrStaleResult, "output")
	}
}
