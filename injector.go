package headinject

// Injector inserts a payload right before the first `</head>` tag of an HTML
// document written to it chunk by chunk.
//
// Bytes are never copied unless they might belong to a tag that is not
// confirmed yet; those are withheld in a pending buffer and released once the
// next chunk settles the question. If the document ends without a tag, End
// pads the output with as many spaces as the payload is long, so the total
// output length is the same in both outcomes.
//
// An Injector serves one document and is not safe for concurrent use. Slices
// returned by Write and End are only valid until the next call; see Slice.
// Hosts that cross a trust or language boundary should use Session, which
// enforces these rules.
type Injector struct {
	payload  []byte
	locator  Locator
	injected bool

	// pending accumulates bytes of an unconfirmed candidate. flushed holds the
	// previous pending bytes while they are being emitted. The two never share
	// a backing array so emitting one and refilling the other is safe.
	pending []byte
	flushed []byte

	// padding is allocated on the first End without injection.
	padding []byte
}

// NewInjector returns an Injector for payload. The payload is borrowed: it must
// not be modified while the Injector is in use.
func NewInjector(payload []byte) *Injector {
	return &Injector{payload: payload}
}

// Write processes the next chunk of the document.
func (in *Injector) Write(chunk []byte) Result {
	var r Result
	if in.injected {
		r.injected = true
		r.push(chunk, true)
		return r
	}

	loc := in.locator.Scan(chunk)
	switch loc.Kind {
	case LocationNone:
		r.push(in.flush(), false)
		r.push(chunk, true)

	case LocationPotentialFromPreviousChunk:
		in.pending = append(in.pending, chunk...)

	case LocationPotentialFromIndex:
		r.push(in.flush(), false)
		r.push(chunk[:loc.Index], true)
		in.pending = append(in.pending, chunk[loc.Index:]...)

	case LocationMatchFromPreviousChunk:
		// The pending bytes are the beginning of the tag.
		in.injected = true
		r.push(in.payload, false)
		r.push(in.flush(), false)
		r.push(chunk, true)

	case LocationMatchFromIndex:
		in.injected = true
		r.push(in.flush(), false)
		r.push(chunk[:loc.Index], true)
		r.push(in.payload, false)
		r.push(chunk[loc.Index:], true)
	}

	r.injected = in.injected
	return r
}

// End signals that the whole document has been written. It returns the bytes
// still withheld and, if no tag was found, the padding.
func (in *Injector) End() Result {
	var r Result
	r.push(in.flush(), false)
	if !in.injected {
		r.push(in.pad(), false)
	}
	r.injected = in.injected
	return r
}

// Injected reports whether the payload has been emitted.
func (in *Injector) Injected() bool {
	return in.injected
}

// Payload returns the borrowed payload.
func (in *Injector) Payload() []byte {
	return in.payload
}

// Reset prepares the Injector for a new document with payload, keeping
// allocated buffers.
func (in *Injector) Reset(payload []byte) {
	if len(payload) != len(in.payload) {
		in.padding = nil
	}
	in.payload = payload
	in.locator.Reset()
	in.injected = false
	in.pending = in.pending[:0]
	in.flushed = in.flushed[:0]
}

// flush swaps the pending buffer out for emission and returns its contents.
// The returned bytes stay valid until the following flush.
func (in *Injector) flush() []byte {
	in.flushed, in.pending = in.pending, in.flushed[:0]
	return in.flushed
}

func (in *Injector) pad() []byte {
	if len(in.padding) != len(in.payload) {
		in.padding = make([]byte, len(in.payload))
		for i := range in.padding {
			in.padding[i] = ' '
		}
	}
	return in.padding
}
