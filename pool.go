package headinject

import "sync"

// Pool recycles Sessions for one payload in high-throughput hosts. Recycled
// sessions keep their pending and padding buffers.
type Pool struct {
	pool    sync.Pool
	payload []byte
}

// NewPool creates a Pool whose sessions inject payload. The payload is
// borrowed for the lifetime of the Pool.
func NewPool(payload []byte) *Pool {
	return &Pool{payload: payload}
}

// Get returns a Session ready for a new document.
func (p *Pool) Get() *Session {
	if v := p.pool.Get(); v != nil {
		return v.(*Session)
	}
	return NewSession(p.payload)
}

// Put returns a Session to the pool instead of releasing it. Outputs obtained
// from the Session become invalid. Putting a released Session panics.
func (p *Pool) Put(s *Session) {
	s.reset(p.payload)
	p.pool.Put(s)
}
