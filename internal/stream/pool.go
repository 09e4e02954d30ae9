package stream

import "sync"

// Pool recycles fixed-width float64 buffers. Buffers are zeroed when
// returned so that Get always hands out a clean accumulator.
type Pool struct {
	pool sync.Pool
	size int
}

func NewPool(size int) *Pool {
	return &Pool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]float64, size)
			},
		},
	}
}

func (p *Pool) Get() []float64 {
	return p.pool.Get().([]float64)
}

func (p *Pool) Put(buf []float64) {
	if len(buf) == p.size {
		Zero(buf)
		p.pool.Put(buf)
	}
}
