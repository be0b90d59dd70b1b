// Package pool recycles short-lived allocations. The args package pools
// token streams; the middleware logger pools line buffers.
package pool

import (
	"sync"
)

// Pool is a typed sync.Pool whose objects are reset before each reuse.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(*T)
}

// NewPoolWithReset creates a pool that builds objects with factory and
// passes every object handed out by Get through reset.
func NewPoolWithReset[T any](factory func() *T, reset func(*T)) *Pool[T] {
	return &Pool[T]{
		pool:  sync.Pool{New: func() any { return factory() }},
		reset: reset,
	}
}

// Get returns a reset object from the pool, or a new one.
func (p *Pool[T]) Get() *T {
	obj := p.pool.Get().(*T)
	if p.reset != nil {
		p.reset(obj)
	}
	return obj
}

// Put hands obj back for reuse. A nil obj is ignored.
func (p *Pool[T]) Put(obj *T) {
	if obj != nil {
		p.pool.Put(obj)
	}
}
