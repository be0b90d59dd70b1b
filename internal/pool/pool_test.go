package pool

import (
	"bytes"
	"sync"
	"testing"
)

func TestPool_WithReset(t *testing.T) {
	resets := 0
	pool := NewPoolWithReset(
		func() *[]string {
			tokens := make([]string, 0, 4)
			return &tokens
		},
		func(tokens *[]string) {
			*tokens = (*tokens)[:0]
			resets++
		},
	)

	first := pool.Get()
	if cap(*first) < 4 {
		t.Fatalf("Expected factory-built slice, got cap %d", cap(*first))
	}
	*first = append(*first, "-v", "--out")
	pool.Put(first)
	pool.Put(nil)

	second := pool.Get()
	if resets != 2 {
		t.Errorf("Expected reset on every Get, got %d calls", resets)
	}
	if len(*second) != 0 {
		t.Errorf("Expected empty slice after reset, got length %d", len(*second))
	}
}

func TestPool_NilReset(t *testing.T) {
	pool := NewPoolWithReset(func() *int { x := 7; return &x }, nil)
	if got := *pool.Get(); got != 7 {
		t.Fatalf("Get() = %d, want 7", got)
	}
}

func TestPool_Concurrent(t *testing.T) {
	pool := NewPoolWithReset(
		func() *bytes.Buffer { return new(bytes.Buffer) },
		func(b *bytes.Buffer) { b.Reset() },
	)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for range 200 {
				buf := pool.Get()
				if buf.Len() != 0 {
					t.Errorf("Got dirty buffer of length %d", buf.Len())
					return
				}
				buf.WriteString("command=deploy")
				pool.Put(buf)
			}
		}(i)
	}
	wg.Wait()
}
