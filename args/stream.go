package args

import "github.com/dzonerzy/go-args/internal/pool"

// argStream is a single-pass cursor over a copy of the argument list.
type argStream struct {
	args  []string
	index int
}

var streamPool = pool.NewPoolWithReset(
	func() *argStream {
		return &argStream{args: make([]string, 0, 16)}
	},
	func(s *argStream) {
		s.args = s.args[:0]
		s.index = 0
	},
)

func newArgStream(args []string) *argStream {
	s := streamPool.Get()
	s.args = append(s.args, args...)
	return s
}

// release returns the stream to the pool. The stream must not be used afterwards.
func (s *argStream) release() {
	clear(s.args)
	streamPool.Put(s)
}

func (s *argStream) hasNext() bool { return s.index < len(s.args) }

// next returns the current argument and advances. Callers guard with hasNext.
func (s *argStream) next() string {
	if s.index >= len(s.args) {
		panic("args: next called on an exhausted argument stream")
	}
	s.index++
	return s.args[s.index-1]
}
