package args

import (
	"context"
	"strings"
	"sync"

	"github.com/dzonerzy/go-args/middleware"
)

// invocation is the middleware view of one command callback.
type invocation struct {
	ctx    context.Context
	cancel context.CancelFunc
	name   string
	parser *Parser

	mu   sync.Mutex
	meta map[string]any
}

var (
	_ middleware.Context = (*invocation)(nil)
	_ middleware.Command = (*invocation)(nil)
)

func (inv *invocation) Context() context.Context     { return inv.ctx }
func (inv *invocation) Done() <-chan struct{}        { return inv.ctx.Done() }
func (inv *invocation) Cancel()                      { inv.cancel() }
func (inv *invocation) Command() middleware.Command  { return inv }
func (inv *invocation) Args() []string               { return inv.parser.Args() }
func (inv *invocation) Name() string                 { return inv.name }

// Description is the first line of the command's help text.
func (inv *invocation) Description() string {
	line, _, _ := strings.Cut(inv.parser.helptext, "\n")
	return strings.TrimSpace(line)
}

func (inv *invocation) Found(name string) bool {
	found, _ := inv.parser.Found(name)
	return found
}

func (inv *invocation) Value(name string) any {
	v, _ := inv.parser.Value(name)
	return v
}

func (inv *invocation) Set(key string, value any) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.meta == nil {
		inv.meta = make(map[string]any)
	}
	inv.meta[key] = value
}

func (inv *invocation) Get(key string) any {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.meta[key]
}

// runCallback invokes the callback of p under the middleware of p and its
// ancestors, outermost first.
//
// p.ctx is set once, before any middleware runs, and never written again
// during this parse: Timeout may return while the callback goroutine is still
// reading p. The callback context stays cancelled after the call returns.
func (p *Parser) runCallback(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.ctx = cctx

	inv := &invocation{ctx: cctx, cancel: cancel, name: name, parser: p}
	action := func(middleware.Context) error {
		return p.callback(name, p)
	}
	return middleware.Chain(p.middlewareChain()...).Apply(action)(inv)
}

func (p *Parser) middlewareChain() []middleware.Middleware {
	var levels []*Parser
	for level := p; level != nil; level = level.parent {
		levels = append(levels, level)
	}

	var chain []middleware.Middleware
	for i := len(levels) - 1; i >= 0; i-- {
		chain = append(chain, levels[i].middleware...)
	}
	return chain
}
