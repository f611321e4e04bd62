package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// renderers hands out glamour renderers, one sync.Pool per normalized option
// set. A TermRenderer is not safe for concurrent Render calls, so each caller
// takes its own and returns it afterwards.
type renderers struct {
	mu    sync.Mutex
	pools map[Options]*sync.Pool
}

var shared = &renderers{pools: map[Options]*sync.Pool{}}

func (r *renderers) pool(opts Options) *sync.Pool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pools[opts]
	if !ok {
		p = &sync.Pool{New: func() any {
			tr, err := newTermRenderer(opts)
			if err != nil {
				return nil
			}
			return tr
		}}
		r.pools[opts] = p
	}
	return p
}

// acquire returns a renderer for opts and the func that gives it back
func (r *renderers) acquire(opts Options) (*glamour.TermRenderer, func(), error) {
	opts = opts.normalized()
	p := r.pool(opts)

	tr, ok := p.Get().(*glamour.TermRenderer)
	if !ok || tr == nil {
		var err error
		if tr, err = newTermRenderer(opts); err != nil {
			return nil, nil, err
		}
	}
	return tr, func() { p.Put(tr) }, nil
}

func (r *renderers) reset() {
	r.mu.Lock()
	r.pools = map[Options]*sync.Pool{}
	r.mu.Unlock()
}

func (r *renderers) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pools)
}

func newTermRenderer(opts Options) (*glamour.TermRenderer, error) {
	ropts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
	}
	if opts.EnableEmoji {
		ropts = append(ropts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		ropts = append(ropts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(ropts...)
}

// ClearCache drops every pooled renderer
func ClearCache() { shared.reset() }

// CacheSize returns how many distinct option sets have a pool
func CacheSize() int { return shared.size() }
