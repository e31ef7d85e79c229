package asset

import (
	"context"
	"sync"
)

// Fetch is the single-shot result of Asset.Data. It resolves exactly once;
// later resolutions are ignored. A caller that loses interest simply stops
// waiting.
type Fetch struct {
	done chan struct{}
	once sync.Once

	data []byte
	ok   bool

	mu        sync.Mutex
	returned  bool
	immediate bool
	callbacks []func([]byte, bool)
}

func newFetch() *Fetch {
	return &Fetch{done: make(chan struct{})}
}

// resolve records the result and runs pending callbacks on the calling goroutine.
func (f *Fetch) resolve(data []byte, ok bool) {
	f.once.Do(func() {
		f.mu.Lock()
		if !f.returned {
			f.immediate = true
		}
		f.data, f.ok = data, ok
		callbacks := f.callbacks
		f.callbacks = nil
		close(f.done)
		f.mu.Unlock()

		for _, cb := range callbacks {
			cb(data, ok)
		}
	})
}

// markReturned is called once the initiating Data call is about to return.
func (f *Fetch) markReturned() {
	f.mu.Lock()
	f.returned = true
	f.mu.Unlock()
}

// Synchronous reports whether the result was available before Data returned.
// UIs use it to decide whether a loading indicator is needed.
func (f *Fetch) Synchronous() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.immediate
}

// Done is closed when the fetch resolves.
func (f *Fetch) Done() <-chan struct{} {
	return f.done
}

// Result returns the resolved bytes without blocking. ok is false while the
// fetch is pending and when the bytes are unavailable.
func (f *Fetch) Result() ([]byte, bool) {
	select {
	case <-f.done:
		return f.data, f.ok
	default:
		return nil, false
	}
}

// Wait blocks until the fetch resolves or ctx ends.
func (f *Fetch) Wait(ctx context.Context) ([]byte, bool) {
	select {
	case <-f.done:
		return f.data, f.ok
	case <-ctx.Done():
		return nil, false
	}
}

// Then registers fn to receive the result exactly once. If the fetch has
// already resolved fn runs immediately on the caller's goroutine, otherwise
// on the goroutine that resolves it.
func (f *Fetch) Then(fn func(data []byte, ok bool)) {
	f.mu.Lock()
	select {
	case <-f.done:
		f.mu.Unlock()
		fn(f.data, f.ok)
		return
	default:
	}
	f.callbacks = append(f.callbacks, fn)
	f.mu.Unlock()
}
