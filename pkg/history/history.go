// Package history is the navigation subsystem: a current Location,
// push/replace commits, and synchronous subscriptions. The Memory
// implementation is the default; browser-like environments can
// provide their own History.
package history

import (
	"sync"

	"github.com/davidsavoie1/params-router/pkg/location"
)

// UnsubscribeFunc cancels a subscription. It is safe to call at any
// time, including from inside a callback fired by the same
// notification, and guarantees no further invocations after it
// returns. Calling it more than once is a no-op.
type UnsubscribeFunc func()

// History is the navigation subsystem consumed by the rest of the
// module.
type History interface {
	// Location returns the present location.
	Location() location.Location

	// Push commits a new navigation to the given relative URL.
	Push(url string)

	// Replace commits a navigation that replaces the current entry.
	Replace(url string)

	// Subscribe registers fn to run synchronously on every committed
	// navigation, in subscription order. The subscriber is invoked
	// once immediately with the present location.
	Subscribe(fn func(location.Location)) UnsubscribeFunc
}

// Middleware wraps a History with additional behavior around its
// operations. Middlewares compose with Wrap.
type Middleware func(History) History

// Wrap applies middlewares to h in order, so the first middleware is
// the outermost.
func Wrap(h History, mws ...Middleware) History {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// subscriber pairs a callback with its cancellation flag. The flag is
// checked under the owning Memory's lock right before each invocation,
// which is what makes mid-dispatch unsubscription final.
type subscriber struct {
	fn      func(location.Location)
	removed bool
}

// Memory is an in-process History. Dispatch is synchronous on the
// navigating goroutine: every subscriber observes commits in order and
// always sees a fully-formed Location.
type Memory struct {
	mu      sync.Mutex
	current location.Location
	subs    []*subscriber
}

// NewMemory creates a Memory positioned at the given relative URL.
func NewMemory(url string) *Memory {
	return &Memory{current: location.Parse(url)}
}

// Location returns the present location. State is shared, not copied;
// callers must treat it as read-only.
func (m *Memory) Location() location.Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Push commits a navigation to url. State is cleared; it does not
// travel in the URL text.
func (m *Memory) Push(url string) {
	m.commit(location.Parse(url))
}

// Replace commits a navigation to url in place of the current entry.
// Memory keeps no back-stack, so the only observable difference from
// Push is intent carried to middlewares.
func (m *Memory) Replace(url string) {
	m.commit(location.Parse(url))
}

// PushState commits a navigation to url with an out-of-band state
// mapping attached.
func (m *Memory) PushState(url string, state location.Params) {
	loc := location.Parse(url)
	loc.State = state
	m.commit(loc)
}

// Subscribe registers fn and invokes it once immediately with the
// present location.
func (m *Memory) Subscribe(fn func(location.Location)) UnsubscribeFunc {
	sub := &subscriber{fn: fn}

	m.mu.Lock()
	m.subs = append(m.subs, sub)
	current := m.current
	m.mu.Unlock()

	fn(current)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub.removed {
			return
		}
		sub.removed = true
		for i, s := range m.subs {
			if s == sub {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				break
			}
		}
	}
}

// commit updates the current location and notifies subscribers in
// order. Callbacks run outside the lock so they may subscribe or
// unsubscribe reentrantly; the removed flag is re-checked under the
// lock before each call so an unsubscribed callback never fires again.
func (m *Memory) commit(loc location.Location) {
	m.mu.Lock()
	m.current = loc
	snapshot := make([]*subscriber, len(m.subs))
	copy(snapshot, m.subs)
	m.mu.Unlock()

	for _, sub := range snapshot {
		m.mu.Lock()
		removed := sub.removed
		m.mu.Unlock()
		if removed {
			continue
		}
		sub.fn(loc)
	}
}
