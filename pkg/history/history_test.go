package history

import (
	"testing"

	"github.com/davidsavoie1/params-router/pkg/location"
)

func TestMemoryLocation(t *testing.T) {
	h := NewMemory("/users/7?sort=asc#top")

	loc := h.Location()
	if loc.Path != "/users/7" || loc.Search != "sort=asc" || loc.Hash != "top" {
		t.Errorf("Location() = %+v", loc)
	}
}

func TestSubscribeFiresImmediately(t *testing.T) {
	h := NewMemory("/start")

	var got []string
	h.Subscribe(func(loc location.Location) {
		got = append(got, loc.Path)
	})

	if len(got) != 1 || got[0] != "/start" {
		t.Fatalf("initial callback locations = %v, want [/start]", got)
	}
}

func TestPushNotifiesInOrder(t *testing.T) {
	h := NewMemory("/")

	var first, second []string
	h.Subscribe(func(loc location.Location) { first = append(first, loc.Path) })
	h.Subscribe(func(loc location.Location) {
		// The earlier subscriber must already have seen this commit.
		if len(first) != len(second)+1 {
			t.Errorf("subscription order violated: first=%v second=%v", first, second)
		}
		second = append(second, loc.Path)
	})

	h.Push("/a")
	h.Push("/b")

	want := []string{"/", "/a", "/b"}
	for i, p := range want {
		if first[i] != p || second[i] != p {
			t.Fatalf("first=%v second=%v, want %v", first, second, want)
		}
	}
}

func TestPushClearsState(t *testing.T) {
	h := NewMemory("/")
	h.PushState("/a", location.Params{"modal": true})

	if h.Location().State["modal"] != true {
		t.Fatal("PushState should attach state")
	}

	h.Push("/b")
	if h.Location().State != nil {
		t.Error("Push should clear state")
	}
}

func TestUnsubscribeStopsCallbacks(t *testing.T) {
	h := NewMemory("/")

	var calls int
	unsub := h.Subscribe(func(location.Location) { calls++ })

	h.Push("/a")
	unsub()
	h.Push("/b")

	if calls != 2 { // initial + /a
		t.Errorf("calls = %d, want 2", calls)
	}

	// Second call is a no-op.
	unsub()
}

func TestUnsubscribeFromWithinCallback(t *testing.T) {
	h := NewMemory("/")

	var calls int
	var unsub UnsubscribeFunc
	unsub = h.Subscribe(func(loc location.Location) {
		calls++
		if loc.Path == "/a" {
			unsub()
		}
	})

	var laterCalls int
	h.Subscribe(func(location.Location) { laterCalls++ })

	h.Push("/a")
	h.Push("/b")

	if calls != 2 { // initial + /a, nothing after self-unsubscribe
		t.Errorf("calls = %d, want 2", calls)
	}
	if laterCalls != 3 { // initial + /a + /b
		t.Errorf("laterCalls = %d, want 3", laterCalls)
	}
}

func TestUnsubscribeOtherFromWithinCallback(t *testing.T) {
	h := NewMemory("/")

	var victimCalls int
	var unsubVictim UnsubscribeFunc

	h.Subscribe(func(loc location.Location) {
		if loc.Path == "/a" && unsubVictim != nil {
			unsubVictim()
		}
	})
	unsubVictim = h.Subscribe(func(location.Location) { victimCalls++ })

	h.Push("/a")

	// The victim was unsubscribed during the same dispatch, before its
	// turn: it must not observe /a.
	if victimCalls != 1 { // initial only
		t.Errorf("victimCalls = %d, want 1", victimCalls)
	}
}

func TestWrapOrder(t *testing.T) {
	h := NewMemory("/")

	var order []string
	mw := func(tag string) Middleware {
		return func(next History) History {
			return tagged{History: next, tag: tag, order: &order}
		}
	}

	wrapped := Wrap(h, mw("outer"), mw("inner"))
	wrapped.Push("/a")

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("order = %v, want [outer inner]", order)
	}
	if h.Location().Path != "/a" {
		t.Errorf("Push did not reach the underlying history")
	}
}

type tagged struct {
	History
	tag   string
	order *[]string
}

func (w tagged) Push(url string) {
	*w.order = append(*w.order, w.tag)
	w.History.Push(url)
}
