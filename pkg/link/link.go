// Package link decides when an anchor click should be turned into a
// client-side navigation instead of a full page load. It is glue
// around the core: the host environment reports the click, and the
// package routes it into a history.History when appropriate.
package link

import (
	"github.com/davidsavoie1/params-router/pkg/history"
)

// PrimaryButton is the main (usually left) pointer button.
const PrimaryButton = 0

// Click carries the observable facts about an anchor click. HasHref
// distinguishes a present-but-empty href attribute from an absent
// one; only string hrefs are intercepted.
type Click struct {
	Button           int
	MetaKey          bool
	CtrlKey          bool
	ShiftKey         bool
	AltKey           bool
	Target           string
	DefaultPrevented bool
	Href             string
	HasHref          bool
	Replace          bool
}

// ShouldIntercept reports whether the click qualifies for client-side
// navigation: primary button, no modifier keys, no target attribute
// (or self), a string href, and default not already prevented.
func ShouldIntercept(c Click) bool {
	if c.DefaultPrevented {
		return false
	}
	if c.Button != PrimaryButton {
		return false
	}
	if c.MetaKey || c.CtrlKey || c.ShiftKey || c.AltKey {
		return false
	}
	if c.Target != "" && c.Target != "_self" {
		return false
	}
	return c.HasHref
}

// Intercept applies ShouldIntercept and, when it qualifies, commits
// the navigation to h, replacing the current entry when the click's
// replace attribute says so. It reports whether the click was handled
// and the host should suppress the default navigation.
func Intercept(h history.History, c Click) bool {
	if !ShouldIntercept(c) {
		return false
	}
	if c.Replace {
		h.Replace(c.Href)
	} else {
		h.Push(c.Href)
	}
	return true
}
