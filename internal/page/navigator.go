package page

import (
	"strconv"
	"strings"
)

// #region navigator
// Navigator is a wrap-around cursor over a list of pages. Page-scoped flags
// are cleared whenever the current page changes.
type Navigator struct {
	current int
	length  int
	flags   map[string]bool
}

// NewNavigator creates a navigator over length pages, positioned at page 0.
func NewNavigator(length int) *Navigator {
	if length < 0 {
		length = 0
	}
	return &Navigator{length: length, flags: make(map[string]bool)}
}

// Len returns the number of pages.
func (n *Navigator) Len() int { return n.length }

// Current returns the current page. It is 0 when there are no pages.
func (n *Navigator) Current() int { return n.current }

// #endregion navigator

// #region movement
// GoTo moves to page p modulo the page count, wrapping in both directions.
// It reports whether the current page changed; with no pages it is a no-op.
func (n *Navigator) GoTo(p int) bool {
	if n.length == 0 {
		return false
	}
	return n.set(((p % n.length) + n.length) % n.length)
}

// Next advances one page, wrapping from the last page to the first.
func (n *Navigator) Next() bool { return n.GoTo(n.current + 1) }

// Last steps back one page, wrapping from the first page to the last.
func (n *Navigator) Last() bool { return n.GoTo(n.current - 1) }

// GoToDisplay moves to a 1-based page number as typed by a user.
// Unparseable input is ignored.
func (n *Navigator) GoToDisplay(value string) bool {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return n.GoTo(v - 1)
}

// Resize replaces the page count after the underlying list changed.
// A current page that no longer exists resets to 0.
func (n *Navigator) Resize(length int) bool {
	if length < 0 {
		length = 0
	}
	n.length = length
	if n.current >= length {
		return n.set(0)
	}
	return false
}

// Reset moves to page 0 of a list with the given length and clears flags.
func (n *Navigator) Reset(length int) {
	if length < 0 {
		length = 0
	}
	n.length = length
	n.current = 0
	n.clearFlags()
}

func (n *Navigator) set(p int) bool {
	if p == n.current {
		return false
	}
	n.current = p
	n.clearFlags()
	return true
}

// #endregion movement

// #region flags
// SetFlag sets a page-scoped flag. It lasts until the page changes.
func (n *Navigator) SetFlag(name string, on bool) {
	if on {
		n.flags[name] = true
		return
	}
	delete(n.flags, name)
}

// Flag reports whether a page-scoped flag is set.
func (n *Navigator) Flag(name string) bool {
	return n.flags[name]
}

func (n *Navigator) clearFlags() {
	for k := range n.flags {
		delete(n.flags, k)
	}
}

// #endregion flags
