// Package connections tracks every in-flight Parser on a listener so a
// host can sweep idle or overdue connections without walking every open
// socket. A naive tree keyed by last-touch time would need re-balancing on
// every touch, since the key itself is what mutates; instead the list
// keeps an external index — a map plus a slice kept sorted by bisection —
// so a touch is a remove-then-reinsert against a stable identity rather
// than an in-place key update.
package connections

import (
	"iter"
	"sort"
	"time"
	"unsafe"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/httpcore/parser"
)

// now is a seam so tests can freeze time instead of racing the clock.
var now = time.Now

type node struct {
	p  *parser.Parser
	id string

	// touchedAt is last_message_start: the moment the connection's current
	// message began, or the zero Time while idle between messages. It is
	// never refreshed mid-message — only Touch (message start) and
	// Complete (message end) may change it.
	touchedAt time.Time

	// active mirrors whether this node is subject to Active()/Expired():
	// true from the moment a connection is accepted (even before its first
	// byte arrives — that's the slow-loris window headersTimeout guards
	// against) through the end of whatever message it's currently on,
	// false while idle between keep-alive messages.
	active bool
}

// List tracks the set of Parsers belonging to every open connection on a
// listener, ordered by how recently each was touched. It is not safe for
// concurrent use from multiple goroutines without external locking, the
// same assumption the teacher's own connection map makes.
type List struct {
	all     map[*parser.Parser]*node
	ordered []*node // every tracked node, sorted by (touchedAt, identity)
}

// New returns an empty List.
func New() *List {
	return &List{
		all: make(map[*parser.Parser]*node),
	}
}

// Touch registers p if it's new, then stamps it with the current time and
// marks it active. A host calls this once when a connection is accepted
// (before any bytes arrive — this is what lets headersTimeout catch a
// connection that never sends a single byte) and again every time a new
// message starts (wire it to OnMessageStart). It must not be called for
// any other reason: refreshing the timestamp mid-message would mask a
// slow-loris drip against requestTimeout.
func (l *List) Touch(p *parser.Parser) {
	n, ok := l.all[p]
	if !ok {
		n = &node{p: p, id: uniuri.New()}
		l.all[p] = n
	} else {
		l.removeOrdered(n)
	}

	n.touchedAt = now()
	n.active = true
	l.insertOrdered(n)
}

// Complete marks p idle: its message has finished and no other has begun.
// Wire this to OnMessageComplete. A p not tracked via Touch is a no-op.
// While idle, p is excluded from Active() and Expired() — a connection
// between keep-alive requests isn't judged against headersTimeout or
// requestTimeout by this mechanism.
func (l *List) Complete(p *parser.Parser) {
	n, ok := l.all[p]
	if !ok {
		return
	}

	l.removeOrdered(n)
	n.touchedAt = time.Time{}
	n.active = false
	l.insertOrdered(n)
}

// Release stops tracking p entirely. It is a no-op if p isn't tracked.
func (l *List) Release(p *parser.Parser) {
	n, ok := l.all[p]
	if !ok {
		return
	}

	l.removeOrdered(n)
	delete(l.all, p)
}

// IDOf returns the opaque identifier minted for p the first time it was
// Touch'd, or "" if p isn't tracked. The identifier plays no role in
// ordering; it exists purely so a host can correlate log lines with a
// connection without printing a raw pointer.
func (l *List) IDOf(p *parser.Parser) string {
	if n, ok := l.all[p]; ok {
		return n.id
	}

	return ""
}

// Len returns the number of tracked connections.
func (l *List) Len() int { return len(l.all) }

func less(a, b *node) bool {
	if !a.touchedAt.Equal(b.touchedAt) {
		return a.touchedAt.Before(b.touchedAt)
	}

	// strict weak ordering tiebreak: identity, not insertion order, so two
	// nodes touched at the exact same instant still compare consistently
	// regardless of which one reinserts first.
	return uintptr(unsafe.Pointer(a.p)) < uintptr(unsafe.Pointer(b.p))
}

func (l *List) searchOrdered(n *node) int {
	return sort.Search(len(l.ordered), func(i int) bool {
		return !less(l.ordered[i], n)
	})
}

func (l *List) insertOrdered(n *node) {
	i := l.searchOrdered(n)
	l.ordered = append(l.ordered, nil)
	copy(l.ordered[i+1:], l.ordered[i:])
	l.ordered[i] = n
}

func (l *List) removeOrdered(n *node) {
	i := l.searchOrdered(n)
	// searchOrdered finds the leftmost position n could occupy; since
	// touchedAt+identity is unique per node, it is exactly n's position.
	if i >= len(l.ordered) || l.ordered[i] != n {
		return
	}

	copy(l.ordered[i:], l.ordered[i+1:])
	l.ordered = l.ordered[:len(l.ordered)-1]
}

// All iterates every tracked Parser, oldest-touched first.
func (l *List) All() iter.Seq[*parser.Parser] {
	return func(yield func(*parser.Parser) bool) {
		for _, n := range l.ordered {
			if !yield(n.p) {
				return
			}
		}
	}
}

// Idle iterates every tracked Parser currently between messages: Touch'd
// at least once, but not since a message started or completed without a
// new one beginning.
func (l *List) Idle() iter.Seq[*parser.Parser] {
	return l.filter(func(n *node) bool { return n.touchedAt.IsZero() })
}

// Active iterates every tracked Parser that is either mid-message or
// accepted and still waiting for its first byte.
func (l *List) Active() iter.Seq[*parser.Parser] {
	return l.filter(func(n *node) bool { return n.active })
}

func (l *List) filter(keep func(*node) bool) iter.Seq[*parser.Parser] {
	return func(yield func(*parser.Parser) bool) {
		for _, n := range l.ordered {
			if !keep(n) {
				continue
			}

			if !yield(n.p) {
				return
			}
		}
	}
}

// Expired iterates every active Parser overdue against headersTimeout or
// requestTimeout, popping each one out of the active set as it's yielded —
// mirroring the original's list->active_connections_.erase(parser) at the
// same point in its walk. A Parser reported once by Expired is gone from
// Active() until a subsequent Touch puts it back; a second Expired pass
// before the host acts on the first won't re-report it. A zero timeout
// disables that particular check; if both are zero, Expired never yields
// anything. A looser headersTimeout than requestTimeout is nonsensical and
// gets normalized by swapping the two. A Parser is overdue if either:
//   - it hasn't finished receiving headers for its current message and
//     its last touch predates the headers deadline, or
//   - its last touch predates the request deadline, regardless of how far
//     into the message it's gotten.
//
// Idle Parsers (between keep-alive messages) are never yielded: they sit
// outside both checks exactly as freshly-Touch'd ones sit inside them.
func (l *List) Expired(headersTimeout, requestTimeout time.Duration) iter.Seq[*parser.Parser] {
	if headersTimeout == 0 && requestTimeout == 0 {
		return func(func(*parser.Parser) bool) {}
	}

	if requestTimeout > 0 && headersTimeout > requestTimeout {
		headersTimeout, requestTimeout = requestTimeout, headersTimeout
	}

	return func(yield func(*parser.Parser) bool) {
		cutoff := now()

		var headersDeadline, requestDeadline time.Time
		if headersTimeout > 0 {
			headersDeadline = cutoff.Add(-headersTimeout)
		}

		if requestTimeout > 0 {
			requestDeadline = cutoff.Add(-requestTimeout)
		}

		// Walk a snapshot: Expired mutates l.ordered (via removeOrdered,
		// through the Complete-like reset below) as it goes, which would
		// otherwise shift indices out from under a live range over the
		// slice itself.
		candidates := append([]*node(nil), l.ordered...)

		for _, n := range candidates {
			if !n.active {
				continue
			}

			headersOverdue := !headersDeadline.IsZero() &&
				!n.p.HeadersComplete() &&
				n.touchedAt.Before(headersDeadline)

			requestOverdue := !requestDeadline.IsZero() && n.touchedAt.Before(requestDeadline)

			if !headersOverdue && !requestOverdue {
				continue
			}

			l.removeOrdered(n)
			n.touchedAt = time.Time{}
			n.active = false
			l.insertOrdered(n)

			if !yield(n.p) {
				return
			}
		}
	}
}
