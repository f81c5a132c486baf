package connections

import (
	"testing"
	"time"

	"github.com/indigo-web/httpcore/parser"
	"github.com/stretchr/testify/require"
)

func newTestParser() *parser.Parser {
	return parser.New(parser.Request, nil, parser.Callbacks{})
}

func withFrozenClock(t *testing.T, start time.Time) func() {
	t.Helper()
	cur := start
	prev := now
	now = func() time.Time { return cur }

	return func() { now = prev }
}

func TestList_TouchAndRelease(t *testing.T) {
	l := New()
	p := newTestParser()

	require.Zero(t, l.Len())

	l.Touch(p)
	require.Equal(t, 1, l.Len())
	require.NotEmpty(t, l.IDOf(p))

	l.Release(p)
	require.Zero(t, l.Len())
	require.Empty(t, l.IDOf(p))
}

func TestList_ReleaseUntrackedIsNoop(t *testing.T) {
	l := New()
	p := newTestParser()

	l.Release(p)
	require.Zero(t, l.Len())
}

func TestList_CompleteUntrackedIsNoop(t *testing.T) {
	l := New()
	p := newTestParser()

	l.Complete(p)
	require.Zero(t, l.Len())
}

func TestList_TouchReordersOnRepeat(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	restore := withFrozenClock(t, start)
	defer restore()

	l := New()
	a, b := newTestParser(), newTestParser()

	l.Touch(a)
	now = func() time.Time { return start.Add(time.Second) }
	l.Touch(b)

	var all []*parser.Parser
	for p := range l.All() {
		all = append(all, p)
	}
	require.Equal(t, []*parser.Parser{a, b}, all)

	// touching a again moves it to the back, past b.
	now = func() time.Time { return start.Add(2 * time.Second) }
	l.Touch(a)

	all = all[:0]
	for p := range l.All() {
		all = append(all, p)
	}
	require.Equal(t, []*parser.Parser{b, a}, all)
}

func TestList_IdleAndActive(t *testing.T) {
	l := New()
	idleParser := newTestParser()
	activeParser := newTestParser()

	l.Touch(idleParser)
	l.Complete(idleParser) // finished a message, now between keep-alive requests
	l.Touch(activeParser)  // accepted, still mid its first message

	var idle, active []*parser.Parser
	for p := range l.Idle() {
		idle = append(idle, p)
	}
	for p := range l.Active() {
		active = append(active, p)
	}

	require.Equal(t, []*parser.Parser{idleParser}, idle)
	require.Equal(t, []*parser.Parser{activeParser}, active)
}

func TestList_UnstartedConnectionCountsAsActiveNotIdle(t *testing.T) {
	l := New()
	p := newTestParser()

	// freshly accepted, no byte read yet: active (subject to headersTimeout
	// as a connect-to-first-byte guard), not idle.
	l.Touch(p)

	var idle, active []*parser.Parser
	for x := range l.Idle() {
		idle = append(idle, x)
	}
	for x := range l.Active() {
		active = append(active, x)
	}

	require.Empty(t, idle)
	require.Equal(t, []*parser.Parser{p}, active)
}

func TestList_ExpiredSeparatesHeadersAndRequestTimeouts(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	restore := withFrozenClock(t, start)
	defer restore()

	l := New()
	unstartedParser := newTestParser()
	midHeadersParser := newTestParser()
	inBodyParser := newTestParser()

	l.Touch(unstartedParser)

	l.Touch(midHeadersParser)
	midHeadersParser.Execute([]byte("GET / HTTP/1.1\r\nHost: x\r\n"))
	require.False(t, midHeadersParser.HeadersComplete())

	l.Touch(inBodyParser)
	inBodyParser.Execute([]byte("POST / HTTP/1.1\r\nContent-Length: 10\r\n\r\n"))
	require.True(t, inBodyParser.HeadersComplete())

	// advance past the headers timeout but not the overall request one.
	now = func() time.Time { return start.Add(15 * time.Second) }

	var expired []*parser.Parser
	for p := range l.Expired(10*time.Second, 30*time.Second) {
		expired = append(expired, p)
	}

	require.ElementsMatch(t, []*parser.Parser{unstartedParser, midHeadersParser}, expired)
}

func TestList_ExpiredRequestTimeoutCatchesHeadersCompleteMessages(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	restore := withFrozenClock(t, start)
	defer restore()

	l := New()
	p := newTestParser()
	l.Touch(p)
	p.Execute([]byte("POST / HTTP/1.1\r\nContent-Length: 10\r\n\r\n"))
	require.True(t, p.HeadersComplete())

	// past the request deadline even though headers finished long ago.
	now = func() time.Time { return start.Add(31 * time.Second) }

	var expired []*parser.Parser
	for x := range l.Expired(10*time.Second, 30*time.Second) {
		expired = append(expired, x)
	}

	require.Equal(t, []*parser.Parser{p}, expired)
}

func TestList_ExpiredExcludesIdleConnections(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	restore := withFrozenClock(t, start)
	defer restore()

	l := New()
	p := newTestParser()
	l.Touch(p)
	l.Complete(p)

	now = func() time.Time { return start.Add(time.Hour) }

	var count int
	for range l.Expired(time.Second, time.Second) {
		count++
	}

	require.Zero(t, count)
}

func TestList_ExpiredZeroTimeoutsYieldsNothing(t *testing.T) {
	l := New()
	l.Touch(newTestParser())

	var count int
	for range l.Expired(0, 0) {
		count++
	}

	require.Zero(t, count)
}

func TestList_ExpiredNormalizesLooserHeadersTimeout(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	restore := withFrozenClock(t, start)
	defer restore()

	l := New()
	p := newTestParser()
	l.Touch(p)
	p.Execute([]byte("POST / HTTP/1.1\r\nContent-Length: 10\r\n\r\n"))
	require.True(t, p.HeadersComplete())

	// headersTimeout (30s) is looser than requestTimeout (10s), which is
	// nonsensical; normalized by swapping so the effective request
	// deadline is 30s out, not 10s — p must not be judged overdue yet.
	now = func() time.Time { return start.Add(15 * time.Second) }

	var expired []*parser.Parser
	for x := range l.Expired(30*time.Second, 10*time.Second) {
		expired = append(expired, x)
	}

	require.Empty(t, expired)
}

func TestList_ExpiredRemovesYieldedFromActive(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	restore := withFrozenClock(t, start)
	defer restore()

	l := New()
	p := newTestParser()
	l.Touch(p)

	now = func() time.Time { return start.Add(time.Minute) }

	var firstPass []*parser.Parser
	for x := range l.Expired(time.Second, time.Second) {
		firstPass = append(firstPass, x)
	}
	require.Equal(t, []*parser.Parser{p}, firstPass)

	var active []*parser.Parser
	for x := range l.Active() {
		active = append(active, x)
	}
	require.Empty(t, active, "a parser reported by Expired must leave the active set")

	var secondPass []*parser.Parser
	for x := range l.Expired(time.Second, time.Second) {
		secondPass = append(secondPass, x)
	}
	require.Empty(t, secondPass, "a second Expired pass must not re-report an already-expired parser")
}

func TestList_ExpiredStopsEarlyWhenYieldReturnsFalse(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	restore := withFrozenClock(t, start)
	defer restore()

	l := New()
	l.Touch(newTestParser())
	l.Touch(newTestParser())

	now = func() time.Time { return start.Add(time.Minute) }

	var count int
	for range l.Expired(time.Second, time.Second) {
		count++
		break
	}

	require.Equal(t, 1, count)
}
