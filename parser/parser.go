package parser

import (
	"github.com/indigo-web/httpcore/config"
	"github.com/indigo-web/httpcore/internal"
	"github.com/indigo-web/httpcore/method"
	"github.com/indigo-web/utils/buffer"
)

// maxVersionTokenLen is len("HTTP/1.1").
const maxVersionTokenLen = 8

// Parser is an incremental, resumable HTTP/1.x message parser. A Parser
// owns no socket and performs no I/O; a host repeatedly hands it bytes via
// Execute and reacts to the callbacks it fires. Every span handed to a
// callback is borrowed from the slice passed into Execute and is only
// valid for the duration of that call.
//
// The zero Parser is not ready to use; construct one with New.
type Parser struct {
	// Owner is an opaque slot for host data. The core never reads it.
	Owner any

	callbacks Callbacks
	mode      Mode

	state       State
	messageType MessageType

	position uint64
	paused   bool

	err *ParseError

	method method.Method
	status uint16

	versionMajor, versionMinor uint8

	connectionTok  Connection
	connectionSeen bool

	hasContentLength bool
	hasTransferEnc   bool
	hasTrailer       bool
	hasUpgrade       bool
	chunked          bool

	contentLength        uint64
	pendingContentLength uint64 // accumulator for the Content-Length occurrence currently being scanned
	remainingLength      uint64

	chunkSize      uint64
	remainingChunk uint64

	isConnect   bool
	skipBody    bool // on_headers returned >0
	headersDone bool // OnHeaders has fired for the in-flight message

	crSeen        bool // mid-CRLF: CR already consumed, LF still pending
	headersEnding bool // saw CR at a fresh header/trailer-name position
	extEscape     bool // mid-escape in a quoted chunk-extension value: backslash consumed, escaped byte still pending

	respondingToConnect method.Method // SetMethod hint for response-side tunnel gating

	// small bounded scratch used only when a token spans multiple Execute
	// calls; the fast path below never touches these.
	lineBuf   *buffer.Buffer
	nameBuf   *buffer.Buffer
	valueBuf  *buffer.Buffer
	frameKind framingHeader

	verBuf [maxVersionTokenLen]byte
	verLen int

	statusDigits int
}

// New constructs a Parser in the given mode with the given callback table,
// sized according to cfg. A nil cfg falls back to config.Default(). Any
// nil Callbacks field is treated as Noop.
func New(mode Mode, cfg *config.Config, callbacks Callbacks) *Parser {
	if cfg == nil {
		cfg = config.Default()
	}

	p := &Parser{
		mode:      mode,
		callbacks: callbacks.resolved(),
		lineBuf:   buffer.New(cfg.Line.Method.Default, cfg.Line.Method.Maximal),
		nameBuf:   buffer.New(cfg.Headers.Name.Default, cfg.Headers.Name.Maximal),
		valueBuf:  buffer.New(cfg.Headers.Value.Default, cfg.Headers.Value.Maximal),
	}
	p.reset(false)

	return p
}

// State returns the Parser's current state.
func (p *Parser) State() State { return p.state }

// Mode returns the Parser's configured mode.
func (p *Parser) Mode() Mode { return p.mode }

// MessageType returns the type resolved for the in-flight (or most
// recently completed) message.
func (p *Parser) MessageType() MessageType { return p.messageType }

// Method returns the parsed request method. Meaningless for responses.
func (p *Parser) Method() method.Method { return p.method }

// Status returns the parsed response status code. Meaningless for requests.
func (p *Parser) Status() uint16 { return p.status }

// Version returns the parsed HTTP version as (major, minor).
func (p *Parser) Version() (major, minor uint8) { return p.versionMajor, p.versionMinor }

// Connection returns the resolved keep-alive disposition.
func (p *Parser) Connection() Connection { return p.connectionTok }

// HeadersComplete reports whether OnHeaders has fired for the message
// currently in flight. False from the start of a message until the blank
// line ending its header section is reached; after the message completes it
// stays true until the next message starts.
func (p *Parser) HeadersComplete() bool { return p.headersDone }

// IsChunked reports whether the in-flight message's body is chunked.
func (p *Parser) IsChunked() bool { return p.chunked }

// ContentLength returns the Content-Length of the in-flight message, if any.
func (p *Parser) ContentLength() (n uint64, ok bool) { return p.contentLength, p.hasContentLength }

// Position returns the total number of bytes this Parser has consumed
// since New or the last Reset(false).
func (p *Parser) Position() uint64 { return p.position }

// Paused reports whether the Parser is currently paused.
func (p *Parser) Paused() bool { return p.paused }

// Err returns the sticky parse error, or nil if the Parser has not
// errored.
func (p *Parser) Err() *ParseError { return p.err }

// SetMethod latches a method hint onto a response-side Parser before the
// status line of the corresponding response is parsed, so the Parser can
// recognize a 2xx reply to CONNECT as a tunnel transition (spec's
// CONNECT/Upgrade resolution, supplemented from the original framing
// logic: response-side framing cannot otherwise know the request method).
// It is a no-op once the message has started.
func (p *Parser) SetMethod(m method.Method) {
	if p.state == StateStart {
		p.respondingToConnect = m
	}
}

// Pause stops the Parser from consuming further bytes. It may only be
// called from within a callback. Execute reads the flag between steps, not
// inside them: the step that fired the callback runs to its own end (the
// rest of the line, header or data span it was scanning) before Execute
// returns, so bytes past the callback's span may still be consumed.
func (p *Parser) Pause() { p.paused = true }

// Resume clears a Pause so the next Execute call proceeds normally. It is
// a no-op if the Parser is not paused.
func (p *Parser) Resume() { p.paused = false }

// Finish signals EOF: no further bytes will ever arrive. For a response
// parsed without Content-Length or Transfer-Encoding, this is what
// delimits the body (StateBodyNoLength) and fires OnMessageComplete. It is
// idempotent and never overrides an existing error.
func (p *Parser) Finish() {
	if p.err != nil {
		return
	}

	switch p.state {
	case StateBodyNoLength:
		p.callbacks.OnMessageComplete(p, nil)
		p.setState(StateFinish)
	case StateStart, StateFinish:
		p.setState(StateFinish)
	default:
		p.fail(ErrUnexpectedEOF, "unexpected eof")
	}

	p.callbacks.OnFinish(p, nil)
}

// Reset returns the Parser to StateStart, clearing all per-message state
// (including any sticky error) so it can parse a new message. Owner and
// the registered Callbacks survive a Reset. Position() is zeroed unless
// keepPosition is true, in which case the cumulative byte count carries
// over (a host resetting after a protocol error on an otherwise-intact
// connection, for instance, may still want byte offsets to keep counting
// from where the connection, not the message, began).
func (p *Parser) Reset(keepPosition bool) {
	p.reset(keepPosition)
	p.callbacks.OnReset(p, nil)
}

// Destroy releases any resources held by the Parser. After Destroy the
// Parser must not be used again.
func (p *Parser) Destroy() {
	p.lineBuf = nil
	p.nameBuf = nil
	p.valueBuf = nil
}

func (p *Parser) reset(keepPosition bool) {
	if !keepPosition {
		p.position = 0
	}

	p.state = StateStart
	p.messageType = MessageRequest
	p.err = nil
	p.method = method.Unknown
	p.status = 0
	p.versionMajor, p.versionMinor = 0, 0
	p.connectionTok = KeepAlive
	p.connectionSeen = false
	p.hasContentLength = false
	p.hasTransferEnc = false
	p.hasTrailer = false
	p.hasUpgrade = false
	p.chunked = false
	p.contentLength = 0
	p.pendingContentLength = 0
	p.remainingLength = 0
	p.chunkSize = 0
	p.remainingChunk = 0
	p.isConnect = false
	p.skipBody = false
	p.headersDone = false
	p.paused = false
	p.crSeen = false
	p.headersEnding = false
	p.extEscape = false
	p.lineBuf.Clear()
	p.nameBuf.Clear()
	p.valueBuf.Clear()
	p.frameKind = framingNone
	p.verLen = 0
	p.statusDigits = 0
	p.respondingToConnect = method.Unknown
}

func (p *Parser) setState(s State) {
	p.callbacks.BeforeStateChange(p, nil)
	p.state = s
	p.callbacks.AfterStateChange(p, nil)
}

// fail drives the Parser into StateError with code/desc at the current
// position and fires OnError. It never overrides an existing error.
func (p *Parser) fail(code ErrorCode, desc string) {
	if p.err != nil {
		return
	}

	p.err = &ParseError{Code: code, Description: desc, Position: p.position}
	p.setState(StateError)
	p.callbacks.OnError(p, internal.S2B(desc))
}

// failCallback is fail's counterpart for a callback that returned a
// negative control code.
func (p *Parser) failCallback() {
	p.fail(ErrCallbackError, "callback returned an error")
}

// Execute feeds data into the Parser and returns the number of leading
// bytes consumed. consumed < len(data) happens in exactly four cases:
// the Parser paused or errored mid-buffer, it entered StateTunnel (the
// bytes after the header section belong to the host), or it completed a
// message and is returning control so the host can explicitly re-enter it
// (via another Execute call) for whatever follows — pipelined bytes are
// never silently carried into the next message within the same call.
//
// Calling Execute while errored, finished, or tunnelled is always a no-op
// that returns 0.
func (p *Parser) Execute(data []byte) (consumed int) {
	switch p.state {
	case StateError, StateFinish, StateTunnel:
		return 0
	}

	if p.paused {
		return 0
	}

	orig := data

	for len(data) > 0 {
		var done bool
		data, done = p.step(data)
		if done || p.paused || p.state == StateError {
			break
		}
	}

	n := len(orig) - len(data)
	p.position += uint64(n)

	return n
}

// step advances the Parser by as much of data as the current state can
// consume in one pass, returning the unconsumed remainder and whether
// Execute should stop (message complete / tunnel / pause / error).
func (p *Parser) step(data []byte) (rest []byte, done bool) {
	switch p.state {
	case StateStart:
		return p.stepStart(data)
	case StateMethod:
		return p.stepMethod(data)
	case StateURL:
		return p.stepURL(data)
	case StateRequestVersion:
		return p.stepVersionToken(data, p.afterRequestVersion)
	case StateRequestLineCR:
		return p.stepCRLF(data, p.afterRequestLine)
	case StateResponseProtocol, StateResponseVersion:
		return p.stepVersionToken(data, p.afterResponseVersion)
	case StateStatus:
		return p.stepStatus(data)
	case StateReason:
		return p.stepReason(data)
	case StateStatusLineCR:
		return p.stepCRLF(data, p.afterStatusLine)
	case StateHeaderName:
		return p.stepHeaderName(data)
	case StateHeaderColon:
		return p.stepHeaderColon(data)
	case StateHeaderValue:
		return p.stepHeaderValue(data)
	case StateHeaderValueCR:
		return p.stepCRLF(data, p.afterHeaderLine)
	case StateBodyContentLength:
		return p.stepBodyContentLength(data)
	case StateBodyNoLength:
		return p.stepBodyNoLength(data)
	case StateChunkSize, StateChunkExtensionName, StateChunkExtensionValue,
		StateChunkExtensionQuotedValue, StateChunkSizeCR, StateChunkData,
		StateChunkDataCR, StateChunkDataCRLF:
		return p.stepChunk(data)
	case StateTrailerName, StateTrailerColon, StateTrailerValue:
		return p.stepTrailer(data)
	case StateMessageDone:
		return data, true
	default:
		return data, true
	}
}

func (p *Parser) stepStart(data []byte) ([]byte, bool) {
	if len(data) == 0 {
		return data, false
	}

	held := p.lineBuf.SegmentLength() > 0 // a lone 'H' kept back by AutoDetect below
	if !held {
		// The previous message's per-message state stays readable until the
		// next message begins; clear it now, keeping any SetMethod hint.
		hint := p.respondingToConnect
		p.reset(true)
		p.respondingToConnect = hint
	}

	messageType := p.messageType

	switch p.mode {
	case Request:
		messageType = MessageRequest
	case Response:
		messageType = MessageResponse
	default:
		// 'H' opens both "HEAD" and "HTTP/", so for it the second byte
		// decides; a lone 'H' is held in lineBuf until that byte arrives.
		if !held && len(data) == 1 && data[0] == 'H' {
			p.lineBuf.Append(data)
			return nil, false
		}

		if held && data[0] != 'T' || !held && isUpperAlpha(data[0]) && (data[0] != 'H' || data[1] != 'T') {
			messageType = MessageRequest
		} else {
			messageType = MessageResponse
		}
	}

	p.messageType = messageType
	p.callbacks.OnMessageStart(p, nil)

	if messageType == MessageRequest {
		p.setState(StateMethod)
		return p.stepMethod(data)
	}

	if held { // the held 'H' is the first byte of "HTTP/"
		p.lineBuf.Clear()
		p.verBuf[0], p.verLen = 'H', 1
	}

	p.setState(StateResponseProtocol)
	return p.stepVersionToken(data, p.afterResponseVersion)
}

func isUpperAlpha(c byte) bool { return c >= 'A' && c <= 'Z' }

// stepCRLF consumes a CRLF pair that may arrive split across Execute
// calls, tracking progress in p.crSeen, then hands the remainder to next.
// data must start at the CR on first entry; on re-entry (crSeen already
// true) it must start at the LF.
func (p *Parser) stepCRLF(data []byte, next func([]byte) ([]byte, bool)) ([]byte, bool) {
	if !p.crSeen {
		if len(data) == 0 {
			return data, false
		}

		if data[0] != '\r' {
			p.fail(ErrUnexpectedCharacter, "expected CR")
			return data, true
		}

		p.crSeen = true
		data = data[1:]
	}

	if len(data) == 0 {
		return data, false
	}

	if data[0] != '\n' {
		p.fail(ErrUnexpectedCharacter, "expected LF after CR")
		return data, true
	}

	p.crSeen = false

	return next(data[1:])
}

// completeMessage fires OnMessageComplete and returns the Parser to
// StateStart, ready for the next message on the same connection without
// requiring an explicit Reset. The completed message's method, status,
// version, connection and framing stay readable until the next message
// starts, when stepStart clears them; a SetMethod hint is dropped here, so
// each response needs its own. Position keeps counting across messages —
// it's a connection-level byte count, not a per-message one; only an
// explicit Reset(false) zeroes it.
func (p *Parser) completeMessage() {
	p.callbacks.OnMessageComplete(p, nil)
	p.respondingToConnect = method.Unknown
	p.state = StateStart
}
