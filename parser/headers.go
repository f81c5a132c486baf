package parser

import (
	"bytes"

	"github.com/indigo-web/httpcore/internal"
	"github.com/indigo-web/httpcore/method"
)

func (p *Parser) stepHeaderName(data []byte) ([]byte, bool) {
	if p.headersEnding {
		return p.stepCRLF(data, p.afterHeadersDone)
	}

	if p.nameBuf.SegmentLength() == 0 && len(data) > 0 && data[0] == '\r' {
		p.headersEnding = true

		return p.stepCRLF(data, p.afterHeadersDone)
	}

	token, rest, result := accumulate(data, p.nameBuf, ':')

	switch result {
	case tokenPending:
		return nil, false
	case tokenOverflow:
		p.fail(ErrUnexpectedCharacter, "header name too long")
		return data, true
	}

	p.nameBuf.Clear()

	for _, c := range token {
		if !internal.IsTokenChar(c) {
			p.fail(ErrUnexpectedCharacter, "invalid header name character")
			return data, true
		}
	}

	if p.callbacks.OnHeaderName(p, token) < 0 {
		p.failCallback()
		return data, true
	}

	p.frameKind = classifyHeaderName(internal.B2S(token))
	p.valueBuf.Clear()

	if p.frameKind == framingContentLength {
		p.pendingContentLength = 0
	}

	p.setState(StateHeaderColon)

	return p.stepHeaderColon(rest)
}

func (p *Parser) stepHeaderColon(data []byte) ([]byte, bool) {
	i := 0
	for i < len(data) && (data[i] == ' ' || data[i] == '\t') {
		i++
	}

	if i == len(data) {
		return nil, false
	}

	p.setState(StateHeaderValue)

	return p.stepHeaderValue(data[i:])
}

func (p *Parser) stepHeaderValue(data []byte) ([]byte, bool) {
	idx := bytes.IndexByte(data, '\r')
	chunk := data
	final := idx != -1
	if final {
		chunk = data[:idx]
	}

	if p.frameKind == framingContentLength {
		for _, c := range chunk {
			if c < '0' || c > '9' {
				p.fail(ErrInvalidContentLength, "non-digit in Content-Length")
				return data, true
			}

			p.pendingContentLength = p.pendingContentLength*10 + uint64(c-'0')
		}
	} else if p.frameKind != framingNone {
		if !p.valueBuf.Append(chunk) {
			p.fail(ErrUnexpectedCharacter, "header value too long")
			return data, true
		}
	}

	if p.callbacks.OnHeaderValue(p, chunk) < 0 {
		p.failCallback()
		return data, true
	}

	if !final {
		return nil, false
	}

	if p.resolveHeaderValue() {
		return data, true
	}

	p.setState(StateHeaderValueCR)

	return p.stepCRLF(data[idx:], p.afterHeaderLine)
}

// resolveHeaderValue applies framing semantics once a framing header's
// full value has arrived. It returns true if it drove the Parser into
// StateError.
func (p *Parser) resolveHeaderValue() bool {
	switch p.frameKind {
	case framingContentLength:
		if p.hasTransferEnc {
			p.fail(ErrUnexpectedContentLength, "Content-Length with Transfer-Encoding")
			return true
		}

		if p.hasContentLength && p.contentLength != p.pendingContentLength {
			p.fail(ErrInvalidContentLength, "conflicting Content-Length values")
			return true
		}

		p.contentLength = p.pendingContentLength
		p.hasContentLength = true
	case framingTransferEncoding:
		value := internal.B2S(p.valueBuf.Finish())
		p.valueBuf.Clear()

		if p.hasContentLength {
			p.fail(ErrUnexpectedTransferEncoding, "Transfer-Encoding with Content-Length")
			return true
		}

		if containsTokenFold(value, "chunked") {
			p.chunked = true
		}

		p.hasTransferEnc = true
	case framingConnection:
		value := internal.B2S(p.valueBuf.Finish())
		p.valueBuf.Clear()
		p.connectionSeen = true

		switch {
		case containsTokenFold(value, "close"):
			p.connectionTok = Close
		case containsTokenFold(value, "upgrade"):
			p.connectionTok = Upgrade
		default:
			p.connectionTok = KeepAlive
		}
	case framingUpgrade:
		p.hasUpgrade = true
		p.valueBuf.Clear()
	case framingTrailer:
		p.hasTrailer = true
		p.valueBuf.Clear()
	}

	return false
}

func (p *Parser) afterHeaderLine(data []byte) ([]byte, bool) {
	p.frameKind = framingNone
	p.setState(StateHeaderName)

	return data, false
}

func (p *Parser) afterHeadersDone(data []byte) ([]byte, bool) {
	p.headersEnding = false
	p.headersDone = true
	p.resolveConnectionDefault()

	switch r := p.callbacks.OnHeaders(p, nil); {
	case r < 0:
		p.failCallback()
		return data, true
	case r > 0:
		p.skipBody = true
	}

	return p.enterBodyPhase(data)
}

// resolveConnectionDefault applies the HTTP/1.0 keep-alive default: absent
// an explicit Connection header, 1.0 messages close after completion while
// 1.1+ ones don't. reset() leaves connectionTok at its 1.1+ default
// (KeepAlive), so only the no-header, 1.0 case needs correcting here.
func (p *Parser) resolveConnectionDefault() {
	if !p.connectionSeen && p.versionMajor == 1 && p.versionMinor == 0 {
		p.connectionTok = Close
	}
}

func (p *Parser) enterBodyPhase(data []byte) ([]byte, bool) {
	if p.hasTrailer && !p.chunked {
		p.fail(ErrUntrailers, "Trailer header without chunked Transfer-Encoding")
		return data, true
	}

	connectOK := p.messageType == MessageResponse &&
		p.respondingToConnect == method.CONNECT &&
		p.status >= 200 && p.status < 300

	upgrade101 := p.messageType == MessageResponse &&
		p.hasUpgrade && p.connectionTok == Upgrade && p.status == 101

	switch {
	case p.skipBody:
		return p.finishBody(data)
	case p.messageType == MessageRequest && p.isConnect:
		p.callbacks.OnConnect(p, nil)
		p.setState(StateTunnel)

		return data, true
	case connectOK:
		p.callbacks.OnConnect(p, nil)
		p.setState(StateTunnel)

		return data, true
	case upgrade101:
		p.callbacks.OnUpgrade(p, nil)
		p.setState(StateTunnel)

		return data, true
	case p.chunked:
		p.callbacks.OnBody(p, nil)
		p.setState(StateChunkSize)

		return p.stepChunkSize(data)
	case p.hasContentLength:
		if p.contentLength == 0 {
			return p.finishBody(data)
		}

		p.remainingLength = p.contentLength
		p.callbacks.OnBody(p, nil)
		p.setState(StateBodyContentLength)

		return p.stepBodyContentLength(data)
	case p.messageType == MessageResponse:
		p.callbacks.OnBody(p, nil)
		p.setState(StateBodyNoLength)

		return p.stepBodyNoLength(data)
	default:
		return p.finishBody(data)
	}
}

func (p *Parser) finishBody(data []byte) ([]byte, bool) {
	p.completeMessage()

	return data, true
}
