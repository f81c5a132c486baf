package parser

import (
	"bytes"
	"strconv"

	"github.com/indigo-web/httpcore/internal"
	"github.com/indigo-web/httpcore/method"
)

var httpLiteral = [5]byte{'H', 'T', 'T', 'P', '/'}

func (p *Parser) stepMethod(data []byte) ([]byte, bool) {
	token, rest, result := accumulate(data, p.lineBuf, ' ')

	switch result {
	case tokenPending:
		return nil, false
	case tokenOverflow:
		p.fail(ErrUnexpectedCharacter, "method token too long")
		return data, true
	}

	p.lineBuf.Clear()

	if p.callbacks.OnMethod(p, token) < 0 {
		p.failCallback()
		return data, true
	}

	p.method = method.Parse(internal.B2S(token))
	if p.method == method.Unknown {
		p.fail(ErrUnexpectedCharacter, "unknown method")
		return data, true
	}

	p.isConnect = p.method == method.CONNECT
	p.setState(StateURL)

	return p.stepURL(rest)
}

func (p *Parser) stepURL(data []byte) ([]byte, bool) {
	for i := 0; i < len(data); i++ {
		c := data[i]

		if c == ' ' {
			if p.callbacks.OnURL(p, data[:i]) < 0 {
				p.failCallback()
				return data, true
			}

			p.setState(StateRequestVersion)

			return p.stepVersionToken(data[i+1:], p.afterRequestVersion)
		}

		if !internal.IsPrint(c) {
			p.fail(ErrUnexpectedCharacter, "non-printable byte in request target")
			return data, true
		}
	}

	if p.callbacks.OnURL(p, data) < 0 {
		p.failCallback()
		return data, true
	}

	return nil, false
}

// stepVersionToken accumulates the fixed 8-byte "HTTP/D.D" token, which may
// itself arrive split across Execute calls, and hands control to after
// once it's complete. Used for both the request-line trailer and the
// status-line header, since the token's shape is identical in both.
func (p *Parser) stepVersionToken(data []byte, after func([]byte) ([]byte, bool)) ([]byte, bool) {
	for len(data) > 0 && p.verLen < maxVersionTokenLen {
		c := data[0]

		switch {
		case p.verLen < 5:
			if c != httpLiteral[p.verLen] {
				p.fail(ErrInvalidVersion, "malformed HTTP version literal")
				return data, true
			}
		case p.verLen == 6:
			if c != '.' {
				p.fail(ErrInvalidVersion, "malformed HTTP version literal")
				return data, true
			}
		default: // 5, 7: the major/minor digit positions
			if c < '0' || c > '9' {
				p.fail(ErrInvalidVersion, "malformed HTTP version digit")
				return data, true
			}
		}

		p.verBuf[p.verLen] = c
		p.verLen++
		data = data[1:]
	}

	if p.verLen < maxVersionTokenLen {
		return data, false
	}

	if p.callbacks.OnProtocol(p, p.verBuf[:4]) < 0 {
		p.failCallback()
		return data, true
	}

	if p.callbacks.OnVersion(p, p.verBuf[5:8]) < 0 {
		p.failCallback()
		return data, true
	}

	p.versionMajor = p.verBuf[5] - '0'
	p.versionMinor = p.verBuf[7] - '0'
	p.verLen = 0

	if p.versionMajor != 1 {
		p.fail(ErrUnsupportedHTTPVersion, "only HTTP/1.x is supported")
		return data, true
	}

	return after(data)
}

func (p *Parser) afterRequestVersion(data []byte) ([]byte, bool) {
	p.setState(StateRequestLineCR)

	return p.stepCRLF(data, p.afterRequestLine)
}

func (p *Parser) afterRequestLine(data []byte) ([]byte, bool) {
	if p.callbacks.OnRequest(p, nil) < 0 {
		p.failCallback()
		return data, true
	}

	p.setState(StateHeaderName)

	return data, false
}

func (p *Parser) afterResponseVersion(data []byte) ([]byte, bool) {
	p.statusDigits = -1
	p.setState(StateStatus)

	return p.stepStatus(data)
}

func formatStatusDigits(status uint16) [3]byte {
	var out [3]byte
	s := strconv.AppendUint(out[:0], uint64(status), 10)

	for len(s) < 3 {
		s = append([]byte{'0'}, s...)
	}

	copy(out[:], s)

	return out
}

func (p *Parser) stepStatus(data []byte) ([]byte, bool) {
	if p.statusDigits == -1 {
		if len(data) == 0 {
			return data, false
		}

		if data[0] != ' ' {
			p.fail(ErrUnexpectedCharacter, "expected space before status code")
			return data, true
		}

		data = data[1:]
		p.statusDigits = 0
	}

	for len(data) > 0 && p.statusDigits < 3 {
		c := data[0]

		if c < '0' || c > '9' {
			p.fail(ErrInvalidStatus, "non-digit in status code")
			return data, true
		}

		p.status = p.status*10 + uint16(c-'0')
		p.statusDigits++
		data = data[1:]
	}

	if p.statusDigits < 3 {
		return data, false
	}

	if len(data) == 0 {
		return data, false
	}

	if data[0] != ' ' {
		p.fail(ErrInvalidStatus, "status code must be exactly three digits")
		return data, true
	}

	digits := formatStatusDigits(p.status)
	if p.callbacks.OnStatus(p, digits[:]) < 0 {
		p.failCallback()
		return data, true
	}

	p.setState(StateReason)

	return p.stepReason(data[1:])
}

func (p *Parser) stepReason(data []byte) ([]byte, bool) {
	idx := bytes.IndexByte(data, '\r')
	if idx == -1 {
		if p.callbacks.OnReason(p, data) < 0 {
			p.failCallback()
			return data, true
		}

		return nil, false
	}

	if p.callbacks.OnReason(p, data[:idx]) < 0 {
		p.failCallback()
		return data, true
	}

	p.setState(StateStatusLineCR)

	return p.stepCRLF(data[idx:], p.afterStatusLine)
}

func (p *Parser) afterStatusLine(data []byte) ([]byte, bool) {
	if p.callbacks.OnResponse(p, nil) < 0 {
		p.failCallback()
		return data, true
	}

	p.setState(StateHeaderName)

	return data, false
}
