package parser

import (
	"bytes"

	"github.com/indigo-web/httpcore/internal"
)

func (p *Parser) stepTrailer(data []byte) ([]byte, bool) {
	switch p.state {
	case StateTrailerName:
		return p.stepTrailerName(data)
	case StateTrailerColon:
		return p.stepTrailerColon(data)
	case StateTrailerValue:
		return p.stepTrailerValue(data)
	default:
		return data, true
	}
}

func (p *Parser) stepTrailerName(data []byte) ([]byte, bool) {
	if p.headersEnding {
		return p.stepCRLF(data, p.afterTrailersDone)
	}

	if p.nameBuf.SegmentLength() == 0 && len(data) > 0 && data[0] == '\r' {
		p.headersEnding = true

		return p.stepCRLF(data, p.afterTrailersDone)
	}

	token, rest, result := accumulate(data, p.nameBuf, ':')

	switch result {
	case tokenPending:
		return nil, false
	case tokenOverflow:
		p.fail(ErrUnexpectedCharacter, "trailer name too long")
		return data, true
	}

	p.nameBuf.Clear()

	for _, c := range token {
		if !internal.IsTokenChar(c) {
			p.fail(ErrUnexpectedCharacter, "invalid trailer name character")
			return data, true
		}
	}

	if p.callbacks.OnTrailerName(p, token) < 0 {
		p.failCallback()
		return data, true
	}

	p.setState(StateTrailerColon)

	return p.stepTrailerColon(rest)
}

func (p *Parser) stepTrailerColon(data []byte) ([]byte, bool) {
	i := 0
	for i < len(data) && (data[i] == ' ' || data[i] == '\t') {
		i++
	}

	if i == len(data) {
		return nil, false
	}

	p.setState(StateTrailerValue)

	return p.stepTrailerValue(data[i:])
}

func (p *Parser) stepTrailerValue(data []byte) ([]byte, bool) {
	if p.crSeen {
		return p.stepCRLF(data, p.afterTrailerLine)
	}

	idx := bytes.IndexByte(data, '\r')
	chunk := data
	final := idx != -1
	if final {
		chunk = data[:idx]
	}

	if p.callbacks.OnTrailerValue(p, chunk) < 0 {
		p.failCallback()
		return data, true
	}

	if !final {
		return nil, false
	}

	return p.stepCRLF(data[idx:], p.afterTrailerLine)
}

func (p *Parser) afterTrailerLine(data []byte) ([]byte, bool) {
	p.setState(StateTrailerName)

	return data, false
}

func (p *Parser) afterTrailersDone(data []byte) ([]byte, bool) {
	p.headersEnding = false

	if p.callbacks.OnTrailers(p, nil) < 0 {
		p.failCallback()
		return data, true
	}

	return p.finishBody(data)
}
