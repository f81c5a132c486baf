package parser

import (
	"math"
	"strconv"

	"github.com/indigo-web/httpcore/internal"
)

// The chunked transfer-coding sub-machine, scanned byte by byte rather
// than via IndexByte: extensions and quoted values branch on more than
// one delimiter at a time, which the line/header scanners above never
// need to.
func (p *Parser) stepChunk(data []byte) ([]byte, bool) {
	switch p.state {
	case StateChunkSize:
		return p.stepChunkSize(data)
	case StateChunkExtensionName:
		return p.stepChunkExtName(data)
	case StateChunkExtensionValue:
		return p.stepChunkExtValue(data)
	case StateChunkExtensionQuotedValue:
		return p.stepChunkExtQuotedValue(data)
	case StateChunkSizeCR:
		return p.stepCRLF(data, p.afterChunkSizeLine)
	case StateChunkData:
		return p.stepChunkData(data)
	case StateChunkDataCR, StateChunkDataCRLF:
		return p.stepCRLF(data, p.afterChunkData)
	default:
		return data, true
	}
}

func chunkSizeDigits(n uint64) []byte {
	var buf [16]byte
	return strconv.AppendUint(buf[:0], n, 16)
}

func (p *Parser) stepChunkSize(data []byte) ([]byte, bool) {
	for len(data) > 0 {
		c := data[0]

		switch {
		case internal.IsHex(c):
			if p.chunkSize > math.MaxUint64/16 {
				p.fail(ErrInvalidChunkSize, "chunk size overflows 64 bits")
				return data, true
			}

			p.chunkSize = p.chunkSize*16 + uint64(internal.UnHex(c))
			data = data[1:]
		case c == ';':
			if p.callbacks.OnChunkLength(p, chunkSizeDigits(p.chunkSize)) < 0 {
				p.failCallback()
				return data, true
			}

			p.setState(StateChunkExtensionName)

			return data[1:], false
		case c == '\r':
			if p.callbacks.OnChunkLength(p, chunkSizeDigits(p.chunkSize)) < 0 {
				p.failCallback()
				return data, true
			}

			p.setState(StateChunkSizeCR)

			return p.stepCRLF(data, p.afterChunkSizeLine)
		default:
			p.fail(ErrInvalidChunkSize, "invalid character in chunk size")
			return data, true
		}
	}

	return nil, false
}

func (p *Parser) stepChunkExtName(data []byte) ([]byte, bool) {
	for i, c := range data {
		switch c {
		case '=':
			if p.callbacks.OnChunkExtensionName(p, data[:i]) < 0 {
				p.failCallback()
				return data, true
			}

			p.setState(StateChunkExtensionValue)

			return data[i+1:], false
		case ';':
			if p.callbacks.OnChunkExtensionName(p, data[:i]) < 0 {
				p.failCallback()
				return data, true
			}

			return data[i+1:], false
		case '\r':
			if p.callbacks.OnChunkExtensionName(p, data[:i]) < 0 {
				p.failCallback()
				return data, true
			}

			p.setState(StateChunkSizeCR)

			return p.stepCRLF(data[i:], p.afterChunkSizeLine)
		}
	}

	if p.callbacks.OnChunkExtensionName(p, data) < 0 {
		p.failCallback()
		return data, true
	}

	return nil, false
}

func (p *Parser) stepChunkExtValue(data []byte) ([]byte, bool) {
	if len(data) > 0 && data[0] == '"' {
		p.setState(StateChunkExtensionQuotedValue)

		return p.stepChunkExtQuotedValue(data[1:])
	}

	for i, c := range data {
		switch c {
		case ';':
			if p.callbacks.OnChunkExtensionValue(p, data[:i]) < 0 {
				p.failCallback()
				return data, true
			}

			p.setState(StateChunkExtensionName)

			return data[i+1:], false
		case '\r':
			if p.callbacks.OnChunkExtensionValue(p, data[:i]) < 0 {
				p.failCallback()
				return data, true
			}

			p.setState(StateChunkSizeCR)

			return p.stepCRLF(data[i:], p.afterChunkSizeLine)
		}
	}

	if p.callbacks.OnChunkExtensionValue(p, data) < 0 {
		p.failCallback()
		return data, true
	}

	return nil, false
}

// stepChunkExtQuotedValue scans a quoted extension value, treating \X as an
// escape of the following byte; the value is reported raw, escapes
// included. A backslash that ends the buffer is reported with the rest of
// that call's span, and p.extEscape latches across calls so the next call
// takes its first byte as the escaped one rather than as a delimiter.
func (p *Parser) stepChunkExtQuotedValue(data []byte) ([]byte, bool) {
	i := 0

	if p.extEscape {
		p.extEscape = false
		i = 1
	}

	for i < len(data) {
		switch data[i] {
		case '\\':
			if i+1 >= len(data) {
				if p.callbacks.OnChunkExtensionValue(p, data) < 0 {
					p.failCallback()
					return data, true
				}

				p.extEscape = true

				return nil, false
			}

			i += 2
		case '"':
			if p.callbacks.OnChunkExtensionValue(p, data[:i]) < 0 {
				p.failCallback()
				return data, true
			}

			p.setState(StateChunkExtensionName)

			return data[i+1:], false
		default:
			i++
		}
	}

	if i > 0 {
		if p.callbacks.OnChunkExtensionValue(p, data[:i]) < 0 {
			p.failCallback()
			return data, true
		}
	}

	return nil, false
}

func (p *Parser) afterChunkSizeLine(data []byte) ([]byte, bool) {
	if p.chunkSize == 0 {
		p.setState(StateTrailerName)

		return p.stepTrailerName(data)
	}

	p.remainingChunk = p.chunkSize
	p.chunkSize = 0
	p.setState(StateChunkData)

	return p.stepChunkData(data)
}

func (p *Parser) stepChunkData(data []byte) ([]byte, bool) {
	n := uint64(len(data))
	if n > p.remainingChunk {
		n = p.remainingChunk
	}

	chunk := data[:n]
	if len(chunk) > 0 {
		if p.callbacks.OnData(p, chunk) < 0 {
			p.failCallback()
			return data, true
		}
	}

	p.remainingChunk -= n
	rest := data[n:]

	if p.remainingChunk > 0 {
		return rest, false
	}

	p.setState(StateChunkDataCR)

	return p.stepCRLF(rest, p.afterChunkData)
}

func (p *Parser) afterChunkData(data []byte) ([]byte, bool) {
	p.setState(StateChunkSize)

	return p.stepChunkSize(data)
}
