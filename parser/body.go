package parser

func (p *Parser) stepBodyContentLength(data []byte) ([]byte, bool) {
	n := uint64(len(data))
	if n > p.remainingLength {
		n = p.remainingLength
	}

	chunk := data[:n]
	if len(chunk) > 0 {
		if p.callbacks.OnData(p, chunk) < 0 {
			p.failCallback()
			return data, true
		}
	}

	p.remainingLength -= n
	rest := data[n:]

	if p.remainingLength > 0 {
		return rest, false
	}

	return p.finishBody(rest)
}

// stepBodyNoLength streams every byte it's given as body data: this
// framing (a response with neither Content-Length nor a chunked
// Transfer-Encoding) is delimited by connection close, signalled to the
// Parser via Finish, not by anything in the stream itself.
func (p *Parser) stepBodyNoLength(data []byte) ([]byte, bool) {
	if len(data) > 0 {
		if p.callbacks.OnData(p, data) < 0 {
			p.failCallback()
			return data, true
		}
	}

	return nil, false
}
