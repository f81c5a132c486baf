package parser

import (
	"bytes"

	"github.com/indigo-web/utils/buffer"
)

// tokenResult is the outcome of trying to accumulate a delimiter-terminated
// token, possibly across however many Execute calls it takes to arrive.
type tokenResult uint8

const (
	tokenPending tokenResult = iota
	tokenFound
	tokenOverflow
)

// accumulate scans data for delim. If buf is empty and delim appears in
// data, it returns the token directly sliced out of data (zero-copy). If
// delim hasn't appeared yet, the available bytes are appended to buf and
// tokenPending is returned. Once delim is found after a partial token was
// already buffered, the final piece is appended and the complete token is
// returned via buf.Finish().
func accumulate(data []byte, buf *buffer.Buffer, delim byte) (token, rest []byte, result tokenResult) {
	idx := bytes.IndexByte(data, delim)

	if buf.SegmentLength() == 0 && idx != -1 {
		return data[:idx], data[idx+1:], tokenFound
	}

	if idx == -1 {
		if !buf.Append(data) {
			return nil, nil, tokenOverflow
		}

		return nil, nil, tokenPending
	}

	if !buf.Append(data[:idx]) {
		return nil, nil, tokenOverflow
	}

	return buf.Finish(), data[idx+1:], tokenFound
}
