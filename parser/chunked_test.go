package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParser_ChunkedBody(t *testing.T) {
	var rec recorder
	p := New(Request, nil, rec.callbacks())

	raw := []byte("POST /upload HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n")

	feedPartially(p, raw, len(raw))

	require.Nil(t, p.Err())
	require.Equal(t, "hello world", rec.joined("data"))
	require.Equal(t, StateStart, p.State())

	var sawTrailers bool
	for _, e := range rec.events {
		if e.name == "trailers" {
			sawTrailers = true
		}
	}
	require.True(t, sawTrailers)
}

func TestParser_ChunkedSplitInvariance(t *testing.T) {
	raw := []byte("POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"4\r\nWiki\r\n5\r\npedia\r\nE\r\n in\r\n\r\nchunks.\r\n0\r\n\r\n")

	var whole recorder
	wp := New(Request, nil, whole.callbacks())
	feedPartially(wp, raw, len(raw))
	require.Nil(t, wp.Err())

	for n := 1; n <= len(raw); n++ {
		var rec recorder
		p := New(Request, nil, rec.callbacks())
		feedPartially(p, raw, n)

		require.Nil(t, p.Err(), "split size %d", n)
		require.Equal(t, whole.joined("data"), rec.joined("data"), "split size %d", n)
	}
}

func TestParser_ChunkExtensions(t *testing.T) {
	var rec recorder
	p := New(Request, nil, rec.callbacks())

	raw := []byte("POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"5;ext1=val1;ext2=\"quoted value\"\r\nhello\r\n0\r\n\r\n")

	feedPartially(p, raw, 7)

	require.Nil(t, p.Err())
	require.Equal(t, "hello", rec.joined("data"))
	require.Equal(t, "ext1ext2", rec.joined("chunk_ext_name"))
	require.Equal(t, "val1quoted value", rec.joined("chunk_ext_value"))
}

func TestParser_ChunkExtensionQuotedValueWithEscape(t *testing.T) {
	raw := []byte("POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n" +
		`3;note="a\"b"` + "\r\nabc\r\n0\r\n\r\n")

	for n := 1; n <= len(raw); n++ {
		var rec recorder
		p := New(Request, nil, rec.callbacks())
		feedPartially(p, raw, n)

		require.Nil(t, p.Err(), "split size %d", n)
		require.Equal(t, "abc", rec.joined("data"), "split size %d", n)
		require.Equal(t, `a\"b`, rec.joined("chunk_ext_value"), "split size %d", n)
	}
}

func TestParser_InvalidChunkSize(t *testing.T) {
	p := New(Request, nil, Callbacks{})

	raw := []byte("POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\nZZZ\r\n")
	p.Execute(raw)

	require.NotNil(t, p.Err())
	require.Equal(t, ErrInvalidChunkSize, p.Err().Code)
}

func TestParser_ChunkSizeOverflow(t *testing.T) {
	p := New(Request, nil, Callbacks{})

	raw := []byte("POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n10000000000000000\r\n")
	p.Execute(raw)

	require.NotNil(t, p.Err())
	require.Equal(t, ErrInvalidChunkSize, p.Err().Code)
}

func TestParser_ChunkedWithTrailers(t *testing.T) {
	var rec recorder
	p := New(Request, nil, rec.callbacks())

	raw := []byte("POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"4\r\ntest\r\n0\r\nX-Checksum: abc123\r\nX-Extra: val\r\n\r\n")

	feedPartially(p, raw, 2)

	require.Nil(t, p.Err())
	require.Equal(t, "test", rec.joined("data"))
	require.Equal(t, "X-ChecksumX-Extra", rec.joined("trailer_name"))
	require.Equal(t, "abc123val", rec.joined("trailer_value"))
}
