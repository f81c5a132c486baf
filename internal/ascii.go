package internal

import "github.com/scott-ainsworth/go-ascii"

// IsPrint reports whether c is a printable, non-control ASCII character.
// Used to validate request-target bytes the way
// indigo/httpparser.httpRequestParser validates them with the same library;
// reason-phrase bytes are not checked with it.
func IsPrint(c byte) bool {
	return ascii.IsPrint(c)
}

// IsHex reports whether c is a valid hexadecimal digit.
func IsHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// UnHex converts a hexadecimal digit byte into its numeric value. The
// caller must have already verified IsHex(c).
func UnHex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// IsTokenChar reports whether c is a valid RFC 7230 "tchar" — the character
// class header field names are made of.
func IsTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}

	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	default:
		return false
	}
}
