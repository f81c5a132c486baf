// Package internal holds helpers shared across the parser and connections
// packages that are not part of the public contract.
package internal

import "unsafe"

// B2S reinterprets b as a string without copying. The returned string is
// valid only as long as the caller guarantees b is not mutated, exactly the
// contract the parser's borrowed callback spans already carry.
//
// https://github.com/valyala/fasthttp#tricks-with-byte-buffers
func B2S(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	return unsafe.String(&b[0], len(b))
}

// S2B reinterprets s as a []byte without copying. The returned slice must
// never be mutated; doing so is undefined behavior for any other string
// sharing the same backing array.
func S2B(s string) []byte {
	if len(s) == 0 {
		return nil
	}

	return unsafe.Slice(unsafe.StringData(s), len(s))
}
