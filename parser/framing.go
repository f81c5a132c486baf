package parser

import "github.com/indigo-web/utils/strcomp"

// framingHeader identifies one of the few header names the core parser
// must itself understand in order to resolve message framing (spec §4.1's
// "Framing resolution"). Every other header name is opaque to the core and
// only ever surfaced through OnHeaderName/OnHeaderValue.
type framingHeader uint8

const (
	framingNone framingHeader = iota
	framingContentLength
	framingTransferEncoding
	framingConnection
	framingUpgrade
	framingTrailer
)

// classifyHeaderName reports which framing header, if any, name
// (case-insensitively) equals. name must be the complete header name.
func classifyHeaderName(name string) framingHeader {
	switch len(name) {
	case len("upgrade"): // same length as "trailer"
		if strcomp.EqualFold(name, "upgrade") {
			return framingUpgrade
		}

		if strcomp.EqualFold(name, "trailer") {
			return framingTrailer
		}
	case len("connection"):
		if strcomp.EqualFold(name, "connection") {
			return framingConnection
		}
	case len("content-length"):
		if strcomp.EqualFold(name, "content-length") {
			return framingContentLength
		}
	case len("transfer-encoding"):
		if strcomp.EqualFold(name, "transfer-encoding") {
			return framingTransferEncoding
		}
	}

	return framingNone
}

// tokenEqualFold reports whether value, trimmed of OWS, case-insensitively
// equals token. Used to match Connection/Transfer-Encoding/Upgrade values
// against the handful of tokens framing resolution cares about.
func tokenEqualFold(value, token string) bool {
	value = trimOWS(value)

	return strcomp.EqualFold(value, token)
}

func trimOWS(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}

	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t') {
		s = s[:len(s)-1]
	}

	return s
}

// containsTokenFold reports whether the comma-separated list value
// contains token, case-insensitively, ignoring surrounding OWS around each
// item — the shape of both Connection and Transfer-Encoding header values.
func containsTokenFold(value, token string) bool {
	for len(value) > 0 {
		item := value
		if comma := indexByte(value, ','); comma != -1 {
			item, value = value[:comma], value[comma+1:]
		} else {
			value = ""
		}

		if tokenEqualFold(item, token) {
			return true
		}
	}

	return false
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}

	return -1
}
