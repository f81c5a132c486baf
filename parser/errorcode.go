package parser

import "fmt"

// ErrorCode is the sticky error taxonomy from the wire-parsing contract.
// Once a Parser's code is non-NONE it never changes for the lifetime of
// the message; the only way out is Reset.
type ErrorCode uint8

const (
	ErrNone ErrorCode = iota
	ErrUnexpectedData
	ErrUnexpectedEOF
	ErrCallbackError
	ErrUnexpectedCharacter
	ErrUnexpectedContentLength
	ErrUnexpectedTransferEncoding
	ErrUnexpectedContent
	ErrUntrailers
	ErrInvalidVersion
	ErrInvalidStatus
	ErrInvalidContentLength
	ErrInvalidTransferEncoding
	ErrInvalidChunkSize
	ErrMissingConnectionUpgrade
	ErrUnsupportedHTTPVersion
)

var errorCodeNames = [...]string{
	ErrNone:                       "NONE",
	ErrUnexpectedData:             "UNEXPECTED_DATA",
	ErrUnexpectedEOF:              "UNEXPECTED_EOF",
	ErrCallbackError:              "CALLBACK_ERROR",
	ErrUnexpectedCharacter:        "UNEXPECTED_CHARACTER",
	ErrUnexpectedContentLength:    "UNEXPECTED_CONTENT_LENGTH",
	ErrUnexpectedTransferEncoding: "UNEXPECTED_TRANSFER_ENCODING",
	ErrUnexpectedContent:          "UNEXPECTED_CONTENT",
	ErrUntrailers:                 "UNTRAILERS",
	ErrInvalidVersion:             "INVALID_VERSION",
	ErrInvalidStatus:              "INVALID_STATUS",
	ErrInvalidContentLength:       "INVALID_CONTENT_LENGTH",
	ErrInvalidTransferEncoding:    "INVALID_TRANSFER_ENCODING",
	ErrInvalidChunkSize:           "INVALID_CHUNK_SIZE",
	ErrMissingConnectionUpgrade:   "MISSING_CONNECTION_UPGRADE",
	ErrUnsupportedHTTPVersion:     "UNSUPPORTED_HTTP_VERSION",
}

// String returns the bare taxonomy name, e.g. "UNEXPECTED_CHARACTER".
func (e ErrorCode) String() string {
	if int(e) >= len(errorCodeNames) {
		return "UNKNOWN"
	}

	return errorCodeNames[e]
}

// diagnosticPrefix namespaces an ErrorCode for host-facing presentation.
// Every code gets the stable "MILO_" namespace except the pair named in
// the spec's error-handling design, which is surfaced under the
// compatibility code HPE_UNEXPECTED_CONTENT_LENGTH instead.
func (e ErrorCode) diagnosticPrefix() string {
	switch e {
	case ErrUnexpectedTransferEncoding, ErrInvalidContentLength:
		return "HPE_UNEXPECTED_CONTENT_LENGTH"
	default:
		return "MILO_" + e.String()
	}
}

// ParseError is the concrete error value a Parser surfaces through Err()
// (OnError receives its Description). It pairs the sticky ErrorCode with a
// human description and the byte offset (Position) at which parsing
// stopped.
type ParseError struct {
	Code        ErrorCode
	Description string
	Position    uint64
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s (at byte %d)", e.Code, e.Description, e.Position)
}

// Diagnostic returns the namespaced, host-facing code for this error, e.g.
// "MILO_INVALID_CHUNK_SIZE" or the "HPE_UNEXPECTED_CONTENT_LENGTH"
// compatibility exception.
func (e *ParseError) Diagnostic() string {
	return diagnosticFor(e.Code, e.Description)
}

// headerOverflowDescription marks the header-overflow error a host
// synthesizes when its own cumulative header/trailer byte count passes its
// configured limit. The core parser does not construct this value itself —
// it has no notion of a header-size cap.
const headerOverflowDescription = "Header overflow"

// NewHeaderOverflowError builds a CALLBACK_ERROR ParseError carrying the
// header-overflow description at position, for a host that enforces its own
// cumulative header-byte budget; its Diagnostic() reports
// HPE_HEADER_OVERFLOW. The Parser never receives or records this value.
func NewHeaderOverflowError(position uint64) *ParseError {
	return &ParseError{Code: ErrCallbackError, Description: headerOverflowDescription, Position: position}
}

func (e ErrorCode) isHeaderOverflow(desc string) bool {
	return e == ErrCallbackError && desc == headerOverflowDescription
}

// diagnosticFor special-cases the header-overflow callback error, which is
// surfaced under its own namespace rather than the generic CALLBACK_ERROR
// one, per the spec's header-size-overflow design.
func diagnosticFor(code ErrorCode, desc string) string {
	if code.isHeaderOverflow(desc) {
		return "HPE_HEADER_OVERFLOW"
	}

	return code.diagnosticPrefix()
}
