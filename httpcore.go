// Package httpcore is the root of a small, host-agnostic HTTP/1.x message
// parser and connection-tracking library. It performs no I/O and owns no
// socket; a host reads bytes from wherever they come from and feeds them
// to a *parser.Parser, reacting to the callbacks it fires.
//
//   - parser — the incremental, resumable HTTP/1.x FSM (requests,
//     responses, chunked transfer-encoding, trailers, CONNECT/Upgrade
//     tunnels).
//   - connections — List, tracking last-activity time across a
//     listener's in-flight parsers so a host can sweep idle or overdue
//     ones.
//   - config — the tunables a host plugs into both of the above.
//   - method — the fixed HTTP method table the parser resolves against.
//
// cmd/httpcoredemo wires all four into a minimal TCP host, exercising the
// public API end to end.
package httpcore
