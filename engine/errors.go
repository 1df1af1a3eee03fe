package engine

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrorKind is the closed set of engine-local error kinds surfaced to
// the Host as ".error" ops.
type ErrorKind int

const (
	KindParse ErrorKind = iota
	KindNoSuchObject
	KindHaveState
	KindOutOfOrder
	KindBaseUnparseable
	KindBackend
	KindNotImplemented
)

// wireText is the exact string sent on the wire for each kind. Peers
// interoperate by these strings, so they must stay bit-exact.
var wireText = map[ErrorKind]string{
	KindParse:           "parse error",
	KindNoSuchObject:    "no such object",
	KindHaveState:       "have state already",
	KindOutOfOrder:      "op is out of order",
	KindBaseUnparseable: "base unparseable",
	KindBackend:         "backend error",
	KindNotImplemented:  "not implemented",
}

// EngineError is the typed error every handler returns; it always
// carries the ErrorKind used to pick the wire message, and can wrap an
// underlying cause for local logging without leaking it to peers.
type EngineError struct {
	Kind ErrorKind
	msg  string
	err  error
}

func newError(kind ErrorKind) *EngineError {
	return &EngineError{Kind: kind, msg: wireText[kind]}
}

func newErrorf(kind ErrorKind, msg string) *EngineError {
	return &EngineError{Kind: kind, msg: msg}
}

// wrapBackend wraps a KV adapter failure as a backend EngineError,
// keeping the underlying cause available to Unwrap for local logs while
// the wire message stays generic.
func wrapBackend(err error) *EngineError {
	return &EngineError{Kind: KindBackend, msg: wireText[KindBackend], err: errors.Wrap(err, "kv backend")}
}

func (e *EngineError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *EngineError) Unwrap() error { return e.err }

// WireMessage is the string placed in the value of the synthesized
// ".error" op: newline-stripped and truncated to 50 bytes.
func (e *EngineError) WireMessage() string {
	s := strings.ReplaceAll(e.msg, "\n", " ")
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}
