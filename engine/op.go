package engine

import "github.com/dcnet/causalstore/specx"

// Op is one message crossing the engine/Host boundary in either
// direction: a spec string, an opaque value, and the replica id of the
// immediate sender (not necessarily the original author).
type Op struct {
	Spec   string
	Value  string
	Source string
}

// OpKind is the closed set of op shapes the dispatcher recognizes: a
// tagged variant dispatched by a match, not virtual calls.
type OpKind int

const (
	KindOn OpKind = iota
	KindOff
	KindState
	KindDiff
	KindError
	KindRegular
)

func (k OpKind) String() string {
	switch k {
	case KindOn:
		return "on"
	case KindOff:
		return "off"
	case KindState:
		return "state"
	case KindDiff:
		return "diff"
	case KindError:
		return "error"
	default:
		return "regular"
	}
}

// classifyOp maps an op name (the bare part of a Spec's last "." token)
// to its OpKind.
func classifyOp(opName string) OpKind {
	switch opName {
	case "on":
		return KindOn
	case "off":
		return KindOff
	case "state":
		return KindState
	case "diff":
		return KindDiff
	case "error":
		return KindError
	default:
		return KindRegular
	}
}

// parsedOp is an Op with its spec pre-parsed once at Request
// construction, so accessors like prefix/op/version don't repeat
// substring work.
type parsedOp struct {
	Op
	spec   specx.Spec
	prefix string
	opName string
	kind   OpKind
}

func parseOp(op Op) (parsedOp, error) {
	s, err := specx.Parse(op.Spec)
	if err != nil {
		return parsedOp{}, err
	}
	opName, ok := s.Op()
	if !ok {
		return parsedOp{}, &specx.ParseError{Raw: op.Spec, Reason: "missing op token"}
	}
	return parsedOp{
		Op:     op,
		spec:   s,
		prefix: s.Prefix().String(),
		opName: opName,
		kind:   classifyOp(opName),
	}, nil
}
