package specx

import "fmt"

// ZeroTimestamp is the reserved timestamp meaning "before any real write",
// used by the wire-level "!0" default-state base value.
const ZeroTimestamp = "0"

// Version identifies one accepted op: a wall-clock-plus-counter timestamp
// and the replica that wrote it. "Arrival order" of an engine is the order
// in which it accepts ops, which equals lexicographic timestamp order most
// of the time but not always.
type Version struct {
	Timestamp string
	Source    string
}

func (v Version) String() string {
	return "!" + v.Timestamp + "+" + v.Source
}

// IsZero reports whether v is the unset Version{}.
func (v Version) IsZero() bool {
	return v.Timestamp == "" && v.Source == ""
}

// Less reports whether v sorts strictly before other under the version
// ordering: lexicographic on timestamp, ties broken by source.
func (v Version) Less(other Version) bool {
	if v.Timestamp != other.Timestamp {
		return v.Timestamp < other.Timestamp
	}
	return v.Source < other.Source
}

// Equal reports whether v and other name the same version.
func (v Version) Equal(other Version) bool {
	return v.Timestamp == other.Timestamp && v.Source == other.Source
}

// ParseVersion converts a "!timestamp+source" token into a Version. The
// source part is mandatory; a bare "!timestamp" token is not a version
// (it is either malformed or the reserved "!0" default-state marker,
// which callers handle before reaching here).
func ParseVersion(tok Token) (Version, error) {
	if tok.Sigil != SigilVersion {
		return Version{}, &ParseError{Raw: tok.String(), Reason: "not a version token"}
	}
	if tok.Ext == "" {
		return Version{}, &ParseError{Raw: tok.String(), Reason: "version token missing +source"}
	}
	return Version{Timestamp: tok.Bare, Source: tok.Ext}, nil
}

// ParseSingleVersion parses a raw "!timestamp+source" string as exactly
// one version token.
func ParseSingleVersion(raw string) (Version, error) {
	toks, err := Parse(raw)
	if err != nil {
		return Version{}, err
	}
	if len(toks) != 1 {
		return Version{}, &ParseError{Raw: raw, Reason: fmt.Sprintf("expected exactly one token, got %d", len(toks))}
	}
	return ParseVersion(toks[0])
}

// ParseVersionChain parses a concatenation of one or more "!ts+src" tokens,
// as used for a state snapshot's key suffix: the first token is the
// snapshot's authoring version, the rest are the version vector of the
// causal cut it captures.
func ParseVersionChain(raw string) ([]Version, error) {
	toks, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, &ParseError{Raw: raw, Reason: "empty version chain"}
	}
	out := make([]Version, 0, len(toks))
	for _, t := range toks {
		v, err := ParseVersion(t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
