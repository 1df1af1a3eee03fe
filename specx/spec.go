// Package specx parses and renders the dotted, sigil-prefixed specifier
// strings ("Specs") that identify objects, versions, and operations on the
// wire, and the version vectors built from them.
package specx

import (
	"fmt"
	"strings"
)

// Sigil introduces one token of a Spec.
type Sigil byte

const (
	SigilType    Sigil = '/'
	SigilId      Sigil = '#'
	SigilVersion Sigil = '!'
	SigilOp      Sigil = '.'
)

func isSigil(b byte) bool {
	switch Sigil(b) {
	case SigilType, SigilId, SigilVersion, SigilOp:
		return true
	default:
		return false
	}
}

// isBodyByte reports whether b may appear in a token's bare or ext part:
// [A-Za-z0-9_~]+.
func isBodyByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_' || b == '~':
		return true
	default:
		return false
	}
}

// Token is one sigil-prefixed piece of a Spec, decomposed into a bare part
// and an optional "+ext" part (the source of a version token).
type Token struct {
	Sigil Sigil
	Bare  string
	Ext   string
}

func (t Token) HasExt() bool { return t.Ext != "" }

func (t Token) String() string {
	if t.Ext == "" {
		return string(rune(t.Sigil)) + t.Bare
	}
	return string(rune(t.Sigil)) + t.Bare + "+" + t.Ext
}

// ParseError reports a malformed Spec, version, or vector.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("specx: cannot parse %q: %s", e.Raw, e.Reason)
}

// Spec is an ordered sequence of tokens, e.g. "/Type#Id!10+X.set" decodes
// to [/Type #Id !10+X .set]. Spec ordering is lexicographic on the
// concatenated rendered form.
type Spec []Token

// Parse decodes a dotted, sigil-prefixed specifier string. An empty raw
// string decodes to a nil (zero-length) Spec, used for the "peer empty"
// base shape.
func Parse(raw string) (Spec, error) {
	if raw == "" {
		return nil, nil
	}
	if !isSigil(raw[0]) {
		return nil, &ParseError{Raw: raw, Reason: "does not start with a sigil"}
	}
	var toks Spec
	i := 0
	for i < len(raw) {
		sig := Sigil(raw[i])
		if !isSigil(byte(sig)) {
			return nil, &ParseError{Raw: raw, Reason: fmt.Sprintf("unexpected byte %q at offset %d", raw[i], i)}
		}
		j := i + 1
		for j < len(raw) && !isSigil(raw[j]) {
			if !isBodyByte(raw[j]) && raw[j] != '+' {
				return nil, &ParseError{Raw: raw, Reason: fmt.Sprintf("invalid token byte %q at offset %d", raw[j], j)}
			}
			j++
		}
		body := raw[i+1 : j]
		if body == "" {
			return nil, &ParseError{Raw: raw, Reason: "empty token body"}
		}
		bare, ext, _ := strings.Cut(body, "+")
		if bare == "" {
			return nil, &ParseError{Raw: raw, Reason: "empty bare part"}
		}
		toks = append(toks, Token{Sigil: sig, Bare: bare, Ext: ext})
		i = j
	}
	return toks, nil
}

// MustParse is Parse but panics on error; only for literal specs in tests
// and constant tables.
func MustParse(raw string) Spec {
	s, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Spec) String() string {
	var b strings.Builder
	for _, t := range s {
		b.WriteString(t.String())
	}
	return b.String()
}

// Filter returns the subsequence of tokens whose sigil is in sigils,
// preserving order.
func (s Spec) Filter(sigils ...Sigil) Spec {
	var out Spec
	for _, t := range s {
		for _, want := range sigils {
			if t.Sigil == want {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// First returns the first token with the given sigil.
func (s Spec) First(sigil Sigil) (Token, bool) {
	for _, t := range s {
		if t.Sigil == sigil {
			return t, true
		}
	}
	return Token{}, false
}

// Last returns the last token with the given sigil.
func (s Spec) Last(sigil Sigil) (Token, bool) {
	var found Token
	ok := false
	for _, t := range s {
		if t.Sigil == sigil {
			found, ok = t, true
		}
	}
	return found, ok
}

// Prefix returns the leading "/Type#Id" tokens, the object key prefix.
func (s Spec) Prefix() Spec {
	return s.Filter(SigilType, SigilId)
}

// Id extracts the "#" token's bare part.
func (s Spec) Id() (string, bool) {
	t, ok := s.First(SigilId)
	return t.Bare, ok
}

// Type extracts the "/" token's bare part.
func (s Spec) Type() (string, bool) {
	t, ok := s.First(SigilType)
	return t.Bare, ok
}

// Op extracts the op name: the bare part of the last "." token.
func (s Spec) Op() (string, bool) {
	t, ok := s.Last(SigilOp)
	return t.Bare, ok
}

// Version extracts the single "!" token as a Version. It is an error for
// a Spec used this way to carry more than one version token; use
// VersionVector for the multi-token case.
func (s Spec) Version() (Version, bool, error) {
	vs := s.Filter(SigilVersion)
	switch len(vs) {
	case 0:
		return Version{}, false, nil
	case 1:
		v, err := ParseVersion(vs[0])
		return v, true, err
	default:
		return Version{}, false, &ParseError{Raw: s.String(), Reason: "more than one version token"}
	}
}

// Source returns the ext (author replica id) of the single version token.
func (s Spec) Source() (string, bool) {
	v, ok, err := s.Version()
	if err != nil || !ok {
		return "", false
	}
	return v.Source, true
}

// Author is an alias for Source, used at call sites that talk about the
// concept "author" rather than "source".
func (s Spec) Author() (string, bool) {
	return s.Source()
}

// VersionVector builds a VersionMap from every "!" token in the Spec.
func (s Spec) VersionVector() VersionMap {
	vm := make(VersionMap)
	for _, t := range s.Filter(SigilVersion) {
		if v, err := ParseVersion(t); err == nil {
			vm.Add(v)
		}
	}
	return vm
}

// Compare orders two specs lexicographically on their rendered form.
func Compare(a, b Spec) int {
	return strings.Compare(a.String(), b.String())
}
