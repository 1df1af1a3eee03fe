package kv

import "github.com/dcnet/causalstore/specx"

// Prefix returns the storage-key prefix "/Type#Id" shared by every
// persistent record for one object.
func Prefix(typ, id string) string {
	return "/" + typ + "#" + id
}

// Manifest key suffixes, wire-exact
const (
	SuffixBaseState   = ".base_state"
	SuffixRecentState = ".recent_state"
	SuffixTip         = ".tip"
	bookmarkPrefix    = ".bm&"
	echoBookmarkPrefix = ".ebm&"
)

// The manifest suffixes above never embed a version token and so never
// contain "!"; that is exactly the test a scan handler uses to tell a
// manifest record from a versioned one apart once both land in the same
// loaded batch.

func BaseStateKey(prefix string) string   { return prefix + SuffixBaseState }
func RecentStateKey(prefix string) string { return prefix + SuffixRecentState }
func TipKey(prefix string) string         { return prefix + SuffixTip }

// BookmarkKey is the version a peer last told us they've seen
// (".bm&<source>"). The "&" byte is deliberately outside the Spec token
// grammar: bookmark keys are storage-internal and never appear on the
// wire as a Spec.
func BookmarkKey(prefix, source string) string { return prefix + bookmarkPrefix + source }

// EchoBookmarkKey is the version we last sent to a peer (".ebm&<source>").
func EchoBookmarkKey(prefix, source string) string { return prefix + echoBookmarkPrefix + source }

// OpKey is the record for one accepted op.
func OpKey(prefix string, v specx.Version, opName string) string {
	return prefix + v.String() + "." + opName
}

// StateKey is the record for a compaction snapshot. Its key embeds both
// the version that authored the write and the version vector of the
// causal cut it captures, which together guarantee at most one snapshot
// per (author, version vector) directly at the key level.
func StateKey(prefix string, author specx.Version, vv specx.VersionMap) string {
	return prefix + author.String() + vv.Render() + ".state"
}

// BackrefKey is the record noting out-of-order arrivals observed at the
// moment the object's tip was `at`.
func BackrefKey(prefix string, at specx.Version) string {
	return prefix + at.String() + ".~br"
}

// Cursor offsets used by the reentrant load loop.
const (
	// OffsetTop is the upper sentinel: "nothing loaded above this".
	OffsetTop = "/"
	// OffsetMeta is the initial need_mark: read manifest records only.
	OffsetMeta = "."
	// OffsetZero widens a scan to the entire log.
	OffsetZero = "!0"
)

// VersionOffset renders a Version as a scan offset.
func VersionOffset(v specx.Version) string { return v.String() }

// ScanRange builds the [gte, lt) bounds for one iteration of the load
// loop: everything from `from` up to (but excluding) `upTo`.
func ScanRange(prefix, from, upTo string) (gte, lt string) {
	return prefix + from, prefix + upTo
}
