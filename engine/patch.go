package engine

import (
	"strings"

	"github.com/dcnet/causalstore/kv"
	"github.com/dcnet/causalstore/specx"
)

type patchResult struct {
	ok    bool
	value string
}

func diffLine(innerSpec, value string) string {
	return "\t" + innerSpec + "\t" + value + "\n"
}

// handleOn answers a peer subscription: build a patch from their base
// descriptor (unless they asked for none), decide our reciprocal
// subscription, and emit both together so nothing is emitted twice
// across a reentry.
func handleOn(r *Request) bool {
	base := specx.ClassifyBase(r.op.Value)

	var patch patchResult
	if base.Kind != specx.BaseSuppressed {
		p, ready, err := buildPatch(r, base)
		if err != nil {
			r.fail(err)
			return true
		}
		if !ready {
			return false
		}
		patch = p
	}

	recipValue, sendRecip, ready, err := chooseReciprocal(r, base)
	if err != nil {
		r.fail(err)
		return true
	}
	if !ready {
		return false
	}

	if patch.ok {
		r.respond(Op{Spec: r.prefix + ".diff", Value: patch.value, Source: r.op.Source})
		r.recordMetric("patched")
	}
	if sendRecip {
		r.respond(Op{Spec: r.prefix + ".on", Value: recipValue, Source: r.op.Source})
	}
	return true
}

// buildPatch dispatches on the shape of the peer's base descriptor.
func buildPatch(r *Request, base specx.Base) (patchResult, bool, *EngineError) {
	switch base.Kind {
	case specx.BaseEmpty:
		return patchFromRecentSnapshot(r)

	case specx.BaseRefuseOps:
		return patchResult{}, true, nil

	case specx.BaseEchoBookmark:
		ebmRaw, hasEbm := r.meta(kv.EchoBookmarkKey(r.prefix, r.op.Source))
		if !hasEbm {
			// No echo bookmark on file for this peer: fall back to a
			// protocol error rather than guessing at a base.
			log.WithField("prefix", r.prefix).WithField("peer", r.op.Source).
				Warn("rejected on: no echo bookmark on file for base \"-\"")
			return patchResult{}, true, newError(KindBaseUnparseable)
		}
		v, err := specx.ParseSingleVersion(ebmRaw)
		if err != nil {
			log.WithField("prefix", r.prefix).WithError(err).Warn("rejected on: malformed echo bookmark")
			return patchResult{}, true, newErrorf(KindParse, "malformed echo bookmark")
		}
		return patchFromVector(r, vvFromVersions([]specx.Version{v}))

	case specx.BaseBookmark:
		// A single bookmark is exactly a one-entry version vector; the
		// general vector algorithm already produces the right catch-up
		// set (it is what recovers a reordered op whose timestamp sorts
		// below the bookmark's own timestamp).
		return patchFromVector(r, vvFromVersions([]specx.Version{base.Version}))

	case specx.BaseVector:
		return patchFromVector(r, base.Vector)

	default:
		log.WithField("prefix", r.prefix).WithField("base", base.Raw).Warn("rejected on: unparseable base")
		return patchResult{}, true, newError(KindBaseUnparseable)
	}
}

// patchFromRecentSnapshot handles base=="": the peer has nothing, so
// send the most recent snapshot plus every op it does not already cover.
func patchFromRecentSnapshot(r *Request) (patchResult, bool, *EngineError) {
	recentRaw, hasRecent := r.meta(kv.RecentStateKey(r.prefix))
	if !hasRecent {
		return patchResult{}, true, nil
	}
	recentVV, err := specx.ParseVersionMap(recentRaw)
	if err != nil {
		log.WithField("prefix", r.prefix).WithError(err).Warn("rejected on: malformed recent_state")
		return patchResult{}, true, newErrorf(KindParse, "malformed recent_state")
	}

	offset := "!" + orZeroTs(recentVV.MinTs())
	if !r.loadedFrom(offset) {
		r.demand(offset)
		return patchResult{}, false, nil
	}
	if ready, widenTo := backrefsLoaded(r); !ready {
		r.demand(widenTo)
		return patchResult{}, false, nil
	}

	loaded := r.versioned()
	var snapshot *versionedRecord
	for i, rec := range loaded {
		if rec.name != "state" || len(rec.versions) < 2 {
			continue
		}
		if vvFromVersions(rec.versions[1:]).Render() == recentVV.Render() {
			snapshot = &loaded[i]
			break
		}
	}
	if snapshot == nil {
		log.WithField("prefix", r.prefix).WithField("recent_state", recentVV.Render()).
			Error("backend inconsistency: recent state snapshot record missing")
		return patchResult{}, true, newErrorf(KindBackend, "recent state snapshot record missing")
	}

	var b strings.Builder
	b.WriteString(diffLine(snapshot.key[len(r.prefix):], snapshot.value))
	for _, rec := range loaded {
		if rec.name == "state" || rec.name == "~br" || len(rec.versions) != 1 {
			continue
		}
		if recentVV.Covers(rec.versions[0]) {
			continue
		}
		b.WriteString(diffLine(rec.key[len(r.prefix):], rec.value))
	}
	return patchResult{ok: true, value: b.String()}, true, nil
}

// patchFromVector handles the general version-vector base (including a
// single bookmark reduced to a one-entry vector, and the empty vector
// standing in for "!0"/default state).
func patchFromVector(r *Request, baseVV specx.VersionMap) (patchResult, bool, *EngineError) {
	recentRaw, hasRecent := r.meta(kv.RecentStateKey(r.prefix))
	recentVV := specx.NewVersionMap()
	if hasRecent && recentRaw != "" {
		parsed, err := specx.ParseVersionMap(recentRaw)
		if err != nil {
			log.WithField("prefix", r.prefix).WithError(err).Warn("rejected on: malformed recent_state")
			return patchResult{}, true, newErrorf(KindParse, "malformed recent_state")
		}
		recentVV = parsed
	}

	var offset string
	if recentVV.CoversAll(baseVV) {
		offset = "!" + orZeroTs(recentVV.MaxTs())
	} else {
		offset = kv.OffsetZero
	}
	if !r.loadedFrom(offset) {
		r.demand(offset)
		return patchResult{}, false, nil
	}
	if ready, widenTo := backrefsLoaded(r); !ready {
		r.demand(widenTo)
		return patchResult{}, false, nil
	}

	var b strings.Builder
	any := false
	for _, rec := range r.versioned() {
		if rec.name == "state" || rec.name == "~br" || len(rec.versions) != 1 {
			continue
		}
		v := rec.versions[0]
		if baseVV.Covers(v) {
			continue
		}
		b.WriteString(diffLine(rec.key[len(r.prefix):], rec.value))
		any = true
	}
	return patchResult{ok: any, value: b.String()}, true, nil
}

// chooseReciprocal picks the base value for our own subscription back
// to the peer that just subscribed to us.
func chooseReciprocal(r *Request, base specx.Base) (value string, send bool, ready bool, err *EngineError) {
	origin := r.op.Source
	if origin != "" && origin == r.replicaID {
		return "", false, true, nil
	}

	_, hasBaseState := r.meta(kv.BaseStateKey(r.prefix))
	if !hasBaseState {
		return "", true, true, nil
	}

	if base.Kind == specx.BaseEmpty {
		tipRaw, hasTip := r.meta(kv.TipKey(r.prefix))
		if !hasTip {
			return "", true, true, nil
		}
		return tipRaw, true, true, nil
	}

	if bmRaw, hasBm := r.meta(kv.BookmarkKey(r.prefix, origin)); hasBm {
		return bmRaw, true, true, nil
	}

	if base.Kind == specx.BaseBookmark {
		return "", true, true, nil
	}

	vv, ready, err := deriveVersionVector(r)
	if err != nil {
		return "", false, true, err
	}
	if !ready {
		return "", false, false, nil
	}
	return vv.Render(), true, true, nil
}
