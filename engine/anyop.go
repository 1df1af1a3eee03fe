package engine

import (
	"github.com/dcnet/causalstore/kv"
	"github.com/dcnet/causalstore/specx"
)

// handleAnyOp ingests a regular (non on/off/state/diff/error) op:
// classify it against the object's tip as an echo, a late arrival
// (replay, reorder, or causal violation), or a new in-order write.
func handleAnyOp(r *Request) bool {
	tipRaw, ok := r.meta(kv.TipKey(r.prefix))
	if !ok {
		log.WithField("prefix", r.prefix).Warn("rejected op: no such object")
		r.fail(newError(KindNoSuchObject))
		r.recordMetric("rejected")
		return true
	}
	tip, err := specx.ParseSingleVersion(tipRaw)
	if err != nil {
		log.WithField("prefix", r.prefix).WithError(err).Warn("rejected op: malformed tip")
		r.fail(newErrorf(KindParse, "malformed tip"))
		r.recordMetric("rejected")
		return true
	}

	v, ok, err := r.op.spec.Version()
	if err != nil || !ok {
		log.WithField("spec", r.op.Spec).Warn("rejected op: missing version")
		r.fail(newErrorf(KindParse, "op missing version"))
		r.recordMetric("rejected")
		return true
	}
	source := r.op.Source

	switch {
	case v.Equal(tip):
		r.put(kv.EchoBookmarkKey(r.prefix, source), tip.String())
		r.recordMetric("echoed")
		return true

	case v.Less(tip):
		offset := kv.VersionOffset(v)
		if !r.loadedFrom(offset) {
			r.demand(offset)
			return false
		}
		return handleLateArrival(r, v, tip, source)

	default: // v is newer than tip
		r.put(kv.OpKey(r.prefix, v, r.op.opName), r.op.Value)
		r.put(kv.TipKey(r.prefix), v.String())
		r.respond(r.op.Op)
		if r.opts.Bookmarking {
			r.put(kv.BookmarkKey(r.prefix, source), v.String())
		}
		r.recordMetric("accepted")
		return true
	}
}

// handleLateArrival walks ops already logged from v's own author (not
// the immediate sender, which may just be relaying) to tell a replay or
// a genuine reorder from a causal violation: a later op from that same
// author already on record means v arrived out of causal order.
func handleLateArrival(r *Request, v, tip specx.Version, sender string) bool {
	var causalViolation, replay bool
	for _, vr := range r.versioned() {
		if vr.name == "state" || vr.name == "~br" || len(vr.versions) != 1 {
			continue
		}
		other := vr.versions[0]
		if other.Source != v.Source {
			continue
		}
		if other.Timestamp > v.Timestamp {
			causalViolation = true
		}
		if other.Equal(v) {
			replay = true
		}
	}

	if causalViolation {
		log.WithField("prefix", r.prefix).WithField("author", v.Source).WithField("sender", sender).
			Warn("rejected op: causal violation")
		r.fail(newError(KindOutOfOrder))
		r.recordMetric("rejected")
		return true
	}
	if replay {
		log.WithField("prefix", r.prefix).WithField("version", v.String()).Debug("replay of already-logged op")
		r.recordMetric("echoed")
		return true
	}

	log.WithField("prefix", r.prefix).WithField("version", v.String()).Info("reordered op accepted")

	r.put(kv.OpKey(r.prefix, v, r.op.opName), r.op.Value)

	brKey := kv.BackrefKey(r.prefix, tip)
	brVec := specx.NewVersionMap()
	if raw, ok := r.values[brKey]; ok {
		if parsed, err := specx.ParseVersionMap(raw); err == nil {
			brVec = parsed
		}
	}
	if _, has := brVec[v.Source]; !has {
		brVec.Add(v)
		r.put(brKey, brVec.Render())
	}

	r.respond(r.op.Op)
	if r.opts.Bookmarking {
		r.put(kv.BookmarkKey(r.prefix, sender), v.String())
	}
	r.recordMetric("reordered")
	return true
}
