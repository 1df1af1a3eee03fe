package engine

import (
	"github.com/dcnet/causalstore/kv"
	"github.com/dcnet/causalstore/specx"
)

// swarmAuthor is the reserved author id for a base-state overwrite,
// left unimplemented per an open design question.
const swarmAuthor = "swarm"

// handleState accepts a compaction snapshot. Its key carries both the
// version that authored the write and the version vector of the causal
// cut it captures: the first "!" token is the author, every later one
// is the vector.
func handleState(r *Request) bool {
	toks := r.op.spec.Filter(specx.SigilVersion)
	if len(toks) == 0 {
		r.fail(newErrorf(KindParse, "state op missing version"))
		return true
	}
	author, err := specx.ParseVersion(toks[0])
	if err != nil {
		r.fail(newErrorf(KindParse, "state op malformed author version"))
		return true
	}
	vv := specx.NewVersionMap()
	for _, t := range toks[1:] {
		v, err := specx.ParseVersion(t)
		if err != nil {
			r.fail(newErrorf(KindParse, "state op malformed version vector"))
			return true
		}
		vv.Add(v)
	}

	_, hasTip := r.meta(kv.TipKey(r.prefix))

	switch {
	case !hasTip:
		tip := specx.Version{Timestamp: vv.MaxTs(), Source: author.Source}
		r.put(kv.BaseStateKey(r.prefix), vv.Render())
		r.put(kv.RecentStateKey(r.prefix), vv.Render())
		r.put(kv.StateKey(r.prefix, author, vv), r.op.Value)
		r.put(kv.TipKey(r.prefix), tip.String())
		return true

	case author.Source == r.replicaID:
		recentRaw, hasRecent := r.meta(kv.RecentStateKey(r.prefix))
		if hasRecent && recentRaw != "" {
			// .recent_state only records the vector, not the author, of
			// the snapshot it names; find the matching .state record by
			// widening the scan across the whole log once.
			if !r.loadedFrom(kv.OffsetZero) {
				r.demand(kv.OffsetZero)
				return false
			}
			for _, rec := range r.versioned() {
				if rec.name != "state" || len(rec.versions) < 2 {
					continue
				}
				vecTail := specx.NewVersionMap()
				for _, v := range rec.versions[1:] {
					vecTail.Add(v)
				}
				if vecTail.Render() == recentRaw {
					r.del(rec.key)
					break
				}
			}
		}
		r.put(kv.RecentStateKey(r.prefix), vv.Render())
		r.put(kv.StateKey(r.prefix, author, vv), r.op.Value)
		return true

	case author.Source == swarmAuthor:
		r.fail(newError(KindNotImplemented))
		return true

	default:
		r.fail(newError(KindHaveState))
		return true
	}
}
