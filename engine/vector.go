package engine

import (
	"github.com/dcnet/causalstore/kv"
	"github.com/dcnet/causalstore/specx"
)

func vvFromVersions(vs []specx.Version) specx.VersionMap {
	vm := specx.NewVersionMap()
	for _, v := range vs {
		vm.Add(v)
	}
	return vm
}

func orZeroTs(ts string) string {
	if ts == "" {
		return specx.ZeroTimestamp
	}
	return ts
}

// deriveVersionVector computes this object's full version vector: the
// recent snapshot's vector, unioned with every op version and every
// backreferenced version accepted since. It may demand a wider scan; a
// false ready return means the caller must return false immediately.
func deriveVersionVector(r *Request) (specx.VersionMap, bool, *EngineError) {
	recentRaw, hasRecent := r.meta(kv.RecentStateKey(r.prefix))
	recentVV := specx.NewVersionMap()
	if hasRecent && recentRaw != "" {
		parsed, err := specx.ParseVersionMap(recentRaw)
		if err != nil {
			return nil, true, newErrorf(KindParse, "malformed recent_state")
		}
		recentVV = parsed
	}

	offset := "!" + orZeroTs(recentVV.MaxTs())
	if !r.loadedFrom(offset) {
		r.demand(offset)
		return nil, false, nil
	}

	vv := recentVV.Clone()
	for _, rec := range r.versioned() {
		switch rec.name {
		case "state":
			continue
		case "~br":
			parsed, err := specx.ParseVersionMap(rec.value)
			if err != nil {
				continue
			}
			for source, ts := range parsed {
				vv.Add(specx.Version{Timestamp: ts, Source: source})
			}
		default:
			if len(rec.versions) == 1 {
				vv.Add(rec.versions[0])
			}
		}
	}
	return vv, true, nil
}

// backrefsLoaded checks the invariant that patch construction depends
// on: every backreference already discovered while scanning must itself
// be fully covered by the current load window, since a backreference
// can point to a version below the window's floor.
func backrefsLoaded(r *Request) (ready bool, widenTo string) {
	first := true
	minTs := ""
	for _, rec := range r.versioned() {
		if rec.name != "~br" {
			continue
		}
		vec, err := specx.ParseVersionMap(rec.value)
		if err != nil {
			continue
		}
		ts := vec.MinTs()
		if ts == "" {
			continue
		}
		if first || ts < minTs {
			minTs, first = ts, false
		}
	}
	if first {
		return true, ""
	}
	floor := "!" + minTs
	return r.mark <= floor, floor
}
