package engine

import (
	"github.com/dcnet/causalstore/kv"
	"github.com/dcnet/causalstore/specx"
)

// kvPair is one record read off the backend during a scan.
type kvPair struct {
	key   string
	value string
}

// versionedRecord is a parsed op, state snapshot, or backreference key:
// prefix + one-or-more version tokens + ".name". State snapshot keys
// carry the author token followed by one token per entry of the
// causal-cut vector (so at least two); op and backreference keys carry
// exactly one.
type versionedRecord struct {
	key      string
	value    string
	versions []specx.Version
	name     string
}

func (vr versionedRecord) version() specx.Version {
	return vr.versions[0]
}

func parseVersionedKey(prefix, key, value string) (versionedRecord, bool) {
	if len(key) <= len(prefix) || key[len(prefix)] != '!' {
		return versionedRecord{}, false
	}
	toks, err := specx.Parse(key[len(prefix):])
	if err != nil || len(toks) == 0 {
		return versionedRecord{}, false
	}
	last := toks[len(toks)-1]
	if last.Sigil != specx.SigilOp {
		return versionedRecord{}, false
	}
	versions := make([]specx.Version, 0, len(toks)-1)
	for _, t := range toks[:len(toks)-1] {
		v, err := specx.ParseVersion(t)
		if err != nil {
			return versionedRecord{}, false
		}
		versions = append(versions, v)
	}
	if len(versions) == 0 {
		return versionedRecord{}, false
	}
	return versionedRecord{key: key, value: value, versions: versions, name: last.Bare}, true
}

// Request is the transient state built for one incoming op: the two scan
// cursors, everything loaded so far, and the write batch / response list
// a handler accumulates before signalling done.
type Request struct {
	store kv.Store
	opts  Options
	op    parsedOp

	// replicaID is this engine instance's own source id, used to detect
	// a state snapshot authored locally and to suppress a reciprocal
	// subscription that would otherwise loop back to ourselves.
	replicaID string

	prefix string

	mark     string
	needMark string
	needSet  bool

	values map[string]string
	order  []string // ascending key order, oldest-loaded prepended as scans widen

	writes     []kv.Write
	responses  []Op
	err        *EngineError
	metricKind string
}

func (r *Request) recordMetric(kind string) {
	r.metricKind = kind
}

func newRequest(store kv.Store, opts Options, replicaID string, op parsedOp) *Request {
	return &Request{
		store:     store,
		opts:      opts,
		op:        op,
		replicaID: replicaID,
		prefix:    op.prefix,
		mark:      kv.OffsetTop,
		needMark:  kv.OffsetMeta,
		needSet:   true,
		values:    make(map[string]string),
	}
}

// demand asks the load loop to widen its next scan down to offset.
// Later calls only ever narrow further: the handler is required to
// request monotonically older offsets across reentries.
func (r *Request) demand(offset string) {
	if !r.needSet || offset < r.needMark {
		r.needMark = offset
		r.needSet = true
	}
}

// loadedFrom reports whether every record at or above offset has
// already been scanned into this Request.
func (r *Request) loadedFrom(offset string) bool {
	return r.mark <= offset
}

func (r *Request) ingest(batch []kvPair) {
	if len(batch) == 0 {
		return
	}
	fresh := make([]string, 0, len(batch))
	for _, p := range batch {
		r.values[p.key] = p.value
		fresh = append(fresh, p.key)
	}
	r.order = append(fresh, r.order...)
}

// meta looks up a manifest record by its full key. Manifest records are
// always fully loaded after the first scan iteration, so a miss here
// means the record genuinely does not exist yet.
func (r *Request) meta(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// versioned returns every loaded op/state/backref record whose key
// falls under this Request's prefix, in ascending version order,
// restricted to those already loaded (i.e. not beyond a pending demand).
func (r *Request) versioned() []versionedRecord {
	out := make([]versionedRecord, 0, len(r.order))
	for _, k := range r.order {
		vr, ok := parseVersionedKey(r.prefix, k, r.values[k])
		if ok {
			out = append(out, vr)
		}
	}
	return out
}

func (r *Request) put(key, value string) {
	r.writes = append(r.writes, kv.Write{Kind: kv.Put, Key: key, Value: value})
}

func (r *Request) del(key string) {
	r.writes = append(r.writes, kv.Write{Kind: kv.Delete, Key: key})
}

func (r *Request) respond(op Op) {
	r.responses = append(r.responses, op)
}

func (r *Request) fail(err *EngineError) {
	r.err = err
}
