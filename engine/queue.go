package engine

import (
	"strings"
	"sync"

	"github.com/cornelk/hashmap"
)

// numShards bounds how many objects can be draining concurrently. Every
// object hashes to one shard via shardOf, so the shard's worker
// goroutine is the only thing that ever drains it.
const numShards = 8

// objectQueue is a single object's FIFO. Its own mutex only guards
// pending/busy; draining itself is serialized by the shard worker that
// owns it, never by running a goroutine per object.
type objectQueue struct {
	mu      sync.Mutex
	pending []Op
	busy    bool
}

// Queue fans incoming ops out to one FIFO per object, drained by a fixed
// pool of shard workers so the number of concurrently-draining objects
// is bounded regardless of how many distinct objects are active.
type Queue struct {
	engine *Engine
	shards hashmap.HashMap
	work   [numShards]chan *objectQueue
}

func newQueue(e *Engine) *Queue {
	q := &Queue{engine: e}
	for i := range q.work {
		q.work[i] = make(chan *objectQueue, 64)
		go q.runShard(q.work[i])
	}
	return q
}

// Submit enqueues op on its object's FIFO, waking that object's shard
// worker if it isn't already draining this object.
func (q *Queue) Submit(op Op) {
	prefix := objectPrefix(op.Spec)
	oq := q.queueFor(prefix)

	oq.mu.Lock()
	oq.pending = append(oq.pending, op)
	alreadyRunning := oq.busy
	oq.busy = true
	oq.mu.Unlock()

	if !alreadyRunning {
		q.work[shardOf(prefix, numShards)] <- oq
	}
}

func (q *Queue) queueFor(prefix string) *objectQueue {
	if existing, ok := q.shards.GetStringKey(prefix); ok {
		return existing.(*objectQueue)
	}
	actual, _ := q.shards.GetOrInsert(prefix, &objectQueue{})
	return actual.(*objectQueue)
}

// runShard is one worker's whole lifetime: it drains whichever object
// queues its shard hands it, one at a time, for as long as the Queue
// (and thus the Engine) lives.
func (q *Queue) runShard(work <-chan *objectQueue) {
	for oq := range work {
		q.drain(oq)
	}
}

func (q *Queue) drain(oq *objectQueue) {
	for {
		oq.mu.Lock()
		if len(oq.pending) == 0 {
			oq.busy = false
			oq.mu.Unlock()
			return
		}
		op := oq.pending[0]
		oq.pending = oq.pending[1:]
		oq.mu.Unlock()

		for _, inner := range unbundle(op) {
			q.engine.process(inner)
		}
	}
}

// objectPrefix extracts the leading "/Type#Id" from a spec string
// without a full parse, since it's used on every enqueue.
func objectPrefix(spec string) string {
	idx := strings.IndexByte(spec, '!')
	dot := strings.IndexByte(spec, '.')
	end := len(spec)
	if idx >= 0 && idx < end {
		end = idx
	}
	if dot >= 0 && dot < end {
		end = dot
	}
	return spec[:end]
}

// unbundle flattens a diff op into its inner ops, each addressed with
// the object's full prefix restored (bundled lines omit it). A
// non-diff op is returned unchanged as a single-element slice.
func unbundle(op Op) []Op {
	if objectOpName(op.Spec) != "diff" {
		return []Op{op}
	}
	prefix := objectPrefix(op.Spec)
	var out []Op
	for _, line := range strings.Split(op.Value, "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			log.WithField("prefix", prefix).WithField("line", line).Warn("dropped malformed diff line")
			continue
		}
		out = append(out, Op{Spec: prefix + parts[1], Value: parts[2], Source: op.Source})
	}
	return out
}

func objectOpName(spec string) string {
	dot := strings.LastIndexByte(spec, '.')
	if dot < 0 {
		return ""
	}
	return spec[dot+1:]
}
