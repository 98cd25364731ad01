package bollywood

import (
	"hash/fnv"
	"sync"
)

const defaultShardCount = 32

// directory is the sharded address -> process registry backing Stage's
// ActorFor/ActorOf. Sharding bounds lock contention under concurrent
// registrations the same way Orizon's ConcurrentMap (internal/stdlib/
// concurrency/concurrent_map.go) does: a fixed number of shards (32 by
// default, same default), each an independent mutex-guarded map, indexed by
// hashing the key — so register/get/unregister on different shards never
// contend.
type directory struct {
	shards []*directoryShard
}

type directoryShard struct {
	mu sync.RWMutex
	m  map[string]*process
}

func newDirectory(shardCount int) *directory {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	d := &directory{shards: make([]*directoryShard, shardCount)}
	for i := range d.shards {
		d.shards[i] = &directoryShard{m: make(map[string]*process)}
	}
	return d
}

func (d *directory) shardFor(key string) *directoryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return d.shards[h.Sum32()%uint32(len(d.shards))]
}

// register stores proc under addr, replacing any previous handle at the
// same address.
func (d *directory) register(addr Address, proc *process) {
	shard := d.shardFor(addr.String())
	shard.mu.Lock()
	shard.m[addr.String()] = proc
	shard.mu.Unlock()
}

func (d *directory) unregister(addr Address) {
	shard := d.shardFor(addr.String())
	shard.mu.Lock()
	delete(shard.m, addr.String())
	shard.mu.Unlock()
}

func (d *directory) get(addr Address) (*process, bool) {
	shard := d.shardFor(addr.String())
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	proc, ok := shard.m[addr.String()]
	return proc, ok
}

func (d *directory) has(addr Address) bool {
	_, ok := d.get(addr)
	return ok
}

func (d *directory) size() int {
	total := 0
	for _, shard := range d.shards {
		shard.mu.RLock()
		total += len(shard.m)
		shard.mu.RUnlock()
	}
	return total
}
