// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fixedmap is a Go implementation of a separately chained hash table
// with a fixed number of buckets. See
// https://en.wikipedia.org/wiki/Hash_table#Separate_chaining.
//
// # Fixed buckets
//
// A Map is created with a bucket array whose length never changes: there is
// no load factor check, no resize and no rehash. Every key therefore lives in
// bucket hash(key) % len(buckets) for the whole lifetime of the map. The
// price is that lookups degrade linearly once the number of entries grows
// well past the number of buckets. Callers that know their working set up
// front pick a bucket count with WithBuckets; the default is DefaultBuckets.
//
// # Chains
//
// Keys that reduce to the same bucket are kept in that bucket's chain. A
// chain is a slice of entries rather than a linked list of nodes, so walking
// a chain is a sequential scan of memory:
//
//	 buckets
//	+---+
//	| 0 | --> [ k0:v0 | k7:v7 ]
//	+---+
//	| 1 | --> (empty)
//	+---+
//	| 2 | --> [ k3:v3 ]
//	+---+
//
// Put walks the chain comparing keys. On a match the value is overwritten in
// place; otherwise a new entry is appended to the tail. Entries are never
// reordered, so a chain lists its keys in the order they were first
// inserted. Get performs the same walk and reports ok=false if it reaches
// the end of the chain without a match.
//
// Chain storage is obtained from an Allocator. A chain starts with room for
// a single entry and doubles its capacity when full, releasing the previous
// slice back to the allocator.
//
// # Hashing
//
// Keys are hashed with the same hash function as Go's builtin map[K]V (see
// hash/maphash.Comparable) under a per-map random seed. Hashes are stable for
// the lifetime of a map but not across maps or processes.
package fixedmap

import (
	"errors"
	"fmt"
	"hash/maphash"
	"strings"
)

const (
	debug = false

	// DefaultBuckets is the number of buckets used when WithBuckets is not
	// specified.
	DefaultBuckets = 30

	initialChainCapacity = 1
)

// ErrInvalidBuckets is returned by New and Init when the requested bucket
// count is not positive.
var ErrInvalidBuckets = errors.New("fixedmap: bucket count must be positive")

// Entry holds a key and value.
type Entry[K comparable, V any] struct {
	key   K
	value V
}

// bucket is a single slot of the bucket array. An empty chain means the
// bucket is empty.
type bucket[K comparable, V any] struct {
	// entries is the chain, in first-insertion order. Its capacity is the
	// length of the slice obtained from the allocator.
	entries []Entry[K, V]
}

// Map is an unordered map from keys to values with Put and Get operations,
// backed by a fixed number of separately chained buckets.
//
// A Map is NOT goroutine-safe. Concurrent calls to Get are safe as long as
// no Put is running.
type Map[K comparable, V any] struct {
	seed maphash.Seed
	// The allocator to use for the chains.
	allocator Allocator[K, V]
	// numBuckets is the bucket count requested through options. It is only
	// consulted while initializing; afterwards len(buckets) is authoritative.
	numBuckets int
	// The bucket array. Its length is fixed at Init.
	buckets []bucket[K, V]
	// The number of entries across all chains (i.e. the number of elements
	// in the map).
	used int
}

// New constructs a new Map with DefaultBuckets buckets, or the count given
// with WithBuckets. An error wrapping ErrInvalidBuckets is returned if the
// bucket count is not positive.
func New[K comparable, V any](options ...option[K, V]) (*Map[K, V], error) {
	m := &Map[K, V]{}
	if err := m.Init(options...); err != nil {
		return nil, err
	}
	return m, nil
}

// Init initializes a Map with the specified options, releasing any memory
// held from a previous use to its allocator. The zero value for a Map is not
// usable until Init has been called. If Init returns an error the Map is
// left in its zero state.
func (m *Map[K, V]) Init(options ...option[K, V]) error {
	m.Close()

	*m = Map[K, V]{
		seed:       maphash.MakeSeed(),
		allocator:  defaultAllocator[K, V]{},
		numBuckets: DefaultBuckets,
	}
	for _, op := range options {
		op.apply(m)
	}

	if m.numBuckets <= 0 {
		n := m.numBuckets
		*m = Map[K, V]{}
		return fmt.Errorf("%w: %d", ErrInvalidBuckets, n)
	}
	m.buckets = make([]bucket[K, V], m.numBuckets)
	m.checkInvariants()
	return nil
}

// Close closes the map, releasing any memory back to its configured
// allocator. It is unnecessary to close a map using the default allocator. It
// is invalid to use a Map after it has been closed, though Close itself is
// idempotent.
func (m *Map[K, V]) Close() {
	for i := range m.buckets {
		b := &m.buckets[i]
		if cap(b.entries) > 0 {
			m.allocator.Free(b.entries[:cap(b.entries)])
		}
		b.entries = nil
	}

	m.buckets = nil
	m.used = 0
	m.allocator = nil
}

// Put inserts an entry into the map, overwriting an existing value if an
// entry with the same key already exists.
func (m *Map[K, V]) Put(key K, value V) {
	i := m.bucketIndex(key)
	b := &m.buckets[i]
	if debug {
		fmt.Printf("put(%v): bucket=%d chain=%d\n", key, i, len(b.entries))
	}

	for j := range b.entries {
		e := &b.entries[j]
		if debug {
			fmt.Printf("put(checking): bucket=%d index=%d key=%v\n", i, j, e.key)
		}
		if key == e.key {
			if debug {
				fmt.Printf("put(updating): bucket=%d index=%d key=%v\n", i, j, key)
			}
			e.value = value
			b.checkInvariants(m, i)
			return
		}
	}

	if debug {
		fmt.Printf("put(appending): bucket=%d index=%d key=%v\n", i, len(b.entries), key)
	}
	b.append(m, key, value)
	m.used++
	b.checkInvariants(m, i)
}

// Get retrieves the value from the map for the specified key, return ok=false
// if the key is not present.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	i := m.bucketIndex(key)
	b := &m.buckets[i]
	if debug {
		fmt.Printf("get(%v): bucket=%d chain=%d\n", key, i, len(b.entries))
	}

	for j := range b.entries {
		e := &b.entries[j]
		if key == e.key {
			return e.value, true
		}
	}

	if debug {
		fmt.Printf("get(not-found): bucket=%d key=%v\n", i, key)
	}
	return value, false
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.used
}

// Buckets returns the number of buckets in the map. It does not change after
// the map is initialized.
func (m *Map[K, V]) Buckets() int {
	return len(m.buckets)
}

// String returns a human-readable dump of the map, bucket by bucket, listing
// each chain in order. The format is intended for debugging and may change.
func (m *Map[K, V]) String() string {
	return m.debugString()
}

// append adds a new entry to the tail of the chain, growing the chain through
// the map's allocator if it is full. The caller has verified that key is not
// already present.
func (b *bucket[K, V]) append(m *Map[K, V], key K, value V) {
	n := len(b.entries)
	if n == cap(b.entries) {
		newCap := 2 * n
		if newCap == 0 {
			newCap = initialChainCapacity
		}
		entries := m.allocator.Alloc(newCap)
		copy(entries, b.entries)
		if n > 0 {
			m.allocator.Free(b.entries[:cap(b.entries)])
		}
		b.entries = entries[:n]
	}
	b.entries = append(b.entries, Entry[K, V]{key: key, value: value})
}

func (m *Map[K, V]) checkInvariants() {
	if invariants {
		var used int
		for i := range m.buckets {
			b := &m.buckets[i]
			b.checkInvariants(m, uintptr(i))
			used += len(b.entries)
		}
		if used != m.used {
			panic(fmt.Sprintf("invariant failed: found %d entries, but used count is %d\n%s",
				used, m.used, m.debugString()))
		}
	}
}

func (b *bucket[K, V]) checkInvariants(m *Map[K, V], i uintptr) {
	if invariants {
		// Every entry must live in the bucket its key hashes to, and no key
		// may appear twice in a chain.
		seen := make(map[K]int, len(b.entries))
		for j := range b.entries {
			e := &b.entries[j]
			if h := m.bucketIndex(e.key); h != i {
				panic(fmt.Sprintf("invariant failed: bucket(%d) entry(%d): %v hashes to bucket %d\n%s",
					i, j, e.key, h, m.debugString()))
			}
			if k, ok := seen[e.key]; ok {
				panic(fmt.Sprintf("invariant failed: bucket(%d): %v found at entries %d and %d\n%s",
					i, e.key, k, j, m.debugString()))
			}
			seen[e.key] = j
		}
	}
}

func (m *Map[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "buckets=%d  used=%d\n", len(m.buckets), m.used)
	for i := range m.buckets {
		b := &m.buckets[i]
		if len(b.entries) == 0 {
			fmt.Fprintf(&buf, "  %4d: empty\n", i)
			continue
		}
		fmt.Fprintf(&buf, "  %4d:", i)
		for j := range b.entries {
			e := &b.entries[j]
			if j > 0 {
				buf.WriteString(" ->")
			}
			fmt.Fprintf(&buf, " %v=%v", e.key, e.value)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}
