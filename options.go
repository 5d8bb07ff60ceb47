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

package fixedmap

// option provide an interface to do work on Map while it is being created.
type option[K comparable, V any] interface {
	apply(m *Map[K, V])
}

type bucketsOption[K comparable, V any] struct {
	n int
}

func (op bucketsOption[K, V]) apply(m *Map[K, V]) {
	m.numBuckets = op.n
}

// WithBuckets is an option to specify the number of buckets in a Map[K,V].
// The count is fixed for the lifetime of the map and must be positive; New
// and Init return ErrInvalidBuckets otherwise.
func WithBuckets[K comparable, V any](n int) option[K, V] {
	return bucketsOption[K, V]{n}
}

// Allocator specifies an interface for allocating and releasing memory used
// by the chains of a Map. The default allocator utilizes Go's builtin make()
// and allows the GC to reclaim memory.
//
// If the allocator is manually managing memory and requires that entries be
// freed then Map.Close must be called in order to ensure Free is called for
// every chain.
type Allocator[K comparable, V any] interface {
	// Alloc should return a slice equivalent to make([]Entry[K,V], n).
	Alloc(n int) []Entry[K, V]

	// Free can optionally release the memory associated with the supplied
	// slice that is guaranteed to have been allocated by Alloc.
	Free(v []Entry[K, V])
}

type defaultAllocator[K comparable, V any] struct{}

func (defaultAllocator[K, V]) Alloc(n int) []Entry[K, V] {
	return make([]Entry[K, V], n)
}

func (defaultAllocator[K, V]) Free(_ []Entry[K, V]) {
}

type allocatorOption[K comparable, V any] struct {
	allocator Allocator[K, V]
}

func (op allocatorOption[K, V]) apply(m *Map[K, V]) {
	m.allocator = op.allocator
}

// WithAllocator is an option for specify the Allocator to use for a Map[K,V].
func WithAllocator[K comparable, V any](allocator Allocator[K, V]) option[K, V] {
	return allocatorOption[K, V]{allocator}
}
