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

import "hash/maphash"

// hash returns the hash of key using the same hash function as Go's builtin
// map[K]V. The result is stable for the lifetime of the seed, which is drawn
// once per Init.
func hash[K comparable](seed maphash.Seed, key K) uint64 {
	return maphash.Comparable(seed, key)
}

// bucketIndex reduces hash(key) to an index into the bucket array. The array
// is never empty on an initialized map since New and Init reject a
// non-positive bucket count.
func (m *Map[K, V]) bucketIndex(key K) uintptr {
	return uintptr(hash(m.seed, key) % uint64(len(m.buckets)))
}
