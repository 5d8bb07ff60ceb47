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

// Command fixedmapdemo inserts a fixed set of keys into a fixedmap.Map,
// prints the resulting bucket layout and looks a few keys up.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cockroachdb/fixedmap"
)

var buckets = flag.Int("buckets", fixedmap.DefaultBuckets, "number of buckets")

type entry struct {
	key   string
	value int
}

var inserts = []entry{
	{"Test", 6},
	{"Test2", 7},
	{"Test", 8},
	{"Test1", 20},
	{"Test2", 15},
	{"Test1", 230},
}

var lookups = []string{"Test", "Test1", "Test2", "Te1"}

func main() {
	flag.Parse()
	if err := run(os.Stdout, *buckets); err != nil {
		log.Fatal(err)
	}
}

func run(w io.Writer, buckets int) error {
	m, err := fixedmap.New[string, int](fixedmap.WithBuckets[string, int](buckets))
	if err != nil {
		return err
	}
	defer m.Close()

	for _, e := range inserts {
		m.Put(e.key, e.value)
	}
	fmt.Fprint(w, m)

	for _, k := range lookups {
		if v, ok := m.Get(k); ok {
			fmt.Fprintf(w, "\n%s: %d\n", k, v)
		} else {
			fmt.Fprintf(w, "\n%s: not found\n", k)
		}
	}
	return nil
}
