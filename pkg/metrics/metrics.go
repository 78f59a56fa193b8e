// Copyright 2025 walteh LLC
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

// Package metrics holds the process-wide counters incremented by a cycle.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Counter names.
const (
	Executions     = "batchcopier.executions"
	Failures       = "batchcopier.failed"
	FilesProcessed = "batchcopier.files"
)

// 📈 CounterSink receives counter increments
type CounterSink interface {
	Increment(name string)
}

// 🔢 Counters is an in-process CounterSink. Values start at zero, only grow
// and are never persisted. Safe for concurrent use.
type Counters struct {
	mu     sync.RWMutex
	values map[string]*atomic.Int64
}

// 🏭 NewCounters creates counters with the three cycle counters registered at zero
func NewCounters() *Counters {
	c := &Counters{values: make(map[string]*atomic.Int64)}
	for _, name := range []string{Executions, Failures, FilesProcessed} {
		c.values[name] = new(atomic.Int64)
	}
	return c
}

// Increment adds one to the named counter, registering it on first use.
func (c *Counters) Increment(name string) {
	c.counter(name).Add(1)
}

// Get returns the current value of the named counter.
func (c *Counters) Get(name string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if v, ok := c.values[name]; ok {
		return v.Load()
	}
	return 0
}

// 📸 Snapshot returns a copy of every counter value.
func (c *Counters) Snapshot() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]int64, len(c.values))
	for name, v := range c.values {
		out[name] = v.Load()
	}
	return out
}

// MarshalZerologObject writes the counters in name order.
func (c *Counters) MarshalZerologObject(e *zerolog.Event) {
	snap := c.Snapshot()
	keys := make([]string, 0, len(snap))
	for name := range snap {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	for _, name := range keys {
		e.Int64(name, snap[name])
	}
}

func (c *Counters) counter(name string) *atomic.Int64 {
	c.mu.RLock()
	v, ok := c.values[name]
	c.mu.RUnlock()
	if ok {
		return v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.values[name]; ok {
		return v
	}
	v = new(atomic.Int64)
	c.values[name] = v
	return v
}

// Discard is a CounterSink that drops every increment.
var Discard CounterSink = discard{}

type discard struct{}

func (discard) Increment(string) {}
