// Package seeders fills an empty database with sample requests so a fresh
// install has something to look at. Seeders register themselves from init
// and run in registration order:
//
//	func init() { Register("demo_requests", SeedDemoRequests) }
//
// supplydesk seed runs them all; supplydesk seed demo_requests runs one.
package seeders

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/supplydesk/pkg/logger"
)

// Func seeds db. It should be safe to run twice.
type Func func(db *gorm.DB) error

type seeder struct {
	name string
	fn   Func
}

var (
	mu       sync.Mutex
	registry []seeder
)

// Register adds fn under name. Registering a name twice panics.
func Register(name string, fn Func) {
	mu.Lock()
	defer mu.Unlock()
	for _, s := range registry {
		if s.name == name {
			panic(fmt.Sprintf("seeders: %q registered twice", name))
		}
	}
	registry = append(registry, seeder{name: name, fn: fn})
}

// Names lists registered seeders in run order.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, len(registry))
	for i, s := range registry {
		names[i] = s.name
	}
	return names
}

// RunAll runs every seeder and stops at the first failure.
func RunAll(db *gorm.DB) error { return Run(db) }

// Run runs the named seeders, or all of them when names is empty. Unknown
// names fail before anything runs.
func Run(db *gorm.DB, names ...string) error {
	selected, err := pick(names)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		logger.Info("no seeders registered")
		return nil
	}

	for _, s := range selected {
		start := time.Now()
		if err := s.fn(db); err != nil {
			logger.Error("seeder failed", "seeder", s.name, "error", err)
			return fmt.Errorf("seeder %q: %w", s.name, err)
		}
		logger.Info("seeder done", "seeder", s.name, "duration", time.Since(start).String())
	}
	return nil
}

func pick(names []string) ([]seeder, error) {
	mu.Lock()
	defer mu.Unlock()

	if len(names) == 0 {
		return append([]seeder(nil), registry...), nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []seeder
	for _, s := range registry {
		if want[s.name] {
			out = append(out, s)
			delete(want, s.name)
		}
	}
	if len(want) > 0 {
		var unknown []string
		for n := range want {
			unknown = append(unknown, n)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("seeders: unknown %v", unknown)
	}
	return out, nil
}
