// Package cache stores resolution outcomes keyed by the content that
// produced them. Changing any input record or scoring setting changes the key.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"os"
	"path/filepath"
	"sync"

	"github.com/namelink/internal/match"
)

// ErrMiss is returned by Get when nothing is stored under a key.
var ErrMiss = errors.New("cache miss")

// ResultCache keeps outcomes in memory and, when dir is set, as JSON files.
type ResultCache struct {
	mu  sync.RWMutex
	m   map[string]*match.Outcome
	dir string
}

// New creates a cache rooted at dir. An empty dir keeps entries in memory only.
func New(dir string) *ResultCache {
	return &ResultCache{m: make(map[string]*match.Outcome), dir: dir}
}

// Key hashes the reference records, the query records and the settings that
// affect scoring. Worker count and debug output do not change an outcome and
// are left out.
func Key(references, queries []match.Record, cfg match.EngineConfig) string {
	h := sha256.New()

	writeRecords(h, "references", references)
	writeRecords(h, "queries", queries)

	tiers := cfg.Tiers
	if tiers == nil {
		tiers = match.DefaultTiers()
	}
	metric := cfg.Metric
	if metric == "" {
		metric = match.MetricRatio
	}
	fmt.Fprintf(h, "settings|%d|%s|%g|%g|%g|%d|%d\n",
		cfg.ResolutionWindow, metric, cfg.AcceptanceFloor,
		tiers.Matched, tiers.Ambiguous, cfg.Birth.Min, cfg.Birth.Max)

	return hex.EncodeToString(h.Sum(nil))
}

func writeRecords(h hash.Hash, section string, records []match.Record) {
	fmt.Fprintf(h, "%s|%d\n", section, len(records))
	for _, r := range records {
		birth := "-"
		if r.BirthYear != nil {
			birth = fmt.Sprint(*r.BirthYear)
		}
		fmt.Fprintf(h, "%q|%q|%q|%s|%d\n", r.ID, r.Name, r.City, birth, r.Kind)
	}
}

// Get returns the outcome stored under key, checking memory before disk.
func (c *ResultCache) Get(key string) (*match.Outcome, error) {
	c.mu.RLock()
	v, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	if c.dir == "" {
		return nil, ErrMiss
	}
	path := c.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrMiss
		}
		return nil, err
	}

	var outcome match.Outcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		return nil, fmt.Errorf("cache file broken: %s: %w", path, err)
	}

	c.mu.Lock()
	c.m[key] = &outcome
	c.mu.Unlock()
	return &outcome, nil
}

// Put stores outcome under key. The file is written to a temporary name and
// renamed so a concurrent reader never sees a partial entry.
func (c *ResultCache) Put(key string, outcome *match.Outcome) error {
	c.mu.Lock()
	c.m[key] = outcome
	c.mu.Unlock()

	if c.dir == "" {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(outcome)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path(key))
}

func (c *ResultCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}
