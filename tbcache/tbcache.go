// Package tbcache caches translated units by entry address using Akita
// cache components for tag and replacement management.
package tbcache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/rvdbt/ir"
)

// Config holds unit cache configuration parameters.
type Config struct {
	// Slots is the total number of cached units.
	Slots int
	// Associativity (number of ways per set).
	Associativity int
}

// DefaultConfig returns the default unit cache configuration.
func DefaultConfig() Config {
	return Config{
		Slots:         4096,
		Associativity: 8,
	}
}

// tagGranularity is the address granularity of the tag store. Unit entry
// addresses are at least 2-byte aligned, so adjacent compressed entry
// points stay distinguishable.
const tagGranularity = 2

// Statistics holds unit cache performance statistics.
type Statistics struct {
	Lookups       uint64
	Hits          uint64
	Misses        uint64
	Inserts       uint64
	Evictions     uint64
	Invalidations uint64
}

// Cache is a set-associative cache of translated units keyed by the unit's
// first guest address. Replacement is LRU via the Akita directory.
type Cache struct {
	config Config

	// Akita cache directory for tag/state management.
	directory *akitacache.DirectoryImpl

	// Cached units, indexed by (setID * associativity + wayID).
	units []*ir.Program

	stats Statistics
}

// New creates a unit cache with the given configuration.
func New(config Config) *Cache {
	numSets := config.Slots / config.Associativity

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			tagGranularity,
			akitacache.NewLRUVictimFinder(),
		),
		units: make([]*ir.Program, numSets*config.Associativity),
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

// Lookup returns the cached unit starting at pc, or nil on a miss.
func (c *Cache) Lookup(pc uint64) *ir.Program {
	c.stats.Lookups++

	block := c.directory.Lookup(0, pc)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block) // Update LRU
		return c.units[c.blockIndex(block)]
	}

	c.stats.Misses++
	return nil
}

// Insert stores a translated unit, evicting the set's LRU entry when the
// set is full.
func (c *Cache) Insert(prog *ir.Program) {
	c.stats.Inserts++

	victim := c.directory.FindVictim(prog.PCFirst)
	if victim == nil {
		return
	}
	if victim.IsValid {
		c.stats.Evictions++
	}

	victim.Tag = prog.PCFirst
	victim.IsValid = true
	victim.IsDirty = false
	c.units[c.blockIndex(victim)] = prog
	c.directory.Visit(victim) // Update LRU
}

// InvalidateRange drops every cached unit whose covered guest range
// [PCFirst, PCEnd) overlaps [lo, hi). This is the write-to-code and
// fence.i resynchronization path.
func (c *Cache) InvalidateRange(lo, hi uint64) {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if !block.IsValid {
				continue
			}
			prog := c.units[c.blockIndex(block)]
			if prog == nil || prog.PCEnd <= lo || prog.PCFirst >= hi {
				continue
			}
			block.IsValid = false
			c.units[c.blockIndex(block)] = nil
			c.stats.Invalidations++
		}
	}
}

// Reset drops every cached unit and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	for i := range c.units {
		c.units[i] = nil
	}
	c.stats = Statistics{}
}
