// Package metadata caches simulator-side aircraft and livery names.
// Entries live for the process lifetime; an optional sqlite warm-start
// file lets a restart skip the full catalog fetch.
package metadata

import (
	"context"
	"fmt"
	"sync"

	"github.com/dhawton/log4g"

	"qrv_ops/internal/simapi"
)

var log = log4g.Category("metadata")

// Fallback names on cache miss.
const (
	UnknownAircraft = "Unknown Aircraft"
	UnknownLivery   = "Unknown Livery"
)

// AircraftAPI is the slice of the simulator client the cache needs.
type AircraftAPI interface {
	GetAircraft(ctx context.Context) ([]simapi.AircraftInfo, error)
	GetAircraftLiveries(ctx context.Context, aircraftID string) ([]simapi.LiveryInfo, error)
}

// Cache maps aircraft and livery ids to display names. Population is
// append-only; duplicate fills are harmless.
type Cache struct {
	api  AircraftAPI
	warm *warmStore // nil when no warm-start file is configured

	mu             sync.Mutex
	aircraft       map[string]string // aircraft id -> name
	aircraftLoaded bool
	liveries       map[string]string // livery id -> name
	liveryFetched  map[string]bool   // aircraft id -> liveries fetched
}

// New creates a cache over the given API. warmPath may be empty.
func New(api AircraftAPI, warmPath string) *Cache {
	c := &Cache{
		api:           api,
		aircraft:      make(map[string]string),
		liveries:      make(map[string]string),
		liveryFetched: make(map[string]bool),
	}
	if warmPath != "" {
		warm, err := openWarmStore(warmPath)
		if err != nil {
			log.Warning("warm-start store unavailable: " + err.Error())
		} else {
			c.warm = warm
			warm.loadInto(c)
		}
	}
	return c
}

// Close releases the warm-start store, if any.
func (c *Cache) Close() {
	if c.warm != nil {
		c.warm.close()
	}
}

// LoadAircraft fetches the full aircraft catalog. Called once at startup;
// later misses do not retrigger it.
func (c *Cache) LoadAircraft(ctx context.Context) error {
	list, err := c.api.GetAircraft(ctx)
	if err != nil {
		return fmt.Errorf("load aircraft catalog: %w", err)
	}
	if list == nil {
		return fmt.Errorf("load aircraft catalog: empty result")
	}

	c.mu.Lock()
	for _, a := range list {
		c.aircraft[a.ID] = a.Name
	}
	c.aircraftLoaded = true
	c.mu.Unlock()

	if c.warm != nil {
		c.warm.putAircraft(list)
	}
	log.Info(fmt.Sprintf("aircraft catalog loaded: %d types", len(list)))
	return nil
}

// AircraftName resolves an aircraft id, loading the catalog on first use.
func (c *Cache) AircraftName(ctx context.Context, aircraftID string) string {
	c.mu.Lock()
	name, ok := c.aircraft[aircraftID]
	loaded := c.aircraftLoaded
	c.mu.Unlock()
	if ok {
		return name
	}
	if !loaded {
		if err := c.LoadAircraft(ctx); err != nil {
			log.Error(err.Error())
			return UnknownAircraft
		}
		c.mu.Lock()
		name, ok = c.aircraft[aircraftID]
		c.mu.Unlock()
		if ok {
			return name
		}
	}
	return UnknownAircraft
}

// LiveryName resolves a livery id. On first miss for an aircraft, all of
// that aircraft's liveries are fetched and cached together.
func (c *Cache) LiveryName(ctx context.Context, aircraftID, liveryID string) string {
	c.mu.Lock()
	name, ok := c.liveries[liveryID]
	fetched := c.liveryFetched[aircraftID]
	c.mu.Unlock()
	if ok {
		return name
	}
	if fetched {
		return UnknownLivery
	}

	list, err := c.api.GetAircraftLiveries(ctx, aircraftID)
	if err != nil {
		log.Error(fmt.Sprintf("liveries for %s: %s", aircraftID, err.Error()))
		return UnknownLivery
	}

	c.mu.Lock()
	for _, l := range list {
		c.liveries[l.ID] = l.LiveryName
	}
	c.liveryFetched[aircraftID] = true
	name, ok = c.liveries[liveryID]
	c.mu.Unlock()

	if c.warm != nil {
		c.warm.putLiveries(list)
	}
	if !ok {
		return UnknownLivery
	}
	return name
}
