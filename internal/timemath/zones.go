package timemath

import (
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrUnknownTimezone indicates an IANA timezone name could not be loaded.
var ErrUnknownTimezone = errors.New("timemath: unknown timezone")

// DefaultZoneCacheSize bounds the number of locations kept by NewZones when
// no explicit size is given.
const DefaultZoneCacheSize = 64

// Zones resolves IANA timezone names, caching loaded locations.
type Zones struct {
	cache *lru.Cache[string, *time.Location]
	load  func(name string) (*time.Location, error)
}

// NewZones constructs a resolver holding up to size locations.
func NewZones(size int) *Zones {
	if size <= 0 {
		size = DefaultZoneCacheSize
	}
	cache, err := lru.New[string, *time.Location](size)
	if err != nil {
		// lru.New only fails for non-positive sizes, which are normalised above.
		panic(err)
	}
	return &Zones{cache: cache, load: time.LoadLocation}
}

// Resolve returns the location for name. An empty name or "Local" is
// rejected: sessions must always carry an explicit zone.
func (z *Zones) Resolve(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, name)
	}
	if z == nil {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, name)
		}
		return loc, nil
	}
	if loc, ok := z.cache.Get(name); ok {
		return loc, nil
	}
	loc, err := z.load(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, name)
	}
	z.cache.Add(name, loc)
	return loc, nil
}

// Len reports how many locations are currently cached.
func (z *Zones) Len() int {
	if z == nil {
		return 0
	}
	return z.cache.Len()
}
