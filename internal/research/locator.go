package research

import (
	"context"
	"fmt"
	"math"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// Locator resolves the device position for places queries.
type Locator interface {
	Locate(ctx context.Context) (model.Coordinate, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (model.Coordinate, error)

// Locate calls f.
func (f LocatorFunc) Locate(ctx context.Context) (model.Coordinate, error) {
	return f(ctx)
}

// StaticLocator returns a configured position. With no position it reports
// that location is unavailable.
type StaticLocator struct {
	Coordinate *model.Coordinate
}

// Locate returns the configured coordinate.
func (l StaticLocator) Locate(_ context.Context) (model.Coordinate, error) {
	if l.Coordinate == nil {
		return model.Coordinate{}, fmt.Errorf("%w: no location configured", common.ErrGeolocation)
	}
	c := *l.Coordinate
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return model.Coordinate{}, fmt.Errorf("%w: coordinate out of range (%g, %g)", common.ErrGeolocation, c.Latitude, c.Longitude)
	}
	return c, nil
}
