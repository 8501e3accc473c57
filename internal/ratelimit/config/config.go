package config

import (
	"fmt"
	"time"

	"storefront/internal/ratelimit/models"
	dErrors "storefront/pkg/domain-errors"
)

// Limit defines fixed-window parameters for a route class.
type Limit struct {
	RequestsPerWindow int
	Window            time.Duration
}

// Validate rejects non-positive limits or windows.
func (l Limit) Validate() error {
	if l.RequestsPerWindow <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "requests per window must be positive")
	}
	if l.Window <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "window must be positive")
	}
	return nil
}

// Config holds the admission policy per route class.
type Config struct {
	Limits        map[models.RouteClass]Limit
	SweepInterval time.Duration
	Disabled      bool
}

// DefaultConfig: auth 5 per 15 minutes, api 100 per minute, sweep every 5 minutes.
func DefaultConfig() *Config {
	return &Config{
		Limits: map[models.RouteClass]Limit{
			models.ClassAuth: {RequestsPerWindow: 5, Window: 15 * time.Minute},
			models.ClassAPI:  {RequestsPerWindow: 100, Window: time.Minute},
		},
		SweepInterval: 5 * time.Minute,
	}
}

// LimitFor returns the policy for class.
func (c *Config) LimitFor(class models.RouteClass) (Limit, error) {
	l, ok := c.Limits[class]
	if !ok {
		return Limit{}, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("no limit configured for class %q", class))
	}
	return l, nil
}

// Validate requires a valid policy for every route class.
func (c *Config) Validate() error {
	for _, class := range []models.RouteClass{models.ClassAuth, models.ClassAPI} {
		l, err := c.LimitFor(class)
		if err != nil {
			return err
		}
		if err := l.Validate(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidInput, fmt.Sprintf("%s: %s", class, err.Error()))
		}
	}
	if c.SweepInterval <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "sweep interval must be positive")
	}
	return nil
}
