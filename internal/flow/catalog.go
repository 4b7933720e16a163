package flow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/m3rciful/tripbot/core/logger"
	"github.com/m3rciful/tripbot/internal/storage"
)

// MaxNameBytes bounds catalog names so a name always fits in a Telegram
// callback payload next to the button prefix.
const MaxNameBytes = 48

// Defaults used when a catalog is found empty.
var (
	DefaultRoutes   = []string{"Xorazmdan Buxoroga", "Buxorodan Xorazmga"}
	DefaultVehicles = []string{"Kaptiva", "Malibu", "Cobalt", "Gentra", "Largus", "Lasetti"}
)

// Catalog serves the route and vehicle choice lists. An empty list is seeded
// with defaults before it is returned, so the order conversation never offers
// an empty choice.
type Catalog struct {
	store    storage.Store
	routes   []string
	vehicles []string
}

// NewCatalog binds the defaults to store. Nil defaults fall back to
// DefaultRoutes and DefaultVehicles.
func NewCatalog(store storage.Store, routes, vehicles []string) *Catalog {
	if len(routes) == 0 {
		routes = DefaultRoutes
	}
	if len(vehicles) == 0 {
		vehicles = DefaultVehicles
	}
	return &Catalog{store: store, routes: routes, vehicles: vehicles}
}

// Routes lists route names, seeding the defaults into an empty catalog.
func (c *Catalog) Routes(ctx context.Context) ([]string, error) {
	return c.ensure(ctx, "routes", c.store.ListRoutes, c.store.AddRoute, c.routes)
}

// Vehicles lists vehicle names, seeding the defaults into an empty catalog.
func (c *Catalog) Vehicles(ctx context.Context) ([]string, error) {
	return c.ensure(ctx, "vehicles", c.store.ListVehicles, c.store.AddVehicle, c.vehicles)
}

// Seed fills an empty route or vehicle list with its defaults and reports
// how many rows were added. A list that already has entries is left alone,
// so names the operator removed stay removed.
func (c *Catalog) Seed(ctx context.Context) (int, error) {
	routes, err := c.seedEmpty(ctx, "routes", c.store.ListRoutes, c.store.AddRoute, c.routes)
	if err != nil {
		return routes, err
	}
	vehicles, err := c.seedEmpty(ctx, "vehicles", c.store.ListVehicles, c.store.AddVehicle, c.vehicles)
	return routes + vehicles, err
}

func (c *Catalog) ensure(
	ctx context.Context,
	kind string,
	list func(context.Context) ([]string, error),
	add func(context.Context, string) (bool, error),
	defaults []string,
) ([]string, error) {
	names, err := list(ctx)
	if err != nil || len(names) > 0 {
		return names, err
	}
	if _, err := c.insert(ctx, kind, add, defaults); err != nil {
		return nil, err
	}
	return list(ctx)
}

func (c *Catalog) seedEmpty(
	ctx context.Context,
	kind string,
	list func(context.Context) ([]string, error),
	add func(context.Context, string) (bool, error),
	defaults []string,
) (int, error) {
	names, err := list(ctx)
	if err != nil || len(names) > 0 {
		return 0, err
	}
	return c.insert(ctx, kind, add, defaults)
}

func (c *Catalog) insert(
	ctx context.Context,
	kind string,
	add func(context.Context, string) (bool, error),
	names []string,
) (int, error) {
	added := 0
	for _, name := range names {
		name, err := CleanName(name)
		if err != nil {
			continue
		}
		ok, err := add(ctx, name)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	logger.LogEvent(ctx, logger.SEED, slog.LevelInfo, "catalog.seed",
		slog.String("op", kind),
		slog.Int("count", added),
	)
	return added, nil
}

// Name validation failures reported by CleanName.
var (
	ErrNameEmpty   = errors.New("name is empty")
	ErrNameTooLong = errors.New("name is too long")
)

// CleanName trims and NFC-normalises a catalog name and checks its length.
func CleanName(text string) (string, error) {
	name := norm.NFC.String(strings.TrimSpace(text))
	switch {
	case name == "":
		return "", ErrNameEmpty
	case len(name) > MaxNameBytes:
		return name, ErrNameTooLong
	}
	return name, nil
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func nameOptions(names []string) []Option {
	opts := make([]Option, 0, len(names))
	for _, n := range names {
		opts = append(opts, Option{Label: n, Value: n})
	}
	return opts
}
