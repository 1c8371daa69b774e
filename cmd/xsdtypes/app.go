package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"

	"github.com/CognitoIQ/xsdtypes/internal/config"
	"github.com/CognitoIQ/xsdtypes/internal/snapstore"
	"github.com/CognitoIQ/xsdtypes/location"
	"github.com/CognitoIQ/xsdtypes/xsd"
)

// app is the state shared by every command.
type app struct {
	ctx context.Context
	cfg *config.Config
	log zerolog.Logger
	out io.Writer
}

func (a *app) newRegistry() *xsd.Registry {
	return xsd.New(
		xsd.WithLogger(a.log),
		xsd.WithHTTPClient(&http.Client{Timeout: a.cfg.HTTP.Timeout}),
	)
}

// locations returns the configured schemas followed by args, with
// local paths made absolute and duplicates removed.
func (a *app) locations(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	for _, loc := range append(append([]string(nil), a.cfg.Schemas...), args...) {
		if !location.IsURL(loc) {
			abs, err := filepath.Abs(loc)
			if err != nil {
				return nil, err
			}
			loc = abs
		}
		if !seen[loc] {
			seen[loc] = true
			result = append(result, loc)
		}
	}
	return result, nil
}

// build ingests locations, in order, into a fresh registry.
func (a *app) build(locations []string, includeElements bool) (*xsd.Registry, xsd.Diagnostics, error) {
	r := a.newRegistry()
	var all xsd.Diagnostics
	for _, loc := range locations {
		diags, err := r.ProcessSchema(a.ctx, loc, includeElements)
		all = append(all, diags...)
		if err != nil {
			return nil, all, err
		}
	}
	return r, all, nil
}

func noClose() error { return nil }

// openStore returns the configured snapshot store, or nil if caching
// is disabled.
func (a *app) openStore() (snapstore.Store, func() error, error) {
	switch a.cfg.Cache.Driver {
	case config.DriverFile:
		s, err := snapstore.NewFileStore(a.cfg.Cache.Path)
		return s, noClose, err
	case config.DriverSQLite:
		s, err := snapstore.OpenSQLite(a.ctx, a.cfg.Cache.Path)
		if err != nil {
			return nil, noClose, err
		}
		return s, s.Close, nil
	}
	return nil, noClose, nil
}

func cacheKey(locations []string, includeElements bool) string {
	return snapstore.KeyFor(append(slices.Clip(locations), fmt.Sprintf("elements=%t", includeElements))...)
}

// cached returns a registry for locations, loading it from the
// snapshot cache if possible and filling the cache otherwise.
func (a *app) cached(locations []string) (*xsd.Registry, error) {
	if len(locations) == 0 {
		return a.newRegistry(), nil
	}
	includeElements := a.cfg.IncludeElements
	store, closeStore, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer closeStore()

	key := cacheKey(locations, includeElements)
	if store != nil {
		snap, err := store.Load(a.ctx, key)
		if err == nil {
			a.log.Debug().Str("key", key).Msg("using cached snapshot")
			r := a.newRegistry()
			r.FromSnapshot(snap)
			return r, nil
		}
		if !errors.Is(err, snapstore.ErrNotFound) {
			a.log.Warn().Err(err).Str("key", key).Msg("ignoring unreadable snapshot")
		}
	}

	r, diags, err := a.build(locations, includeElements)
	if err != nil {
		return nil, err
	}
	a.warn(diags)
	if store != nil {
		if err := store.Save(a.ctx, key, r.ToSnapshot()); err != nil {
			a.log.Warn().Err(err).Str("key", key).Msg("could not cache snapshot")
		}
	}
	return r, nil
}

func (a *app) warn(diags xsd.Diagnostics) {
	if len(diags) > 0 {
		a.log.Warn().Int("count", len(diags)).Msg("schemas loaded with diagnostics")
	}
}
