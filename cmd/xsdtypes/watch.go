package main

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/CognitoIQ/xsdtypes/internal/snapstore"
	"github.com/CognitoIQ/xsdtypes/location"
)

type watchCmd struct {
	Delay   time.Duration `default:"200ms" help:"Wait this long after the last change before rebuilding."`
	Schemas []string      `arg:"" name:"schema" help:"Schema files or URLs."`
}

// Run saves a snapshot of the schemas to the cache, then saves a new
// one each time a local schema file among them, or among the documents
// they import, is written. It returns when the context is cancelled.
func (c *watchCmd) Run(a *app) error {
	locations, err := a.locations(c.Schemas)
	if err != nil {
		return err
	}
	store, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore()
	if store == nil {
		return errors.New("watch needs a snapshot cache; cache.driver is none")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	key := cacheKey(locations, a.cfg.IncludeElements)
	files, err := c.rebuild(a, store, key, locations)
	if err != nil {
		return err
	}
	watchDirs(a, watcher, files)

	var pending <-chan time.Time
	for {
		select {
		case <-a.ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !files[filepath.Clean(event.Name)] || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			a.log.Debug().Str("event", event.Op.String()).Str("file", event.Name).Msg("schema changed")
			pending = time.After(c.Delay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.log.Error().Err(err).Msg("file watcher error")
		case <-pending:
			pending = nil
			changed, err := c.rebuild(a, store, key, locations)
			if err != nil {
				a.log.Error().Err(err).Msg("rebuild failed, keeping previous snapshot")
				continue
			}
			files = changed
			watchDirs(a, watcher, files)
		}
	}
}

// rebuild ingests locations and saves the result under key. It returns
// the local files that were read.
func (c *watchCmd) rebuild(a *app, store snapstore.Store, key string, locations []string) (map[string]bool, error) {
	r, diags, err := a.build(locations, a.cfg.IncludeElements)
	if err != nil {
		return nil, err
	}
	a.warn(diags)
	if err := store.Save(a.ctx, key, r.ToSnapshot()); err != nil {
		return nil, err
	}
	files := make(map[string]bool)
	for _, loc := range append(r.IngestionOrder(), locations...) {
		if !location.IsURL(loc) {
			files[filepath.Clean(loc)] = true
		}
	}
	a.log.Info().Str("key", key).Int("types", r.Stats().Types).Msg("snapshot saved")
	return files, nil
}

// watchDirs watches the directories holding files rather than the
// files themselves, so editors that save by renaming are noticed.
func watchDirs(a *app, watcher *fsnotify.Watcher, files map[string]bool) {
	for name := range files {
		if err := watcher.Add(filepath.Dir(name)); err != nil {
			a.log.Warn().Err(err).Str("dir", filepath.Dir(name)).Msg("cannot watch")
		}
	}
}
