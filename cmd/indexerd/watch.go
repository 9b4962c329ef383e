package main

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"github.com/luizstacio/fuel-indexer/supervisor"
	"github.com/luizstacio/fuel-indexer/telemetry"
)

// watchWasmModule watches path for writes and dispatches an AssetReload
// for id whenever the deployed wasm module changes on disk, the same
// fsnotify.Watcher event loop viper's WatchConfig uses for live config
// reload, pointed here at a wasm module instead of a config file. The
// returned func stops the watch; callers should defer it.
func watchWasmModule(ctx context.Context, sup *supervisor.Supervisor, id supervisor.IndexerID, path string, logger telemetry.Logger) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := sup.Dispatch(supervisor.ServiceRequest{
					AssetReload: &supervisor.AssetReloadRequest{Namespace: id.Namespace, Identifier: id.Identifier},
				}); err != nil {
					logger.Warn("wasm module reload dispatch failed", "namespace", id.Namespace, "identifier", id.Identifier, "error", err)
				}
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("wasm module watch error", "namespace", id.Namespace, "identifier", id.Identifier, "error", werr)
			}
		}
	}()

	return watcher.Close, nil
}
