package main

import (
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/justyntemme/chipsynth/pkg/framework/debug"
)

// Watch reloads the patch at path on every write and sends it to
// patches. Read errors go to errs. The watcher stops when done closes.
func Watch(path string, patches chan<- *Patch, errs chan<- error, done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("can't create watcher: %w", err)
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// editors on linux also emit rename and chmod when saving
				if event.Op&(fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if event.Op&fsnotify.Rename != 0 {
					// the old inode is gone; follow the new file
					_ = watcher.Add(path)
				}
				p, err := ReadPatch(path)
				if err != nil {
					select {
					case errs <- err:
					case <-done:
						return
					}
					continue
				}
				debug.Debug("reloaded %s", path)
				select {
				case patches <- p:
				case <-done:
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				case <-done:
					return
				}
			case <-done:
				return
			}
		}
	}()
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", path, err)
	}
	return nil
}
