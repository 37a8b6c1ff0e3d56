package sitehooks

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchPosts invalidates cache whenever something under root changes. It
// returns once the watcher is set up; the loop stops when ctx is done.
func (a *App) watchPosts(ctx context.Context, root string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			a.Echo.Logger.Warnf("watch %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				a.Echo.Logger.Warnf("watch %s: %v", path, err)
			}
		}
		return nil
	})
	if err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = w.Add(event.Name)
					}
				}
				a.Echo.Logger.Debugf("change detected: %s (%s)", event.Name, event.Op)
				a.Cache.Invalidate()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				a.Echo.Logger.Warnf("watcher error: %v", err)
			}
		}
	}()
	return nil
}
