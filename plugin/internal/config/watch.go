package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the config directory and re-runs Load whenever config.conf
// or locale.conf is written or replaced, then calls onChange with the new
// records. It runs until ctx is cancelled.
//
// If a reload fails the error is logged and onChange is not called; records
// whose file failed keep their previous value. The write-back of a reload
// fires one more event, which converges because unchanged files are not
// rewritten.
func (l *Loader) Watch(ctx context.Context, onChange func(General, Text)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory rather than the files: atomic saves (ours and
	// most editors') replace the inode.
	if err := watcher.Add(l.dir); err != nil {
		return err
	}

	l.logger.Info("config: watching for changes", "dir", l.dir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch filepath.Base(event.Name) {
			case GeneralFileName, TextFileName:
			default:
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if err := l.Load(); err != nil {
				l.logger.Error("config: reload failed, keeping previous config",
					"file", filepath.Base(event.Name), "err", err)
				continue
			}

			l.logger.Info("config: reloaded", "file", filepath.Base(event.Name))
			if onChange != nil {
				onChange(l.General(), l.Text())
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Error("config: watcher error", "err", err)
		}
	}
}
