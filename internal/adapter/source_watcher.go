package adapter

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	m "storylist.dev/pkg/storylist/internal/model"
)

// SourceWatcher reports changes to watched module files.
type SourceWatcher interface {
	// Watch subscribes to changes below roots. Changed module paths are sent
	// on the first channel until ctx is done; both channels are closed then.
	Watch(ctx context.Context, roots []m.Path) (<-chan m.Path, <-chan error, error)
}

// LocalSourceWatcher implements SourceWatcher with fsnotify. Directories are
// watched instead of files so editors that save by rename keep being seen.
type LocalSourceWatcher struct {
	fs SourceFSAdapter
}

// NewLocalSourceWatcher constructs a LocalSourceWatcher.
func NewLocalSourceWatcher(fs SourceFSAdapter) *LocalSourceWatcher {
	return &LocalSourceWatcher{fs: fs}
}

// Watch starts watching the directories containing roots (or the roots
// themselves when they are directories, recursively).
func (w *LocalSourceWatcher) Watch(ctx context.Context, roots []m.Path) (<-chan m.Path, <-chan error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	dirs, err := w.watchDirs(roots)
	if err != nil {
		_ = watcher.Close()
		return nil, nil, err
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, nil, err
		}

		slog.Debug("watching directory", "dir", dir)
	}

	changes := make(chan m.Path)
	errs := make(chan error, 1)

	go func() {
		defer close(changes)
		defer close(errs)
		defer func() { _ = watcher.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				var changed []m.Path

				switch {
				case event.Has(fsnotify.Create) && w.isDir(event.Name):
					changed = w.addCreatedDir(watcher, event.Name)
				case relevant(event):
					changed = []m.Path{m.Path(event.Name)}
				}

				for _, path := range changed {
					select {
					case changes <- path:
					case <-ctx.Done():
						return
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}

				select {
				case errs <- err:
				default:
					slog.Warn("dropped watcher error", "error", err)
				}
			}
		}
	}()

	return changes, errs, nil
}

func (w *LocalSourceWatcher) watchDirs(roots []m.Path) ([]string, error) {
	seen := make(map[string]struct{})

	var dirs []string

	add := func(dir string) {
		if _, ok := seen[dir]; ok {
			return
		}

		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	for _, root := range roots {
		info, err := w.fs.FileInfo(root)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			add(filepath.Dir(string(root)))
			continue
		}

		err = w.fs.Walk(root, true, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() {
				add(path)
			}

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return dirs, nil
}

func (w *LocalSourceWatcher) isDir(path string) bool {
	info, err := w.fs.FileInfo(m.Path(path))
	return err == nil && info.IsDir()
}

// addCreatedDir watches a directory created after Watch started, along with
// its subdirectories. Module files already inside it are returned as changes
// since their events fired before the directory was watched.
func (w *LocalSourceWatcher) addCreatedDir(watcher *fsnotify.Watcher, dir string) []m.Path {
	switch filepath.Base(dir) {
	case "node_modules", ".git":
		return nil
	}

	var found []m.Path

	err := w.fs.Walk(m.Path(dir), true, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if !info.IsDir() {
			if m.ModuleSuffix(path) != "" {
				found = append(found, m.Path(path))
			}

			return nil
		}

		if err := watcher.Add(path); err != nil {
			slog.Warn("failed to watch new directory", "dir", path, "error", err)
			return nil
		}

		slog.Debug("watching directory", "dir", path)

		return nil
	})
	if err != nil {
		slog.Warn("failed to walk new directory", "dir", dir, "error", err)
	}

	return found
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	return m.ModuleSuffix(event.Name) != ""
}
