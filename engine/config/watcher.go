package config

import (
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/scene"
	"github.com/fsnotify/fsnotify"
)

// watcher is the implementation of the Watcher interface.
type watcher struct {
	path    string
	fs      *fsnotify.Watcher
	updates chan *scene.Params
	errs    chan error
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// Watcher reloads a scene file whenever it is written. Only the latest reload is kept: a reload
// that has not been received yet is replaced by a newer one.
type Watcher interface {
	// Updates delivers freshly loaded parameter blocks.
	Updates() <-chan *scene.Params

	// Errors delivers reload failures. Unreceived errors are dropped.
	Errors() <-chan error

	// Path returns the watched file.
	Path() string

	// Close stops watching. Safe to call more than once.
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher watches the directory of path so editors that replace the file on save are seen.
//
// Parameters:
//   - path: the scene file to watch
//
// Returns:
//   - Watcher: the running watcher
//   - error: an error if the file system watcher could not be created
func NewWatcher(path string) (Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := FormatOf(abs); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &watcher{
		path:    abs,
		fs:      fw,
		updates: make(chan *scene.Params, 1),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

func (w *watcher) reload() {
	p, err := Load(w.path)
	if err != nil {
		w.report(err)
		return
	}
	common.Logger().Info("scene file reloaded", "path", w.path, "voxels", len(p.Grid))
	for {
		select {
		case w.updates <- p:
			return
		default:
		}
		select {
		case <-w.updates:
		default:
		}
	}
}

func (w *watcher) report(err error) {
	common.Logger().Warn("scene file reload failed", "path", w.path, "error", err)
	select {
	case w.errs <- err:
	default:
	}
}

func (w *watcher) Updates() <-chan *scene.Params {
	return w.updates
}

func (w *watcher) Errors() <-chan error {
	return w.errs
}

func (w *watcher) Path() string {
	return w.path
}

func (w *watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}
