package vault

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeOp is the kind of store change.
type ChangeOp int

const (
	OpCreate ChangeOp = iota
	OpWrite
	OpRemove
	OpRename
)

func (op ChangeOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Change is one store change notification.
type Change struct {
	Path string // vault-relative slash path
	Op   ChangeOp
	Time time.Time
}

// ChangeHandler receives change notifications.
type ChangeHandler func(Change)

// Watcher translates filesystem events under a DirVault root into markdown
// record change notifications. New subdirectories are added to the watch
// set as they appear.
type Watcher struct {
	vault   *DirVault
	watcher *fsnotify.Watcher
	handler ChangeHandler
}

// NewWatcher prepares a watcher over the vault delivering events to handler.
func NewWatcher(v *DirVault, handler ChangeHandler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{vault: v, watcher: fsw, handler: handler}
	if err := w.addRecursive(v.Root()); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && p != root {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
}

// Run delivers events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.dispatch(event)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			// Watch errors are transient; keep delivering what we can.
		}
	}
}

func (w *Watcher) dispatch(event fsnotify.Event) {
	// Newly created directories join the watch set.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addRecursive(event.Name)
			return
		}
	}

	if !strings.HasSuffix(event.Name, ".md") {
		return
	}
	rel, err := filepath.Rel(w.vault.Root(), event.Name)
	if err != nil {
		return
	}

	change := Change{Path: filepath.ToSlash(rel), Time: time.Now()}
	switch {
	case event.Op.Has(fsnotify.Create):
		change.Op = OpCreate
	case event.Op.Has(fsnotify.Write):
		change.Op = OpWrite
	case event.Op.Has(fsnotify.Remove):
		change.Op = OpRemove
	case event.Op.Has(fsnotify.Rename):
		change.Op = OpRename
	default:
		return
	}
	w.handler(change)
}
