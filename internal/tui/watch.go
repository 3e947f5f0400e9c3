package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"

	imgutil "github.com/jmylchreest/kuntatinte/internal/image"
)

// folderChangedMsg reports that images were added to or removed from the
// wallpapers folder.
type folderChangedMsg struct{}

// folderWatcher coalesces fsnotify events on the wallpapers folder into
// single change notifications.
type folderWatcher struct {
	watcher *fsnotify.Watcher
	changed chan struct{}
	logger  hclog.Logger
}

func watchFolder(folder string, logger hclog.Logger) (*folderWatcher, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(folder); err != nil {
		_ = w.Close()
		return nil, err
	}
	fw := &folderWatcher{watcher: w, changed: make(chan struct{}, 1), logger: logger}
	go fw.loop()
	return fw, nil
}

func (fw *folderWatcher) loop() {
	defer close(fw.changed)
	for {
		select {
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 || !imgutil.HasImageExtension(ev.Name) {
				continue
			}
			select {
			case fw.changed <- struct{}{}:
			default:
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watching wallpapers folder", "error", err)
		}
	}
}

// wait blocks until the folder changes. It returns nil once the watcher is
// closed.
func (fw *folderWatcher) wait() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-fw.changed; !ok {
			return nil
		}
		return folderChangedMsg{}
	}
}

func (fw *folderWatcher) Close() error { return fw.watcher.Close() }
