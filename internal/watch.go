package internal

import (
	"context"

	"github.com/penwyp/UsagePivot/errors"
	"github.com/penwyp/UsagePivot/fileio"
	"github.com/penwyp/UsagePivot/logging"
)

// RunFunc is one pass of the pipeline
type RunFunc func(ctx context.Context, in Inputs) (*Result, error)

// Watch re-runs run whenever one of the inputs changes and passes every
// outcome to onResult. A panicking run is reported as an error and the
// watch goes on. It blocks until ctx is cancelled. The first run is left to
// the caller.
func (r *Reporter) Watch(ctx context.Context, in Inputs, run RunFunc, onResult func(*Result, error)) error {
	watcher, err := fileio.NewWatcher(in.Files(), fileio.WatcherConfig{
		DebounceTime: r.config.Report.Debounce,
	})
	if err != nil {
		return err
	}

	logging.LogInfof("Watching %d inputs for changes", len(watcher.Files()))
	return watcher.Run(ctx, func(ev fileio.FileEvent) {
		logging.LogInfof("Input changed (%s %s), rebuilding report", ev.Type, ev.Path)
		var result *Result
		err := errors.Recover(func() error {
			var err error
			result, err = run(ctx, in)
			return err
		})
		if err != nil {
			logging.LogErrorf("Rebuild failed: %v", err)
		}
		onResult(result, err)
	})
}
