package dupfind

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/idelchi/dupfind/internal/recursion"
)

// dispatchFunc handles one discovered file. It runs on its own goroutine.
type dispatchFunc func(ctx context.Context, fd FileDescriptor)

// walker discovers regular non-empty files below root.
type walker struct {
	root     string
	policy   recursion.Policy
	excludes []*regexp.Regexp
	minSize  int64
	workers  int
	engine   Engine
	log      *zap.Logger
	counters *counters
	report   func(error)
}

// walk traverses the tree and calls dispatch for every file in scope.
// It returns after the tree is exhausted and every dispatched unit has
// finished, so the caller may close its delivery channel afterwards.
func (w *walker) walk(ctx context.Context, dispatch dispatchFunc) error {
	var units sync.WaitGroup

	var err error

	switch w.engine {
	case EngineFastwalk:
		err = w.fastWalk(ctx, &units, dispatch)
	default:
		err = w.bfsWalk(ctx, &units, dispatch)
	}

	units.Wait()

	if err != nil {
		return err
	}

	return ctx.Err()
}

// bfsWalk drains a queue of directory tasks seeded with the root.
func (w *walker) bfsWalk(ctx context.Context, units *sync.WaitGroup, dispatch dispatchFunc) error {
	queue := newDirQueue()
	queue.push(DirectoryTask{Path: w.root, Budget: w.policy.InitialBudget()})

	stop := context.AfterFunc(ctx, queue.close)
	defer stop()

	var listers sync.WaitGroup

	for range max(w.workers, 1) {
		listers.Go(func() {
			for {
				task, ok := queue.pop()
				if !ok {
					return
				}

				w.scanDir(ctx, task, queue, units, dispatch)
				queue.done()
			}
		})
	}

	listers.Wait()

	return nil
}

// scanDir lists one directory, dispatching its files and queueing its
// subdirectories as the policy allows.
func (w *walker) scanDir(
	ctx context.Context,
	task DirectoryTask,
	queue *dirQueue,
	units *sync.WaitGroup,
	dispatch dispatchFunc,
) {
	entries, err := os.ReadDir(task.Path)
	if err != nil {
		w.report(&DirectoryReadError{Path: task.Path, Err: err})

		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}

		path := filepath.Join(task.Path, entry.Name())

		if re := matchExclude(path, entry.IsDir(), w.excludes); re != nil {
			w.log.Debug("excluding path", zap.String("path", path), zap.Stringer("pattern", re))

			continue
		}

		info, err := entry.Info()
		if err != nil {
			w.report(&MetadataError{Path: path, Err: err})

			continue
		}

		switch {
		case info.Mode().IsRegular():
			w.emit(ctx, FileDescriptor{Path: path, Size: info.Size()}, units, dispatch)
		case info.IsDir():
			w.descend(task, path, queue)
		}
	}
}

// descend queues a subdirectory when the policy permits entering it.
func (w *walker) descend(parent DirectoryTask, path string, queue *dirQueue) {
	switch {
	case !w.policy.AllowsRecursion():
		return
	case w.policy.IsUnbounded():
		queue.push(DirectoryTask{Path: path})
	case parent.Budget > 0:
		queue.push(DirectoryTask{Path: path, Budget: parent.Budget - 1})
	default:
		w.log.Debug("skipping directory (depth exhausted)", zap.String("path", path))
	}
}

// emit dispatches a file as an independent unit of work.
func (w *walker) emit(ctx context.Context, fd FileDescriptor, units *sync.WaitGroup, dispatch dispatchFunc) {
	if fd.Size == 0 || fd.Size < w.minSize {
		return
	}

	w.counters.discovered.Add(1)

	units.Go(func() { dispatch(ctx, fd) })
}

// fastWalk traverses the tree with fastwalk, enforcing the policy by depth.
//
//nolint:varnamelen // d is standard for DirEntry
func (w *walker) fastWalk(ctx context.Context, units *sync.WaitGroup, dispatch dispatchFunc) error {
	conf := &fastwalk.Config{
		Follow:     false,
		NumWorkers: max(w.workers, 1),
	}

	return fastwalk.Walk(conf, w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil || d.IsDir() {
				w.report(&DirectoryReadError{Path: path, Err: err})
			} else {
				w.report(&MetadataError{Path: path, Err: err})
			}

			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if path == w.root {
			return nil
		}

		depth := calculateDepth(path, w.root)

		if re := matchExclude(path, d.IsDir(), w.excludes); re != nil {
			w.log.Debug("excluding path", zap.String("path", path), zap.Stringer("pattern", re))

			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			if !w.policy.PermitsDir(depth) {
				w.log.Debug("skipping directory (depth exhausted)", zap.String("path", path))

				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			w.report(&MetadataError{Path: path, Err: err})

			return nil
		}

		w.emit(ctx, FileDescriptor{Path: path, Size: info.Size()}, units, dispatch)

		return nil
	})
}
