package dupfind

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Run scans opt.Path and returns the groups of files with identical contents.
//
// Only setup problems are returned as errors: a missing or unreadable root,
// bad options, or cancellation via ctx. Directories and files that cannot be
// read during the scan are logged to opt.Logger, counted in Stats.ErrorCount
// and left out of the result. On cancellation no groups are returned.
//
// Progress updates are sent to progressHook if provided.
func Run(ctx context.Context, opt Options, progressHook func(Progress)) (*Result, error) {
	opt = opt.withDefaults()

	root, err := resolveRoot(opt.Path)
	if err != nil {
		return nil, err
	}

	if opt.Strategy, err = ParseStrategy(string(opt.Strategy)); err != nil {
		return nil, err
	}

	if opt.Engine, err = ParseEngine(string(opt.Engine)); err != nil {
		return nil, err
	}

	if opt.Algorithm, err = ParseAlgorithm(string(opt.Algorithm)); err != nil {
		return nil, err
	}

	excludes, err := compileExcludes(opt.Excludes)
	if err != nil {
		return nil, err
	}

	log := opt.Logger
	log.Debug("starting scan",
		zap.String("root", root),
		zap.String("recursion", opt.Recursion.Mode().String()),
		zap.Int("depth", opt.Recursion.InitialBudget()),
		zap.String("strategy", string(opt.Strategy)),
		zap.String("engine", string(opt.Engine)),
		zap.String("algorithm", string(opt.Algorithm)),
		zap.Strings("excludes", opt.Excludes),
	)

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := &pipeline{
		opt:      opt,
		log:      log,
		counters: &counters{},
		hasher:   NewHasher(opt.Algorithm),
	}

	p.walker = &walker{
		root:     root,
		policy:   opt.Recursion,
		excludes: excludes,
		minSize:  opt.MinSize,
		workers:  opt.DirWorkers,
		engine:   opt.Engine,
		log:      log,
		counters: p.counters,
		report:   p.report,
	}

	startProgressReporter(ctx, p.counters, progressHook, opt.ProgressInterval)

	start := time.Now()

	var buckets map[string][]FileDescriptor

	switch opt.Strategy {
	case StrategyDirect:
		buckets, err = p.direct(ctx)
	default:
		buckets, err = p.sizeFirst(ctx)
	}

	if err != nil {
		return nil, err
	}

	groups := buildGroups(buckets)
	stats := p.counters.stats()
	stats.Elapsed = time.Since(start)

	for _, g := range groups {
		stats.DuplicateFiles += int64(len(g.Files))
		stats.WastedBytes += g.Wasted()
	}

	log.Debug("scan finished",
		zap.Int64("files", stats.FilesScanned),
		zap.Int64("candidates", stats.Candidates),
		zap.Int64("hashed", stats.FilesHashed),
		zap.Int("groups", len(groups)),
		zap.Int64("errors", stats.ErrorCount),
		zap.Duration("elapsed", stats.Elapsed),
	)

	return &Result{
		Root:      root,
		Recursion: opt.Recursion.String(),
		Strategy:  opt.Strategy,
		Algorithm: opt.Algorithm,
		Groups:    groups,
		Stats:     stats,
	}, nil
}

// resolveRoot makes path absolute and verifies it is a readable directory.
func resolveRoot(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}

	dir, err := os.Open(abs)
	if err != nil {
		return "", fmt.Errorf("accessing path %q: %w", path, err)
	}
	defer dir.Close()

	info, err := dir.Stat()
	if err != nil {
		return "", fmt.Errorf("accessing path %q: %w", path, err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("path %q: %w", path, ErrNotDirectory)
	}

	if _, err := dir.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading directory %q: %w", path, err)
	}

	return abs, nil
}

// pipeline wires the walker, the hashing stage and the aggregator.
type pipeline struct {
	opt      Options
	log      *zap.Logger
	counters *counters
	hasher   *Hasher
	walker   *walker
}

// report logs a non-fatal traversal error.
func (p *pipeline) report(err error) {
	p.counters.errors.Add(1)
	p.log.Warn("skipping unreadable entry", zap.String("kind", errorKind(err)), zap.Error(err))
}

// unitFunc turns a discovered descriptor into the value delivered to the
// aggregator. Returning false drops the descriptor.
type unitFunc func(ctx context.Context, fd FileDescriptor) (FileDescriptor, bool)

// delivery is the bounded channel between the walker's units and the aggregator.
type delivery struct {
	out      chan FileDescriptor
	walkErr  chan error
	counters *counters
}

// discover starts the walker. Every dispatched file runs unit and sends its
// result on the returned delivery, which is closed once the walk and all of
// its units have finished.
func (p *pipeline) discover(ctx context.Context, unit unitFunc) *delivery {
	d := &delivery{
		out:      make(chan FileDescriptor, p.opt.Buffer),
		walkErr:  make(chan error, 1),
		counters: p.counters,
	}

	go func() {
		defer close(d.out)

		d.walkErr <- p.walker.walk(ctx, func(ctx context.Context, fd FileDescriptor) {
			fd, ok := unit(ctx, fd)
			if !ok {
				return
			}

			select {
			case d.out <- fd:
				p.counters.sent.Add(1)
			case <-ctx.Done():
			}
		})
	}()

	return d
}

// finish returns the walk error, or ErrChannelClosed if the aggregator
// received a different number of results than the units delivered.
func (d *delivery) finish(received int) error {
	if err := <-d.walkErr; err != nil {
		return err
	}

	if sent := d.counters.sent.Load(); int64(received) != sent {
		return fmt.Errorf("%w: received %d of %d results", ErrChannelClosed, received, sent)
	}

	return nil
}

// sizeFirst buckets every discovered file by size and hashes only the files
// whose size is shared with another file.
func (p *pipeline) sizeFirst(ctx context.Context) (map[string][]FileDescriptor, error) {
	found := p.discover(ctx, func(_ context.Context, fd FileDescriptor) (FileDescriptor, bool) {
		return fd, true
	})

	sizes, received := groupBy(found.out, bySize)
	if err := found.finish(received); err != nil {
		return nil, err
	}

	candidates := keepShared(sizes)
	p.counters.candidates.Add(int64(countMembers(candidates)))

	p.log.Debug("size buckets built",
		zap.Int("buckets", len(sizes)),
		zap.Int("shared", len(candidates)),
	)

	digests, err := p.hashCandidates(ctx, candidates)
	if err != nil {
		return nil, err
	}

	return keepShared(digests), nil
}

// direct hashes every discovered file as part of its unit of work.
func (p *pipeline) direct(ctx context.Context) (map[string][]FileDescriptor, error) {
	slots := make(chan struct{}, p.opt.HashWorkers)

	hashed := p.discover(ctx, func(ctx context.Context, fd FileDescriptor) (FileDescriptor, bool) {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			return fd, false
		}
		defer func() { <-slots }()

		p.counters.candidates.Add(1)

		return p.hashOne(ctx, fd)
	})

	digests, received := groupBy(hashed.out, byDigest)
	if err := hashed.finish(received); err != nil {
		return nil, err
	}

	return keepShared(digests), nil
}

// hashCandidates hashes the candidates with a pool of workers and groups the
// results by digest in the calling goroutine.
func (p *pipeline) hashCandidates(
	ctx context.Context,
	candidates map[int64][]FileDescriptor,
) (map[string][]FileDescriptor, error) {
	jobs := make(chan FileDescriptor)
	results := make(chan FileDescriptor, p.opt.Buffer)

	var workers sync.WaitGroup

	for range p.opt.HashWorkers {
		workers.Go(func() {
			for fd := range jobs {
				hashed, ok := p.hashOne(ctx, fd)
				if !ok {
					continue
				}

				select {
				case results <- hashed:
				case <-ctx.Done():
				}
			}
		})
	}

	go func() {
		defer close(jobs)

		for _, bucket := range candidates {
			for _, fd := range bucket {
				select {
				case jobs <- fd:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	go func() {
		workers.Wait()
		close(results)
	}()

	digests, _ := groupBy(results, byDigest)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return digests, nil
}

// hashOne computes the digest of fd. Read failures are reported and drop
// the file; failures caused by cancellation are dropped silently.
func (p *pipeline) hashOne(ctx context.Context, fd FileDescriptor) (FileDescriptor, bool) {
	digest, err := p.hasher.HashFile(ctx, fd.Path)
	if err != nil {
		if ctx.Err() == nil {
			p.report(err)
		}

		return fd, false
	}

	p.counters.hashed.Add(1)
	p.counters.bytesHashed.Add(fd.Size)

	fd.Digest = digest

	return fd, true
}
