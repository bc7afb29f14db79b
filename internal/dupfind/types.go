package dupfind

import (
	"encoding/hex"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/idelchi/dupfind/internal/recursion"
)

// DefaultBuffer is the default capacity of the delivery channel.
const DefaultBuffer = 1<<16 - 1

// Digest is a content digest. It is empty until the file has been hashed.
type Digest []byte

// String returns the hexadecimal form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d)
}

// FileDescriptor is a regular, non-empty file found during the walk.
type FileDescriptor struct {
	// Path is the absolute path of the file.
	Path string
	// Size is the size in bytes as observed during discovery.
	Size int64
	// Digest is set once by the hashing stage.
	Digest Digest
}

// DirectoryTask is a directory waiting to be listed.
type DirectoryTask struct {
	// Path is the absolute path of the directory.
	Path string
	// Budget is the number of levels that may still be entered below Path.
	// It is meaningless for unbounded policies.
	Budget int
}

// Group is a set of files sharing the same contents.
type Group struct {
	// Digest is the hex encoded content digest.
	Digest string `json:"digest"`
	// Size is the size of each member in bytes.
	Size int64 `json:"size"`
	// Files lists the member paths.
	Files []string `json:"files"`
}

// Wasted returns the bytes that would be freed by keeping a single copy.
func (g Group) Wasted() int64 {
	return g.Size * int64(len(g.Files)-1)
}

// Stats holds counters for a scan.
type Stats struct {
	// FilesScanned is the number of regular non-empty files discovered.
	FilesScanned int64 `json:"files_scanned"`
	// Candidates is the number of files sharing their size with another file.
	Candidates int64 `json:"candidates"`
	// FilesHashed is the number of files whose contents were hashed.
	FilesHashed int64 `json:"files_hashed"`
	// BytesHashed is the number of bytes read while hashing.
	BytesHashed int64 `json:"bytes_hashed"`
	// ErrorCount is the number of directories and files that could not be read.
	ErrorCount int64 `json:"error_count"`
	// DuplicateFiles is the number of files in all groups.
	DuplicateFiles int64 `json:"duplicate_files"`
	// WastedBytes is the sum of Group.Wasted over all groups.
	WastedBytes int64 `json:"wasted_bytes"`
	// Elapsed is the wall-clock time of the scan.
	Elapsed time.Duration `json:"elapsed"`
}

// Result is the outcome of a scan.
type Result struct {
	// Root is the absolute path of the scanned directory.
	Root string `json:"root"`
	// Recursion is the textual recursion policy.
	Recursion string `json:"recursion"`
	// Strategy is the grouping strategy used.
	Strategy Strategy `json:"strategy"`
	// Algorithm is the hash algorithm used.
	Algorithm Algorithm `json:"algorithm"`
	// Groups are the duplicate groups, largest files first.
	Groups []Group `json:"groups"`
	// Stats are the scan counters.
	Stats Stats `json:"stats"`
}

// Strategy selects how candidates are grouped.
type Strategy string

const (
	// StrategySize buckets by size and hashes only shared sizes.
	StrategySize Strategy = "size"
	// StrategyDirect hashes every discovered file.
	StrategyDirect Strategy = "direct"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(name); s {
	case StrategySize, StrategyDirect:
		return s, nil
	default:
		return "", fmt.Errorf("unknown strategy %q: must be one of [%s %s]", name, StrategySize, StrategyDirect)
	}
}

// Engine selects the traversal implementation.
type Engine string

const (
	// EngineBFS is the breadth-first queue walker.
	EngineBFS Engine = "bfs"
	// EngineFastwalk uses fastwalk's parallel traversal.
	EngineFastwalk Engine = "fastwalk"
)

// ParseEngine validates an engine name.
func ParseEngine(name string) (Engine, error) {
	switch e := Engine(name); e {
	case EngineBFS, EngineFastwalk:
		return e, nil
	default:
		return "", fmt.Errorf("unknown engine %q: must be one of [%s %s]", name, EngineBFS, EngineFastwalk)
	}
}

// Options configures a scan.
type Options struct {
	// Path is the directory to scan.
	Path string
	// Recursion controls how deep the walk descends.
	Recursion recursion.Policy
	// Strategy selects size-prefiltered or direct hashing.
	Strategy Strategy
	// Engine selects the traversal implementation.
	Engine Engine
	// Algorithm is the content hash algorithm.
	Algorithm Algorithm
	// Excludes contains regex patterns matched against slash-separated paths.
	Excludes []string
	// MinSize is the minimum file size in bytes. Empty files are always skipped.
	MinSize int64
	// HashWorkers bounds the number of files hashed concurrently.
	HashWorkers int
	// DirWorkers is the number of directories listed concurrently.
	DirWorkers int
	// Buffer is the capacity of the delivery channels.
	Buffer int
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Logger receives per-entry errors and debug output.
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Path == "" {
		o.Path = "."
	}

	if o.Strategy == "" {
		o.Strategy = StrategySize
	}

	if o.Engine == "" {
		o.Engine = EngineBFS
	}

	if o.Algorithm == "" {
		o.Algorithm = SHA256
	}

	if o.HashWorkers <= 0 {
		o.HashWorkers = runtime.NumCPU()
	}

	if o.DirWorkers <= 0 {
		o.DirWorkers = 1
	}

	if o.Buffer <= 0 {
		o.Buffer = DefaultBuffer
	}

	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	return o
}
