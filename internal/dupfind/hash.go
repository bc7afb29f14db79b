package dupfind

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm names a content hash function.
type Algorithm string

// Supported algorithms. All produce digests of at least 256 bits.
const (
	SHA256     Algorithm = "sha256"
	SHA512     Algorithm = "sha512"
	SHA3_256   Algorithm = "sha3-256" //nolint:revive,stylecheck // Mirrors the algorithm name
	BLAKE2b256 Algorithm = "blake2b-256"
)

// hashBufferSize is the read buffer used while streaming file contents.
const hashBufferSize = 64 * 1024

// Algorithms returns the supported algorithms.
func Algorithms() []Algorithm {
	return []Algorithm{SHA256, SHA512, SHA3_256, BLAKE2b256}
}

// ParseAlgorithm validates an algorithm name. Matching is case-insensitive.
func ParseAlgorithm(name string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(name))
	for _, known := range Algorithms() {
		if a == known {
			return a, nil
		}
	}

	return "", fmt.Errorf("unsupported hash algorithm %q: must be one of %v", name, Algorithms())
}

// New returns a fresh hash.Hash for the algorithm.
func (a Algorithm) New() hash.Hash {
	switch a {
	case SHA512:
		return sha512.New()
	case SHA3_256:
		return sha3.New256()
	case BLAKE2b256:
		h, err := blake2b.New256(nil)
		if err != nil {
			// Only a key longer than 64 bytes fails.
			panic(err)
		}

		return h
	default:
		return sha256.New()
	}
}

// Hasher computes content digests. It is safe for concurrent use.
type Hasher struct {
	algorithm Algorithm
	buffers   sync.Pool
}

// NewHasher returns a Hasher for the algorithm.
func NewHasher(algorithm Algorithm) *Hasher {
	return &Hasher{
		algorithm: algorithm,
		buffers: sync.Pool{
			New: func() any {
				buf := make([]byte, hashBufferSize)

				return &buf
			},
		},
	}
}

// HashFile streams the file at path through the hash function.
// Failures are returned as *FileReadError.
func (h *Hasher) HashFile(ctx context.Context, path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	defer file.Close()

	buf := h.buffers.Get().(*[]byte) //nolint:forcetypeassert // Pool only holds *[]byte
	defer h.buffers.Put(buf)

	digest := h.algorithm.New()
	if _, err := io.CopyBuffer(digest, contextReader{ctx: ctx, r: file}, *buf); err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}

	return digest.Sum(nil), nil
}

// contextReader stops reading once its context is done.
type contextReader struct {
	ctx context.Context //nolint:containedctx // Scoped to a single copy
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}
