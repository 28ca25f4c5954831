// Package hasher computes incremental digests over streamed object bodies.
package hasher

import (
	"crypto/sha1" //nolint:gosec // sha1 is a supported manifest format, not a security control
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"hash"

	s3errors "github.com/input-output-hk/s3-checksum/errors"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// ErrFinished is returned when writing to a hasher after Finish.
var ErrFinished = errors.New("hasher: write after finish")

// Hasher accumulates a digest over chunks written to it. It is not safe for
// concurrent use; each worker owns its own instance per item.
type Hasher struct {
	alg    s3types.Algorithm
	h      hash.Hash
	digest string
	n      int64
}

// New returns a hasher for alg.
func New(alg s3types.Algorithm) (*Hasher, error) {
	ctor, err := constructor(alg)
	if err != nil {
		return nil, err
	}
	return &Hasher{alg: alg, h: ctor()}, nil
}

func constructor(alg s3types.Algorithm) (func() hash.Hash, error) {
	switch alg {
	case s3types.SHA1:
		return sha1.New, nil
	case s3types.SHA256:
		return sha256.New, nil
	case s3types.SHA512:
		return sha512.New, nil
	default:
		return nil, s3errors.NewError("hasher", s3errors.ErrUnsupportedAlgorithm).WithMessage(alg.String())
	}
}

// Write feeds p into the digest.
func (h *Hasher) Write(p []byte) (int, error) {
	if h.h == nil {
		return 0, ErrFinished
	}
	n, err := h.h.Write(p)
	h.n += int64(n)
	return n, err
}

// Finish returns the lowercase hex digest. Further writes fail; repeated
// calls return the same digest.
func (h *Hasher) Finish() string {
	if h.h != nil {
		h.digest = hex.EncodeToString(h.h.Sum(nil))
		h.h = nil
	}
	return h.digest
}

// Written returns the number of bytes fed so far.
func (h *Hasher) Written() int64 {
	return h.n
}

// Algorithm returns the digest algorithm.
func (h *Hasher) Algorithm() s3types.Algorithm {
	return h.alg
}
