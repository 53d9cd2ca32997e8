package hashing

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"
)

// ChunkSize is the fixed window size read by the content sampler.
const ChunkSize = 65536

// ZeroFingerprint is the all-zero sentinel returned when a path cannot be
// read for content sampling.
var ZeroFingerprint = [8]byte{}

// chunkOffsets returns the byte offsets the sampler reads from for a file
// of n bytes, per the sampling law: a single chunk at offset 0 for n <=
// ChunkSize, otherwise k = clamp(floor(log2(n/2^20))*3, 3, 100) evenly
// spaced chunks, each clamped so it never reads past EOF.
func chunkOffsets(n int64) []int64 {
	if n <= ChunkSize {
		return []int64{0}
	}

	mib := float64(n) / float64(1<<20)
	k := int(math.Floor(math.Log2(mib))) * 3
	if k < 3 {
		k = 3
	}
	if k > 100 {
		k = 100
	}

	stride := n / int64(k)
	offsets := make([]int64, k)
	for i := 0; i < k; i++ {
		o := int64(i) * stride
		if max := n - ChunkSize; o > max {
			o = max
		}
		offsets[i] = o
	}
	return offsets
}

// SampleFile computes the content fingerprint of the file at path, whose
// size is already known to be size bytes. Any read failure yields the
// all-zero sentinel and a non-nil error describing the failure; callers
// that only care about the stored fingerprint may discard the error.
func SampleFile(path string, size int64) ([8]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return ZeroFingerprint, err
	}
	defer f.Close()

	return sample(f, size)
}

func sample(r io.ReaderAt, size int64) ([8]byte, error) {
	h := xxhash.New()
	buf := make([]byte, ChunkSize)

	for _, offset := range chunkOffsets(size) {
		n := ChunkSize
		if rem := size - offset; rem < int64(n) {
			n = int(rem)
		}

		if _, err := r.ReadAt(buf[:n], offset); err != nil && err != io.EOF {
			return ZeroFingerprint, err
		}
		if _, err := h.Write(buf[:n]); err != nil {
			return ZeroFingerprint, err
		}
	}

	var out [8]byte
	binary.BigEndian.PutUint64(out[:], h.Sum64())
	return out, nil
}
