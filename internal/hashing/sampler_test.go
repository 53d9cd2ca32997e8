package hashing

import (
	"math"
	"testing"
)

func expectedChunkCount(n int64) int {
	if n <= ChunkSize {
		return 1
	}
	mib := float64(n) / float64(1<<20)
	k := int(math.Floor(math.Log2(mib))) * 3
	if k < 3 {
		k = 3
	}
	if k > 100 {
		k = 100
	}
	return k
}

func TestChunkOffsetsSamplingLaw(t *testing.T) {
	sizes := []int64{
		0,
		1,
		ChunkSize,
		ChunkSize + 1,
		1 << 20,
		10 << 20,
		1 << 30,
		10 << 30,
	}

	for _, n := range sizes {
		offsets := chunkOffsets(n)
		want := expectedChunkCount(n)
		if len(offsets) != want {
			t.Errorf("size %d: got %d chunks, want %d", n, len(offsets), want)
		}
		for _, o := range offsets {
			if o < 0 || o+ChunkSize > n && n > ChunkSize {
				t.Errorf("size %d: offset %d extends past EOF", n, o)
			}
		}
	}
}

func TestChunkOffsetsNeverExceedBounds(t *testing.T) {
	for _, n := range []int64{ChunkSize + 1, 3 << 20, 100 << 20, 50 << 30} {
		offsets := chunkOffsets(n)
		for i, o := range offsets {
			if o < 0 {
				t.Fatalf("size %d chunk %d: negative offset %d", n, i, o)
			}
			if o > n-ChunkSize {
				t.Fatalf("size %d chunk %d: offset %d reads past EOF (max %d)", n, i, o, n-ChunkSize)
			}
		}
	}
}

type memReaderAt []byte

func (m memReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m)) {
		return 0, errEOF
	}
	n := copy(p, m[off:])
	return n, nil
}

var errEOF = &eofErr{}

type eofErr struct{}

func (e *eofErr) Error() string { return "EOF" }

func TestSampleDeterministic(t *testing.T) {
	data := make([]byte, 5<<20)
	for i := range data {
		data[i] = byte(i)
	}

	a, err := sample(memReaderAt(data), int64(len(data)))
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	b, err := sample(memReaderAt(data), int64(len(data)))
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if a != b {
		t.Fatalf("sampling not deterministic: %x != %x", a, b)
	}
}

func TestSampleSmallFileSingleChunk(t *testing.T) {
	data := []byte("hello\n")
	got, err := sample(memReaderAt(data), int64(len(data)))
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if got == ZeroFingerprint {
		t.Fatalf("expected non-zero fingerprint for non-empty content")
	}
}
