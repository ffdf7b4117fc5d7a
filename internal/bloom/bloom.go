// Package bloom implements a compressed Bloom filter used as the
// negative-fast-path index in front of the Graph Store, per spec.md
// §4.B. Zero false negatives; bounded false positive rate.
package bloom

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/bits"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/spaolacci/murmur3"

	"github.com/codectx/codectx/internal/config"
	"github.com/codectx/codectx/internal/logging"
)

// Filter is a fixed-size Bloom filter with seeded MurmurHash3 hash
// functions, sized from an expected item count and target false
// positive rate exactly as original_source/palace/core/bloom_filter.py
// computes m and k.
type Filter struct {
	mu        sync.RWMutex
	bits      []uint64 // packed bit array, 64 bits per word
	expected  int      // n, the configured expected item count
	fpRate    float64  // p, the configured target false positive rate
	sizeBits  uint64
	numHashes int
	seeds     []uint32
}

// New creates a Filter sized for expectedItems entries at the given
// falsePositiveRate, using the standard formulas:
//
//	m = -n*ln(p) / (ln2)^2
//	k = (m/n) * ln2
func New(expectedItems int, falsePositiveRate float64) *Filter {
	n := float64(expectedItems)
	p := falsePositiveRate

	sizeBits := uint64(math.Ceil(-n * math.Log(p) / (math.Ln2 * math.Ln2)))
	if sizeBits == 0 {
		sizeBits = 1
	}
	numHashes := int(math.Round((float64(sizeBits) / n) * math.Ln2))
	if numHashes < 1 {
		numHashes = 1
	}

	words := (sizeBits + 63) / 64

	return &Filter{
		bits:      make([]uint64, words),
		expected:  expectedItems,
		fpRate:    falsePositiveRate,
		sizeBits:  sizeBits,
		numHashes: numHashes,
		seeds:     deriveSeeds(numHashes),
	}
}

// deriveSeeds computes k seed values as sha256("bloom"+i) truncated to
// the first 32 bits, matching the Python implementation's seed scheme
// when no explicit seeds are supplied.
func deriveSeeds(k int) []uint32 {
	seeds := make([]uint32, k)
	for i := 0; i < k; i++ {
		sum := sha256.Sum256([]byte(fmt.Sprintf("bloom%d", i)))
		seeds[i] = binary.BigEndian.Uint32(sum[:4])
	}
	return seeds
}

// Add inserts item into the filter.
func (f *Filter) Add(item string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pos := range f.positions(item) {
		f.bits[pos/64] |= 1 << (pos % 64)
	}
}

// MightContain reports whether item may be present. False positives are
// possible; false negatives are not — if item was ever Add'ed, this
// always returns true.
func (f *Filter) MightContain(item string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, pos := range f.positions(item) {
		if f.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}
	return true
}

func (f *Filter) positions(item string) []uint64 {
	positions := make([]uint64, f.numHashes)
	for i, seed := range f.seeds {
		h := murmur3.Sum32WithSeed([]byte(item), seed)
		positions[i] = uint64(h) % f.sizeBits
	}
	return positions
}

// EstimatedFalsePositiveRate returns the false positive rate implied by
// a known item count, useful for capacity-exhaustion diagnostics
// referenced in spec.md §4.B edge cases. This is distinct from
// EstimateCount, which recovers cardinality from the bit array alone.
func (f *Filter) EstimatedFalsePositiveRate(itemsAdded int) float64 {
	if itemsAdded <= 0 {
		return 0
	}
	k := float64(f.numHashes)
	m := float64(f.sizeBits)
	n := float64(itemsAdded)
	return math.Pow(1-math.Exp(-k*n/m), k)
}

// EstimateCount implements spec.md §4.B's `estimate_count()`: it
// recovers the approximate number of items added from the bit array's
// popcount alone, with no ground truth input. For observability only —
// the graph remains the source of truth for artifact counts.
//
//	estimate_count() = -m/k * ln(1 - x/m), x = popcount(bits)
func (f *Filter) EstimateCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	x := 0
	for _, w := range f.bits {
		x += bits.OnesCount64(w)
	}

	m := float64(f.sizeBits)
	k := float64(f.numHashes)
	if x >= int(f.sizeBits) {
		// Saturated filter; the formula's log term diverges.
		return int(f.sizeBits)
	}
	estimate := -m / k * math.Log(1-float64(x)/m)
	if estimate < 0 {
		return 0
	}
	return int(math.Round(estimate))
}

// Union sets f's bits to the bitwise OR of f and other, implementing
// spec.md §4.B's `union(other)`. Both filters must share identical
// (m, k, seeds); spec.md §9's concurrent-ingest model relies on this to
// merge per-worker filters into one reflecting every added id.
func (f *Filter) Union(other *Filter) error {
	return f.combine(other, func(a, b uint64) uint64 { return a | b })
}

// Intersection sets f's bits to the bitwise AND of f and other,
// implementing spec.md §4.B's `intersection(other)`.
func (f *Filter) Intersection(other *Filter) error {
	return f.combine(other, func(a, b uint64) uint64 { return a & b })
}

func (f *Filter) combine(other *Filter, op func(a, b uint64) uint64) error {
	other.mu.RLock()
	otherSizeBits, otherNumHashes, otherSeeds := other.sizeBits, other.numHashes, other.seeds
	otherBits := other.bits
	other.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sizeBits != otherSizeBits || f.numHashes != otherNumHashes || !seedsEqual(f.seeds, otherSeeds) {
		return fmt.Errorf("bloom filters have mismatched parameters: (m=%d,k=%d) vs (m=%d,k=%d)",
			f.sizeBits, f.numHashes, otherSizeBits, otherNumHashes)
	}

	for i := range f.bits {
		f.bits[i] = op(f.bits[i], otherBits[i])
	}
	return nil
}

func seedsEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Snapshot serializes (n, p, m, k) and the raw bit array, compressed
// with zstd. The seeds are not written; Load re-derives them from k.
func (f *Filter) Snapshot() ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var raw bytes.Buffer
	if err := binary.Write(&raw, binary.BigEndian, int64(f.expected)); err != nil {
		return nil, fmt.Errorf("failed to write bloom header: %w", err)
	}
	if err := binary.Write(&raw, binary.BigEndian, f.fpRate); err != nil {
		return nil, fmt.Errorf("failed to write bloom header: %w", err)
	}
	if err := binary.Write(&raw, binary.BigEndian, f.sizeBits); err != nil {
		return nil, fmt.Errorf("failed to write bloom header: %w", err)
	}
	if err := binary.Write(&raw, binary.BigEndian, int64(f.numHashes)); err != nil {
		return nil, fmt.Errorf("failed to write bloom header: %w", err)
	}
	for _, w := range f.bits {
		if err := binary.Write(&raw, binary.BigEndian, w); err != nil {
			return nil, fmt.Errorf("failed to write bloom bits: %w", err)
		}
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer enc.Close()

	return enc.EncodeAll(raw.Bytes(), nil), nil
}

// Load reconstructs a Filter from a snapshot produced by Snapshot,
// rejecting it per spec.md §4.B if its persisted (n, p) don't match
// expected — a mismatch means the caller's config changed since the
// snapshot was written, and m/k/seeds derived from it would no longer
// agree with the bit array's actual sizing.
func Load(data []byte, expected config.BloomConfig) (*Filter, error) {
	timer := logging.StartTimer(logging.CategoryBloom, "load_snapshot")
	defer timer.Stop()

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("corrupt bloom snapshot: %w", err)
	}

	r := bytes.NewReader(raw)
	var expectedItems int64
	var fpRate float64
	var sizeBits uint64
	var numHashes int64
	if err := binary.Read(r, binary.BigEndian, &expectedItems); err != nil {
		return nil, fmt.Errorf("corrupt bloom snapshot header: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &fpRate); err != nil {
		return nil, fmt.Errorf("corrupt bloom snapshot header: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &sizeBits); err != nil {
		return nil, fmt.Errorf("corrupt bloom snapshot header: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &numHashes); err != nil {
		return nil, fmt.Errorf("corrupt bloom snapshot header: %w", err)
	}

	if int(expectedItems) != expected.ExpectedItems || fpRate != expected.FalsePositiveRate {
		return nil, fmt.Errorf("bloom snapshot parameters (n=%d,p=%v) do not match expected (n=%d,p=%v)",
			expectedItems, fpRate, expected.ExpectedItems, expected.FalsePositiveRate)
	}

	words := (sizeBits + 63) / 64
	bitWords := make([]uint64, words)
	for i := range bitWords {
		if err := binary.Read(r, binary.BigEndian, &bitWords[i]); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("corrupt bloom snapshot: truncated bit array")
			}
			return nil, fmt.Errorf("corrupt bloom snapshot: %w", err)
		}
	}

	return &Filter{
		bits:      bitWords,
		expected:  int(expectedItems),
		fpRate:    fpRate,
		sizeBits:  sizeBits,
		numHashes: int(numHashes),
		seeds:     deriveSeeds(int(numHashes)),
	}, nil
}
