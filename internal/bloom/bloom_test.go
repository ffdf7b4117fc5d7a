package bloom

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codectx/codectx/internal/config"
)

func TestFilter_NoFalseNegatives(t *testing.T) {
	f := New(1000, 0.01)

	items := make([]string, 500)
	for i := range items {
		items[i] = fmt.Sprintf("artifact-%d", i)
		f.Add(items[i])
	}

	for _, item := range items {
		assert.True(t, f.MightContain(item), "added item must never report absent")
	}
}

func TestFilter_AbsentItemsMostlyNegative(t *testing.T) {
	f := New(1000, 0.001)
	for i := 0; i < 500; i++ {
		f.Add(fmt.Sprintf("present-%d", i))
	}

	falsePositives := 0
	trials := 2000
	for i := 0; i < trials; i++ {
		if f.MightContain(fmt.Sprintf("absent-%d", i)) {
			falsePositives++
		}
	}

	rate := float64(falsePositives) / float64(trials)
	assert.Less(t, rate, 0.05, "observed false positive rate should stay well under a generous bound")
}

func TestFilter_SnapshotRoundTrip(t *testing.T) {
	f := New(1000, 0.001)
	for i := 0; i < 200; i++ {
		f.Add(fmt.Sprintf("artifact-%d", i))
	}

	data, err := f.Snapshot()
	require.NoError(t, err)

	restored, err := Load(data, config.BloomConfig{ExpectedItems: 1000, FalsePositiveRate: 0.001})
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		assert.True(t, restored.MightContain(fmt.Sprintf("artifact-%d", i)))
	}
}

func TestLoad_RejectsCorruptSnapshot(t *testing.T) {
	_, err := Load([]byte("not a real snapshot"), config.BloomConfig{ExpectedItems: 1000, FalsePositiveRate: 0.001})
	assert.Error(t, err)
}

func TestLoad_RejectsMismatchedParameters(t *testing.T) {
	f := New(1000, 0.001)
	f.Add("artifact-1")

	data, err := f.Snapshot()
	require.NoError(t, err)

	_, err = Load(data, config.BloomConfig{ExpectedItems: 5000, FalsePositiveRate: 0.001})
	assert.Error(t, err)

	_, err = Load(data, config.BloomConfig{ExpectedItems: 1000, FalsePositiveRate: 0.01})
	assert.Error(t, err)
}

func TestEstimateCount_TracksKnownCardinality(t *testing.T) {
	f := New(10000, 0.001)
	for i := 0; i < 1000; i++ {
		f.Add(fmt.Sprintf("artifact-%d", i))
	}

	estimate := f.EstimateCount()
	assert.InDelta(t, 1000, estimate, 100, "estimate should track the true cardinality within a generous bound")
}

func TestEstimateCount_EmptyFilterIsZero(t *testing.T) {
	f := New(1000, 0.01)
	assert.Equal(t, 0, f.EstimateCount())
}

func TestUnion_MergesMembership(t *testing.T) {
	a := New(1000, 0.01)
	b := New(1000, 0.01)
	a.Add("only-in-a")
	b.Add("only-in-b")

	require.NoError(t, a.Union(b))

	assert.True(t, a.MightContain("only-in-a"))
	assert.True(t, a.MightContain("only-in-b"))
}

func TestIntersection_KeepsSharedMembershipOnly(t *testing.T) {
	a := New(1000, 0.01)
	b := New(1000, 0.01)
	a.Add("shared")
	a.Add("only-in-a")
	b.Add("shared")

	require.NoError(t, a.Intersection(b))

	assert.True(t, a.MightContain("shared"))
	assert.False(t, a.MightContain("only-in-a"))
}

func TestUnion_RejectsMismatchedParameters(t *testing.T) {
	a := New(1000, 0.01)
	b := New(5000, 0.01)

	err := a.Union(b)
	assert.Error(t, err)
}

func TestIntersection_RejectsMismatchedParameters(t *testing.T) {
	a := New(1000, 0.01)
	b := New(1000, 0.001)

	err := a.Intersection(b)
	assert.Error(t, err)
}
