package rng

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUniformUnit_Stream1_Calibration checks the first few draws from stream
// 1 against the historical generator's known output, to 15 significant
// digits.
func TestUniformUnit_Stream1_Calibration(t *testing.T) {
	s, err := NewStream(1)
	require.NoError(t, err)

	want := []float64{
		0.5624589340289599,
		0.2473047237001694,
		0.4504914481190157,
		0.4097689359278046,
		0.9865065020856831,
	}

	for i, w := range want {
		got := s.UniformUnit()
		if math.Abs(got-w) > 1e-15 {
			t.Errorf("draw %d: got %.17g, want %.17g", i, got, w)
		}
	}
}

// TestUniformUnit_Deterministic checks that the first N outputs of a stream
// depend only on N and the stream index, not on call history.
func TestUniformUnit_Deterministic(t *testing.T) {
	for n := 1; n <= 15; n++ {
		a, err := NewStream(n)
		require.NoError(t, err)
		b, err := NewStream(n)
		require.NoError(t, err)

		for i := 0; i < 16; i++ {
			got, want := a.UniformUnit(), b.UniformUnit()
			if got != want {
				t.Fatalf("stream %d draw %d: got %v, want %v", n, i, got, want)
			}
		}
	}
}

// TestUniformUnit_InUnitInterval checks every draw lands in (0, 1).
func TestUniformUnit_InUnitInterval(t *testing.T) {
	s, err := NewStream(7)
	require.NoError(t, err)
	for i := 0; i < 5000; i++ {
		v := s.UniformUnit()
		if v <= 0 || v >= 1 {
			t.Fatalf("draw %d out of (0,1): %v", i, v)
		}
	}
}

func TestStream_OutOfRange(t *testing.T) {
	s := New(1)
	for _, n := range []int{0, -1, 16, 100} {
		err := s.Stream(n)
		assert.Error(t, err, "stream(%d) should fail", n)
	}
}

func TestStream_ValidRange(t *testing.T) {
	s := New(1)
	for n := 1; n <= 15; n++ {
		assert.NoError(t, s.Stream(n))
	}
}

func TestUniform_GuardsBounds(t *testing.T) {
	s, _ := NewStream(1)

	_, err := s.Uniform(5, 1)
	assert.Error(t, err)

	v, err := s.Uniform(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = s.Uniform(0, 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, 0.0)
	assert.LessOrEqual(t, v, 10.0)
}

func TestRandom_GuardsBounds(t *testing.T) {
	s, _ := NewStream(1)

	_, err := s.Random(5, 1)
	assert.Error(t, err)

	for i := 0; i < 100; i++ {
		v, err := s.Random(2, 4)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, int64(2))
		assert.LessOrEqual(t, v, int64(4))
	}
}

func TestErlang_GuardsStddev(t *testing.T) {
	s, _ := NewStream(1)
	_, err := s.Erlang(1.0, 2.0)
	assert.Error(t, err, "stddev must not exceed mean")

	v, err := s.Erlang(4.0, 2.0)
	require.NoError(t, err)
	assert.Greater(t, v, 0.0)
}

func TestHyperx_GuardsStddev(t *testing.T) {
	s, _ := NewStream(1)
	_, err := s.Hyperx(4.0, 2.0)
	assert.Error(t, err, "stddev must exceed mean")

	v, err := s.Hyperx(2.0, 4.0)
	require.NoError(t, err)
	assert.Greater(t, v, 0.0)
}

// TestNormal_UsesCarry checks that every other Normal() call is a "free"
// draw served from the cached second Box-Muller value, by forcing a known
// seed and checking the carry slot transitions through zero after use.
func TestNormal_UsesCarry(t *testing.T) {
	s, _ := NewStream(4)

	assert.Equal(t, 0.0, s.normalCarry)
	_ = s.Normal(0, 1)
	assert.NotEqual(t, 0.0, s.normalCarry, "first call should populate the carry")

	carry := s.normalCarry
	_ = s.Normal(0, 1)
	assert.Equal(t, 0.0, s.normalCarry, "second call should consume the carry")
	_ = carry
}

func TestExpntl_Positive(t *testing.T) {
	s, _ := NewStream(2)
	for i := 0; i < 100; i++ {
		v := s.Expntl(10.0)
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestSeed_DoesNotClearCarry(t *testing.T) {
	s, _ := NewStream(1)
	s.normalCarry = 1.5
	s.Seed(42)
	assert.Equal(t, 1.5, s.normalCarry)
	assert.Equal(t, uint32(42), s.seed)
}
