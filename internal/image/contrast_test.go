package image

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func rampImage(values ...uint16) *Intensity {
	m := New(len(values), 1)
	copy(m.Pix, values)
	return m
}

func TestAdjustContrastZeroSaturationIsFullStretch(t *testing.T) {
	m := rampImage(100, 150, 200)

	out := AdjustContrast(m, 0)
	require.Equal(t, uint16(0), out.Pix[0])
	require.Equal(t, uint16(32767), out.Pix[1]) // (50/100)*65535, truncated
	require.Equal(t, uint16(65535), out.Pix[2])

	// Source untouched.
	require.Equal(t, []uint16{100, 150, 200}, m.Pix)
}

func TestAdjustContrastSaturatesUpperPercentile(t *testing.T) {
	// 11 samples 0..1000; saturation 0.1 puts the upper bound at the 90th
	// percentile (900), so everything above clips to the maximum.
	m := New(11, 1)
	for i := range m.Pix {
		m.Pix[i] = uint16(i * 100)
	}

	out := AdjustContrast(m, 0.1)
	require.Equal(t, uint16(0), out.Pix[0])
	require.Equal(t, uint16(65535), out.Pix[10])
	require.InDelta(t, 65535, float64(out.Pix[9]), 1)
	require.Less(t, out.Pix[8], uint16(65535))
	// With the upper bound at 900, sample 500 maps to 500/900 of the output
	// range (36408.3).
	require.InDelta(t, 36408, float64(out.Pix[5]), 1)
}

func TestPercentileInterpolatesOnIndex(t *testing.T) {
	// Fractional index q*(n-1), interpolated linearly between neighbors.
	evenCount := []float64{0, 10}
	require.InDelta(t, 5, percentile(evenCount, 0.5), 1e-9)

	oddCount := []float64{1, 7, 9}
	require.InDelta(t, 7, percentile(oddCount, 0.5), 1e-9)

	ramp := make([]float64, 11)
	for i := range ramp {
		ramp[i] = float64(i * 100)
	}
	require.InDelta(t, 900, percentile(ramp, 0.9), 1e-9)
	require.InDelta(t, 0, percentile(ramp, 0), 1e-9)
	require.InDelta(t, 1000, percentile(ramp, 1), 1e-9)
	require.InDelta(t, 725, percentile(ramp, 0.725), 1e-9)

	require.Equal(t, 42.0, percentile([]float64{42}, 0.9))
}

func TestAdjustContrastDegenerateRangeReturnsCopy(t *testing.T) {
	m := rampImage(500, 500, 500)

	out := AdjustContrast(m, 0.05)
	require.Equal(t, m.Pix, out.Pix)
	require.NotSame(t, m, out)

	// Saturation 1 collapses the upper bound onto the lower one.
	ramp := rampImage(0, 100, 200)
	out = AdjustContrast(ramp, 1)
	require.Equal(t, ramp.Pix, out.Pix)
}

func TestAdjustContrastClampsSaturation(t *testing.T) {
	m := rampImage(100, 200)

	neg := AdjustContrast(m, -3)
	zero := AdjustContrast(m, 0)
	require.Equal(t, zero.Pix, neg.Pix)
}

func TestAdjustContrastNilAndEmpty(t *testing.T) {
	require.Nil(t, AdjustContrast(nil, 0.05))

	empty := New(0, 0)
	require.Same(t, empty, AdjustContrast(empty, 0.05))
}
