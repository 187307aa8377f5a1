package image

import (
	"sort"
)

// DefaultSaturation is the default upper-percentile fraction excluded when
// stretching intensities for display.
const DefaultSaturation = 0.05

// AdjustContrast stretches the image for display using a percentile-based
// saturation fraction in [0, 1]. The lower bound is the 0th percentile and the
// upper bound the (100*(1-saturation))th percentile; samples are mapped
// linearly onto [0, 65535] and clipped. A degenerate range (upper == lower,
// e.g. a constant image or saturation 1) returns an unchanged copy.
func AdjustContrast(m *Intensity, saturation float64) *Intensity {
	if m == nil || len(m.Pix) == 0 {
		return m
	}
	if saturation < 0 {
		saturation = 0
	} else if saturation > 1 {
		saturation = 1
	}

	sorted := make([]float64, len(m.Pix))
	for i, v := range m.Pix {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)

	vMin := sorted[0]
	vMax := percentile(sorted, 1-saturation)

	if vMax <= vMin {
		return m.Clone()
	}

	out := New(m.Width, m.Height)
	scale := MaxSample / (vMax - vMin)
	for i, v := range m.Pix {
		s := (float64(v) - vMin) * scale
		if s < 0 {
			s = 0
		} else if s > MaxSample {
			s = MaxSample
		}
		out.Pix[i] = uint16(s)
	}
	return out
}

// percentile returns the q-th quantile (q in [0, 1]) of a sorted, non-empty
// slice using linear interpolation at fractional index q*(n-1).
func percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	pos := q * float64(n-1)
	i := int(pos)
	if i >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(i)
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}
