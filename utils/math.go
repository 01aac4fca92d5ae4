// Package utils contains small numeric and sampling helpers shared by the
// vision packages.
package utils

import (
	"math"
	"math/rand"
)

func MaxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ClampF64 clamps n to the interval [min, max].
func ClampF64(n, min, max float64) float64 {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// SampleRandomIntRange samples a random integer within a range given by [min, max]
// using the given rand.Rand
func SampleRandomIntRange(min, max int, r *rand.Rand) int {
	return r.Intn(max-min+1) + min
}

// SampleNIntegersUniform samples n integers uniformly in [vMin, vMax].
func SampleNIntegersUniform(n int, vMin, vMax float64) []int {
	if vMax < vMin {
		vMin, vMax = vMax, vMin
	}
	//nolint:gosec
	r := rand.New(rand.NewSource(rand.Int63()))
	samples := make([]int, n)
	lo, hi := int(math.Round(vMin)), int(math.Round(vMax))
	for i := range samples {
		samples[i] = SampleRandomIntRange(lo, hi, r)
	}
	return samples
}

// SampleNIntegersNormal samples n integers from a normal distribution centered on
// the middle of [vMin, vMax], with a standard deviation covering the range at 3
// sigma; samples falling outside the range are clamped to its bounds.
func SampleNIntegersNormal(n int, vMin, vMax float64) []int {
	if vMax < vMin {
		vMin, vMax = vMax, vMin
	}
	//nolint:gosec
	r := rand.New(rand.NewSource(rand.Int63()))
	mean := (vMin + vMax) / 2.
	stdDev := (vMax - vMin) / 6.
	samples := make([]int, n)
	lo, hi := int(math.Round(vMin)), int(math.Round(vMax))
	for i := range samples {
		s := int(math.Round(r.NormFloat64()*stdDev + mean))
		samples[i] = MinInt(MaxInt(s, lo), hi)
	}
	return samples
}

// SampleNRegularlySpaced returns n integers evenly spread over [vMin, vMax].
func SampleNRegularlySpaced(n int, vMin, vMax float64) []int {
	if vMax < vMin {
		vMin, vMax = vMax, vMin
	}
	samples := make([]int, n)
	if n == 1 {
		samples[0] = int(math.Round(vMin))
		return samples
	}
	step := (vMax - vMin) / float64(n-1)
	for i := range samples {
		samples[i] = int(math.Round(vMin + float64(i)*step))
	}
	return samples
}
