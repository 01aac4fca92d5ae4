package rimage

// GetGaussian5 returns the 5x5 binomial approximation of a Gaussian kernel,
// used to smooth images ahead of binary descriptor sampling.
func GetGaussian5() Kernel {
	return Kernel{[][]float64{
		{1, 4, 6, 4, 1},
		{4, 16, 24, 16, 4},
		{6, 24, 36, 24, 6},
		{4, 16, 24, 16, 4},
		{1, 4, 6, 4, 1},
	}, 5, 5}
}
