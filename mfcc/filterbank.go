package mfcc

import "math"

// A filterbank is a set of triangular mel-spaced filters
// over the bins of a real FFT.
type filterbank struct {
	filters [][]float64
}

func newFilterbank(numFilters, fftSize, sampleRate int, lowFreq, highFreq float64) *filterbank {
	numBins := fftSize/2 + 1
	lowMel := hzToMel(lowFreq)
	highMel := hzToMel(highFreq)

	bins := make([]int, numFilters+2)
	for i := range bins {
		mel := lowMel + (highMel-lowMel)*float64(i)/float64(numFilters+1)
		bins[i] = int(math.Floor(float64(fftSize+1) * melToHz(mel) / float64(sampleRate)))
	}

	filters := make([][]float64, numFilters)
	for i := range filters {
		f := make([]float64, numBins)
		left, center, right := bins[i], bins[i+1], bins[i+2]
		for j := left; j < center && j < numBins; j++ {
			f[j] = float64(j-left) / float64(center-left)
		}
		for j := center; j < right && j < numBins; j++ {
			f[j] = float64(right-j) / float64(right-center)
		}
		filters[i] = f
	}
	return &filterbank{filters: filters}
}

// apply writes the log filterbank energies of a power
// spectrum to dst.
func (f *filterbank) apply(power, dst []float64) {
	for i, filter := range f.filters {
		var sum float64
		for j, x := range filter {
			sum += x * power[j]
		}
		if sum == 0 {
			sum = epsilon
		}
		dst[i] = math.Log(sum)
	}
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}
