package mfcc

import "gonum.org/v1/gonum/stat"

// Normalize subtracts the mean of every entry in the
// matrix and divides by the standard deviation of every
// entry.
// One scalar mean and one scalar deviation are used for
// the whole matrix, not one per coefficient.
//
// A constant matrix has a deviation of zero, in which case
// every entry becomes NaN.
func Normalize(feats [][]float64) {
	var flat []float64
	for _, row := range feats {
		flat = append(flat, row...)
	}
	if len(flat) == 0 {
		return
	}
	mean, std := stat.PopMeanStdDev(flat, nil)
	for _, row := range feats {
		for i, x := range row {
			row[i] = (x - mean) / std
		}
	}
}
