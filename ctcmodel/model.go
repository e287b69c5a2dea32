// Package ctcmodel defines the trainable acoustic models
// used by the trainer, along with CTC decoding and error
// metrics.
//
// The numerical work (recurrent blocks, the CTC cost and
// its gradient, and the optimizer) comes from anynet.
package ctcmodel

import "github.com/kevinmel2000/ctcspeech/batch"

// A Model is a trainable sequence model whose per-frame
// outputs can be scored against unaligned labels.
type Model interface {
	// Forward computes per-frame class scores for a batch.
	// Padding beyond each sequence's true length is ignored.
	Forward(in *batch.Padded) Output

	// Loss computes the mean CTC loss of the outputs with
	// respect to the target labels.
	Loss(out Output, targets *batch.Sparse) Loss

	// OptimizeStep updates the model's parameters to
	// reduce a loss previously returned by Loss.
	OptimizeStep(l Loss)

	// Decode finds a likely labeling for each sequence.
	Decode(out Output) [][]int
}

// An Output is the result of Model.Forward.
// Its contents are specific to the Model that produced it.
type Output interface {
	Lengths() []int
}

// A Loss is the result of Model.Loss.
type Loss interface {
	Value() float64
}
