// Package ctctrain implements the training loop for CTC
// acoustic models.
package ctctrain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/kevinmel2000/ctcspeech/alphabet"
	"github.com/kevinmel2000/ctcspeech/batch"
	"github.com/kevinmel2000/ctcspeech/ctcmodel"
	"github.com/unixpickle/essentials"
)

// ErrInterrupted is returned by Trainer.Run when its
// context is cancelled before the last epoch finishes.
var ErrInterrupted = errors.New("training interrupted")

// EpochStats summarizes one epoch of training.
//
// Cost and LabelErrorRate are sums over the batches,
// weighted by batch size and divided by the number of
// examples in the pool.
type EpochStats struct {
	Epoch          int
	NumEpochs      int
	Cost           float64
	LabelErrorRate float64
	Elapsed        time.Duration
}

// A Trainer runs epochs of mini-batch training on a Model
// and prints progress to Output.
type Trainer struct {
	Model   ctcmodel.Model
	Samples *Pool

	// Eval is decoded and printed when training stops.
	// It may be nil.
	Eval *batch.Padded

	NumEpochs int
	BatchSize int

	// Rand is used to shuffle Samples between epochs.
	Rand *rand.Rand

	Output io.Writer

	// StatusFunc, if non-nil, is called after every epoch.
	StatusFunc func(s EpochStats)

	state State
}

// State returns the current phase of the trainer.
func (t *Trainer) State() State {
	return t.state
}

// Run trains for t.NumEpochs epochs.
//
// The context is checked before every epoch and every
// batch.
// If it is done, Eval is decoded and an error wrapping
// ErrInterrupted is returned.
// Training never resumes after an interrupt.
func (t *Trainer) Run(ctx context.Context) error {
	t.state = Initializing
	if t.Samples.Len() == 0 {
		return errors.New("train: no training samples")
	}
	if t.BatchSize <= 0 {
		return errors.New("train: batch size must be positive")
	}
	numExamples := t.Samples.Len()
	numBatches := NumBatches(numExamples, t.BatchSize)

	for epoch := 0; epoch < t.NumEpochs; epoch++ {
		if ctx.Err() != nil {
			return t.interrupt(ctx)
		}
		t.state = EpochRunning
		start := time.Now()

		var totalCost, totalLER float64
		for b := 0; b < numBatches; b++ {
			if ctx.Err() != nil {
				return t.interrupt(ctx)
			}
			t.state = BatchRunning
			cost, ler, err := t.step(BatchIndices(b, t.BatchSize, numExamples))
			if err != nil {
				return essentials.AddCtx("train", err)
			}
			totalCost += cost * float64(t.BatchSize)
			totalLER += ler * float64(t.BatchSize)
			t.state = EpochRunning
		}

		t.state = Shuffling
		t.Samples.Shuffle(t.Rand)

		stats := EpochStats{
			Epoch:          epoch + 1,
			NumEpochs:      t.NumEpochs,
			Cost:           totalCost / float64(numExamples),
			LabelErrorRate: totalLER / float64(numExamples),
			Elapsed:        time.Since(start),
		}
		fmt.Fprintf(t.Output, "Epoch %d/%d, train_cost = %.3f, train_ler = %.3f, time = %.3f\n",
			stats.Epoch, stats.NumEpochs, stats.Cost, stats.LabelErrorRate,
			stats.Elapsed.Seconds())
		if t.StatusFunc != nil {
			t.StatusFunc(stats)
		}
	}

	fmt.Fprintln(t.Output, "FINISHED")
	t.decode()
	t.state = Finished
	return nil
}

// step trains on one batch and returns the cost before the
// update and the label error rate after it.
func (t *Trainer) step(indices []int) (cost, ler float64, err error) {
	inputs, targets, err := t.Samples.Batch(indices)
	if err != nil {
		return 0, 0, err
	}
	loss := t.Model.Loss(t.Model.Forward(inputs), targets)
	t.Model.OptimizeStep(loss)
	decoded := t.Model.Decode(t.Model.Forward(inputs))
	return loss.Value(), ctcmodel.EditDistance(decoded, targets.Sequences()), nil
}

func (t *Trainer) interrupt(ctx context.Context) error {
	t.state = Interrupted
	t.decode()
	t.state = Interrupted
	return fmt.Errorf("%w: %v", ErrInterrupted, ctx.Err())
}

// decode prints the most likely transcript for each
// sequence in Eval.
func (t *Trainer) decode() {
	t.state = Decoding
	fmt.Fprintln(t.Output)
	if t.Eval == nil || t.Eval.Len() == 0 {
		return
	}
	labels := t.Model.Decode(t.Model.Forward(t.Eval))
	for i, seq := range batch.Pack(labels).Dense(-1) {
		fmt.Fprintf(t.Output, "[%d] Decoded:\t%s\n", i, alphabet.Decode(seq))
	}
}
