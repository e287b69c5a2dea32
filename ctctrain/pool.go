package ctctrain

import (
	"errors"
	"math/rand"

	"github.com/kevinmel2000/ctcspeech/batch"
	"github.com/unixpickle/essentials"
)

// A Pool stores every training example in memory.
// Inputs[i] is the feature sequence whose labels are
// Labels[i].
type Pool struct {
	Inputs [][][]float64
	Labels [][]int
}

// NewPool creates a pool, checking that every input has
// a label sequence.
func NewPool(inputs [][][]float64, labels [][]int) (*Pool, error) {
	if len(inputs) != len(labels) {
		return nil, errors.New("create pool: input and label counts differ")
	}
	return &Pool{Inputs: inputs, Labels: labels}, nil
}

// Len returns the number of examples.
func (p *Pool) Len() int {
	return len(p.Inputs)
}

// Swap swaps two examples.
func (p *Pool) Swap(i, j int) {
	p.Inputs[i], p.Inputs[j] = p.Inputs[j], p.Inputs[i]
	p.Labels[i], p.Labels[j] = p.Labels[j], p.Labels[i]
}

// Shuffle applies a random permutation to the examples,
// keeping every input paired with its labels.
// If gen is nil, the global source is used.
func (p *Pool) Shuffle(gen *rand.Rand) {
	var perm []int
	if gen == nil {
		perm = rand.Perm(p.Len())
	} else {
		perm = gen.Perm(p.Len())
	}
	p.Inputs = batch.Select(p.Inputs, perm)
	p.Labels = batch.Select(p.Labels, perm)
}

// Batch builds the padded inputs and the sparse targets
// for the examples at the given indices.
func (p *Pool) Batch(indices []int) (*batch.Padded, *batch.Sparse, error) {
	inputs, err := batch.Pad(batch.Select(p.Inputs, indices))
	if err != nil {
		return nil, nil, essentials.AddCtx("build batch", err)
	}
	return inputs, batch.Pack(batch.Select(p.Labels, indices)), nil
}

// NumBatches computes the number of batches per epoch.
// A trailing partial batch is dropped.
func NumBatches(numExamples, batchSize int) int {
	return numExamples / batchSize
}

// BatchIndices computes the example indices of batch b.
//
// Indices wrap around modulo numExamples, so a batch is
// not strictly a partition of the pool.
func BatchIndices(b, batchSize, numExamples int) []int {
	res := make([]int, batchSize)
	for i := range res {
		res[i] = (b*batchSize + i) % numExamples
	}
	return res
}
