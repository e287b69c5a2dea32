// Package batch turns ragged training data into the
// rectangular and sparse layouts used for training.
package batch

import "fmt"

// Padded is a batch of feature sequences which have been
// zero-padded to a common length.
//
// Data has the shape N x MaxLen() x Width().
// Lengths stores the true length of each sequence, so
// that padding can be excluded from computations.
type Padded struct {
	Data    [][][]float64
	Lengths []int
}

// Pad copies a list of feature sequences into a Padded
// batch.
// Every timestep of every sequence must have the same
// width.
func Pad(seqs [][][]float64) (*Padded, error) {
	width := -1
	maxLen := 0
	lengths := make([]int, len(seqs))
	for i, seq := range seqs {
		lengths[i] = len(seq)
		if len(seq) > maxLen {
			maxLen = len(seq)
		}
		for t, frame := range seq {
			if width == -1 {
				width = len(frame)
			} else if len(frame) != width {
				return nil, fmt.Errorf("pad batch: sequence %d timestep %d has width %d (expected %d)",
					i, t, len(frame), width)
			}
		}
	}
	if width == -1 {
		width = 0
	}

	data := make([][][]float64, len(seqs))
	for i, seq := range seqs {
		data[i] = make([][]float64, maxLen)
		for t := range data[i] {
			frame := make([]float64, width)
			if t < len(seq) {
				copy(frame, seq[t])
			}
			data[i][t] = frame
		}
	}
	return &Padded{Data: data, Lengths: lengths}, nil
}

// Len returns the number of sequences in the batch.
func (p *Padded) Len() int {
	return len(p.Data)
}

// MaxLen returns the padded length of every sequence.
func (p *Padded) MaxLen() int {
	if len(p.Data) == 0 {
		return 0
	}
	return len(p.Data[0])
}

// Width returns the number of features per timestep.
func (p *Padded) Width() int {
	if p.MaxLen() == 0 {
		return 0
	}
	return len(p.Data[0][0])
}

// Unpad returns the unpadded timesteps of sequence i.
// The result shares memory with p.
func (p *Padded) Unpad(i int) [][]float64 {
	return p.Data[i][:p.Lengths[i]]
}

// Select gathers the elements at the given indices.
// The result shares elements with the input.
func Select[T any](list []T, indices []int) []T {
	res := make([]T, len(indices))
	for i, idx := range indices {
		res[i] = list[idx]
	}
	return res
}
