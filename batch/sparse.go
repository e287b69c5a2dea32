package batch

// Sparse is a coordinate-list encoding of a batch of
// label sequences.
//
// Indices are (example, position) pairs sorted in
// row-major order, and Values[i] is the label found at
// Indices[i].
// Shape is (batch size, longest label in the batch).
type Sparse struct {
	Indices [][2]int
	Values  []int
	Shape   [2]int
}

// Pack encodes a batch of label sequences.
func Pack(labels [][]int) *Sparse {
	res := &Sparse{Shape: [2]int{len(labels), 0}}
	for i, seq := range labels {
		for j, x := range seq {
			res.Indices = append(res.Indices, [2]int{i, j})
			res.Values = append(res.Values, x)
		}
		if len(seq) > res.Shape[1] {
			res.Shape[1] = len(seq)
		}
	}
	return res
}

// Sequences decodes the ragged label sequences.
func (s *Sparse) Sequences() [][]int {
	res := make([][]int, s.Shape[0])
	for i := range res {
		res[i] = []int{}
	}
	for i, idx := range s.Indices {
		res[idx[0]] = append(res[idx[0]], s.Values[i])
	}
	return res
}

// Dense produces a Shape[0] x Shape[1] matrix, using fill
// for the positions with no value.
func (s *Sparse) Dense(fill int) [][]int {
	res := make([][]int, s.Shape[0])
	for i := range res {
		res[i] = make([]int, s.Shape[1])
		for j := range res[i] {
			res[i][j] = fill
		}
	}
	for i, idx := range s.Indices {
		res[idx[0]][idx[1]] = s.Values[i]
	}
	return res
}
