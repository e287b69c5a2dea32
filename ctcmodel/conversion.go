package ctcmodel

import (
	"fmt"

	"github.com/kevinmel2000/ctcspeech/batch"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anyvec"
)

// paddedToSeq converts the unpadded part of a batch into a
// sequence batch.
func paddedToSeq(c anyvec.Creator, in *batch.Padded) anyseq.Seq {
	seqs := make([][]anyvec.Vector, in.Len())
	for i := range seqs {
		frames := in.Unpad(i)
		seqs[i] = make([]anyvec.Vector, len(frames))
		for t, frame := range frames {
			seqs[i][t] = c.MakeVectorData(c.MakeNumericList(frame))
		}
	}
	return anyseq.ConstSeqList(c, seqs)
}

// seqFrames extracts the per-frame outputs of each of the
// n sequences in a batch as float64 slices.
func seqFrames(s anyseq.Seq, n int) [][][]float64 {
	res := make([][][]float64, n)
	for i, seq := range anyseq.SeparateSeqs(s.Output()) {
		res[i] = make([][]float64, len(seq))
		for t, vec := range seq {
			res[i][t] = vectorFloats(vec)
		}
	}
	return res
}

func vectorFloats(v anyvec.Vector) []float64 {
	switch d := v.Data().(type) {
	case []float64:
		return d
	case []float32:
		res := make([]float64, len(d))
		for i, x := range d {
			res[i] = float64(x)
		}
		return res
	default:
		panic(fmt.Sprintf("unsupported numeric type: %T", d))
	}
}

func numericFloat(n anyvec.Numeric) float64 {
	switch n := n.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	default:
		panic(fmt.Sprintf("unsupported numeric type: %T", n))
	}
}
