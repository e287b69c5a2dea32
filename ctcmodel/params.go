package ctcmodel

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet/anysgd"
)

// Params stores the learnable variables of a model along
// with the optimizer state that updates them.
//
// A Params is owned by a single training loop.
// It is not thread-safe.
type Params struct {
	Vars []*anydiff.Var

	// Transformer, if non-nil, transforms each gradient
	// before it is applied (e.g. *anysgd.Momentum).
	Transformer anysgd.Transformer

	LearningRate float64

	// NumSteps counts the calls to Step.
	NumSteps int
}

// Step computes the gradient of a one-component cost and
// takes a gradient descent step.
func (p *Params) Step(cost anydiff.Res) {
	grad := anydiff.NewGrad(p.Vars...)
	c := cost.Output().Creator()
	cost.Propagate(c.MakeVectorData(c.MakeNumericList([]float64{1})), grad)
	if p.Transformer != nil {
		grad = p.Transformer.Transform(grad)
	}
	grad.Scale(c.MakeNumeric(-p.LearningRate))
	grad.AddToVars()
	p.NumSteps++
}
