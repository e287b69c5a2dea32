package ctcmodel

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/kevinmel2000/ctcspeech/batch"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyctc"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

const (
	defaultLearningRate = 1e-2
	defaultMomentum     = 0.9
	outputInitStddev    = 0.1
)

func init() {
	var l LSTM
	serializer.RegisterTypedDeserializer(l.SerializerType(), DeserializeLSTM)
}

// LSTMConfig stores the shape and training
// hyper-parameters of an LSTM model.
type LSTMConfig struct {
	NumFeatures int
	NumHidden   int
	NumLayers   int
	NumClasses  int

	LearningRate float64
	Momentum     float64
	BeamWidth    int
}

// LSTM is a Model made of stacked LSTM blocks followed by
// a per-frame softmax layer.
type LSTM struct {
	Creator anyvec.Creator
	Blocks  []*anyrnn.LSTM
	Out     *anynet.FC

	// BeamWidth is the width used by Decode.
	// If it is 0, DefaultBeamWidth is used.
	BeamWidth int

	params *Params
}

var _ Model = (*LSTM)(nil)

// NewLSTM creates a randomly initialized LSTM model.
//
// The output layer's weights are drawn from a normal
// distribution with a standard deviation of 0.1 truncated
// at two deviations; its biases start at zero.
// The random source only affects the output layer.
func NewLSTM(c anyvec.Creator, conf LSTMConfig, gen *rand.Rand) *LSTM {
	if conf.NumLayers < 1 {
		panic("LSTM needs at least one layer")
	}
	res := &LSTM{Creator: c, BeamWidth: conf.BeamWidth}
	inCount := conf.NumFeatures
	for i := 0; i < conf.NumLayers; i++ {
		res.Blocks = append(res.Blocks, anyrnn.NewLSTM(c, inCount, conf.NumHidden))
		inCount = conf.NumHidden
	}
	res.Out = anynet.NewFCZero(c, conf.NumHidden, conf.NumClasses)
	weights := make([]float64, res.Out.Weights.Vector.Len())
	for i := range weights {
		weights[i] = truncatedNormal(gen) * outputInitStddev
	}
	res.Out.Weights.Vector.SetData(c.MakeNumericList(weights))

	res.params = res.newParams(conf.LearningRate, conf.Momentum)
	return res
}

// DeserializeLSTM deserializes an LSTM model.
//
// The optimizer state is not serialized, so the result
// uses default training hyper-parameters.
func DeserializeLSTM(d []byte) (*LSTM, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, essentials.AddCtx("deserialize LSTM", err)
	}
	if len(slice) < 2 {
		return nil, errors.New("deserialize LSTM: too few layers")
	}
	res := &LSTM{}
	for _, x := range slice[:len(slice)-1] {
		block, ok := x.(*anyrnn.LSTM)
		if !ok {
			return nil, fmt.Errorf("deserialize LSTM: unexpected block: %T", x)
		}
		res.Blocks = append(res.Blocks, block)
	}
	out, ok := slice[len(slice)-1].(*anynet.FC)
	if !ok {
		return nil, fmt.Errorf("deserialize LSTM: unexpected output layer: %T",
			slice[len(slice)-1])
	}
	res.Out = out
	res.Creator = out.Weights.Vector.Creator()
	res.params = res.newParams(0, 0)
	return res, nil
}

// LoadLSTM reads a model saved with Save.
func LoadLSTM(path string) (*LSTM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, essentials.AddCtx("load LSTM", err)
	}
	var res *LSTM
	if err := serializer.DeserializeAny(data, &res); err != nil {
		return nil, essentials.AddCtx("load LSTM", err)
	}
	return res, nil
}

// Save writes the model to a file.
func (l *LSTM) Save(path string) error {
	data, err := serializer.SerializeAny(l)
	if err != nil {
		return essentials.AddCtx("save LSTM", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return essentials.AddCtx("save LSTM", err)
	}
	return nil
}

// Params returns the parameters and optimizer state.
func (l *LSTM) Params() *Params {
	return l.params
}

// Parameters returns the learnable variables.
func (l *LSTM) Parameters() []*anydiff.Var {
	var res []*anydiff.Var
	for _, b := range l.Blocks {
		res = append(res, b.Parameters()...)
	}
	return append(res, l.Out.Parameters()...)
}

// Forward applies the network to the unpadded timesteps
// of every sequence.
func (l *LSTM) Forward(in *batch.Padded) Output {
	var block anyrnn.Stack
	for _, b := range l.Blocks {
		block = append(block, b)
	}
	block = append(block, &anyrnn.LayerBlock{
		Layer: anynet.Net{l.Out, anynet.LogSoftmax},
	})
	inSeq := paddedToSeq(l.Creator, in)
	return &lstmOutput{
		Seq:     anyrnn.Map(inSeq, block),
		lengths: append([]int{}, in.Lengths...),
	}
}

// Loss computes the mean CTC cost over the batch.
//
// The out argument must come from l.Forward.
func (l *LSTM) Loss(out Output, targets *batch.Sparse) Loss {
	o := out.(*lstmOutput)
	labels := targets.Sequences()
	if len(labels) != len(o.lengths) {
		panic(fmt.Sprintf("have %d label sequences for %d outputs", len(labels),
			len(o.lengths)))
	}
	if len(labels) == 0 {
		return &ctcLoss{}
	}
	costs := anyctc.Cost(o.Seq, labels)
	scaler := l.Creator.MakeNumeric(1 / float64(len(labels)))
	mean := anydiff.Scale(anydiff.Sum(costs), scaler)
	return &ctcLoss{
		Res: mean,
		V:   numericFloat(anyvec.Sum(mean.Output())),
	}
}

// OptimizeStep takes a step of momentum SGD.
//
// The loss must come from l.Loss.
func (l *LSTM) OptimizeStep(loss Loss) {
	cl := loss.(*ctcLoss)
	if cl.Res == nil {
		return
	}
	l.params.Step(cl.Res)
}

// Decode runs a beam search on each output sequence.
func (l *LSTM) Decode(out Output) [][]int {
	o := out.(*lstmOutput)
	width := l.BeamWidth
	if width == 0 {
		width = DefaultBeamWidth
	}
	frames := seqFrames(o.Seq, len(o.lengths))
	res := make([][]int, len(frames))
	for i, f := range frames {
		res[i] = BeamSearch(f, width)
	}
	return res
}

// SerializerType returns the unique ID used to serialize
// an LSTM with the serializer package.
func (l *LSTM) SerializerType() string {
	return "github.com/kevinmel2000/ctcspeech/ctcmodel.LSTM"
}

// Serialize serializes the blocks and the output layer.
func (l *LSTM) Serialize() ([]byte, error) {
	var slice []serializer.Serializer
	for _, b := range l.Blocks {
		slice = append(slice, b)
	}
	slice = append(slice, l.Out)
	return serializer.SerializeSlice(slice)
}

func (l *LSTM) newParams(learningRate, momentum float64) *Params {
	if learningRate == 0 {
		learningRate = defaultLearningRate
	}
	if momentum == 0 {
		momentum = defaultMomentum
	}
	return &Params{
		Vars:         l.Parameters(),
		Transformer:  &anysgd.Momentum{Momentum: momentum},
		LearningRate: learningRate,
	}
}

type lstmOutput struct {
	Seq     anyseq.Seq
	lengths []int
}

func (l *lstmOutput) Lengths() []int {
	return l.lengths
}

type ctcLoss struct {
	Res anydiff.Res
	V   float64
}

func (c *ctcLoss) Value() float64 {
	return c.V
}

func truncatedNormal(gen *rand.Rand) float64 {
	for {
		var x float64
		if gen == nil {
			x = rand.NormFloat64()
		} else {
			x = gen.NormFloat64()
		}
		if math.Abs(x) <= 2 {
			return x
		}
	}
}
