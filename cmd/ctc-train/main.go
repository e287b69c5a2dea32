// Command ctc-train trains an LSTM acoustic model with CTC
// on a directory of WAV files that all share one
// transcript, then prints its decodings of a test set.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/kevinmel2000/ctcspeech/alphabet"
	"github.com/kevinmel2000/ctcspeech/audio"
	"github.com/kevinmel2000/ctcspeech/batch"
	"github.com/kevinmel2000/ctcspeech/config"
	"github.com/kevinmel2000/ctcspeech/ctcmodel"
	"github.com/kevinmel2000/ctcspeech/ctctrain"
	"github.com/kevinmel2000/ctcspeech/mfcc"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/essentials"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "optional YAML config file")
	flag.Parse()

	log.Println("Setting up...")

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			essentials.Die(err)
		}
	}
	if err := cfg.Validate(); err != nil {
		essentials.Die(err)
	}

	trainer, model, err := setup(cfg)
	if err != nil {
		essentials.Die(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go stopOnInterrupt(ctx, cancel)

	log.Println("Press ctrl+c once to stop...")
	err = trainer.Run(ctx)
	if err != nil && !errors.Is(err, ctctrain.ErrInterrupted) {
		essentials.Die(err)
	}

	if cfg.SavePath != "" {
		log.Println("Saving model to", cfg.SavePath)
		if err := model.Save(cfg.SavePath); err != nil {
			essentials.Die(err)
		}
	}
}

// stopOnInterrupt cancels the context on the first SIGINT.
// Later signals get the default behavior, so a second
// ctrl+c kills the process.
func stopOnInterrupt(ctx context.Context, cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	defer signal.Stop(sigCh)
	cancelOnSignal(ctx, cancel, sigCh)
}

func cancelOnSignal(ctx context.Context, cancel context.CancelFunc, sigCh <-chan os.Signal) {
	select {
	case <-sigCh:
		cancel()
	case <-ctx.Done():
	}
}

// setup loads the data sets and builds a trainer for a
// fresh model.
func setup(cfg *config.Config) (*ctctrain.Trainer, *ctcmodel.LSTM, error) {
	target, err := alphabet.Encode(cfg.Target)
	if err != nil {
		return nil, nil, essentials.AddCtx("encode target", err)
	}

	featConfig := cfg.MFCC()
	trainFeats, err := loadFeatures(cfg.TrainGlob, featConfig)
	if err != nil {
		return nil, nil, err
	}
	testFeats, err := loadFeatures(cfg.TestGlob, featConfig)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Loaded %d training and %d test files.", len(trainFeats), len(testFeats))

	labels := make([][]int, len(trainFeats))
	for i := range labels {
		labels[i] = target
	}
	pool, err := ctctrain.NewPool(trainFeats, labels)
	if err != nil {
		return nil, nil, err
	}
	eval, err := batch.Pad(testFeats)
	if err != nil {
		return nil, nil, essentials.AddCtx("pad test set", err)
	}

	gen := rand.New(rand.NewSource(cfg.Training.Seed))
	model := ctcmodel.NewLSTM(anyvec32.CurrentCreator(), ctcmodel.LSTMConfig{
		NumFeatures:  cfg.Features.NumFeatures,
		NumHidden:    cfg.Model.NumHidden,
		NumLayers:    cfg.Model.NumLayers,
		NumClasses:   alphabet.NumClasses,
		LearningRate: cfg.Training.LearningRate,
		Momentum:     cfg.Training.Momentum,
		BeamWidth:    cfg.Model.BeamWidth,
	}, gen)

	trainer := &ctctrain.Trainer{
		Model:     model,
		Samples:   pool,
		Eval:      eval,
		NumEpochs: cfg.Training.NumEpochs,
		BatchSize: cfg.Training.BatchSize,
		Rand:      gen,
		Output:    os.Stdout,
	}
	return trainer, model, nil
}

// loadFeatures reads every file matching the pattern and
// computes normalized MFCC features for it.
func loadFeatures(pattern string, c mfcc.Config) ([][][]float64, error) {
	paths, err := audio.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.New("no files match " + pattern)
	}
	utts, err := audio.ReadAll(paths)
	if err != nil {
		return nil, err
	}
	res := make([][][]float64, len(utts))
	for i, u := range utts {
		res[i], err = mfcc.FromUtterance(u, c)
		if err != nil {
			return nil, essentials.AddCtx(u.Path, err)
		}
	}
	return res, nil
}
