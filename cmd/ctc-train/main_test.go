package main

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/kevinmel2000/ctcspeech/alphabet"
	"github.com/kevinmel2000/ctcspeech/config"
)

func TestSetup(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"train", "test"} {
		if err := os.Mkdir(filepath.Join(dir, sub), 0755); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 3; i++ {
		name := string(rune('a'+i)) + ".wav"
		writeTone(t, filepath.Join(dir, "train", name), 300+100*float64(i))
	}
	writeTone(t, filepath.Join(dir, "test", "x.wav"), 250)

	cfg := config.Default()
	cfg.TrainGlob = filepath.Join(dir, "train", "*.wav")
	cfg.TestGlob = filepath.Join(dir, "test", "*.wav")
	cfg.Target = "hi"
	cfg.Model.NumHidden = 8
	cfg.Model.BeamWidth = 2
	cfg.Training.NumEpochs = 2
	cfg.Training.BatchSize = 2

	trainer, model, err := setup(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if trainer.Samples.Len() != 3 || trainer.Eval.Len() != 1 {
		t.Fatalf("bad data set sizes: %d and %d", trainer.Samples.Len(), trainer.Eval.Len())
	}
	if trainer.Eval.Width() != 13 {
		t.Errorf("expected 13 features but got %d", trainer.Eval.Width())
	}
	for _, labels := range trainer.Samples.Labels {
		if alphabet.Decode(labels) != "hi" {
			t.Errorf("bad labels: %v", labels)
		}
	}
	if model.BeamWidth != 2 {
		t.Errorf("bad beam width: %d", model.BeamWidth)
	}

	var out bytes.Buffer
	trainer.Output = &out
	if err := trainer.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if !strings.HasPrefix(lines[0], "Epoch 1/2, train_cost = ") ||
		!strings.HasPrefix(lines[1], "Epoch 2/2, train_cost = ") {
		t.Errorf("unexpected epoch lines: %q", lines[:2])
	}
	if lines[2] != "FINISHED" || lines[3] != "" ||
		!strings.HasPrefix(lines[4], "[0] Decoded:\t") {
		t.Errorf("unexpected output tail: %q", lines[2:])
	}
}

func TestSetupErrors(t *testing.T) {
	dir := t.TempDir()
	writeTone(t, filepath.Join(dir, "a.wav"), 440)

	cfg := config.Default()
	cfg.TrainGlob = filepath.Join(dir, "*.wav")
	cfg.TestGlob = filepath.Join(dir, "*.wav")

	cfg.Target = "Hello"
	if _, _, err := setup(cfg); err == nil {
		t.Error("expected error for invalid transcript")
	}

	cfg.Target = "hello"
	cfg.TestGlob = filepath.Join(dir, "*.flac")
	if _, _, err := setup(cfg); err == nil {
		t.Error("expected error for empty test set")
	}
}

func TestCancelOnSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	go func() {
		cancelOnSignal(ctx, cancel, sigCh)
		close(done)
	}()
	sigCh <- syscall.SIGINT
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not return after a signal")
	}
	if ctx.Err() == nil {
		t.Error("context should be cancelled by a signal")
	}

	ctx, cancel = context.WithCancel(context.Background())
	done = make(chan struct{})
	go func() {
		cancelOnSignal(ctx, cancel, make(chan os.Signal))
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not return after cancel")
	}
}

func writeTone(t *testing.T, path string, freq float64) {
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	const rate = 16000
	data := make([]int, rate/2)
	for i := range data {
		data[i] = int(4000 * math.Sin(2*math.Pi*freq*float64(i)/rate))
	}
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}
