// Package audio loads the WAV utterances that make up a
// training or evaluation corpus.
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-audio/wav"
	"github.com/unixpickle/essentials"
)

// An Utterance is a decoded, single-channel recording.
//
// Samples holds the raw PCM integers as float64s.
// They are not rescaled to [-1, 1], since the features
// are normalized later anyway.
type Utterance struct {
	Path       string
	SampleRate int
	Samples    []float64
}

// Duration returns the length of the recording in
// seconds.
func (u *Utterance) Duration() float64 {
	return float64(len(u.Samples)) / float64(u.SampleRate)
}

// Glob finds the files matching a pattern and returns
// them in lexical order.
func Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, essentials.AddCtx("glob "+pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// ReadFile decodes a mono WAV file.
func ReadFile(path string) (u *Utterance, err error) {
	defer essentials.AddCtxTo("read "+path, &err)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf.Format == nil {
		return nil, errors.New("missing format chunk")
	}
	if buf.Format.NumChannels != 1 {
		return nil, fmt.Errorf("expected 1 channel but got %d", buf.Format.NumChannels)
	}
	if len(buf.Data) == 0 {
		return nil, errors.New("no samples")
	}

	samples := make([]float64, len(buf.Data))
	for i, x := range buf.Data {
		samples[i] = float64(x)
	}
	return &Utterance{
		Path:       path,
		SampleRate: buf.Format.SampleRate,
		Samples:    samples,
	}, nil
}

// ReadAll decodes every file in order.
// It stops at the first failure.
func ReadAll(paths []string) ([]*Utterance, error) {
	res := make([]*Utterance, 0, len(paths))
	for _, p := range paths {
		u, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, nil
}
