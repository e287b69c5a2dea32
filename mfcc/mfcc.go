// Package mfcc computes mel-frequency cepstral
// coefficients for speech recognition.
package mfcc

import (
	"errors"
	"math"

	"github.com/kevinmel2000/ctcspeech/audio"
	"github.com/unixpickle/essentials"
	"gonum.org/v1/gonum/dsp/fourier"
)

// epsilon replaces zero energies before taking logs.
const epsilon = 2.220446049250313e-16

// Config stores the parameters of the feature pipeline.
type Config struct {
	WindowSeconds float64
	StepSeconds   float64
	NumCepstra    int
	NumFilters    int

	// FFTSize is the length of each frame's FFT.
	// Windows longer than FFTSize use the next power of
	// two instead.
	FFTSize int

	LowFreq float64

	// HighFreq is the top of the filterbank.
	// If it is 0, half of the sample rate is used.
	HighFreq float64

	PreEmphasis float64
	CepLifter   int

	// AppendEnergy replaces the zeroth cepstral coefficient
	// with the log of the frame energy.
	AppendEnergy bool
}

// DefaultConfig returns the configuration used for the
// acoustic model: 13 coefficients from 25ms windows every
// 10ms.
func DefaultConfig() Config {
	return Config{
		WindowSeconds: 0.025,
		StepSeconds:   0.01,
		NumCepstra:    13,
		NumFilters:    26,
		FFTSize:       512,
		PreEmphasis:   0.97,
		CepLifter:     22,
		AppendEnergy:  true,
	}
}

// Extract computes a features-by-frames matrix.
// Each row is one frame with c.NumCepstra entries.
func Extract(samples []float64, sampleRate int, c Config) (feats [][]float64, err error) {
	defer essentials.AddCtxTo("extract MFCC", &err)
	if len(samples) == 0 {
		return nil, errors.New("empty waveform")
	}
	if sampleRate <= 0 {
		return nil, errors.New("invalid sample rate")
	}

	frameLen := roundHalfUp(c.WindowSeconds * float64(sampleRate))
	frameStep := roundHalfUp(c.StepSeconds * float64(sampleRate))
	if frameLen <= 0 || frameStep <= 0 {
		return nil, errors.New("window too short for sample rate")
	}
	fftSize := c.FFTSize
	if frameLen > fftSize {
		fftSize = nextPowerOfTwo(frameLen)
	}

	highFreq := c.HighFreq
	if highFreq == 0 {
		highFreq = float64(sampleRate) / 2
	}

	frames := frameSignal(preEmphasize(samples, c.PreEmphasis), frameLen, frameStep)
	bank := newFilterbank(c.NumFilters, fftSize, sampleRate, c.LowFreq, highFreq)
	fft := fourier.NewFFT(fftSize)
	padded := make([]float64, fftSize)
	var coeffs []complex128
	power := make([]float64, fftSize/2+1)
	logMel := make([]float64, c.NumFilters)

	feats = make([][]float64, len(frames))
	for i, frame := range frames {
		copy(padded, frame)
		for j := len(frame); j < len(padded); j++ {
			padded[j] = 0
		}
		coeffs = fft.Coefficients(coeffs, padded)
		var energy float64
		for j, x := range coeffs {
			re, im := real(x), imag(x)
			power[j] = (re*re + im*im) / float64(fftSize)
			energy += power[j]
		}
		bank.apply(power, logMel)

		cep := dct(logMel, c.NumCepstra)
		if c.CepLifter > 0 {
			lifter(cep, c.CepLifter)
		}
		if c.AppendEnergy {
			if energy == 0 {
				energy = epsilon
			}
			cep[0] = math.Log(energy)
		}
		feats[i] = cep
	}
	return feats, nil
}

// FromUtterance extracts features from the utterance and
// normalizes them.
func FromUtterance(u *audio.Utterance, c Config) ([][]float64, error) {
	feats, err := Extract(u.Samples, u.SampleRate, c)
	if err != nil {
		return nil, essentials.AddCtx(u.Path, err)
	}
	Normalize(feats)
	return feats, nil
}

// nextPowerOfTwo returns the smallest power of two that is
// at least n.
func nextPowerOfTwo(n int) int {
	res := 1
	for res < n {
		res <<= 1
	}
	return res
}

func preEmphasize(samples []float64, coeff float64) []float64 {
	res := make([]float64, len(samples))
	res[0] = samples[0]
	for i := 1; i < len(samples); i++ {
		res[i] = samples[i] - coeff*samples[i-1]
	}
	return res
}

// frameSignal splits a signal into overlapping frames.
// The last frame is zero-padded, so every sample ends up
// in at least one frame.
func frameSignal(signal []float64, frameLen, step int) [][]float64 {
	numFrames := 1
	if len(signal) > frameLen {
		numFrames += (len(signal) - frameLen + step - 1) / step
	}
	frames := make([][]float64, numFrames)
	for i := range frames {
		frame := make([]float64, frameLen)
		start := i * step
		if start < len(signal) {
			copy(frame, signal[start:])
		}
		frames[i] = frame
	}
	return frames
}

// dct computes the first n coefficients of an orthonormal
// type-II DCT.
func dct(in []float64, n int) []float64 {
	res := make([]float64, n)
	size := float64(len(in))
	for k := range res {
		var sum float64
		for j, x := range in {
			sum += x * math.Cos(math.Pi*float64(k)*(float64(j)+0.5)/size)
		}
		if k == 0 {
			res[k] = sum * math.Sqrt(1/size)
		} else {
			res[k] = sum * math.Sqrt(2/size)
		}
	}
	return res
}

func lifter(cep []float64, l int) {
	for i := range cep {
		cep[i] *= 1 + float64(l)/2*math.Sin(math.Pi*float64(i)/float64(l))
	}
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
