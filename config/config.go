// Package config loads the settings for a training run.
package config

import (
	"fmt"
	"os"

	"github.com/kevinmel2000/ctcspeech/mfcc"
	"gopkg.in/yaml.v3"
)

// Config holds every setting of a training run.
type Config struct {
	TrainGlob string `yaml:"train_glob"`
	TestGlob  string `yaml:"test_glob"`

	// Target is the transcript of every training file.
	Target string `yaml:"target"`

	Model    ModelConfig    `yaml:"model"`
	Training TrainingConfig `yaml:"training"`
	Features FeatureConfig  `yaml:"features"`

	// SavePath is where the trained model is written.
	// If it is empty, nothing is saved.
	SavePath string `yaml:"save_path"`
}

// ModelConfig holds the network shape and decoder settings.
type ModelConfig struct {
	NumHidden int `yaml:"num_hidden"`
	NumLayers int `yaml:"num_layers"`
	BeamWidth int `yaml:"beam_width"`
}

// TrainingConfig holds optimizer and loop settings.
type TrainingConfig struct {
	NumEpochs    int     `yaml:"num_epochs"`
	BatchSize    int     `yaml:"batch_size"`
	LearningRate float64 `yaml:"learning_rate"`
	Momentum     float64 `yaml:"momentum"`
	Seed         int64   `yaml:"seed"`
}

// FeatureConfig holds the MFCC settings.
type FeatureConfig struct {
	NumFeatures   int     `yaml:"num_features"`
	WindowSeconds float64 `yaml:"window_seconds"`
	StepSeconds   float64 `yaml:"step_seconds"`
	NumFilters    int     `yaml:"num_filters"`
	FFTSize       int     `yaml:"fft_size"`
	PreEmphasis   float64 `yaml:"pre_emphasis"`
	CepLifter     int     `yaml:"cep_lifter"`
}

// Default returns the settings of the reference training
// run.
func Default() *Config {
	m := mfcc.DefaultConfig()
	return &Config{
		TrainGlob: "wav/train/*.wav",
		TestGlob:  "wav/test/*.wav",
		Target:    "alhamdulilahirabilxalamin",
		Model: ModelConfig{
			NumHidden: 50,
			NumLayers: 1,
			BeamWidth: 100,
		},
		Training: TrainingConfig{
			NumEpochs:    5000,
			BatchSize:    4,
			LearningRate: 1e-2,
			Momentum:     0.9,
			Seed:         1337,
		},
		Features: FeatureConfig{
			NumFeatures:   m.NumCepstra,
			WindowSeconds: m.WindowSeconds,
			StepSeconds:   m.StepSeconds,
			NumFilters:    m.NumFilters,
			FFTSize:       m.FFTSize,
			PreEmphasis:   m.PreEmphasis,
			CepLifter:     m.CepLifter,
		},
	}
}

// Load reads a YAML config file.
// Fields missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.TrainGlob == "" {
		return fmt.Errorf("train_glob must not be empty")
	}
	if c.TestGlob == "" {
		return fmt.Errorf("test_glob must not be empty")
	}
	if c.Target == "" {
		return fmt.Errorf("target must not be empty")
	}

	if c.Model.NumHidden <= 0 {
		return fmt.Errorf("model.num_hidden must be > 0")
	}
	if c.Model.NumLayers <= 0 {
		return fmt.Errorf("model.num_layers must be > 0")
	}
	if c.Model.BeamWidth <= 0 {
		return fmt.Errorf("model.beam_width must be > 0")
	}

	if c.Training.NumEpochs < 0 {
		return fmt.Errorf("training.num_epochs must be >= 0")
	}
	if c.Training.BatchSize <= 0 {
		return fmt.Errorf("training.batch_size must be > 0")
	}
	if c.Training.LearningRate <= 0 {
		return fmt.Errorf("training.learning_rate must be > 0")
	}
	if c.Training.Momentum < 0 || c.Training.Momentum >= 1 {
		return fmt.Errorf("training.momentum must be in [0, 1), got %v", c.Training.Momentum)
	}

	f := c.Features
	if f.NumFeatures <= 0 {
		return fmt.Errorf("features.num_features must be > 0")
	}
	if f.NumFilters < f.NumFeatures {
		return fmt.Errorf("features.num_filters must be >= num_features")
	}
	if f.WindowSeconds <= 0 || f.StepSeconds <= 0 {
		return fmt.Errorf("features.window_seconds and step_seconds must be > 0")
	}
	if f.FFTSize <= 0 {
		return fmt.Errorf("features.fft_size must be > 0")
	}

	return nil
}

// MFCC converts the feature settings into an mfcc.Config.
func (c *Config) MFCC() mfcc.Config {
	res := mfcc.DefaultConfig()
	res.NumCepstra = c.Features.NumFeatures
	res.WindowSeconds = c.Features.WindowSeconds
	res.StepSeconds = c.Features.StepSeconds
	res.NumFilters = c.Features.NumFilters
	res.FFTSize = c.Features.FFTSize
	res.PreEmphasis = c.Features.PreEmphasis
	res.CepLifter = c.Features.CepLifter
	return res
}
