// Package config loads surrogo YAML configuration files and builds the
// search space, objective and surrogate they describe.
//
// A minimal file:
//
//	surrogate:
//	  kind: GaussianProcessSurrogate
//	searchspace:
//	  parameters:
//	    - {name: x, type: numerical_continuous, bounds: [0, 10]}
//	objective:
//	  targets:
//	    - {name: y, mode: MAX}
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ezoic/surrogo/objective"
	"github.com/ezoic/surrogo/pkg/errors"
)

// Parameter types accepted in searchspace.parameters[].type.
const (
	ParamNumericalDiscrete   = "numerical_discrete"
	ParamNumericalContinuous = "numerical_continuous"
	ParamCategorical         = "categorical"
	ParamTask                = "task"
)

// Config is the root of a configuration file.
type Config struct {
	Log         LogConfig         `json:"log" yaml:"log"`
	Surrogate   SurrogateConfig   `json:"surrogate" yaml:"surrogate"`
	SearchSpace SearchSpaceConfig `json:"searchspace" yaml:"searchspace"`
	Objective   ObjectiveConfig   `json:"objective" yaml:"objective"`
	Storage     StorageConfig     `json:"storage" yaml:"storage"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level" validate:"oneof=debug info warn error disabled"`
}

// SurrogateConfig selects a surrogate kind and its options. Options of other
// kinds are ignored.
type SurrogateConfig struct {
	Kind string `json:"kind" yaml:"kind" validate:"required,oneof=GaussianProcessSurrogate BayesianLinearSurrogate RandomForestSurrogate MeanPredictionSurrogate PretrainedSurrogate"`

	MaxIterations int `json:"max_iterations" yaml:"max_iterations" validate:"gte=1"`

	NIter int     `json:"n_iter" yaml:"n_iter" validate:"gte=1"`
	Tol   float64 `json:"tol" yaml:"tol" validate:"gt=0"`

	NEstimators int     `json:"n_estimators" yaml:"n_estimators" validate:"gte=1"`
	MaxDepth    int     `json:"max_depth" yaml:"max_depth" validate:"gte=0"`
	MaxFeatures float64 `json:"max_features" yaml:"max_features" validate:"gt=0,lte=1"`
	RandomState int64   `json:"random_state" yaml:"random_state"`

	// ModelBlobPath is the file holding the pretrained model blob.
	ModelBlobPath string `json:"model_blob_path" yaml:"model_blob_path" validate:"required_if=Kind PretrainedSurrogate"`
}

type SearchSpaceConfig struct {
	Parameters []ParameterConfig `json:"parameters" yaml:"parameters" validate:"required,min=1,dive"`
}

// ParameterConfig describes one parameter. Values is used by
// numerical_discrete, Bounds by numerical_continuous, Labels by categorical
// and task.
type ParameterConfig struct {
	Name         string      `json:"name" yaml:"name" validate:"required"`
	Type         string      `json:"type" yaml:"type" validate:"required,oneof=numerical_discrete numerical_continuous categorical task"`
	Values       []float64   `json:"values,omitempty" yaml:"values,omitempty" validate:"required_if=Type numerical_discrete"`
	Bounds       *[2]float64 `json:"bounds,omitempty" yaml:"bounds,omitempty" validate:"required_if=Type numerical_continuous"`
	Labels       []string    `json:"labels,omitempty" yaml:"labels,omitempty"`
	Encoding     string      `json:"encoding,omitempty" yaml:"encoding,omitempty" validate:"omitempty,oneof=OHE INT"`
	ActiveValues []string    `json:"active_values,omitempty" yaml:"active_values,omitempty"`
}

// ObjectiveConfig describes a single target or a desirability over several.
type ObjectiveConfig struct {
	Targets    []objective.Target `json:"targets" yaml:"targets" validate:"required,min=1"`
	Weights    []float64          `json:"weights,omitempty" yaml:"weights,omitempty" validate:"omitempty,dive,gt=0"`
	Scalarizer string             `json:"scalarizer,omitempty" yaml:"scalarizer,omitempty" validate:"omitempty,oneof=GEOM_MEAN MEAN"`
}

type StorageConfig struct {
	Backend string `json:"backend" yaml:"backend" validate:"oneof=memory sqlite"`
	Path    string `json:"path" yaml:"path" validate:"required_if=Backend sqlite"`
}

var validate = validator.New()

// DefaultConfig returns the defaults every loaded file starts from. It has
// no search space or objective and therefore does not validate on its own.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Surrogate: SurrogateConfig{
			Kind:          "GaussianProcessSurrogate",
			MaxIterations: 200,
			NIter:         300,
			Tol:           1e-3,
			NEstimators:   100,
			MaxFeatures:   1.0,
		},
		Storage: StorageConfig{Backend: "memory"},
	}
}

// Load reads and validates the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "load config file")
	}
	return Parse(data)
}

// Parse decodes YAML on top of DefaultConfig and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct constraints and the cross-field rules the tags
// cannot express.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.Wrap(
				errors.NewValidationError(fe.Namespace(), "failed '"+fe.Tag()+"' constraint", fe.Value()),
				"invalid config")
		}
		return errors.Wrap(err, "invalid config")
	}
	for _, p := range c.SearchSpace.Parameters {
		if (p.Type == ParamCategorical || p.Type == ParamTask) && len(p.Labels) == 0 {
			return errors.NewValidationError("searchspace.parameters."+p.Name+".labels",
				p.Type+" parameter needs labels", nil)
		}
	}
	if len(c.Objective.Weights) > 0 && len(c.Objective.Weights) != len(c.Objective.Targets) {
		return errors.NewValidationError("objective.weights", "one weight per target is required", c.Objective.Weights)
	}
	return nil
}
