package config

import (
	"os"

	"github.com/ezoic/surrogo/objective"
	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/searchspace"
	"github.com/ezoic/surrogo/surrogates"
)

// NewSurrogate builds an untrained surrogate. CustomArchitectureSurrogate
// wraps user code and cannot be configured from a file.
func NewSurrogate(cfg SurrogateConfig) (surrogates.Surrogate, error) {
	switch surrogates.Kind(cfg.Kind) {
	case surrogates.KindGaussianProcess:
		s := surrogates.NewGaussianProcessSurrogate()
		s.MaxIterations = cfg.MaxIterations
		return s, nil
	case surrogates.KindBayesianLinear:
		s := surrogates.NewBayesianLinearSurrogate()
		s.NIter, s.Tol = cfg.NIter, cfg.Tol
		return s, nil
	case surrogates.KindRandomForest:
		s := surrogates.NewRandomForestSurrogate()
		s.NEstimators = cfg.NEstimators
		s.MaxDepth = cfg.MaxDepth
		s.MaxFeatures = cfg.MaxFeatures
		s.RandomState = cfg.RandomState
		return s, nil
	case surrogates.KindMeanPrediction:
		return surrogates.NewMeanPredictionSurrogate(), nil
	case surrogates.KindPretrained:
		blob, err := os.ReadFile(cfg.ModelBlobPath)
		if err != nil {
			return nil, errors.Wrap(err, "read model blob")
		}
		return surrogates.NewPretrainedSurrogate(blob), nil
	case surrogates.KindCustomArchitecture:
		return nil, errors.NewUnsupportedConfigurationError("config.NewSurrogate",
			"custom architectures must be constructed in code")
	default:
		return nil, errors.NewValueError("config.NewSurrogate", "unknown surrogate kind "+cfg.Kind)
	}
}

// NewSearchSpace builds the configured search space.
func NewSearchSpace(cfg SearchSpaceConfig) (*searchspace.SearchSpace, error) {
	params := make([]searchspace.Parameter, 0, len(cfg.Parameters))
	for _, pc := range cfg.Parameters {
		p, err := newParameter(pc)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %q", pc.Name)
		}
		params = append(params, p)
	}
	return searchspace.New(params...)
}

func newParameter(pc ParameterConfig) (searchspace.Parameter, error) {
	switch pc.Type {
	case ParamNumericalDiscrete:
		return searchspace.NewNumericalDiscrete(pc.Name, pc.Values...)
	case ParamNumericalContinuous:
		if pc.Bounds == nil {
			return nil, errors.NewValidationError("bounds", "continuous parameter needs bounds", nil)
		}
		return searchspace.NewNumericalContinuous(pc.Name, pc.Bounds[0], pc.Bounds[1])
	case ParamCategorical:
		enc := searchspace.EncodingOHE
		if pc.Encoding != "" {
			enc = searchspace.CategoricalEncoding(pc.Encoding)
		}
		return searchspace.NewCategorical(pc.Name, pc.Labels, enc)
	case ParamTask:
		return searchspace.NewTask(pc.Name, pc.Labels, pc.ActiveValues)
	default:
		return nil, errors.NewValidationError("type", "unknown parameter type", pc.Type)
	}
}

// NewObjective builds a SingleTarget for one target and a Desirability for
// several.
func NewObjective(cfg ObjectiveConfig) (objective.Objective, error) {
	targets := make([]objective.Target, len(cfg.Targets))
	for i, t := range cfg.Targets {
		nt, err := objective.NewTarget(t.Name, t.Mode, t.Bounds, t.Transformation)
		if err != nil {
			return nil, err
		}
		targets[i] = nt
	}
	if len(targets) == 1 {
		st, err := objective.NewSingleTarget(targets[0])
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	scalarizer := objective.ScalarizerGeomMean
	if cfg.Scalarizer != "" {
		scalarizer = objective.Scalarizer(cfg.Scalarizer)
	}
	d, err := objective.NewDesirability(targets, cfg.Weights, scalarizer)
	if err != nil {
		return nil, err
	}
	return d, nil
}
