// Package serialization converts surrogates to and from JSON.
//
// A serialized surrogate is an object whose "type" field holds the variant's
// Kind; the remaining fields are the variant's configuration. Fitted state is
// never written: a decoded surrogate is untrained and must be fitted again.
//
// Byte payloads (the model blob of PretrainedSurrogate) are stored as
// ISO-8859-1 strings. CustomArchitectureSurrogate wraps arbitrary code and
// cannot be serialized.
package serialization

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/pkg/log"
	"github.com/ezoic/surrogo/surrogates"
)

// Version is the version of the JSON layout written by Marshal.
const Version = 1

const typeField = "type"

type envelope struct {
	Type surrogates.Kind `json:"type"`
}

type gaussianProcessDoc struct {
	Type          surrogates.Kind `json:"type"`
	MaxIterations int             `json:"max_iterations"`
}

type bayesianLinearDoc struct {
	Type  surrogates.Kind `json:"type"`
	NIter int             `json:"n_iter"`
	Tol   float64         `json:"tol"`
}

type randomForestDoc struct {
	Type        surrogates.Kind `json:"type"`
	NEstimators int             `json:"n_estimators"`
	MaxDepth    int             `json:"max_depth"`
	MaxFeatures float64         `json:"max_features"`
	RandomState int64           `json:"random_state"`
}

type meanPredictionDoc struct {
	Type surrogates.Kind `json:"type"`
}

type pretrainedDoc struct {
	Type      surrogates.Kind `json:"type"`
	ModelBlob string          `json:"model_blob"`
}

// Marshal returns the JSON representation of s. For
// CustomArchitectureSurrogate it returns a SerializationUnsupportedError and
// no bytes.
func Marshal(s surrogates.Surrogate) ([]byte, error) {
	var doc any
	switch v := s.(type) {
	case *surrogates.GaussianProcessSurrogate:
		doc = gaussianProcessDoc{Type: v.Kind(), MaxIterations: v.MaxIterations}
	case *surrogates.BayesianLinearSurrogate:
		doc = bayesianLinearDoc{Type: v.Kind(), NIter: v.NIter, Tol: v.Tol}
	case *surrogates.RandomForestSurrogate:
		doc = randomForestDoc{
			Type:        v.Kind(),
			NEstimators: v.NEstimators,
			MaxDepth:    v.MaxDepth,
			MaxFeatures: v.MaxFeatures,
			RandomState: v.RandomState,
		}
	case *surrogates.MeanPredictionSurrogate:
		doc = meanPredictionDoc{Type: v.Kind()}
	case *surrogates.PretrainedSurrogate:
		blob, err := EncodeBytes(v.ModelBlob)
		if err != nil {
			return nil, err
		}
		doc = pretrainedDoc{Type: v.Kind(), ModelBlob: blob}
	case *surrogates.CustomArchitectureSurrogate:
		return nil, errors.NewSerializationUnsupportedError(string(v.Kind()))
	case nil:
		return nil, errors.NewValueError("serialization.Marshal", "nil surrogate")
	default:
		return nil, errors.NewSerializationUnsupportedError(fmt.Sprintf("%T", s))
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %s", s.Kind())
	}
	log.GetLoggerWithName("serialization").Debug("Surrogate serialized",
		log.OperationKey, log.OperationSerialize,
		log.SurrogateKindKey, string(s.Kind()),
		"bytes", len(data),
	)
	return data, nil
}

// Unmarshal decodes a surrogate written by Marshal. Unknown fields and
// unknown types are rejected.
func Unmarshal(data []byte) (surrogates.Surrogate, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, "unmarshal surrogate")
	}
	if env.Type == "" {
		return nil, errors.NewValueError("serialization.Unmarshal", fmt.Sprintf("missing %q field", typeField))
	}

	switch env.Type {
	case surrogates.KindGaussianProcess:
		var doc gaussianProcessDoc
		if err := decodeStrict(data, &doc); err != nil {
			return nil, err
		}
		s := surrogates.NewGaussianProcessSurrogate()
		s.MaxIterations = doc.MaxIterations
		return s, nil
	case surrogates.KindBayesianLinear:
		var doc bayesianLinearDoc
		if err := decodeStrict(data, &doc); err != nil {
			return nil, err
		}
		s := surrogates.NewBayesianLinearSurrogate()
		s.NIter, s.Tol = doc.NIter, doc.Tol
		return s, nil
	case surrogates.KindRandomForest:
		var doc randomForestDoc
		if err := decodeStrict(data, &doc); err != nil {
			return nil, err
		}
		s := surrogates.NewRandomForestSurrogate()
		s.NEstimators = doc.NEstimators
		s.MaxDepth = doc.MaxDepth
		s.MaxFeatures = doc.MaxFeatures
		s.RandomState = doc.RandomState
		return s, nil
	case surrogates.KindMeanPrediction:
		var doc meanPredictionDoc
		if err := decodeStrict(data, &doc); err != nil {
			return nil, err
		}
		return surrogates.NewMeanPredictionSurrogate(), nil
	case surrogates.KindPretrained:
		var doc pretrainedDoc
		if err := decodeStrict(data, &doc); err != nil {
			return nil, err
		}
		blob, err := DecodeBytes(doc.ModelBlob)
		if err != nil {
			return nil, err
		}
		return surrogates.NewPretrainedSurrogate(blob), nil
	case surrogates.KindCustomArchitecture:
		return nil, errors.NewSerializationUnsupportedError(string(env.Type))
	default:
		return nil, errors.NewValueError("serialization.Unmarshal", fmt.Sprintf("unknown surrogate type %q", env.Type))
	}
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "unmarshal surrogate")
	}
	return nil
}
