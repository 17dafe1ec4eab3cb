package log

// Model and operation context.
const (
	// ModelNameKey identifies the model type, e.g. "GaussianProcessSurrogate".
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies one model instance.
	EstimatorIDKey = "estimator.id"

	// OperationKey names the operation being performed ("fit", "posterior", ...).
	OperationKey = "ml.operation"

	// ComponentKey names the package doing the work.
	ComponentKey = "ml.component"

	// PhaseKey is the lifecycle phase ("training", "inference", "preprocessing").
	PhaseKey = "ml.phase"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	TargetsKey  = "data.targets"
	ColumnsKey  = "data.columns"
)

// Performance and training progress.
const (
	DurationMsKey = "perf.duration_ms"
	IterationKey  = "training.iteration"
	LossKey       = "metrics.loss"
)

// Surrogate specific context.
const (
	SurrogateKindKey  = "surrogate.kind"
	TasksKey          = "searchspace.tasks"
	ContinuousKey     = "searchspace.continuous"
	JointPosteriorKey = "posterior.joint"
	OutputScalingKey  = "surrogate.output_scaling"
	CandidatesKey     = "posterior.candidates"
)

// Error context.
const (
	ErrorCodeKey = "error.code"
	ErrorTypeKey = "error.type"
)

// Standard operation values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationPosterior = "posterior"
	OperationTransform = "transform"
	OperationSerialize = "serialize"
)

// Standard phase values.
const (
	PhaseTraining      = "training"
	PhaseInference     = "inference"
	PhasePreprocessing = "preprocessing"
)
