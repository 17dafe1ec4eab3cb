// Package tree implements CART regression trees and bootstrap random forests.
//
// The forest reports the spread of its trees' predictions as a variance,
// which gives a cheap, non-parametric uncertainty estimate.
package tree

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/core/model"
	"github.com/ezoic/surrogo/pkg/errors"
)

// Node is one node of a regression tree.
type Node struct {
	IsLeaf    bool    // Whether this is a leaf node
	Feature   int     // Feature index for split (internal nodes)
	Threshold float64 // Split threshold; left child gets values <= Threshold
	Left      *Node
	Right     *Node
	Value     float64 // Mean target of the samples in the node
	Impurity  float64 // Variance of the targets in the node
	NSamples  int
	Depth     int
}

// RegressionTree is a CART regressor using the squared error criterion.
type RegressionTree struct {
	state *model.StateManager

	// Hyperparameters
	maxDepth            int     // 0 = unlimited
	minSamplesSplit     int     // Minimum samples to split a node
	minSamplesLeaf      int     // Minimum samples in a leaf
	maxFeatures         float64 // Fraction of features tried per split, (0, 1]
	minImpurityDecrease float64
	randomState         int64 // <0 falls back to seed 0

	root                *Node
	nFeatures           int
	featureImportances_ []float64
}

// Option configures a RegressionTree or RandomForest.
type Option func(*treeParams)

type treeParams struct {
	maxDepth            int
	minSamplesSplit     int
	minSamplesLeaf      int
	maxFeatures         float64
	minImpurityDecrease float64
	randomState         int64
}

func defaultParams() treeParams {
	return treeParams{
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		maxFeatures:     1.0,
		randomState:     -1,
	}
}

// WithMaxDepth sets the maximum tree depth (0 = unlimited).
func WithMaxDepth(depth int) Option {
	return func(p *treeParams) { p.maxDepth = depth }
}

// WithMinSamplesSplit sets the minimum number of samples needed to split.
func WithMinSamplesSplit(n int) Option {
	return func(p *treeParams) { p.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum number of samples in a leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(p *treeParams) { p.minSamplesLeaf = n }
}

// WithMaxFeatures sets the fraction of features considered at each split.
func WithMaxFeatures(fraction float64) Option {
	return func(p *treeParams) { p.maxFeatures = fraction }
}

// WithMinImpurityDecrease sets the minimum variance reduction for a split.
func WithMinImpurityDecrease(v float64) Option {
	return func(p *treeParams) { p.minImpurityDecrease = v }
}

// WithRandomState sets the random seed.
func WithRandomState(seed int64) Option {
	return func(p *treeParams) { p.randomState = seed }
}

func (p treeParams) validate(op string) error {
	if p.minSamplesSplit < 2 {
		return errors.NewValueError(op, fmt.Sprintf("min_samples_split must be >= 2, got %d", p.minSamplesSplit))
	}
	if p.minSamplesLeaf < 1 {
		return errors.NewValueError(op, fmt.Sprintf("min_samples_leaf must be >= 1, got %d", p.minSamplesLeaf))
	}
	if !(p.maxFeatures > 0 && p.maxFeatures <= 1) {
		return errors.NewValueError(op, fmt.Sprintf("max_features must be in (0, 1], got %g", p.maxFeatures))
	}
	return nil
}

// NewRegressionTree creates a regression tree.
func NewRegressionTree(opts ...Option) *RegressionTree {
	p := defaultParams()
	for _, opt := range opts {
		opt(&p)
	}
	return newTree(p)
}

func newTree(p treeParams) *RegressionTree {
	return &RegressionTree{
		state:               model.NewStateManager(),
		maxDepth:            p.maxDepth,
		minSamplesSplit:     p.minSamplesSplit,
		minSamplesLeaf:      p.minSamplesLeaf,
		maxFeatures:         p.maxFeatures,
		minImpurityDecrease: p.minImpurityDecrease,
		randomState:         p.randomState,
	}
}

func (t *RegressionTree) params() treeParams {
	return treeParams{
		maxDepth:            t.maxDepth,
		minSamplesSplit:     t.minSamplesSplit,
		minSamplesLeaf:      t.minSamplesLeaf,
		maxFeatures:         t.maxFeatures,
		minImpurityDecrease: t.minImpurityDecrease,
		randomState:         t.randomState,
	}
}

// Fit grows the tree on X (n_samples, n_features) and y (n_samples, 1).
func (t *RegressionTree) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "RegressionTree.Fit")
	n, _ := X.Dims()
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	seed := t.randomState
	if seed < 0 {
		seed = 0
	}
	return t.fitIndices(X, y, idx, rand.New(rand.NewPCG(uint64(seed), uint64(seed))))
}

// fitIndices grows the tree on the rows listed in idx, which may repeat.
func (t *RegressionTree) fitIndices(X, y mat.Matrix, idx []int, rng *rand.Rand) error {
	if err := t.params().validate("RegressionTree.Fit"); err != nil {
		return err
	}
	n, p := X.Dims()
	ry, cy := y.Dims()
	if n == 0 || p == 0 || len(idx) == 0 {
		return errors.NewModelError("RegressionTree.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != n {
		return errors.NewDimensionError("RegressionTree.Fit", n, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("RegressionTree.Fit", "y must be a column vector")
	}

	b := &builder{
		tree:    t,
		X:       X,
		y:       make([]float64, n),
		rng:     rng,
		nTry:    max(1, int(math.Ceil(t.maxFeatures*float64(p)))),
		nFeat:   p,
		weights: make([]float64, p),
	}
	mat.Col(b.y, 0, y)

	t.nFeatures = p
	t.root = b.grow(append([]int(nil), idx...), 0)

	var total float64
	for _, w := range b.weights {
		total += w
	}
	if total > 0 {
		for j := range b.weights {
			b.weights[j] /= total
		}
	}
	t.featureImportances_ = b.weights
	t.state.SetFitted()
	t.state.SetDimensions(p, len(idx))
	return nil
}

type builder struct {
	tree    *RegressionTree
	X       mat.Matrix
	y       []float64
	rng     *rand.Rand
	nTry    int
	nFeat   int
	weights []float64
}

func (b *builder) grow(idx []int, depth int) *Node {
	mean, impurity := moments(b.y, idx)
	node := &Node{Value: mean, Impurity: impurity, NSamples: len(idx), Depth: depth}

	t := b.tree
	if (t.maxDepth > 0 && depth >= t.maxDepth) || len(idx) < t.minSamplesSplit || impurity <= 0 {
		node.IsLeaf = true
		return node
	}

	feature, threshold, decrease := b.bestSplit(idx, impurity)
	if feature < 0 || decrease < t.minImpurityDecrease {
		node.IsLeaf = true
		return node
	}

	var left, right []int
	for _, i := range idx {
		if b.X.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	node.Feature = feature
	node.Threshold = threshold
	b.weights[feature] += decrease * float64(len(idx))
	node.Left = b.grow(left, depth+1)
	node.Right = b.grow(right, depth+1)
	return node
}

// bestSplit scans sorted feature values with running sums so every candidate
// threshold costs O(1).
func (b *builder) bestSplit(idx []int, parentImpurity float64) (int, float64, float64) {
	n := len(idx)
	features := b.rng.Perm(b.nFeat)[:b.nTry]

	bestFeature, bestThreshold, bestDecrease := -1, 0.0, 0.0
	order := make([]int, n)
	var totalSum, totalSq float64
	for _, i := range idx {
		totalSum += b.y[i]
		totalSq += b.y[i] * b.y[i]
	}

	minLeaf := b.tree.minSamplesLeaf
	for _, f := range features {
		copy(order, idx)
		sort.SliceStable(order, func(a, c int) bool {
			return b.X.At(order[a], f) < b.X.At(order[c], f)
		})

		var leftSum, leftSq float64
		for k := 0; k < n-1; k++ {
			yi := b.y[order[k]]
			leftSum += yi
			leftSq += yi * yi
			nl, nr := k+1, n-k-1
			lo, hi := b.X.At(order[k], f), b.X.At(order[k+1], f)
			if lo == hi || nl < minLeaf || nr < minLeaf {
				continue
			}
			rightSum, rightSq := totalSum-leftSum, totalSq-leftSq
			weighted := (leftSq - leftSum*leftSum/float64(nl) + rightSq - rightSum*rightSum/float64(nr)) / float64(n)
			if decrease := parentImpurity - weighted; decrease > bestDecrease {
				bestFeature, bestThreshold, bestDecrease = f, (lo+hi)/2, decrease
			}
		}
	}
	return bestFeature, bestThreshold, bestDecrease
}

func moments(y []float64, idx []int) (mean, variance float64) {
	for _, i := range idx {
		mean += y[i]
	}
	mean /= float64(len(idx))
	for _, i := range idx {
		d := y[i] - mean
		variance += d * d
	}
	return mean, variance / float64(len(idx))
}

// Predict returns the leaf values for the rows of X as an (n_samples, 1) matrix.
func (t *RegressionTree) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "RegressionTree.Predict")
	if !t.state.IsFitted() {
		return nil, errors.NewNotFittedError("RegressionTree", "Predict")
	}
	n, p := X.Dims()
	if p != t.nFeatures {
		return nil, errors.NewDimensionError("RegressionTree.Predict", t.nFeatures, p, 1)
	}
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, t.predictRow(X, i))
	}
	return out, nil
}

func (t *RegressionTree) predictRow(X mat.Matrix, i int) float64 {
	node := t.root
	for !node.IsLeaf {
		if X.At(i, node.Feature) <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// IsFitted returns whether the tree has been grown.
func (t *RegressionTree) IsFitted() bool { return t.state.IsFitted() }

// GetParams returns the model hyperparameters.
func (t *RegressionTree) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":             t.maxDepth,
		"min_samples_split":     t.minSamplesSplit,
		"min_samples_leaf":      t.minSamplesLeaf,
		"max_features":          t.maxFeatures,
		"min_impurity_decrease": t.minImpurityDecrease,
		"random_state":          t.randomState,
	}
}

// GetFeatureImportances returns the normalized variance reduction per feature.
func (t *RegressionTree) GetFeatureImportances() []float64 {
	return append([]float64(nil), t.featureImportances_...)
}

// GetDepth returns the depth of the deepest leaf.
func (t *RegressionTree) GetDepth() int {
	return maxDepth(t.root)
}

func maxDepth(node *Node) int {
	if node == nil {
		return 0
	}
	if node.IsLeaf {
		return node.Depth
	}
	return max(maxDepth(node.Left), maxDepth(node.Right))
}

// GetNLeaves returns the number of leaves.
func (t *RegressionTree) GetNLeaves() int {
	return countLeaves(t.root)
}

func countLeaves(node *Node) int {
	if node == nil {
		return 0
	}
	if node.IsLeaf {
		return 1
	}
	return countLeaves(node.Left) + countLeaves(node.Right)
}
