package artifacts

import (
	"context"
	"fmt"
	"math"
)

// TreeNode is one node of a flattened decision tree. A node with an empty
// Feature is a leaf carrying Value; otherwise rows with
// row[Feature] <= Threshold go Left and the rest go Right.
type TreeNode struct {
	Feature   string  `json:"feature,omitempty"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a flattened tree rooted at node 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// validate requires children to sit after their parent, so evaluation
// always terminates.
func (t Tree) validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.Feature == "" {
			if !finite(n.Value) {
				return fmt.Errorf("leaf %d value is not finite", i)
			}
			continue
		}
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has out-of-order children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

func (t Tree) eval(row map[string]float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature == "" {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// TreeEnsemble is a random forest (mean of leaf values) or a gradient boosted
// ensemble (base score plus learning rate times the sum of leaf values).
// Boosted classifiers emit log-odds and are mapped through the logistic function.
type TreeEnsemble struct {
	Kind         string  `json:"kind"`
	BaseScore    float64 `json:"base_score"`
	LearningRate float64 `json:"learning_rate"`
	Trees        []Tree  `json:"trees"`
}

func (e *TreeEnsemble) validate() error {
	switch e.Kind {
	case KindRandomForest:
	case KindGBDT:
		if !(e.LearningRate > 0) || !finite(e.LearningRate) || !finite(e.BaseScore) {
			return fmt.Errorf("gbdt requires a positive learning_rate and a finite base_score")
		}
	default:
		return fmt.Errorf("tree ensemble kind %q not supported", e.Kind)
	}
	if len(e.Trees) == 0 {
		return fmt.Errorf("%s has no trees", e.Kind)
	}
	for i, t := range e.Trees {
		if err := t.validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (e *TreeEnsemble) raw(row map[string]float64) float64 {
	sum := 0.0
	for _, t := range e.Trees {
		sum += t.eval(row)
	}
	if e.Kind == KindRandomForest {
		return sum / float64(len(e.Trees))
	}
	return e.BaseScore + e.LearningRate*sum
}

// Classify returns the positive-class probability. Forest leaves hold class
// fractions, so the mean is clamped into [0, 1].
func (e *TreeEnsemble) Classify(_ context.Context, row map[string]float64) (float64, error) {
	v := e.raw(row)
	if e.Kind == KindGBDT {
		return sigmoid(v), nil
	}
	return math.Min(1, math.Max(0, v)), nil
}

func (e *TreeEnsemble) Regress(_ context.Context, row map[string]float64) (float64, error) {
	return e.raw(row), nil
}
