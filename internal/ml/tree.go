package ml

import (
	"math/rand"
	"sort"
)

// treeNode is one node of a regression tree. Leaves carry the mean
// target of their training rows; internal nodes route on a single
// feature threshold.
type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// treeConfig bounds tree growth.
type treeConfig struct {
	maxDepth    int
	minLeaf     int
	maxFeatures int // candidate features per split; 0 means all
}

// growTree fits a CART regression tree on the rows named by indices,
// splitting on variance reduction. importance, when non-nil, accumulates
// each feature's total weighted impurity decrease.
func growTree(X [][]float64, y []float64, indices []int, cfg treeConfig, rng *rand.Rand, importance []float64) *treeNode {
	return grow(X, y, indices, cfg, rng, importance, 0)
}

func grow(X [][]float64, y []float64, indices []int, cfg treeConfig, rng *rand.Rand, importance []float64, depth int) *treeNode {
	mean, sse := meanSSE(y, indices)
	if len(indices) < 2*cfg.minLeaf || (cfg.maxDepth > 0 && depth >= cfg.maxDepth) || sse == 0 {
		return &treeNode{leaf: true, value: mean}
	}

	feature, threshold, gain := bestSplit(X, y, indices, cfg, rng, sse)
	if gain <= 0 {
		return &treeNode{leaf: true, value: mean}
	}

	var left, right []int
	for _, i := range indices {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < cfg.minLeaf || len(right) < cfg.minLeaf {
		return &treeNode{leaf: true, value: mean}
	}

	if importance != nil {
		importance[feature] += gain
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      grow(X, y, left, cfg, rng, importance, depth+1),
		right:     grow(X, y, right, cfg, rng, importance, depth+1),
	}
}

// bestSplit scans candidate features for the threshold with the largest
// reduction in sum of squared errors, using a single sorted pass with
// running sums per feature.
func bestSplit(X [][]float64, y []float64, indices []int, cfg treeConfig, rng *rand.Rand, parentSSE float64) (feature int, threshold float64, gain float64) {
	nFeatures := len(X[0])
	candidates := featureCandidates(nFeatures, cfg.maxFeatures, rng)

	feature = -1
	order := make([]int, len(indices))

	for _, f := range candidates {
		copy(order, indices)
		sort.Slice(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

		var sumL, sqL float64
		sumR, sqR := sums(y, order)
		n := float64(len(order))

		for pos := 0; pos < len(order)-1; pos++ {
			v := y[order[pos]]
			sumL += v
			sqL += v * v
			sumR -= v
			sqR -= v * v

			// No valid threshold between equal feature values.
			if X[order[pos]][f] == X[order[pos+1]][f] {
				continue
			}
			nL := float64(pos + 1)
			nR := n - nL
			if int(nL) < cfg.minLeaf || int(nR) < cfg.minLeaf {
				continue
			}
			sse := (sqL - sumL*sumL/nL) + (sqR - sumR*sumR/nR)
			if g := parentSSE - sse; g > gain {
				gain = g
				feature = f
				threshold = (X[order[pos]][f] + X[order[pos+1]][f]) / 2
			}
		}
	}
	if feature < 0 {
		return 0, 0, 0
	}
	return feature, threshold, gain
}

func featureCandidates(nFeatures, maxFeatures int, rng *rand.Rand) []int {
	if maxFeatures <= 0 || maxFeatures >= nFeatures {
		all := make([]int, nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return rng.Perm(nFeatures)[:maxFeatures]
}

func meanSSE(y []float64, indices []int) (mean, sse float64) {
	sum, sq := sums(y, indices)
	n := float64(len(indices))
	if n == 0 {
		return 0, 0
	}
	mean = sum / n
	sse = sq - sum*sum/n
	if sse < 0 {
		sse = 0 // numeric underflow on near-constant targets
	}
	return mean, sse
}

func sums(y []float64, indices []int) (sum, sumSq float64) {
	for _, i := range indices {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	return sum, sumSq
}

func (t *treeNode) predict(x []float64) float64 {
	node := t
	for !node.leaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}
