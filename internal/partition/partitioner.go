package partition

import (
	"log"
	"math"
	"math/rand"
	"sort"

	"salescope/domain/core"
	"salescope/domain/dataset"
)

// Strategy selects how rows are assigned to partitions.
type Strategy string

const (
	// Uniform shuffles all rows once and cuts the shuffled order.
	Uniform Strategy = "uniform"
	// Stratified bins rows by target quantile and cuts each bin with
	// the same ratios, preserving the target distribution per split.
	Stratified Strategy = "stratified"
)

// stratifiedBins is the number of target-quantile bins used by the
// stratified strategy.
const stratifiedBins = 10

// Ratios are the train/validation/test proportions of a split.
type Ratios struct {
	Train      float64
	Validation float64
	Test       float64
}

// Validate rejects negative ratios and ratios summing above one. Sums
// below one are allowed; the remainder is simply left out of all three
// partitions.
func (r Ratios) Validate() error {
	if r.Train < 0 || r.Validation < 0 || r.Test < 0 {
		return core.NewRatioError(r.Train, r.Validation, r.Test, "ratios must be non-negative")
	}
	const eps = 1e-9
	if r.Train+r.Validation+r.Test > 1+eps {
		return core.NewRatioError(r.Train, r.Validation, r.Test, "ratios must sum to at most 1")
	}
	return nil
}

func (r Ratios) sumsToOne() bool {
	return math.Abs(r.Train+r.Validation+r.Test-1) < 1e-9
}

// Result holds the three partitions of one split.
type Result struct {
	Train      dataset.Partition
	Validation dataset.Partition
	Test       dataset.Partition
	Strategy   Strategy
	Seed       int64
}

// Split cuts a dataset into train/validation/test partitions. The split
// is deterministic for a given seed and strategy. Partitions are always
// pairwise disjoint; when the ratios sum to one their sizes sum to the
// dataset size.
func Split(ds dataset.Dataset, ratios Ratios, seed int64, strategy Strategy) (*Result, error) {
	if err := ratios.Validate(); err != nil {
		return nil, err
	}
	n := ds.Len()
	if n < 3 {
		return nil, core.NewInsufficientDataError(3, n)
	}

	rng := rand.New(rand.NewSource(seed))

	var trainIdx, valIdx, testIdx []int
	switch strategy {
	case Stratified:
		trainIdx, valIdx, testIdx = stratifiedSplit(ds, ratios, rng)
	default:
		trainIdx, valIdx, testIdx = uniformSplit(n, ratios, rng)
	}

	log.Printf("[Partitioner] %s split seed=%d: train=%d validation=%d test=%d of %d",
		strategy, seed, len(trainIdx), len(valIdx), len(testIdx), n)

	return &Result{
		Train:      makePartition(ds, dataset.PartitionTrain, trainIdx),
		Validation: makePartition(ds, dataset.PartitionValidation, valIdx),
		Test:       makePartition(ds, dataset.PartitionTest, testIdx),
		Strategy:   strategy,
		Seed:       seed,
	}, nil
}

func makePartition(ds dataset.Dataset, name string, indices []int) dataset.Partition {
	sort.Ints(indices)
	return dataset.Partition{
		Name:          name,
		Data:          ds.Select(indices),
		SourceIndices: indices,
	}
}

// counts apportions n rows to the three partitions. Each count is
// rounded from its ratio; rounding can oversubscribe n (0.5/0.5/0 on an
// odd n rounds both halves up), so later partitions shed rows first.
// When the ratios sum to one the test partition absorbs whatever
// remains, so no row is dropped.
func counts(n int, ratios Ratios) (nTrain, nVal, nTest int) {
	nTrain = int(math.Round(float64(n) * ratios.Train))
	if nTrain > n {
		nTrain = n
	}
	nVal = int(math.Round(float64(n) * ratios.Validation))
	if nTrain+nVal > n {
		nVal = n - nTrain
	}
	if ratios.sumsToOne() {
		nTest = n - nTrain - nVal
	} else {
		nTest = int(math.Round(float64(n) * ratios.Test))
		if nTrain+nVal+nTest > n {
			nTest = n - nTrain - nVal
		}
	}
	return nTrain, nVal, nTest
}

func uniformSplit(n int, ratios Ratios, rng *rand.Rand) (train, val, test []int) {
	perm := rng.Perm(n)
	nTrain, nVal, nTest := counts(n, ratios)
	train = perm[:nTrain]
	val = perm[nTrain : nTrain+nVal]
	test = perm[nTrain+nVal : nTrain+nVal+nTest]
	return train, val, test
}

// stratifiedSplit orders rows by target, slices that order into
// quantile bins, and cuts every bin with the split ratios. Remainders
// inside a bin fall to the bin's test share, mirroring counts().
func stratifiedSplit(ds dataset.Dataset, ratios Ratios, rng *rand.Rand) (train, val, test []int) {
	n := ds.Len()
	target := ds.Target()

	byTarget := make([]int, n)
	for i := range byTarget {
		byTarget[i] = i
	}
	sort.SliceStable(byTarget, func(a, b int) bool { return target[byTarget[a]] < target[byTarget[b]] })

	bins := stratifiedBins
	if bins > n {
		bins = n
	}

	for b := 0; b < bins; b++ {
		lo := b * n / bins
		hi := (b + 1) * n / bins
		bin := make([]int, hi-lo)
		copy(bin, byTarget[lo:hi])
		rng.Shuffle(len(bin), func(i, j int) { bin[i], bin[j] = bin[j], bin[i] })

		bTrain, bVal, bTest := counts(len(bin), ratios)
		train = append(train, bin[:bTrain]...)
		val = append(val, bin[bTrain:bTrain+bVal]...)
		test = append(test, bin[bTrain+bVal:bTrain+bVal+bTest]...)
	}
	return train, val, test
}
