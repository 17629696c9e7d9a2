package dataset

// Partition names a disjoint subset of a source Dataset. The three
// partitions produced by a split are disjoint and, when the ratios sum
// to one, their union is the source dataset.
type Partition struct {
	Name string
	Data Dataset
	// SourceIndices are the row positions in the dataset the partition
	// was cut from, in partition order. They exist to make disjointness
	// checkable, not for lookups during training.
	SourceIndices []int
}

// Len returns the partition's record count.
func (p Partition) Len() int {
	return p.Data.Len()
}

// Canonical partition names used across the report.
const (
	PartitionTrain      = "train"
	PartitionValidation = "validation"
	PartitionTest       = "test"
)
