package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// SpatialIndex is an immutable k-d tree snapshot of cell membership.
// It records which cells existed at build time, not their strengths.
type SpatialIndex struct {
	tree *kdtree.Tree
	n    int
}

// emptyIndex answers every query with no results.
var emptyIndex = &SpatialIndex{}

// BuildIndex snapshots the given cells into a fresh index.
func BuildIndex(cells []Cell) *SpatialIndex {
	if len(cells) == 0 {
		return emptyIndex
	}
	pts := make(kdtree.Points, len(cells))
	for i, c := range cells {
		pts[i] = kdtree.Point{float64(c.X), float64(c.Y)}
	}
	return &SpatialIndex{tree: kdtree.New(pts, false), n: len(cells)}
}

// Len returns the number of indexed cells.
func (ix *SpatialIndex) Len() int {
	if ix == nil {
		return 0
	}
	return ix.n
}

// Within appends to dst every indexed cell whose Euclidean distance from c
// is at most radius (in cell units) and returns the extended slice.
func (ix *SpatialIndex) Within(c Cell, radius float64, dst []Cell) []Cell {
	if ix == nil || ix.tree == nil || radius < 0 || math.IsNaN(radius) {
		return dst
	}

	// kdtree.Point distances are squared.
	keep := kdtree.NewDistKeeper(radius * radius)
	ix.tree.NearestSet(keep, kdtree.Point{float64(c.X), float64(c.Y)})

	for _, cd := range keep.Heap {
		// The keeper holds a nil sentinel when nothing was in range.
		p, ok := cd.Comparable.(kdtree.Point)
		if !ok {
			continue
		}
		dst = append(dst, Cell{X: int32(math.Round(p[0])), Y: int32(math.Round(p[1]))})
	}
	return dst
}
