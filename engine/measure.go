package engine

import (
	"container/heap"

	"github.com/gridpointai/nd-runtime/array"
	"github.com/gridpointai/nd-runtime/errors"
)

// DimSlice is a half-open index range along one dimension.
type DimSlice struct {
	Start int
	Stop  int
}

// Region is the bounding box of one labeled object, one DimSlice per
// dimension.
type Region []DimSlice

// FindObjects computes the bounding box of every label in [1, maxLabel]
// of a labeled array. The result has exactly maxLabel entries; labels
// that never occur get a nil entry.
func FindObjects(labeled *array.Array, maxLabel int) ([]Region, error) {
	if maxLabel < 0 {
		maxLabel = 0
	}
	regions := make([]Region, maxLabel)

	rank := labeled.Rank()
	coord := make([]int, rank)
	for i := 0; i < labeled.Len(); i++ {
		label := labeled.Int64At(i)
		if label < 1 || label > int64(maxLabel) {
			continue
		}
		labeled.Coordinate(i, coord)
		r := regions[label-1]
		if r == nil {
			r = make(Region, rank)
			for d := 0; d < rank; d++ {
				r[d] = DimSlice{Start: coord[d], Stop: coord[d] + 1}
			}
			regions[label-1] = r
			continue
		}
		for d := 0; d < rank; d++ {
			if coord[d] < r[d].Start {
				r[d].Start = coord[d]
			}
			if coord[d]+1 > r[d].Stop {
				r[d].Stop = coord[d] + 1
			}
		}
	}
	return regions, nil
}

// wsElem is one pending pixel in the watershed flood. Cost orders the
// queue; order breaks ties first-in first-out so markers spread evenly.
type wsElem struct {
	index int
	cost  float64
	order int
}

type wsQueue []wsElem

func (q wsQueue) Len() int { return len(q) }
func (q wsQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].order < q[j].order
}
func (q wsQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *wsQueue) Push(x any)   { *q = append(*q, x.(wsElem)) }
func (q *wsQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

// WatershedIFT floods input from the marker points using an image
// foresting transform: pixels are claimed in order of increasing input
// value, each inheriting the label of the neighbor that reached it.
// Negative markers denote background seeds and propagate like any
// other label. strct selects the neighborhood; it must be a centered
// structuring element of threes.
func WatershedIFT(input, markers, strct, output *array.Array) error {
	if err := checkSameShape(input, markers); err != nil {
		return err
	}
	if err := checkSameShape(input, output); err != nil {
		return err
	}
	if strct.Rank() != input.Rank() {
		return errors.Engine("structure rank %d does not match input rank %d", strct.Rank(), input.Rank())
	}
	for d := 0; d < strct.Rank(); d++ {
		if strct.Dim(d) != 3 {
			return errors.Engine("watershed structure must be size three per dimension, got %v", strct.Dims())
		}
	}
	fp, err := buildFootprint(strct, nil, false)
	if err != nil {
		return err
	}

	total := input.Len()
	dims := input.Dims()
	rank := input.Rank()

	done := make([]bool, total)
	q := make(wsQueue, 0, total/4)
	order := 0
	for i := 0; i < total; i++ {
		m := markers.Int64At(i)
		output.SetInt64At(i, m)
		if m != 0 {
			heap.Push(&q, wsElem{index: i, cost: input.Float64At(i), order: order})
			order++
			done[i] = true
		}
	}

	coord := make([]int, rank)
	ncoord := make([]int, rank)
	for q.Len() > 0 {
		e := heap.Pop(&q).(wsElem)
		label := output.Int64At(e.index)
		input.Coordinate(e.index, coord)
		for _, off := range fp.offsets {
			inside := true
			for d := 0; d < rank; d++ {
				ncoord[d] = coord[d] + off[d]
				if ncoord[d] < 0 || ncoord[d] >= dims[d] {
					inside = false
					break
				}
			}
			if !inside {
				continue
			}
			ni := input.FlatIndex(ncoord)
			if done[ni] {
				continue
			}
			done[ni] = true
			output.SetInt64At(ni, label)
			heap.Push(&q, wsElem{index: ni, cost: input.Float64At(ni), order: order})
			order++
		}
	}
	return nil
}
