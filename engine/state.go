package engine

// coordBlockSize is the number of coordinates per worklist block.
const coordBlockSize = 1024

type coordBlock struct {
	coords []int // rank*count flat coordinates
	next   *coordBlock
}

// CoordinateList is a block-chained worklist of candidate coordinates
// carried between incremental erosion iterations. It is the value held
// behind an opaque handle across calls.
type CoordinateList struct {
	rank  int
	head  *coordBlock
	tail  *coordBlock
	count int
}

// NewCoordinateList returns an empty worklist for coordinates of the
// given rank.
func NewCoordinateList(rank int) *CoordinateList {
	return &CoordinateList{rank: rank}
}

// Rank returns the coordinate rank the list was created for.
func (cl *CoordinateList) Rank() int { return cl.rank }

// Len returns the number of stored coordinates.
func (cl *CoordinateList) Len() int { return cl.count }

// Push appends one coordinate.
func (cl *CoordinateList) Push(coord []int) {
	if cl.tail == nil || len(cl.tail.coords)+cl.rank > coordBlockSize*cl.rank {
		b := &coordBlock{coords: make([]int, 0, coordBlockSize*cl.rank)}
		if cl.tail == nil {
			cl.head = b
		} else {
			cl.tail.next = b
		}
		cl.tail = b
	}
	cl.tail.coords = append(cl.tail.coords, coord...)
	cl.count++
}

// Each visits every stored coordinate in insertion order. The slice
// handed to fn is reused between calls.
func (cl *CoordinateList) Each(fn func(coord []int)) {
	buf := make([]int, cl.rank)
	for b := cl.head; b != nil; b = b.next {
		for i := 0; i+cl.rank <= len(b.coords); i += cl.rank {
			copy(buf, b.coords[i:i+cl.rank])
			fn(buf)
		}
	}
}

// Reset drops all stored coordinates, keeping the rank.
func (cl *CoordinateList) Reset() {
	cl.head, cl.tail, cl.count = nil, nil, 0
}

// Drop releases the chain. It satisfies the resource table's drop hook
// so a handle removal frees the worklist.
func (cl *CoordinateList) Drop() {
	cl.Reset()
}
