package audio

import "sync/atomic"

// Pool is a fixed-capacity arena of audio blocks. All block storage is
// preallocated at construction; Allocate and Release never touch the heap and
// never block, so the pool is safe to use from real-time processing paths.
//
// Allocation and reclamation are safe for concurrent use from multiple
// goroutines.
type Pool struct {
	blockSize int
	capacity  int
	free      chan *Block
}

// NewPool creates a pool of capacity blocks, each holding blockSize samples.
func NewPool(capacity, blockSize int) (*Pool, error) {
	if capacity <= 0 || blockSize <= 0 {
		return nil, ErrInvalidConfig
	}
	p := &Pool{
		blockSize: blockSize,
		capacity:  capacity,
		free:      make(chan *Block, capacity),
	}
	for i := 0; i < capacity; i++ {
		p.free <- &Block{data: make([]int16, blockSize), pool: p}
	}
	return p, nil
}

// Allocate reserves one block from the pool: ownership count 1, length set to
// the full capacity, data zeroed. It never blocks; when the pool is empty it
// fails immediately with ErrResourceExhausted and the caller is expected to
// drop the current frame.
func (p *Pool) Allocate() (*Block, error) {
	select {
	case b := <-p.free:
		for i := range b.data {
			b.data[i] = 0
		}
		b.length = p.blockSize
		atomic.StoreInt32(&b.refs, 1)
		return b, nil
	default:
		return nil, ErrResourceExhausted
	}
}

// reclaim returns a fully released block to the free list.
func (p *Pool) reclaim(b *Block) {
	p.free <- b
}

// Available returns the number of free blocks.
func (p *Pool) Available() int {
	return len(p.free)
}

// Capacity returns the total number of blocks owned by the pool.
func (p *Pool) Capacity() int {
	return p.capacity
}

// BlockSize returns the sample capacity of each block.
func (p *Pool) BlockSize() int {
	return p.blockSize
}
