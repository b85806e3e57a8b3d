// Package ring provides the fixed-capacity byte queue used for every hand-off
// between the protocol engines and the relay supervisor.
//
// A Buffer is not synchronized. When one side of a queue runs in interrupt
// context the other side must bracket each call in a critical section (see
// package irq). No method allocates.
package ring

// Capacity is the number of bytes a Buffer holds.
const Capacity = 16

// Buffer is a FIFO byte queue with a fixed capacity of [Capacity] bytes.
// The zero value is an empty buffer ready for use.
type Buffer struct {
	data [Capacity]byte
	head uint8 // index of the next byte to remove
	size uint8
}

// Len returns the number of queued bytes.
func (b *Buffer) Len() int {
	return int(b.size)
}

// Full reports whether Put would fail.
func (b *Buffer) Full() bool {
	return b.size == Capacity
}

// Put appends v at the tail. If the buffer is already full, v is discarded
// and Put returns false.
func (b *Buffer) Put(v byte) bool {
	if b.size == Capacity {
		return false
	}
	b.data[(b.head+b.size)%Capacity] = v
	b.size++
	return true
}

// Get removes and returns the byte at the head. If the buffer is empty, it
// returns (0, false).
func (b *Buffer) Get() (byte, bool) {
	if b.size == 0 {
		return 0, false
	}
	v := b.data[b.head]
	b.head = (b.head + 1) % Capacity
	b.size--
	return v, true
}

// Peek returns the byte at the head without removing it. If the buffer is
// empty, it returns (0, false).
func (b *Buffer) Peek() (byte, bool) {
	if b.size == 0 {
		return 0, false
	}
	return b.data[b.head], true
}

// Unget pushes v back in front of the head so the next Get returns it.
// It exists only to undo a Get whose byte could not be sent; the slot freed
// by that Get guarantees room. Unget returns false if the buffer is full.
func (b *Buffer) Unget(v byte) bool {
	if b.size == Capacity {
		return false
	}
	b.head = (b.head + Capacity - 1) % Capacity
	b.data[b.head] = v
	b.size++
	return true
}

// Reset discards all queued bytes.
func (b *Buffer) Reset() {
	b.head = 0
	b.size = 0
}
