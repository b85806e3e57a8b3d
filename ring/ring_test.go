package ring

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// drain removes every queued byte in order.
func drain(b *Buffer) []byte {
	var out []byte
	for {
		v, ok := b.Get()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func TestBufferFIFO(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"empty", nil},
		{"single", []byte{0x41}},
		{"several", []byte{0xED, 0x02, 0xFA}},
		{"full", []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Buffer
			for _, v := range tt.in {
				if !b.Put(v) {
					t.Fatalf("Put(%#x) failed with Len() = %d", v, b.Len())
				}
			}
			if b.Len() != len(tt.in) {
				t.Errorf("Len() = %d, want %d", b.Len(), len(tt.in))
			}
			if diff := cmp.Diff(tt.in, drain(&b)); diff != "" {
				t.Errorf("drain mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBufferWrapAround(t *testing.T) {
	var b Buffer
	var want, got []byte
	for i := 0; i < 5*Capacity; i++ {
		v := byte(i)
		if !b.Put(v) {
			t.Fatalf("Put(%d) failed", i)
		}
		want = append(want, v)
		if i%3 == 2 {
			got = append(got, drain(&b)...)
		}
	}
	got = append(got, drain(&b)...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrap-around order mismatch (-want +got):\n%s", diff)
	}
}

func TestBufferOverflow(t *testing.T) {
	var b Buffer
	for i := 0; i < Capacity; i++ {
		b.Put(byte(0x80 + i))
	}
	if !b.Full() {
		t.Fatal("Full() = false after Capacity puts")
	}
	if b.Put(0xFF) {
		t.Error("Put on full buffer succeeded")
	}
	if b.Len() != Capacity {
		t.Errorf("Len() = %d after overflow, want %d", b.Len(), Capacity)
	}
	got := drain(&b)
	for i, v := range got {
		if v != byte(0x80+i) {
			t.Fatalf("byte %d = %#x after overflow, want %#x", i, v, 0x80+i)
		}
	}
}

func TestBufferEmpty(t *testing.T) {
	var b Buffer
	if v, ok := b.Get(); ok {
		t.Errorf("Get() on empty = (%#x, true)", v)
	}
	if v, ok := b.Peek(); ok {
		t.Errorf("Peek() on empty = (%#x, true)", v)
	}
}

func TestBufferPeek(t *testing.T) {
	var b Buffer
	b.Put(0x12)
	b.Put(0x34)
	for i := 0; i < 2; i++ {
		if v, ok := b.Peek(); !ok || v != 0x12 {
			t.Fatalf("Peek() = (%#x, %v), want (0x12, true)", v, ok)
		}
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d after Peek, want 2", b.Len())
	}
}

func TestBufferUnget(t *testing.T) {
	tests := []struct {
		name  string
		in    []byte
		takes int
	}{
		{"single", []byte{0x1B}, 1},
		{"head of several", []byte{0x1B, 0x2C, 0x3D}, 1},
		{"after wrap", []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Buffer
			for _, v := range tt.in {
				b.Put(v)
			}
			var last byte
			for i := 0; i < tt.takes; i++ {
				last, _ = b.Get()
			}
			if !b.Unget(last) {
				t.Fatal("Unget failed after Get")
			}
			if v, ok := b.Get(); !ok || v != last {
				t.Fatalf("Get() after Unget = (%#x, %v), want (%#x, true)", v, ok, last)
			}
			b.Unget(last)
			if diff := cmp.Diff(tt.in[tt.takes-1:], drain(&b)); diff != "" {
				t.Errorf("order after Unget mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBufferUngetFull(t *testing.T) {
	var b Buffer
	for i := 0; i < Capacity; i++ {
		b.Put(byte(i))
	}
	if b.Unget(0xAA) {
		t.Error("Unget on full buffer succeeded")
	}
	if v, _ := b.Peek(); v != 0 {
		t.Errorf("head = %#x after refused Unget, want 0", v)
	}
}

func TestBufferReset(t *testing.T) {
	var b Buffer
	b.Put(1)
	b.Put(2)
	b.Get()
	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len() = %d after Reset", b.Len())
	}
	b.Put(9)
	if v, _ := b.Get(); v != 9 {
		t.Errorf("Get() after Reset = %#x, want 9", v)
	}
}
