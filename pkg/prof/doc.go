// Package prof wraps [runtime/pprof] for the relay command.
//
// It is compiled in only with the "profile" build tag:
//
//	go build -tags profile ./cmd/ps2relay
//	ps2relay -cpuprofile cpu.prof -heapprofile heap.prof
//
// Without the tag every function is a no-op, so the command's profiling
// flags cost nothing in a normal build.
//
// Busy-wait bit timing dominates a CPU profile of the relay; the heap
// profile should stay flat after startup since the engines allocate
// nothing per frame.
package prof
