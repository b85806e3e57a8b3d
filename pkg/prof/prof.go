//go:build profile

package prof

import (
	"errors"
	"io"
	"os"
	"runtime/pprof"
	"sync"
)

// Enabled reports whether profiling support is compiled in.
const Enabled = true

// Profiling errors.
var (
	// ErrCPUProfileActive indicates CPU profiling is already active.
	ErrCPUProfileActive = errors.New("cpu profile already active")

	// ErrInvalidProfile indicates an unknown snapshot profile.
	ErrInvalidProfile = errors.New("invalid profile")
)

// Profile names a snapshot profile.
type Profile string

// Snapshot profiles.
const (
	ProfileHeap      Profile = "heap"
	ProfileAllocs    Profile = "allocs"
	ProfileGoroutine Profile = "goroutine"
	ProfileMutex     Profile = "mutex"
)

var (
	cpuMutex  sync.Mutex
	cpuFile   *os.File
	cpuActive bool
)

// StartCPU starts CPU profiling into a new file at path.
func StartCPU(path string) error {
	cpuMutex.Lock()
	defer cpuMutex.Unlock()

	if cpuActive {
		return ErrCPUProfileActive
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return err
	}
	cpuFile = f
	cpuActive = true
	return nil
}

// StopCPU stops CPU profiling and closes the profile file. It is safe to
// call when profiling is not active.
func StopCPU() error {
	cpuMutex.Lock()
	defer cpuMutex.Unlock()

	if !cpuActive {
		return nil
	}
	pprof.StopCPUProfile()
	cpuActive = false
	f := cpuFile
	cpuFile = nil
	return f.Close()
}

// IsCPUActive reports whether CPU profiling is running.
func IsCPUActive() bool {
	cpuMutex.Lock()
	defer cpuMutex.Unlock()
	return cpuActive
}

// Write saves a snapshot of profile to a new file at path.
func Write(profile Profile, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteTo(profile, f)
}

// WriteTo writes a snapshot of profile to w in pprof format.
func WriteTo(profile Profile, w io.Writer) error {
	p := pprof.Lookup(string(profile))
	if p == nil {
		return ErrInvalidProfile
	}
	return p.WriteTo(w, 0)
}
