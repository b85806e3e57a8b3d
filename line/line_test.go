package line

import (
	"testing"
	"time"
)

type fakeLine struct {
	clock, data bool
	sense       bool
}

func (f *fakeLine) SetClockHigh() { f.clock = true }
func (f *fakeLine) SetClockLow()  { f.clock = false }
func (f *fakeLine) Clock() bool   { return f.clock }
func (f *fakeLine) SetDataHigh()  { f.data = true }
func (f *fakeLine) SetDataLow()   { f.data = false }
func (f *fakeLine) Data() bool    { return f.data }

type sensingLine struct {
	fakeLine
}

func (s *sensingLine) SenseClock() bool { return s.sense }

func TestSenseClockFallback(t *testing.T) {
	l := &fakeLine{clock: true}
	if !SenseClock(l) {
		t.Error("SenseClock() without sensor = false, want clock level true")
	}
	s := &sensingLine{fakeLine{clock: true, sense: false}}
	if SenseClock(s) {
		t.Error("SenseClock() with sensor = true, want sensor level false")
	}
}

func TestReleaseIdle(t *testing.T) {
	l := &fakeLine{}
	if Idle(l) {
		t.Fatal("Idle() = true with both wires low")
	}
	Release(l)
	if !Idle(l) {
		t.Error("Idle() = false after Release")
	}
}

func TestSpinWaits(t *testing.T) {
	start := time.Now()
	Spin{}.Wait(200 * time.Microsecond)
	if elapsed := time.Since(start); elapsed < 200*time.Microsecond {
		t.Errorf("Spin.Wait returned after %v", elapsed)
	}
}

func TestWaiterFunc(t *testing.T) {
	var total time.Duration
	w := WaiterFunc(func(d time.Duration) { total += d })
	w.Wait(ClockLow)
	w.Wait(Setup)
	if total != ClockLow+Setup {
		t.Errorf("total = %v, want %v", total, ClockLow+Setup)
	}
}
