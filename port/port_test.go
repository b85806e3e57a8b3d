package port

import (
	"testing"

	"github.com/ardnew/softps2/line"
	"github.com/ardnew/softps2/line/sim"
)

func TestPortInit(t *testing.T) {
	bus := sim.NewBus()
	end := bus.End("relay")
	p := New(RoleDevice, end)
	p.Recv = 0x400
	p.Send = 0x7FE
	p.Timeout = 3
	p.Inbound.Put(0x41)
	p.Outbound.Put(0xED)
	p.EventLow.Put(1)
	p.EventHigh.Put(2)
	end.SetDataLow()

	p.Init()

	if !p.Idle() || p.Timeout != 0 {
		t.Errorf("after Init Recv=%#x Send=%#x Timeout=%d, want idle", p.Recv, p.Send, p.Timeout)
	}
	for name, q := range map[string]int{
		"inbound":    p.Inbound.Len(),
		"outbound":   p.Outbound.Len(),
		"event low":  p.EventLow.Len(),
		"event high": p.EventHigh.Len(),
	} {
		if q != 0 {
			t.Errorf("%s queue Len() = %d after Init", name, q)
		}
	}
	if !line.Idle(end) {
		t.Error("line not idle-high after Init")
	}
	// clock was inhibited then released: one falling and one rising edge
	if got := bus.Edges(); got != 2 {
		t.Errorf("clock edges during Init = %d, want 2", got)
	}
}

func TestRoleString(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleDevice, "device"},
		{RoleHost, "host"},
		{Role(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.role.String(); got != tt.want {
			t.Errorf("Role(%d).String() = %q, want %q", tt.role, got, tt.want)
		}
	}
}
