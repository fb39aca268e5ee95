// Package sysmon samples host-wide CPU and memory load for the dashboard.
package sysmon

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Load is one reading of host-wide resource usage, in percent.
type Load struct {
	CPUPercent float64
	MemPercent float64
}

// Sample reads the host load. CPU usage is measured since the previous call,
// so the first reading of a process may be zero. A probe that fails leaves
// its field at zero.
func Sample(ctx context.Context) Load {
	var l Load
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		l.CPUPercent = clamp(pcts[0])
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		l.MemPercent = clamp(vm.UsedPercent)
	}
	return l
}

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
