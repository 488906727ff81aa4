//go:build windows

package debug

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// processMemoryCounters matches PROCESS_MEMORY_COUNTERS from psapi.
type processMemoryCounters struct {
	cb                         uint32
	PageFaultCount             uint32
	PeakWorkingSetSize         uintptr
	WorkingSetSize             uintptr
	QuotaPeakPagedPoolUsage    uintptr
	QuotaPagedPoolUsage        uintptr
	QuotaPeakNonPagedPoolUsage uintptr
	QuotaNonPagedPoolUsage     uintptr
	PagefileUsage              uintptr
	PeakPagefileUsage          uintptr
}

var (
	modPsapi                 = windows.NewLazySystemDLL("psapi.dll")
	modUser32                = windows.NewLazySystemDLL("user32.dll")
	procGetProcessMemoryInfo = modPsapi.NewProc("GetProcessMemoryInfo")
	procGetGuiResources      = modUser32.NewProc("GetGuiResources")
)

const grGDIObjects = 0

func processCounters() (rss, gdi uint64, err error) {
	proc := uintptr(windows.CurrentProcess())
	n, _, _ := procGetGuiResources.Call(proc, grGDIObjects)
	gdi = uint64(n)
	pmc := processMemoryCounters{cb: uint32(unsafe.Sizeof(processMemoryCounters{}))}
	r1, _, callErr := procGetProcessMemoryInfo.Call(proc, uintptr(unsafe.Pointer(&pmc)), uintptr(pmc.cb))
	if r1 == 0 {
		return 0, gdi, fmt.Errorf("debug: GetProcessMemoryInfo: %w", callErr)
	}
	return uint64(pmc.WorkingSetSize), gdi, nil
}
