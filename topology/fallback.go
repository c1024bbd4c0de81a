package topology

import "runtime"

// discoverFallback builds a single-node Topology that owns every CPU
// runtime.NumCPU reports. Used when sysfs is unavailable (non-Linux, or
// a container without /sys/devices/system/node mounted).
func discoverFallback() (*Topology, error) {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	cpus := make([]int, n)
	for i := range cpus {
		cpus[i] = i
	}
	return New(map[int][]int{0: cpus}, [][]int{{0}}), nil
}
