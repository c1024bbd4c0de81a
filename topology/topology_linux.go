//go:build linux

// topology_linux.go
//
// Linux NUMA discovery straight from sysfs: no cgo, no libnuma. Mirrors
// the teacher's preference for raw syscalls/sysfs over a C binding
// (ring/setaffinity_linux.go does the same thing for affinity).

package topology

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const sysNodeDir = "/sys/devices/system/node"

// Discover reads the live NUMA topology from sysfs. On a single-node
// machine (or a container without /sys/devices/system/node) it falls
// back to one node owning every CPU Go's runtime reports, via
// discoverFallback.
func Discover() (*Topology, error) {
	entries, err := os.ReadDir(sysNodeDir)
	if err != nil {
		return discoverFallback()
	}

	nodeCPUs := make(map[int][]int)
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "node") {
			continue
		}
		id, err := strconv.Atoi(name[len("node"):])
		if err != nil {
			continue
		}
		cpus, err := readCPUList(filepath.Join(sysNodeDir, name, "cpulist"))
		if err != nil {
			return nil, fmt.Errorf("topology: read cpulist for node %d: %w", id, err)
		}
		nodeCPUs[id] = cpus
	}
	if len(nodeCPUs) == 0 {
		return discoverFallback()
	}

	distance, err := readDistanceMatrix(nodeCPUs)
	if err != nil {
		return nil, err
	}
	return New(nodeCPUs, distance), nil
}

// readCPUList parses sysfs's range-list format, e.g. "0-3,8,10-11".
func readCPUList(path string) ([]int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return nil, nil
	}
	var cpus []int
	for _, part := range strings.Split(s, ",") {
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			loN, err := strconv.Atoi(lo)
			if err != nil {
				return nil, fmt.Errorf("topology: bad cpulist range %q: %w", part, err)
			}
			hiN, err := strconv.Atoi(hi)
			if err != nil {
				return nil, fmt.Errorf("topology: bad cpulist range %q: %w", part, err)
			}
			for c := loN; c <= hiN; c++ {
				cpus = append(cpus, c)
			}
		} else {
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("topology: bad cpulist entry %q: %w", part, err)
			}
			cpus = append(cpus, n)
		}
	}
	return cpus, nil
}

// readDistanceMatrix reads /sys/devices/system/node/node<N>/distance for
// every discovered node id.
func readDistanceMatrix(nodeCPUs map[int][]int) ([][]int, error) {
	maxID := 0
	for id := range nodeCPUs {
		if id > maxID {
			maxID = id
		}
	}
	matrix := make([][]int, maxID+1)

	for id := range nodeCPUs {
		raw, err := os.ReadFile(filepath.Join(sysNodeDir, fmt.Sprintf("node%d", id), "distance"))
		if err != nil {
			return nil, fmt.Errorf("topology: read distance for node %d: %w", id, err)
		}
		fields := strings.Fields(strings.TrimSpace(string(raw)))
		row := make([]int, maxID+1)
		for otherID := range nodeCPUs {
			if otherID >= len(fields) {
				continue
			}
			v, err := strconv.Atoi(fields[otherID])
			if err != nil {
				return nil, fmt.Errorf("topology: bad distance entry for node %d: %w", id, err)
			}
			row[otherID] = v
		}
		matrix[id] = row
	}
	return matrix, nil
}
