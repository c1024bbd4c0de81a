//go:build !linux

package topology

// Discover on non-Linux platforms always returns the single-node
// fallback: real NUMA discovery here is Linux-sysfs-specific, and a
// single node that owns every CPU is a safe, honest default (every
// posting/stealing rule in package sched still works, it just never has
// a second node to route toward).
func Discover() (*Topology, error) {
	return discoverFallback()
}
