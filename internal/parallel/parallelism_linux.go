//go:build linux

package parallel

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Parallelism returns the number of CPUs this process may run on.
//
// On Linux the scheduler affinity mask is consulted, so a process restricted
// by taskset or a cgroup cpuset sizes its pool accordingly. If the mask
// cannot be read the logical CPU count is used. The result is at least 1.
func Parallelism() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err == nil {
		if n := set.Count(); n > 0 {
			return n
		}
	}
	return max(runtime.NumCPU(), 1)
}
