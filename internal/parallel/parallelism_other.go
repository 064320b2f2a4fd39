//go:build !linux

package parallel

import "runtime"

// Parallelism returns the number of logical CPUs usable by the process.
// The result is at least 1.
func Parallelism() int {
	return max(runtime.NumCPU(), 1)
}
