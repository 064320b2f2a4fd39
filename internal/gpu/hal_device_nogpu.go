//go:build nogpu

package gpu

// OpenHAL is unavailable in nogpu builds.
func OpenHAL() (Device, error) {
	return nil, ErrNoDevice
}
