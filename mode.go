package imgray

import (
	"fmt"
	"strings"
)

// Mode selects the execution path of a conversion.
type Mode int

const (
	// ModeHost converts tiles on a pool of worker goroutines.
	ModeHost Mode = iota

	// ModeDevice converts channel planes with a compute kernel.
	ModeDevice
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeHost:
		return "host"
	case ModeDevice:
		return "device"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name. "host" and "parallel" select ModeHost;
// "device" and "gpu" select ModeDevice. Case is ignored.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "host", "parallel":
		return ModeHost, nil
	case "device", "gpu":
		return ModeDevice, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m != ModeHost && m != ModeDevice {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
