// Package privilege answers whether the process may read every sensor.
// Several hwmon and EC drivers only expose readings to root.
package privilege

import (
	"errors"
	"os"
)

var ErrNotPrivileged = errors.New("sensor access requires root privileges; rerun with sudo or grant CAP_SYS_RAWIO")

// Checker reports whether the process runs with elevated rights.
type Checker func() bool

func Elevated() bool {
	return os.Geteuid() == 0
}

// Require returns ErrNotPrivileged when required is set and check fails.
func Require(required bool, check Checker) error {
	if !required || check() {
		return nil
	}
	return ErrNotPrivileged
}
