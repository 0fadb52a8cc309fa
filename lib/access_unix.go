//go:build unix

package lib

import "golang.org/x/sys/unix"

// checkReadable reports whether dir can be listed and entered.
func checkReadable(dir string) error {
	return unix.Access(dir, unix.R_OK|unix.X_OK)
}
