//go:build linux

package hostsim

import "golang.org/x/sys/unix"

func osThreadID() (int, bool) {
	return unix.Gettid(), true
}
