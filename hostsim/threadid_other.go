//go:build !linux

package hostsim

func osThreadID() (int, bool) {
	return 0, false
}
