//go:build windows

package main

import "os"

// notifyResize is a no-op: Windows consoles have no resize signal.
func notifyResize(chan<- os.Signal) (stop func()) {
	return func() {}
}
