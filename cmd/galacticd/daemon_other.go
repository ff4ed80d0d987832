//go:build !unix

package main

import "errors"

func isDaemon() bool { return false }

func daemonize() error {
	return errors.New("daemonizing is not supported on this platform")
}
