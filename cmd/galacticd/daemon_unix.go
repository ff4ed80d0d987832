//go:build unix

package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

const daemonEnvVar = "GALACTICD_DAEMONIZED"

func isDaemon() bool {
	return os.Getenv(daemonEnvVar) == "1"
}

// daemonize starts a copy of this process in its own session with no
// terminal attached and exits. In the copy it does nothing.
func daemonize() error {
	if isDaemon() {
		return nil
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("finding executable: %w", err)
	}
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("opening %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	cmd := exec.Command(executable, os.Args[1:]...)
	cmd.Env = append(os.Environ(), daemonEnvVar+"=1")
	cmd.Stdin, cmd.Stdout, cmd.Stderr = devNull, devNull, devNull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting background process: %w", err)
	}

	fmt.Printf("running in the background with pid %d\n", cmd.Process.Pid)
	os.Exit(0)
	return nil
}
