// Command loadprobe measures the latency and availability of a web
// application by probing a weighted catalog of its endpoints.
//
// Usage:
//
//	loadprobe [baseURL] [mode] [args...] [flags]
//
// Modes:
//
//	quick [count]            sequential probes over the default catalog (default 100)
//	cambridge [count]        sequential probes over the validation catalog (default 50)
//	load [users] [seconds]   concurrent users with think time (default 10 users, 30s)
//	monitor [interval]       continuous probing until interrupted (default every 5s)
package main

import (
	"errors"
	"fmt"
	"os"
)

const (
	ExitSuccess         = 0
	ExitThresholdFailed = 1
	ExitError           = 2
)

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func main() {
	os.Exit(execute(os.Args[1:]))
}

func execute(args []string) int {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err != nil && !errors.Is(err, errSilent) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return exitCode(err)
}

// errSilent marks an exit code that needs no message of its own.
var errSilent = errors.New("silent exit")

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitError
}
