package sys

import (
	"os"

	"github.com/google/gops/agent"
)

var gopsEnabled bool

// StartAgent starts the gops diagnostics agent when SSHAUTH_GOPS is set.
func StartAgent() {
	_, ok := os.LookupEnv("SSHAUTH_GOPS")
	if !ok {
		return
	}
	err := agent.Listen(agent.Options{})
	if err == nil {
		gopsEnabled = true
	}
}

func StopAgent() {
	if gopsEnabled {
		agent.Close()
		gopsEnabled = false
	}
}
