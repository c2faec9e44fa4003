package host

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

const (
	powershellBinary   = "powershell"
	silentErrorsPrefix = "$ErrorActionPreference='silentlycontinue'; "
)

type PowerShell struct {
	binary string
}

func NewPowerShell() *PowerShell {
	return &PowerShell{
		binary: powershellBinary,
	}
}

// Run executes a single query. Stdout is returned, stderr is discarded.
func (p *PowerShell) Run(ctx context.Context, query string) (string, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, p.binary, p.args(query)...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failure running %s query: %w", p.binary, err)
	}
	return stdout.String(), nil
}

func (p *PowerShell) args(query string) []string {
	return []string{
		"-NoProfile",
		"-NonInteractive",
		"-Command",
		silentErrorsPrefix + query,
	}
}
