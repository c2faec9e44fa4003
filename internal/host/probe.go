package host

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/cecobask/wizardlite/internal/logger"
)

type Runner interface {
	Run(ctx context.Context, query string) (string, error)
}

type Probe struct {
	runner  Runner
	queries []string
	logger  *slog.Logger
}

func NewProbe(runner Runner, queries []string, logger *slog.Logger) *Probe {
	return &Probe{
		runner:  runner,
		queries: slices.Clone(queries),
		logger:  logger,
	}
}

// Probe returns the output of the first query that prints anything.
// Queries after the first hit are never run.
func (p *Probe) Probe(ctx context.Context) (string, bool) {
	for i, query := range p.queries {
		out, err := p.runner.Run(ctx, query)
		if err != nil {
			p.logger.Debug("host query failed", slog.Int("index", i), logger.Error(err))
			continue
		}
		if version := strings.TrimSpace(out); version != "" {
			p.logger.Debug("host query matched", slog.Int("index", i), slog.String("version", version))
			return version, true
		}
	}
	return "", false
}

// DefaultQueries lists chrome install locations from the most to the least authoritative.
func DefaultQueries() []string {
	return []string{
		`(Get-Item -Path "$env:LOCALAPPDATA\Google\Chrome\Application\chrome.exe").VersionInfo.FileVersion`,
		`(Get-Item -Path "$env:PROGRAMFILES\Google\Chrome\Application\chrome.exe").VersionInfo.FileVersion`,
		`(Get-Item -Path "${env:PROGRAMFILES(X86)}\Google\Chrome\Application\chrome.exe").VersionInfo.FileVersion`,
		`(Get-ItemProperty -Path Registry::"HKCU\SOFTWARE\Google\Chrome\BLBeacon").version`,
		`(Get-ItemProperty -Path Registry::"HKLM\SOFTWARE\Wow6432Node\Microsoft\Windows\CurrentVersion\Uninstall\Google Chrome").version`,
	}
}
