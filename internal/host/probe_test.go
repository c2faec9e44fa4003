package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cecobask/wizardlite/internal/logger"
)

type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (r *fakeRunner) Run(_ context.Context, query string) (string, error) {
	r.calls = append(r.calls, query)
	if err := r.errs[query]; err != nil {
		return "", err
	}
	return r.outputs[query], nil
}

func TestProbe_Probe(t *testing.T) {
	queries := []string{"q0", "q1", "q2", "q3", "q4"}
	tests := []struct {
		name       string
		runner     *fakeRunner
		assertions func(*assert.Assertions, *fakeRunner, string, bool)
	}{
		{
			name: "first query wins",
			runner: &fakeRunner{
				outputs: map[string]string{"q0": "119.0.6045.105\r\n", "q3": "118.0.1.1"},
			},
			assertions: func(a *assert.Assertions, r *fakeRunner, version string, found bool) {
				a.True(found)
				a.Equal("119.0.6045.105", version)
				a.Equal([]string{"q0"}, r.calls)
			},
		},
		{
			name: "middle query wins",
			runner: &fakeRunner{
				outputs: map[string]string{"q2": "119.0.6045.105"},
			},
			assertions: func(a *assert.Assertions, r *fakeRunner, version string, found bool) {
				a.True(found)
				a.Equal("119.0.6045.105", version)
				a.Equal([]string{"q0", "q1", "q2"}, r.calls)
			},
		},
		{
			name: "last query wins",
			runner: &fakeRunner{
				outputs: map[string]string{"q4": "119.0.6045.105"},
			},
			assertions: func(a *assert.Assertions, r *fakeRunner, version string, found bool) {
				a.True(found)
				a.Equal("119.0.6045.105", version)
				a.Equal(queries, r.calls)
			},
		},
		{
			name: "failing queries are skipped",
			runner: &fakeRunner{
				outputs: map[string]string{"q1": "119.0.6045.105"},
				errs:    map[string]error{"q0": errors.New("exit status 1")},
			},
			assertions: func(a *assert.Assertions, r *fakeRunner, version string, found bool) {
				a.True(found)
				a.Equal("119.0.6045.105", version)
				a.Equal([]string{"q0", "q1"}, r.calls)
			},
		},
		{
			name: "whitespace output counts as empty",
			runner: &fakeRunner{
				outputs: map[string]string{"q0": " \r\n", "q1": "119.0.6045.105"},
			},
			assertions: func(a *assert.Assertions, r *fakeRunner, version string, found bool) {
				a.True(found)
				a.Equal("119.0.6045.105", version)
			},
		},
		{
			name: "no query produces output",
			runner: &fakeRunner{
				errs: map[string]error{"q4": errors.New("powershell not found")},
			},
			assertions: func(a *assert.Assertions, r *fakeRunner, version string, found bool) {
				a.False(found)
				a.Empty(version)
				a.Equal(queries, r.calls)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProbe(tt.runner, queries, logger.NewLogger(io.Discard, true))
			version, found := p.Probe(context.Background())
			tt.assertions(assert.New(t), tt.runner, version, found)
		})
	}
}

func TestProbe_SingleHitAtEveryPosition(t *testing.T) {
	queries := DefaultQueries()
	for hit := range queries {
		t.Run(fmt.Sprintf("hit at %d", hit), func(t *testing.T) {
			runner := &fakeRunner{
				outputs: map[string]string{queries[hit]: "120.0.6099.71"},
			}
			version, found := NewProbe(runner, queries, logger.NewLogger(io.Discard, false)).Probe(context.Background())
			assert.True(t, found)
			assert.Equal(t, "120.0.6099.71", version)
			assert.Equal(t, queries[:hit+1], runner.calls)
		})
	}
}

func TestNewProbe_copiesQueries(t *testing.T) {
	queries := []string{"q0"}
	runner := &fakeRunner{outputs: map[string]string{"q0": "1.0"}}
	p := NewProbe(runner, queries, logger.NewLogger(io.Discard, false))
	queries[0] = "mutated"
	version, found := p.Probe(context.Background())
	assert.True(t, found)
	assert.Equal(t, "1.0", version)
}

func TestDefaultQueries(t *testing.T) {
	queries := DefaultQueries()
	a := assert.New(t)
	a.Len(queries, 5)
	a.True(strings.Contains(queries[0], "LOCALAPPDATA"))
	a.True(strings.Contains(queries[1], "PROGRAMFILES"))
	a.True(strings.Contains(queries[2], "PROGRAMFILES(X86)"))
	a.True(strings.Contains(queries[3], "HKCU"))
	a.True(strings.Contains(queries[4], "HKLM"))
}

func TestPowerShell_args(t *testing.T) {
	args := NewPowerShell().args("(Get-Item x).VersionInfo.FileVersion")
	a := assert.New(t)
	a.Equal([]string{"-NoProfile", "-NonInteractive", "-Command"}, args[:3])
	a.Equal("$ErrorActionPreference='silentlycontinue'; (Get-Item x).VersionInfo.FileVersion", args[3])
}
