package chromedriver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cecobask/wizardlite/internal/config"
	"github.com/cecobask/wizardlite/internal/logger"
)

const (
	dummyVersion   = "114.0.5735.199"
	dummyRelease   = "114.0.5735.90"
	dummyDriverBin = "MZ fake driver binary"
)

type fakeProber struct {
	version string
	found   bool
	calls   int
}

func (p *fakeProber) Probe(context.Context) (string, bool) {
	p.calls++
	return p.version, p.found
}

func zipArchive(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(f, content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func defaultTestAcquirer(dir string, prober Prober) *Acquirer {
	fetcher := NewFetcher(httpmock.DefaultTransport)
	return &Acquirer{
		baseURL:  dummyBaseURL,
		dir:      dir,
		goos:     supportedHost,
		fetcher:  fetcher,
		resolver: NewResolver(dummyBaseURL, fetcher),
		prober:   prober,
		chmod:    os.Chmod,
		logger:   logger.NewLogger(io.Discard, false),
	}
}

func TestAcquirer_Acquire(t *testing.T) {
	latestReleaseURL := dummyBaseURL + "/LATEST_RELEASE_114"
	archiveURL := dummyBaseURL + "/" + dummyRelease + "/chromedriver_win32.zip"
	type fields struct {
		goos   string
		prober *fakeProber
		chmod  func(string, os.FileMode) error
	}
	defaultFields := func() fields {
		return fields{
			goos:   supportedHost,
			prober: &fakeProber{version: dummyVersion, found: true},
			chmod:  os.Chmod,
		}
	}
	tests := []struct {
		name         string
		fields       func() fields
		requirements func(*testing.T)
		assertions   func(*assert.Assertions, string, *fakeProber, *Handle, error)
	}{
		{
			name:   "success",
			fields: defaultFields,
			requirements: func(t *testing.T) {
				httpmock.RegisterResponder(http.MethodGet, latestReleaseURL, httpmock.NewStringResponder(http.StatusOK, dummyRelease))
				httpmock.RegisterResponder(http.MethodGet, archiveURL, httpmock.NewBytesResponder(http.StatusOK, zipArchive(t, map[string]string{
					"LICENSE.chromedriver": "license",
					"chromedriver.exe":     dummyDriverBin,
				})))
			},
			assertions: func(assertions *assert.Assertions, dir string, _ *fakeProber, handle *Handle, err error) {
				assertions.NoError(err)
				assertions.Equal(filepath.Join(dir, "chromedriver.exe"), handle.Path)
				assertions.Equal(dummyVersion, handle.Version)
				assertions.Equal(dummyRelease, handle.Release)
				content, err := os.ReadFile(handle.Path)
				assertions.NoError(err)
				assertions.Equal(dummyDriverBin, string(content))
				info, err := os.Stat(handle.Path)
				assertions.NoError(err)
				assertions.NotZero(info.Mode().Perm() & 0100)
				entries, err := os.ReadDir(dir)
				assertions.NoError(err)
				assertions.Len(entries, 1)
				assertions.Equal(2, httpmock.GetTotalCallCount())
			},
		},
		{
			name:   "success with nested archive entry",
			fields: defaultFields,
			requirements: func(t *testing.T) {
				httpmock.RegisterResponder(http.MethodGet, latestReleaseURL, httpmock.NewStringResponder(http.StatusOK, dummyRelease))
				httpmock.RegisterResponder(http.MethodGet, archiveURL, httpmock.NewBytesResponder(http.StatusOK, zipArchive(t, map[string]string{
					"chromedriver-win32/chromedriver.exe": dummyDriverBin,
				})))
			},
			assertions: func(assertions *assert.Assertions, dir string, _ *fakeProber, handle *Handle, err error) {
				assertions.NoError(err)
				assertions.Equal(filepath.Join(dir, "chromedriver.exe"), handle.Path)
			},
		},
		{
			name: "failure unsupported host makes no network calls",
			fields: func() fields {
				f := defaultFields()
				f.goos = "linux"
				return f
			},
			requirements: func(*testing.T) {},
			assertions: func(assertions *assert.Assertions, _ string, prober *fakeProber, handle *Handle, err error) {
				assertions.Nil(handle)
				assertions.ErrorIs(err, ErrUnsupportedHost)
				assertions.Equal(0, prober.calls)
				assertions.Equal(0, httpmock.GetTotalCallCount())
			},
		},
		{
			name: "failure version not found",
			fields: func() fields {
				f := defaultFields()
				f.prober = &fakeProber{}
				return f
			},
			requirements: func(*testing.T) {},
			assertions: func(assertions *assert.Assertions, _ string, prober *fakeProber, handle *Handle, err error) {
				assertions.Nil(handle)
				assertions.ErrorIs(err, ErrVersionNotFound)
				assertions.Equal(1, prober.calls)
				assertions.Equal(0, httpmock.GetTotalCallCount())
			},
		},
		{
			name: "failure malformed version",
			fields: func() fields {
				f := defaultFields()
				f.prober = &fakeProber{version: "Google Chrome", found: true}
				return f
			},
			requirements: func(*testing.T) {},
			assertions: func(assertions *assert.Assertions, _ string, _ *fakeProber, handle *Handle, err error) {
				assertions.Nil(handle)
				assertions.ErrorIs(err, ErrMalformedVersion)
				assertions.Equal(0, httpmock.GetTotalCallCount())
			},
		},
		{
			name:   "failure resolving release",
			fields: defaultFields,
			requirements: func(*testing.T) {
				httpmock.RegisterResponder(http.MethodGet, latestReleaseURL, httpmock.NewStringResponder(http.StatusForbidden, "AccessDenied"))
			},
			assertions: func(assertions *assert.Assertions, _ string, _ *fakeProber, handle *Handle, err error) {
				assertions.Nil(handle)
				assertions.ErrorIs(err, ErrResolutionFailed)
				assertions.Equal(1, httpmock.GetTotalCallCount())
			},
		},
		{
			name:   "failure downloading archive",
			fields: defaultFields,
			requirements: func(*testing.T) {
				httpmock.RegisterResponder(http.MethodGet, latestReleaseURL, httpmock.NewStringResponder(http.StatusOK, dummyRelease))
				httpmock.RegisterResponder(http.MethodGet, archiveURL, httpmock.NewStringResponder(http.StatusInternalServerError, ""))
			},
			assertions: func(assertions *assert.Assertions, dir string, _ *fakeProber, handle *Handle, err error) {
				assertions.Nil(handle)
				assertions.ErrorIs(err, ErrDownloadFailed)
				var statusErr *UnexpectedStatusCodeError
				assertions.True(errors.As(err, &statusErr))
				assertions.Equal(http.StatusInternalServerError, statusErr.Got)
				entries, _ := os.ReadDir(dir)
				assertions.Empty(entries)
			},
		},
		{
			name:   "failure extracting corrupt archive",
			fields: defaultFields,
			requirements: func(*testing.T) {
				httpmock.RegisterResponder(http.MethodGet, latestReleaseURL, httpmock.NewStringResponder(http.StatusOK, dummyRelease))
				httpmock.RegisterResponder(http.MethodGet, archiveURL, httpmock.NewStringResponder(http.StatusOK, "<Error>not a zip</Error>"))
			},
			assertions: func(assertions *assert.Assertions, dir string, _ *fakeProber, handle *Handle, err error) {
				assertions.Nil(handle)
				assertions.ErrorIs(err, ErrExtractionFailed)
				entries, _ := os.ReadDir(dir)
				assertions.Empty(entries)
			},
		},
		{
			name:   "failure extracting missing entry",
			fields: defaultFields,
			requirements: func(t *testing.T) {
				httpmock.RegisterResponder(http.MethodGet, latestReleaseURL, httpmock.NewStringResponder(http.StatusOK, dummyRelease))
				httpmock.RegisterResponder(http.MethodGet, archiveURL, httpmock.NewBytesResponder(http.StatusOK, zipArchive(t, map[string]string{
					"chromedriver": dummyDriverBin,
				})))
			},
			assertions: func(assertions *assert.Assertions, dir string, _ *fakeProber, handle *Handle, err error) {
				assertions.Nil(handle)
				assertions.ErrorIs(err, ErrExtractionFailed)
				var entryErr *EntryNotFoundError
				assertions.True(errors.As(err, &entryErr))
				assertions.Equal("chromedriver.exe", entryErr.Entry)
				entries, _ := os.ReadDir(dir)
				assertions.Empty(entries)
			},
		},
		{
			name: "failure setting permissions leaves nothing behind",
			fields: func() fields {
				f := defaultFields()
				f.chmod = func(string, os.FileMode) error {
					return errors.New("operation not permitted")
				}
				return f
			},
			requirements: func(t *testing.T) {
				httpmock.RegisterResponder(http.MethodGet, latestReleaseURL, httpmock.NewStringResponder(http.StatusOK, dummyRelease))
				httpmock.RegisterResponder(http.MethodGet, archiveURL, httpmock.NewBytesResponder(http.StatusOK, zipArchive(t, map[string]string{
					"chromedriver.exe": dummyDriverBin,
				})))
			},
			assertions: func(assertions *assert.Assertions, dir string, _ *fakeProber, handle *Handle, err error) {
				assertions.Nil(handle)
				assertions.ErrorIs(err, ErrPermissionFailed)
				assertions.ErrorContains(err, "operation not permitted")
				entries, _ := os.ReadDir(dir)
				assertions.Empty(entries)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Activate()
			defer httpmock.DeactivateAndReset()
			tt.requirements(t)
			dir := t.TempDir()
			f := tt.fields()
			a := defaultTestAcquirer(dir, f.prober)
			a.goos = f.goos
			a.chmod = f.chmod
			handle, err := a.Acquire(context.Background(), nil)
			tt.assertions(assert.New(t), dir, f.prober, handle, err)
		})
	}
}

func TestNewAcquirer(t *testing.T) {
	baseURL := "https://mirror.example.com/chromedriver/"
	dir := "bin"
	a := NewAcquirer(config.Driver{BaseURL: &baseURL, Dir: &dir}, NewFetcher(nil), &fakeProber{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, "https://mirror.example.com/chromedriver", a.baseURL)
	assert.Equal(t, "https://mirror.example.com/chromedriver", a.resolver.baseURL)
	assert.Equal(t, "bin", a.dir)
	assert.NotNil(t, a.chmod)
}

func TestStageError(t *testing.T) {
	cause := errors.New("boom")
	err := NewStageError(ErrDownloadFailed, cause)
	assert.ErrorIs(t, err, ErrDownloadFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrExtractionFailed)
	assert.Equal(t, "driver download failed: boom", err.Error())
	assert.Equal(t, "browser version not found", NewStageError(ErrVersionNotFound, nil).Error())
}

func TestCheckHost(t *testing.T) {
	assert.NoError(t, CheckHost("windows"))
	for _, goos := range []string{"linux", "darwin", "freebsd"} {
		err := CheckHost(goos)
		assert.ErrorIs(t, err, ErrUnsupportedHost)
		assert.ErrorContains(t, err, "got "+goos+", want windows")
	}
}
