package chromedriver

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cecobask/wizardlite/internal/config"
)

const (
	supportedHost  = "windows"
	pathArchive    = "/%s/chromedriver_win32.zip"
	DriverFileName = "chromedriver.exe"
	driverFileMode = 0755
	componentName  = "chromedriver"
)

type Prober interface {
	Probe(ctx context.Context) (string, bool)
}

type Handle struct {
	Path    string
	Version string
	Release string
}

type Acquirer struct {
	baseURL  string
	dir      string
	goos     string
	fetcher  *Fetcher
	resolver *Resolver
	prober   Prober
	chmod    func(name string, mode os.FileMode) error
	logger   *slog.Logger
}

func NewAcquirer(conf config.Driver, fetcher *Fetcher, prober Prober, logger *slog.Logger) *Acquirer {
	baseURL := strings.TrimSuffix(*conf.BaseURL, "/")
	return &Acquirer{
		baseURL:  baseURL,
		dir:      *conf.Dir,
		goos:     runtime.GOOS,
		fetcher:  fetcher,
		resolver: NewResolver(baseURL, fetcher),
		prober:   prober,
		chmod:    os.Chmod,
		logger:   logger.With(slog.String("component", componentName)),
	}
}

// Acquire downloads the driver matching the installed browser and returns its location. The file
// at Handle.Path is complete and executable, or Acquire fails and leaves nothing behind.
func (a *Acquirer) Acquire(ctx context.Context, proxy *Proxy) (*Handle, error) {
	if err := CheckHost(a.goos); err != nil {
		return nil, err
	}
	version, found := a.prober.Probe(ctx)
	if !found {
		return nil, NewStageError(ErrVersionNotFound, nil)
	}
	a.logger.Info("found installed browser", slog.String("version", version))
	if _, err := MajorVersion(version); err != nil {
		return nil, err
	}
	release, err := a.resolver.Resolve(ctx, version, proxy)
	if err != nil {
		return nil, err
	}
	a.logger.Info("resolved driver release", slog.String("release", release))
	archive, err := a.download(ctx, release, proxy)
	if err != nil {
		return nil, NewStageError(ErrDownloadFailed, err)
	}
	a.logger.Info("downloaded driver archive", slog.Int("bytes", len(archive)))
	path, err := a.install(archive)
	if err != nil {
		return nil, err
	}
	a.logger.Info("installed driver", slog.String("path", path))
	return &Handle{
		Path:    path,
		Version: version,
		Release: release,
	}, nil
}

// CheckHost fails with ErrUnsupportedHost on any platform the driver archive is not built for.
func CheckHost(goos string) error {
	if goos != supportedHost {
		return NewStageError(ErrUnsupportedHost, fmt.Errorf("got %s, want %s", goos, supportedHost))
	}
	return nil
}

func (a *Acquirer) download(ctx context.Context, release string, proxy *Proxy) ([]byte, error) {
	resp, err := a.fetcher.Get(ctx, a.baseURL+fmt.Sprintf(pathArchive, release), proxy, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err = buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failure reading archive body: %w", err)
	}
	return buf.Bytes(), nil
}

// install extracts and marks the temporary file executable before renaming it into place.
func (a *Acquirer) install(archive []byte) (string, error) {
	dir, err := filepath.Abs(a.dir)
	if err != nil {
		return "", NewStageError(ErrExtractionFailed, fmt.Errorf("failure resolving driver directory: %w", err))
	}
	tmp, err := extractEntry(archive, DriverFileName, dir)
	if err != nil {
		return "", NewStageError(ErrExtractionFailed, err)
	}
	if err = a.chmod(tmp, driverFileMode); err != nil {
		os.Remove(tmp)
		return "", NewStageError(ErrPermissionFailed, err)
	}
	path := filepath.Join(dir, DriverFileName)
	if err = os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", NewStageError(ErrExtractionFailed, fmt.Errorf("failure moving driver into place: %w", err))
	}
	return path, nil
}
