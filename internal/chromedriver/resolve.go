package chromedriver

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const pathLatestRelease = "/LATEST_RELEASE_%s"

var majorVersionPattern = regexp.MustCompile(`^\d+`)

func MajorVersion(version string) (string, error) {
	major := majorVersionPattern.FindString(version)
	if major == "" {
		return "", NewStageError(ErrMalformedVersion, fmt.Errorf("no leading digits in %q", version))
	}
	return major, nil
}

type Resolver struct {
	baseURL string
	fetcher *Fetcher
}

func NewResolver(baseURL string, fetcher *Fetcher) *Resolver {
	return &Resolver{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		fetcher: fetcher,
	}
}

// Resolve returns the release identifier of the newest driver build for the major version of
// the given browser version.
func (r *Resolver) Resolve(ctx context.Context, version string, proxy *Proxy) (string, error) {
	major, err := MajorVersion(version)
	if err != nil {
		return "", err
	}
	resp, err := r.fetcher.Get(ctx, r.baseURL+fmt.Sprintf(pathLatestRelease, major), proxy, false)
	if err != nil {
		return "", NewStageError(ErrResolutionFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewStageError(ErrResolutionFailed, err)
	}
	release := strings.TrimSpace(string(body))
	if release == "" {
		return "", NewStageError(ErrResolutionFailed, fmt.Errorf("empty release identifier for major version %s", major))
	}
	return release, nil
}
