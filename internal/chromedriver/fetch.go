package chromedriver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const requestTimeout = 120 * time.Second

type Proxy struct {
	HTTP  *url.URL
	HTTPS *url.URL
}

// NewProxy applies one proxy URL to both schemes. An empty value means a direct connection.
func NewProxy(raw string) (*Proxy, error) {
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failure parsing proxy url: %w", err)
	}
	return &Proxy{
		HTTP:  u,
		HTTPS: u,
	}, nil
}

func (p *Proxy) forRequest(req *http.Request) (*url.URL, error) {
	if req.URL.Scheme == "https" {
		return p.HTTPS, nil
	}
	return p.HTTP, nil
}

type Fetcher struct {
	transport http.RoundTripper
}

func NewFetcher(transport http.RoundTripper) *Fetcher {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Fetcher{
		transport: transport,
	}
}

// Get returns the response of a GET request with a 200 status. Unless stream is set, the body is
// read up front and served from memory.
func (f *Fetcher) Get(ctx context.Context, rawURL string, proxy *Proxy, stream bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failure creating http request: %w", err)
	}
	client, err := f.client(proxy)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failure sending http request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, NewUnexpectedStatusCodeError(rawURL, resp.StatusCode, http.StatusOK)
	}
	if stream {
		return resp, nil
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err = buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failure reading response body: %w", err)
	}
	resp.Body = io.NopCloser(&buf)
	return resp, nil
}

// client routes through proxy when set. Only *http.Transport can carry a proxy.
func (f *Fetcher) client(proxy *Proxy) (*http.Client, error) {
	transport := f.transport
	if proxy != nil {
		t, ok := transport.(*http.Transport)
		if !ok {
			return nil, fmt.Errorf("failure applying proxy: transport %T does not support proxies", transport)
		}
		t = t.Clone()
		t.Proxy = proxy.forRequest
		transport = t
	}
	return &http.Client{
		Transport: transport,
		Timeout:   requestTimeout,
	}, nil
}
