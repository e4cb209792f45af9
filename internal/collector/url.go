package collector

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const xlsxMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// URLSource downloads a CSV or workbook export over HTTP.
type URLSource struct {
	URL    string
	Token  string
	Client *http.Client
}

// NewURLSource creates a source with optional proxy support.
func NewURLSource(rawURL, token, proxyURL string) *URLSource {
	return &URLSource{
		URL:    rawURL,
		Token:  token,
		Client: newHTTPClient(proxyURL),
	}
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func (s *URLSource) Name() string { return "url" }

func (s *URLSource) Open(ctx context.Context) (string, io.ReadCloser, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", nil, fmt.Errorf("parse source url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", nil, err
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("fetch %s: %w", u.Redacted(), err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return "", nil, fmt.Errorf("fetch %s: status %d, body: %s", u.Redacted(), resp.StatusCode, string(body))
	}
	return remoteName(u, resp.Header.Get("Content-Type")), resp.Body, nil
}

// remoteName is the last path element when it names a csv, txt or xlsx file.
// Otherwise the response Content-Type decides: a workbook gets an .xlsx name
// and anything else is read as CSV.
func remoteName(u *url.URL, contentType string) string {
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		base = "export"
	}
	switch strings.ToLower(path.Ext(base)) {
	case ".csv", ".txt", ".xlsx":
		return base
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == xlsxMediaType {
		return strings.TrimSuffix(base, path.Ext(base)) + ".xlsx"
	}
	return ""
}
