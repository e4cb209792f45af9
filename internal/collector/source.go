package collector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Source yields the raw bytes of one price table. Open is where a load
// waits on the outside world; everything after it is synchronous.
type Source interface {
	Name() string
	Open(ctx context.Context) (filename string, rc io.ReadCloser, err error)
}

// FileSource reads a table from the local filesystem.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Open(ctx context.Context) (string, io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return "", nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	return filepath.Base(s.Path), f, nil
}

// ReaderSource wraps bytes that were already received, such as an upload.
type ReaderSource struct {
	Label    string
	Filename string
	Data     []byte
}

func (s *ReaderSource) Name() string {
	if s.Label == "" {
		return "upload"
	}
	return s.Label
}

func (s *ReaderSource) Open(ctx context.Context) (string, io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	return s.Filename, io.NopCloser(bytes.NewReader(s.Data)), nil
}

// MockSource returns fixed CSV text, for development and testing. Opened, if
// set, receives a value when Open is entered. When Gate is set, Open then
// blocks until it is closed or the context ends.
type MockSource struct {
	Text   string
	Opened chan<- struct{}
	Gate   <-chan struct{}
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Open(ctx context.Context) (string, io.ReadCloser, error) {
	if m.Opened != nil {
		m.Opened <- struct{}{}
	}
	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return "", nil, ctx.Err()
		}
	}
	return "mock.csv", io.NopCloser(strings.NewReader(m.Text)), nil
}
