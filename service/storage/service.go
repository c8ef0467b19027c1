// Package storage delivers files handed over by the app to the operator,
// either through an interactive save-as picker or, when none is available,
// into the configured download folder.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

var (
	// ErrCancelled is returned by a picker when the operator dismisses it.
	ErrCancelled = errors.New("save cancelled")
	// ErrUnavailable is returned by a picker that cannot be shown.
	ErrUnavailable = errors.New("save picker unavailable")
)

// File is a file to deliver.
type File struct {
	Name      string
	MimeType  string
	Extension string
	Data      []byte
}

// Picker chooses a destination URL for file.
type Picker interface {
	Pick(ctx context.Context, file *File) (string, error)
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(ctx context.Context, file *File) (string, error)

// Pick calls fn.
func (fn PickerFunc) Pick(ctx context.Context, file *File) (string, error) {
	return fn(ctx, file)
}

// Service saves files through afs, so the download folder may be any afs
// URL.
type Service struct {
	fs          afs.Service
	picker      Picker
	downloadURL string
}

// Option customises the service.
type Option func(s *Service)

// WithPicker sets the interactive picker.
func WithPicker(picker Picker) Option {
	return func(s *Service) {
		s.picker = picker
	}
}

// WithFS sets the file system.
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// New creates a storage service writing fallbacks into downloadURL.
func New(downloadURL string, options ...Option) *Service {
	ret := &Service{fs: afs.New(), downloadURL: downloadURL}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Save delivers file and returns the URL it was written to. A cancelled
// picker returns ErrCancelled; any other picker failure falls back to the
// download folder.
func (s *Service) Save(ctx context.Context, f *File) (string, error) {
	if s.picker != nil {
		URL, err := s.picker.Pick(ctx, f)
		switch {
		case errors.Is(err, ErrCancelled):
			return "", ErrCancelled
		case err == nil && URL != "":
			return URL, s.write(ctx, URL, f.Data)
		}
	}
	URL, err := s.downloadDestination(ctx, f)
	if err != nil {
		return "", err
	}
	return URL, s.write(ctx, URL, f.Data)
}

func (s *Service) write(ctx context.Context, URL string, data []byte) error {
	if err := s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save %v: %w", URL, err)
	}
	return nil
}

// downloadDestination returns a non-existing URL in the download folder,
// suffixing " (n)" on collisions.
func (s *Service) downloadDestination(ctx context.Context, f *File) (string, error) {
	if s.downloadURL == "" {
		return "", errors.New("download folder was not configured")
	}
	name := path.Base(strings.ReplaceAll(f.Name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "download"
	}
	ext := path.Ext(name)
	if ext == "" && f.Extension != "" {
		ext = f.Extension
		name += ext
	}
	stem := strings.TrimSuffix(name, ext)
	candidate := url.Join(s.downloadURL, name)
	for i := 1; ; i++ {
		exists, err := s.fs.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = url.Join(s.downloadURL, fmt.Sprintf("%s (%d)%s", stem, i, ext))
	}
}
