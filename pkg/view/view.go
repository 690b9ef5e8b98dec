// Package view loads the view bundles that routes mount.
//
// A view bundle is a named document (HTML fragment by default) kept in a
// Source: the bundles embedded in the binary, a directory on disk, or an
// S3 bucket. Routes never hold a loaded view; they hold a Loader, a
// deferred factory that fetches the bundle the first time a navigation
// needs it.
package view

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/vango-dev/fractals/internal/errors"
)

// DefaultContentType is used when the bundle extension is unknown.
const DefaultContentType = "text/html; charset=utf-8"

// maxBundleSize bounds a single view bundle.
const maxBundleSize = 8 << 20

// ErrNotFound is returned by sources when a bundle does not exist.
var ErrNotFound = stderrors.New("view bundle not found")

// View is a loaded view bundle, ready to be mounted.
type View struct {
	// Name is the bundle name without extension (e.g., "FractalsPage").
	Name string

	// File is the bundle file name inside its source.
	File string

	// ContentType is derived from the file extension.
	ContentType string

	// Body is the bundle content.
	Body []byte

	// LoadedAt is when the bundle was fetched.
	LoadedAt time.Time
}

// Loader produces a view on demand. The context only carries cancellation.
type Loader func(ctx context.Context) (*View, error)

// Source provides access to view bundles by file name.
type Source interface {
	// Open returns the bundle content. Missing bundles return an error
	// wrapping ErrNotFound.
	Open(ctx context.Context, file string) (io.ReadCloser, error)
}

// NewLoader returns a Loader that reads file from src each time it is called.
// Caching belongs to the navigation engine.
func NewLoader(src Source, file string) Loader {
	return func(ctx context.Context) (*View, error) {
		return Load(ctx, src, file)
	}
}

// Load reads a bundle from src.
func Load(ctx context.Context, src Source, file string) (*View, error) {
	if src == nil {
		return nil, errors.New("V001").WithDetail("no view source configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := src.Open(ctx, file)
	if err != nil {
		if stderrors.Is(err, ErrNotFound) {
			return nil, errors.New("V002").WithDetail(file).Wrap(err)
		}
		return nil, errors.New("V001").WithDetail(file).Wrap(err)
	}
	defer rc.Close()

	body, err := io.ReadAll(io.LimitReader(rc, maxBundleSize+1))
	if err != nil {
		return nil, errors.New("V001").WithDetail(file).Wrap(err)
	}
	if len(body) > maxBundleSize {
		return nil, errors.New("V001").WithDetail(file).
			Wrap(fmt.Errorf("bundle exceeds %d bytes", maxBundleSize))
	}

	return &View{
		Name:        Name(file),
		File:        file,
		ContentType: ContentType(file),
		Body:        body,
		LoadedAt:    time.Now(),
	}, nil
}

// Name returns the bundle name for a file: the base name without extension.
func Name(file string) string {
	base := path.Base(file)
	return strings.TrimSuffix(base, path.Ext(base))
}

// ContentType returns the MIME type for a bundle file.
func ContentType(file string) string {
	if ct := mime.TypeByExtension(path.Ext(file)); ct != "" {
		return ct
	}
	return DefaultContentType
}
