// Package archive stores ledger snapshots outside the database.
//
// Both archivers satisfy core.Archiver. A snapshot is the CSV export of the
// ledger taken right before an import replaces it.
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/JonMunkholm/ledger/internal/config"
	"github.com/JonMunkholm/ledger/internal/core"
	"google.golang.org/api/option"
)

// New returns the archiver cfg selects, or nil when archiving is disabled.
// The returned close function releases any client it opened.
func New(ctx context.Context, cfg config.ArchiveConfig) (core.Archiver, func() error, error) {
	switch {
	case cfg.GCSBucket != "":
		a, err := NewGCS(ctx, cfg.GCSBucket, cfg.GCSPrefix, cfg.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return a, a.Close, nil
	case cfg.Dir != "":
		a, err := NewDir(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return a, func() error { return nil }, nil
	}
	return nil, func() error { return nil }, nil
}

// Dir writes snapshots as files in a local directory.
type Dir struct {
	path string
}

var _ core.Archiver = (*Dir)(nil)

// NewDir creates path if needed.
func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Dir{path: path}, nil
}

// Archive writes r to name inside the directory. The file appears under its
// final name only once fully written.
func (d *Dir) Archive(ctx context.Context, name string, r io.Reader) (string, error) {
	name, err := objectName(name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(d.path, ".snapshot-*")
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after rename

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close snapshot: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dest := filepath.Join(d.path, name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("store snapshot: %w", err)
	}
	slog.Info("snapshot archived", "location", dest)
	return dest, nil
}

// GCS writes snapshots as objects in a Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ core.Archiver = (*GCS)(nil)

// NewGCS opens a storage client. Without a credentials file, Application
// Default Credentials are used.
func NewGCS(ctx context.Context, bucket, prefix, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

// Close releases the storage client.
func (g *GCS) Close() error {
	return g.client.Close()
}

// Archive uploads r as prefix+name and returns its gs:// URI.
func (g *GCS) Archive(ctx context.Context, name string, r io.Reader) (string, error) {
	name, err := objectName(name)
	if err != nil {
		return "", err
	}
	object := g.prefix + name

	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/csv; charset=utf-8"
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", object, err)
	}

	uri := fmt.Sprintf("gs://%s/%s", g.bucket, object)
	slog.Info("snapshot archived", "location", uri)
	return uri, nil
}

// objectName rejects names that would escape the archive location.
func objectName(name string) (string, error) {
	base := filepath.Base(name)
	if name == "" || base != name || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid snapshot name %q", name)
	}
	return name, nil
}
