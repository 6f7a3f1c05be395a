package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.RecordSource = (*Source)(nil)

// zstdExt marks a compressed file.
const zstdExt = ".zst"

// Source loads records from a single local file.
type Source struct{}

// NewSource creates a file record source.
func NewSource() *Source {
	return &Source{}
}

// Scheme returns "file".
func (s *Source) Scheme() string {
	return domain.SchemeFile
}

// Load decodes the file at path according to its extension.
func (s *Source) Load(ctx context.Context, path string) (domain.RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecordSet{}, err
	}
	path = strings.TrimPrefix(path, "file://")

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.RecordSet{}, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		}
		return domain.RecordSet{}, err
	}
	defer f.Close()

	return Decode(f, path)
}

// Decode reads records from r, choosing the format from name's extension.
func Decode(r io.Reader, name string) (domain.RecordSet, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == zstdExt {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return domain.RecordSet{}, fmt.Errorf("opening zstd stream: %w", err)
		}
		defer zr.Close()
		r = zr
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(name, filepath.Ext(name))))
	}

	decode, ok := decoders[ext]
	if !ok {
		return domain.RecordSet{}, fmt.Errorf("%w: %s files", domain.ErrUnsupportedType, ext)
	}
	set, err := decode(r)
	if err != nil {
		return domain.RecordSet{}, fmt.Errorf("decoding %s: %w", filepath.Base(name), err)
	}
	return set, nil
}

// Supported reports whether name has an extension Decode understands.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == zstdExt {
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(name, filepath.Ext(name))))
	}
	_, ok := decoders[ext]
	return ok
}
