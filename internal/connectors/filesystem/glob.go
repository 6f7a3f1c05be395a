package filesystem

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
)

// Ensure GlobSource implements the interface.
var _ driven.RecordSource = (*GlobSource)(nil)

// FileColumn holds the path a globbed record was read from.
const FileColumn = "_file"

// GlobSource concatenates the records of every file matching a pattern such
// as "data/**/*.csv". Each record gains a FileColumn value.
type GlobSource struct {
	files *Source
}

// NewGlobSource creates a glob record source.
func NewGlobSource() *GlobSource {
	return &GlobSource{files: NewSource()}
}

// Scheme returns "glob".
func (g *GlobSource) Scheme() string {
	return domain.SchemeGlob
}

// Load reads every supported file matching pattern in lexical order.
func (g *GlobSource) Load(ctx context.Context, pattern string) (domain.RecordSet, error) {
	if !doublestar.ValidatePathPattern(pattern) {
		return domain.RecordSet{}, fmt.Errorf("%w: bad glob pattern %q", domain.ErrInvalidInput, pattern)
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return domain.RecordSet{}, fmt.Errorf("expanding %s: %w", pattern, err)
	}
	sort.Strings(matches)

	set := domain.RecordSet{Records: []domain.Record{}}
	seen := make(map[string]bool)
	files := 0
	for _, path := range matches {
		if !Supported(path) {
			continue
		}
		part, err := g.files.Load(ctx, path)
		if err != nil {
			return domain.RecordSet{}, err
		}
		files++
		for _, col := range part.Columns {
			if !seen[col] {
				seen[col] = true
				set.Columns = append(set.Columns, col)
			}
		}
		rel := filepath.ToSlash(path)
		for _, rec := range part.Records {
			rec[FileColumn] = rel
			set.Records = append(set.Records, rec)
		}
	}
	if files == 0 {
		return domain.RecordSet{}, fmt.Errorf("glob %s: %w", pattern, domain.ErrNotFound)
	}
	if len(set.Columns) > 0 {
		set.Columns = append(set.Columns, FileColumn)
	}
	return set, nil
}
