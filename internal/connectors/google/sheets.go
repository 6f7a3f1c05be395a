package google

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
	"github.com/custodia-labs/gridview/internal/logger"
)

// Ensure SheetsSource implements the interface.
var _ driven.RecordSource = (*SheetsSource)(nil)

// DefaultRange covers the first sheet when a location names no range.
const DefaultRange = "A1:ZZ"

// Credentials selects how the Sheets client authenticates.
type Credentials struct {
	// CredentialsFile is a service account or authorised user JSON file.
	CredentialsFile string
	// APIKey works for publicly shared spreadsheets.
	APIKey string
}

// ClientOptions converts credentials into client options.
func (c Credentials) ClientOptions() []option.ClientOption {
	switch {
	case c.CredentialsFile != "":
		return []option.ClientOption{
			option.WithCredentialsFile(c.CredentialsFile),
			option.WithScopes(sheets.SpreadsheetsReadonlyScope),
		}
	case c.APIKey != "":
		return []option.ClientOption{option.WithAPIKey(c.APIKey)}
	}
	return []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
}

// SheetsSource loads spreadsheet ranges.
type SheetsSource struct {
	svc   *sheets.Service
	pacer *pacer
}

// NewSheetsSource creates a source from client options. The service is
// created eagerly, so missing default credentials fail here.
func NewSheetsSource(ctx context.Context, opts ...option.ClientOption) (*SheetsSource, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &SheetsSource{svc: svc, pacer: newPacer(readsPerSecond, readBurst)}, nil
}

// Scheme returns "sheets".
func (s *SheetsSource) Scheme() string {
	return domain.SchemeSheets
}

// Load reads "<spreadsheet-id>[/<range>]".
func (s *SheetsSource) Load(ctx context.Context, path string) (domain.RecordSet, error) {
	id, rng, _ := strings.Cut(path, "/")
	if id == "" {
		return domain.RecordSet{}, fmt.Errorf("%w: sheets location needs a spreadsheet id", domain.ErrInvalidInput)
	}
	if rng == "" {
		rng = DefaultRange
	}

	if err := s.pacer.wait(ctx); err != nil {
		return domain.RecordSet{}, fmt.Errorf("rate limit wait: %w", err)
	}
	resp, err := s.svc.Spreadsheets.Values.Get(id, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		if IsRateLimited(err) {
			s.pacer.pause(retryAfter(err))
		}
		return domain.RecordSet{}, fmt.Errorf("sheets %s: %w", id, WrapError(err))
	}

	set := toRecordSet(resp.Values)
	logger.Debug("sheets %s!%s: %d rows", id, rng, len(set.Records))
	return set, nil
}

// toRecordSet treats the first row as the header. Rows the API trims short
// get nil for their missing trailing cells.
func toRecordSet(rows [][]any) domain.RecordSet {
	set := domain.RecordSet{Records: []domain.Record{}}
	if len(rows) == 0 {
		return set
	}

	set.Columns = make([]string, len(rows[0]))
	for i, h := range rows[0] {
		name := strings.TrimSpace(fmt.Sprint(h))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		set.Columns[i] = name
	}

	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := make(domain.Record, len(set.Columns))
		for i, col := range set.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			if str, ok := v.(string); ok && str == "" {
				v = nil
			}
			rec[col] = v
		}
		set.Records = append(set.Records, rec)
	}
	return set
}

func blank(row []any) bool {
	for _, v := range row {
		if v != nil && v != "" {
			return false
		}
	}
	return true
}
