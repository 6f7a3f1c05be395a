package filesystem

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

type decoderFunc func(io.Reader) (domain.RecordSet, error)

var decoders = map[string]decoderFunc{
	".json":    decodeJSON,
	".jsonl":   decodeJSONLines,
	".ndjson":  decodeJSONLines,
	".csv":     delimited(','),
	".tsv":     delimited('\t'),
	".msgpack": decodeMsgpack,
	".mpk":     decodeMsgpack,
}

func decodeJSON(r io.Reader) (domain.RecordSet, error) {
	var records []domain.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return domain.RecordSet{}, err
	}
	return domain.RecordSet{Records: nonNil(records)}, nil
}

func decodeJSONLines(r io.Reader) (domain.RecordSet, error) {
	var records []domain.Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec domain.Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return domain.RecordSet{}, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return domain.RecordSet{}, err
	}
	return domain.RecordSet{Records: nonNil(records)}, nil
}

// delimited decodes a header row and data rows. Empty cells become nil and
// cells that read as numbers become float64; numbers with leading zeros
// stay text.
func delimited(comma rune) decoderFunc {
	return func(r io.Reader) (domain.RecordSet, error) {
		cr := csv.NewReader(r)
		cr.Comma = comma
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true

		header, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return domain.RecordSet{Records: []domain.Record{}}, nil
		}
		if err != nil {
			return domain.RecordSet{}, err
		}
		if len(header) > 0 {
			header[0] = strings.TrimPrefix(header[0], "\ufeff")
		}

		set := domain.RecordSet{Columns: header, Records: []domain.Record{}}
		for {
			row, err := cr.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return domain.RecordSet{}, err
			}
			rec := make(domain.Record, len(header))
			for i, col := range header {
				var cell string
				if i < len(row) {
					cell = row[i]
				}
				rec[col] = cellValue(cell)
			}
			set.Records = append(set.Records, rec)
		}
		return set, nil
	}
}

// decimal matches the numeric literals a CSV cell may hold. Words such as
// "NaN" or "Inf" that strconv would accept stay text.
var decimal = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

func cellValue(cell string) any {
	if cell == "" {
		return nil
	}
	if len(cell) > 1 && cell[0] == '0' && cell[1] != '.' {
		return cell
	}
	if !decimal.MatchString(cell) {
		return cell
	}
	if n, err := strconv.ParseFloat(cell, 64); err == nil && !math.IsInf(n, 0) {
		return n
	}
	return cell
}

func decodeMsgpack(r io.Reader) (domain.RecordSet, error) {
	var raw []map[string]any
	if err := msgpack.NewDecoder(r).Decode(&raw); err != nil {
		return domain.RecordSet{}, err
	}
	records := make([]domain.Record, len(raw))
	for i, m := range raw {
		records[i] = domain.Record(m)
	}
	return domain.RecordSet{Records: records}, nil
}

func nonNil(records []domain.Record) []domain.Record {
	if records == nil {
		return []domain.Record{}
	}
	return records
}
