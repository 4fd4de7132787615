package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hive-corporation/creditrisk/internal/core/domain"
)

const (
	idColumn      = "id"
	outcomeColumn = "RiskPerformance"
)

// CSVSource reads applicants from a CSV file with a header row. Columns are
// matched to attributes by name, ignoring case; columns that are not
// attributes are ignored, except "id" and "RiskPerformance" which populate the
// applicant ID and observed outcome. Rows without an id are numbered from 1.
type CSVSource struct {
	path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Name() string {
	return "csv:" + filepath.Base(s.path)
}

func (s *CSVSource) FetchApplicants(ctx context.Context) ([]domain.Applicant, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	return ReadCSV(ctx, f)
}

// ReadCSV parses applicants from r. See CSVSource for the column rules.
func ReadCSV(ctx context.Context, r io.Reader) ([]domain.Applicant, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty CSV: missing header row")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	fields := make(map[int]domain.Field)
	idCol, outcomeCol := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case strings.EqualFold(name, idColumn):
			idCol = i
		case strings.EqualFold(name, outcomeColumn):
			outcomeCol = i
		default:
			if spec, ok := domain.LookupFold(name); ok {
				fields[i] = spec.Name
			}
		}
	}
	if len(fields) == 0 {
		return nil, errors.New("CSV header has no attribute columns")
	}

	var applicants []domain.Applicant
	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if isBlank(record) {
			row--
			continue
		}

		cells := make(map[domain.Field]string, len(fields))
		for i, f := range fields {
			if i < len(record) {
				cells[f] = record[i]
			}
		}

		id := strconv.Itoa(row)
		if v := cell(record, idCol); v != "" {
			id = v
		}

		raw, err := parseCells(cells)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		a, err := newApplicant(id, raw, cell(record, outcomeCol))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		applicants = append(applicants, a)
	}

	return applicants, nil
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
