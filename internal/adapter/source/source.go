package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hive-corporation/creditrisk/internal/core/domain"
)

// parseCells converts textual attribute values into the raw form accepted by
// domain.Normalize. Empty cells are skipped so the field keeps its default.
func parseCells(cells map[domain.Field]string) (map[string]int, error) {
	raw := make(map[string]int, len(cells))
	for f, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		v, err := strconv.Atoi(cell)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid integer %q", f, cell)
		}
		raw[string(f)] = v
	}
	return raw, nil
}

// newApplicant normalizes raw attribute values into an applicant record.
func newApplicant(id string, raw map[string]int, observed string) (domain.Applicant, error) {
	r, clamped, err := domain.Normalize(raw)
	if err != nil {
		return domain.Applicant{}, err
	}
	return domain.Applicant{
		ID:         id,
		Attributes: r,
		Clamped:    clamped,
		Observed:   domain.ParseOutcome(observed),
	}, nil
}
