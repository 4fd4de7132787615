package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hive-corporation/creditrisk/internal/core/domain"
)

// EnvFileSource reads one applicant per KEY=VALUE file, in dotenv syntax:
//
//	# applicant 1042
//	id=1042
//	ExternalRiskEstimate=72
//	NumTotalTrades=31
//
// Attributes left out keep their default. Unlike CSV columns, unrecognised
// keys are an error.
type EnvFileSource struct {
	paths []string
}

func NewEnvFileSource(paths ...string) *EnvFileSource {
	return &EnvFileSource{paths: paths}
}

func (s *EnvFileSource) Name() string {
	return "envfile"
}

func (s *EnvFileSource) FetchApplicants(ctx context.Context) ([]domain.Applicant, error) {
	applicants := make([]domain.Applicant, 0, len(s.paths))
	for _, path := range s.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, meta, err := readEnvFile(path)
		if err != nil {
			return nil, err
		}

		id := meta[idColumn]
		if id == "" {
			id = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		a, err := newApplicant(id, raw, meta[outcomeColumn])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		applicants = append(applicants, a)
	}
	return applicants, nil
}

// ReadAttributeFile returns the raw attribute values of a single applicant
// file, before defaults or clamping are applied.
func ReadAttributeFile(path string) (map[string]int, error) {
	raw, _, err := readEnvFile(path)
	return raw, err
}

// ParseAssignments parses Field=value pairs, as given on a command line.
func ParseAssignments(pairs []string) (map[string]int, error) {
	for _, p := range pairs {
		if !strings.Contains(p, "=") {
			return nil, fmt.Errorf("invalid assignment %q: want Field=value", p)
		}
	}

	env, err := godotenv.Unmarshal(strings.Join(pairs, "\n"))
	if err != nil {
		return nil, fmt.Errorf("invalid assignments: %w", err)
	}

	raw, meta, err := splitEnv(env)
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		return nil, fmt.Errorf("%w: only attributes can be assigned", domain.ErrUnknownField)
	}
	return raw, nil
}

func readEnvFile(path string) (map[string]int, map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	raw, meta, err := splitEnv(env)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return raw, meta, nil
}

// splitEnv separates attribute keys from the id and outcome keys. Attribute
// names are matched ignoring case.
func splitEnv(env map[string]string) (map[string]int, map[string]string, error) {
	cells := make(map[domain.Field]string, len(env))
	meta := make(map[string]string)

	for key, value := range env {
		switch {
		case strings.EqualFold(key, idColumn):
			meta[idColumn] = strings.TrimSpace(value)
		case strings.EqualFold(key, outcomeColumn):
			meta[outcomeColumn] = value
		default:
			spec, ok := domain.LookupFold(key)
			if !ok {
				return nil, nil, fmt.Errorf("%w: %q", domain.ErrUnknownField, key)
			}
			cells[spec.Name] = value
		}
	}

	raw, err := parseCells(cells)
	if err != nil {
		return nil, nil, err
	}
	return raw, meta, nil
}
