package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hive-corporation/creditrisk/internal/core/domain"
)

// DefaultTable is the table PostgresSource reads when none is given.
const DefaultTable = "applicants"

// PostgresSource reads applicants from a table with an "id" column, one
// integer column per attribute named exactly like the attribute, and a
// nullable text "RiskPerformance" column. It only ever issues SELECTs.
type PostgresSource struct {
	db    *pgxpool.Pool
	table string
	limit int
}

// NewPostgresSource returns a source over table. A limit of 0 reads every row.
func NewPostgresSource(db *pgxpool.Pool, table string, limit int) *PostgresSource {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresSource{db: db, table: table, limit: limit}
}

func (s *PostgresSource) Name() string {
	return "postgres:" + s.table
}

func (s *PostgresSource) FetchApplicants(ctx context.Context) ([]domain.Applicant, error) {
	query, args := selectApplicantsQuery(s.table, s.limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applicants: %w", err)
	}
	defer rows.Close()

	var applicants []domain.Applicant

	for rows.Next() {
		var (
			id      string
			values  = make([]pgtype.Int4, len(domain.Schema))
			outcome pgtype.Text
		)

		dest := make([]any, 0, len(values)+2)
		dest = append(dest, &id)
		for i := range values {
			dest = append(dest, &values[i])
		}
		dest = append(dest, &outcome)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan applicant: %w", err)
		}

		a, err := applicantFromRow(id, values, outcome)
		if err != nil {
			return nil, fmt.Errorf("applicant %s: %w", id, err)
		}
		applicants = append(applicants, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return applicants, nil
}

// selectApplicantsQuery builds the read query. Column order follows
// domain.Schema.
func selectApplicantsQuery(table string, limit int) (string, []any) {
	cols := make([]string, 0, len(domain.Schema)+2)
	cols = append(cols, "id::text")
	for _, spec := range domain.Schema {
		cols = append(cols, pgx.Identifier{string(spec.Name)}.Sanitize())
	}
	cols = append(cols, pgx.Identifier{outcomeColumn}.Sanitize())

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id",
		strings.Join(cols, ", "),
		pgx.Identifier(strings.Split(table, ".")).Sanitize(),
	)

	if limit > 0 {
		return query + " LIMIT $1", []any{limit}
	}
	return query, nil
}

// applicantFromRow maps scanned columns, in schema order, to an applicant.
// NULL attributes keep their default.
func applicantFromRow(id string, values []pgtype.Int4, outcome pgtype.Text) (domain.Applicant, error) {
	raw := make(map[string]int, len(values))
	for i, v := range values {
		if v.Valid {
			raw[string(domain.Schema[i].Name)] = int(v.Int32)
		}
	}

	observed := ""
	if outcome.Valid {
		observed = outcome.String
	}

	return newApplicant(id, raw, observed)
}
