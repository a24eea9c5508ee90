// Package sqlsource adapts a SQL result set to the segmentation engine's
// row contract. The calculation engine exposes its results as rows of named
// columns; this adapter streams them without materializing the result set.
package sqlsource

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/results/application"
)

// RowSource streams result rows off an open *sql.Rows cursor. The query must
// order rows by aggregation key, then time; the segmentation engine depends
// on that ordering.
type RowSource struct {
	rows    *sql.Rows
	columns []string
	closed  bool
}

// New wraps an already-executed query. Ownership of rows transfers to the
// source; it is closed when the cursor is exhausted or errors.
func New(rows *sql.Rows) (*RowSource, error) {
	if rows == nil {
		return nil, errors.New("sqlsource: nil rows")
	}
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	return &RowSource{rows: rows, columns: columns}, nil
}

// Next returns the next row as named string columns. NULL columns become
// empty strings; timestamps are rendered as RFC 3339 UTC.
func (s *RowSource) Next(ctx context.Context) (application.Row, bool, error) {
	if s.closed {
		return nil, false, nil
	}
	if err := ctx.Err(); err != nil {
		s.close()
		return nil, false, err
	}
	if !s.rows.Next() {
		err := s.rows.Err()
		s.close()
		return nil, false, err
	}

	values := make([]any, len(s.columns))
	for i := range values {
		values[i] = new(sql.NullString)
	}
	// Timestamp columns need a typed scan target to normalize formatting.
	for i, column := range s.columns {
		if column == application.ColumnTime {
			values[i] = new(sql.NullTime)
		}
	}
	if err := s.rows.Scan(values...); err != nil {
		s.close()
		return nil, false, err
	}

	row := make(application.Row, len(s.columns))
	for i, column := range s.columns {
		switch v := values[i].(type) {
		case *sql.NullString:
			if v.Valid {
				row[column] = v.String
			} else {
				row[column] = ""
			}
		case *sql.NullTime:
			if v.Valid {
				row[column] = v.Time.UTC().Format(time.RFC3339)
			} else {
				row[column] = ""
			}
		}
	}
	return row, true, nil
}

func (s *RowSource) close() {
	if !s.closed {
		s.closed = true
		_ = s.rows.Close()
	}
}
