package ports

import "context"

// RowAppender appends one row to the end of a spreadsheet range.
type RowAppender interface {
	Append(ctx context.Context, rng string, row []any) error
}
