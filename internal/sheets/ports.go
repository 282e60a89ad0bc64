// Package sheets defines the outbound ports of the backup pipeline.
package sheets

import (
	"context"

	"hisab/internal/core"
)

// RowAppender mirrors one expense record to an external sheet. rowRef
// identifies where the record landed, for logging.
type RowAppender interface {
	AppendExpense(ctx context.Context, e core.ExpenseRecord) (rowRef string, err error)
}
