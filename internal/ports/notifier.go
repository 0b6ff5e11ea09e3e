package ports

import (
	"context"

	"github.com/jfortea/floorbot/internal/domain"
)

// Notifier presents the result of a cycle to the operator's terminal.
type Notifier interface {
	// Notify reports what the cycle observed and did. In the console
	// implementation this prints a one-liner, or a position table in
	// table mode.
	Notify(ctx context.Context, report domain.CycleReport) error
}
