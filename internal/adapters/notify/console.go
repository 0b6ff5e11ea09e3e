package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jfortea/floorbot/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implements ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole creates a notifier that writes to stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter creates a notifier for tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify prints the cycle result in the configured mode.
func (c *Console) Notify(_ context.Context, report domain.CycleReport) error {
	if c.table {
		c.printFull(report)
	} else {
		c.printCompact(report)
	}
	return nil
}

// printCompact prints the essentials in one line.
func (c *Console) printCompact(r domain.CycleReport) {
	now := r.At.Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] floor %.4f | best offer %.4f%s",
		now, r.Observation.Floor, r.Observation.BestOffer, oursTag(r.Observation.BestOfferOurs))

	if r.OfferPlaced {
		fmt.Fprintf(&sb, " | bid @%.4f", r.OfferPrice)
	}
	if r.Sniped {
		sb.WriteString(" | SNIPED")
	}
	if r.VolumeBought {
		sb.WriteString(" | vol buy")
	}
	if r.Listed > 0 {
		fmt.Fprintf(&sb, " | listed %d", r.Listed)
	}
	if len(r.Positions) > 0 {
		fmt.Fprintf(&sb, " | inv %d", len(r.Positions))
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull prints the one-liner plus the open-position table.
func (c *Console) printFull(r domain.CycleReport) {
	c.printCompact(r)

	if len(r.Positions) == 0 {
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Token", "Buy", "Held", "Collection")

	for i, pos := range r.Positions {
		table.Append(
			fmt.Sprintf("%d", i+1),
			tokenLabel(pos),
			fmt.Sprintf("%.4f", pos.BuyPrice),
			heldLabel(r.At, pos.PurchasedAt),
			truncate(pos.Collection, 24),
		)
	}

	table.Render()
}

// --- helpers ---

func oursTag(ours bool) string {
	if ours {
		return " (ours)"
	}
	return ""
}

func tokenLabel(pos domain.VolumePosition) string {
	addr := pos.Contract
	if len(addr) > 10 {
		addr = addr[:6] + ".." + addr[len(addr)-4:]
	}
	return addr + " #" + pos.Identifier
}

func heldLabel(now, purchased time.Time) string {
	if purchased.IsZero() {
		return "-"
	}
	held := now.Sub(purchased)
	if held < time.Minute {
		return fmt.Sprintf("%ds", int(held.Seconds()))
	}
	if held < time.Hour {
		return fmt.Sprintf("%dm", int(held.Minutes()))
	}
	return fmt.Sprintf("%.1fh", held.Hours())
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
