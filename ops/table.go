package ops

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/justapithecus/optree/ioctx"
	"github.com/justapithecus/optree/op"
)

var (
	tableBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	tableTitleStyle = lipgloss.NewStyle().Bold(true)
)

// TableOp renders tabular data: plain text/tabwriter columns when Out
// is not a terminal, lipgloss-styled boxes when it is. If Refresh and
// RefreshEvery are both set, a background poller re-fetches rows on
// that interval until ctx is canceled; the poller is always joined
// before Run returns, so a canceled context never leaks the goroutine.
type TableOp struct {
	op.Base
	OpName       string
	Title        string
	Headers      []string
	Rows         [][]string
	Refresh      func(ctx context.Context) ([][]string, error)
	RefreshEvery time.Duration
}

// Name implements op.Op.
func (o *TableOp) Name() string {
	if o.OpName != "" {
		return o.OpName
	}
	return "TableOp"
}

// Run implements op.Op.
func (o *TableOp) Run(ctx context.Context, io *ioctx.Context) op.Outcome {
	rows := o.Rows

	if o.Refresh != nil && o.RefreshEvery > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			ticker := time.NewTicker(o.RefreshEvery)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					next, err := o.Refresh(gctx)
					if err != nil {
						return err
					}
					rows = next
				}
			}
		})

		// Poll until the caller cancels ctx (e.g. the user quits the
		// view), then join the poller before returning.
		<-gctx.Done()
		if err := g.Wait(); err != nil && err != context.Canceled {
			return o.FailWithUnknownError(fmt.Sprintf("table: refresh: %v", err))
		}
	}

	fmt.Fprint(io.Out, o.render(io, rows))
	return o.Succeed(rows)
}

func (o *TableOp) render(io *ioctx.Context, rows [][]string) string {
	if isTerminal(io.Out) {
		return o.renderStyled(rows)
	}
	return o.renderPlain(rows)
}

func (o *TableOp) renderPlain(rows [][]string) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	if len(o.Headers) > 0 {
		fmt.Fprintln(w, strings.Join(o.Headers, "\t"))
	}
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	w.Flush()
	return b.String()
}

func (o *TableOp) renderStyled(rows [][]string) string {
	var b strings.Builder
	if o.Title != "" {
		b.WriteString(tableTitleStyle.Render(o.Title))
		b.WriteString("\n")
	}
	var body strings.Builder
	if len(o.Headers) > 0 {
		body.WriteString(strings.Join(o.Headers, "  "))
		body.WriteString("\n")
	}
	for _, r := range rows {
		body.WriteString(strings.Join(r, "  "))
		body.WriteString("\n")
	}
	b.WriteString(tableBoxStyle.Render(strings.TrimRight(body.String(), "\n")))
	return b.String()
}

// isTerminal reports whether w looks like a terminal device. Kept
// minimal and dependency-free (os.ModeCharDevice check) rather than
// reaching for a TTY-detection library for this narrow a check.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
