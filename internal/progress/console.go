package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

// Console renders events as a single updating status line plus
// colored warning lines
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	warnings bool
	pending  bool

	stageColor *color.Color
	warnColor  *color.Color
	doneColor  *color.Color
}

// NewConsole creates a console sink. When showWarnings is false
// warning events are counted elsewhere but not printed.
func NewConsole(w io.Writer, showWarnings bool) *Console {
	return &Console{
		w:          w,
		warnings:   showWarnings,
		stageColor: color.New(color.FgCyan, color.Bold),
		warnColor:  color.New(color.FgYellow),
		doneColor:  color.New(color.FgGreen),
	}
}

// Emit prints e
func (c *Console) Emit(e models.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev := e.(type) {
	case models.ProgressEvent:
		c.stageColor.Fprintf(c.w, "\r[%-5s] ", ev.Stage)
		if ev.Stage == models.StageWalk {
			fmt.Fprintf(c.w, "%s dirs, %s files", humanize.Comma(int64(ev.ProcessedDirs)), humanize.Comma(int64(ev.ProcessedFiles)))
		} else {
			fmt.Fprintf(c.w, "%s files hashed", humanize.Comma(int64(ev.ProcessedFiles)))
		}
		if ev.QueueDepth > 0 {
			fmt.Fprintf(c.w, " (queue %d)", ev.QueueDepth)
		}
		c.pending = true
	case models.WarningEvent:
		if !c.warnings {
			return
		}
		c.newline()
		c.warnColor.Fprintf(c.w, "warning: %s: %s\n", ev.Path, ev.Message)
	case models.CompleteEvent:
		c.newline()
		status := "done"
		if ev.Cancelled {
			status = "cancelled"
		}
		c.doneColor.Fprintf(c.w, "[%-5s] %s: ", ev.Stage, status)
		fmt.Fprintf(c.w, "%s dirs, %s files, %s\n",
			humanize.Comma(int64(ev.ProcessedDirs)),
			humanize.Comma(int64(ev.ProcessedFiles)),
			humanize.IBytes(ev.TotalBytes))
	}
}

func (c *Console) newline() {
	if c.pending {
		fmt.Fprintln(c.w)
		c.pending = false
	}
}
