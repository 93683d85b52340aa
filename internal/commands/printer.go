package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/colonyops/lightbox/internal/core/notify"
	"github.com/colonyops/lightbox/internal/core/styles"
	"github.com/urfave/cli/v3"
)

// printer writes styled status lines. It doubles as the CLI's
// notify.Notifier so gallery failures are reported on stderr.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

// stderr returns a printer for the command's error writer.
func stderr(c *cli.Command) *printer {
	if w := c.Root().ErrWriter; w != nil {
		return newPrinter(w)
	}
	return newPrinter(os.Stderr)
}

// stdout returns the command's output writer.
func stdout(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func (p *printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) Successf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, styles.SuccessStyle.Render("✔ "+fmt.Sprintf(format, args...)))
}

func (p *printer) Infof(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, styles.MutedStyle.Render("• "+fmt.Sprintf(format, args...)))
}

func (p *printer) Warnf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, styles.WarningStyle.Render("! "+fmt.Sprintf(format, args...)))
}

func (p *printer) Errorf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, styles.ErrorStyle.Render("✘ "+fmt.Sprintf(format, args...)))
}

// Notify implements notify.Notifier.
func (p *printer) Notify(_ context.Context, level notify.Level, message string) {
	switch level {
	case notify.LevelError:
		p.Errorf("%s", message)
	case notify.LevelWarning:
		p.Warnf("%s", message)
	default:
		p.Infof("%s", message)
	}
}
