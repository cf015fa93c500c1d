// Package printer writes styled status lines for the CLI commands.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hay-kot/criterio"
)

// ANSI color codes (Tokyo Night palette)
const (
	ColorReset     = "\033[0m"
	ColorRed       = "\033[38;2;215;95;107m"  // #d75f6b
	ColorGreen     = "\033[38;2;158;206;106m" // #9ece6a
	ColorYellow    = "\033[38;2;224;175;104m" // #e0af68
	ColorBlue      = "\033[38;2;122;162;247m" // #7aa2f7
	ColorGray      = "\033[38;2;86;95;137m"   // #565f89
	ColorBold      = "\033[1m"
	ColorUnderline = "\033[4m"
)

// Symbols
const (
	Check = "✔"
	Cross = "✘"
	Dot   = "•"
	Arrow = "→"
)

type ctxKey struct{}

// Printer handles formatted output with colors and styles
type Printer struct {
	writer io.Writer
}

// New creates a new Printer that writes to the given writer
func New(w io.Writer) *Printer {
	return &Printer{writer: w}
}

// NewContext returns a context with the printer attached
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx retrieves the printer from context, or creates a default one
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

// FatalError prints a formatted error box and does NOT exit.
// Caller should handle exit code
func (p *Printer) FatalError(err error) {
	if err == nil {
		return
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		p.box("Validation Error", errContext(err, fieldErrs), fieldErrs)
		return
	}

	p.box("Error", err.Error(), nil)
}

// errContext is the part of a wrapped error preceding its field errors,
// e.g. "load config: invalid config".
func errContext(err error, fieldErrs criterio.FieldErrors) string {
	errStr := err.Error()
	idx := strings.Index(errStr, fieldErrs.Error())
	if idx <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.TrimSpace(errStr[:idx]), ":")
}

func (p *Printer) box(title, detail string, fieldErrs criterio.FieldErrors) {
	bar := p.colorize(ColorRed, "│")

	var b strings.Builder
	b.WriteString(p.colorize(ColorRed, "╭ "+title) + "\n")

	if detail != "" {
		b.WriteString(bar + " " + p.colorize(ColorGray, detail) + "\n")
		if len(fieldErrs) > 0 {
			b.WriteString(bar + "\n")
		}
	}

	for _, fe := range fieldErrs {
		b.WriteString(bar + " " + p.colorize(ColorRed, Cross) + " ")
		if fe.Field != "" {
			b.WriteString(p.colorize(ColorGray, fe.Field+": "))
		}
		b.WriteString(fe.Err.Error() + "\n")
	}

	b.WriteString(p.colorize(ColorRed, "╵") + "\n")
	p.write(b.String())
}

// Errorf prints an error message in red
func (p *Printer) Errorf(format string, args ...any) {
	p.status(ColorRed, Cross, format, args...)
}

// Successf prints a success message in green
func (p *Printer) Successf(format string, args ...any) {
	p.status(ColorGreen, Check, format, args...)
}

// Success prints a success message with details on a separate line
func (p *Printer) Success(message string, details string) {
	p.status(ColorGreen, Check, "%s", message)
	if details != "" {
		p.write("  " + p.colorize(ColorGray, details) + "\n")
	}
}

// Infof prints an info message in gray
func (p *Printer) Infof(format string, args ...any) {
	p.status(ColorGray, Dot, format, args...)
}

// Warnf prints a warning message in yellow
func (p *Printer) Warnf(format string, args ...any) {
	p.status(ColorYellow, Dot, format, args...)
}

// Hintf prints a suggested next step in blue.
func (p *Printer) Hintf(format string, args ...any) {
	p.status(ColorBlue, Arrow, format, args...)
}

// Printf prints a plain message without colors
func (p *Printer) Printf(format string, args ...any) {
	p.write(fmt.Sprintf(format, args...) + "\n")
}

// Section prints a section header (bold + underlined)
func (p *Printer) Section(title string) {
	p.write(ColorBold + ColorUnderline + title + ColorReset + "\n")
}

// Field prints an indented "label: value" line with a gray label.
func (p *Printer) Field(label, value string) {
	p.write("  " + p.colorize(ColorGray, label+":") + " " + value + "\n")
}

// CheckItem prints an indented passing check
func (p *Printer) CheckItem(label, detail string) {
	p.item(ColorGreen, Check, label, detail)
}

// WarnItem prints an indented warning
func (p *Printer) WarnItem(label, detail string) {
	p.item(ColorYellow, Dot, label, detail)
}

// FailItem prints an indented failed check
func (p *Printer) FailItem(label, detail string) {
	p.item(ColorRed, Cross, label, detail)
}

func (p *Printer) item(color, symbol, label, detail string) {
	line := "  " + p.colorize(color, symbol) + " " + label
	if detail != "" {
		line += ": " + detail
	}
	p.write(line + "\n")
}

// Bold makes text bold
func (p *Printer) Bold(text string) string {
	return ColorBold + text + ColorReset
}

func (p *Printer) status(color, symbol, format string, args ...any) {
	p.write(p.colorize(color, symbol+" "+fmt.Sprintf(format, args...)) + "\n")
}

func (p *Printer) colorize(color, text string) string {
	return color + text + ColorReset
}

func (p *Printer) write(s string) {
	_, _ = io.WriteString(p.writer, s)
}
