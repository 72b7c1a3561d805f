// Package render prints conversation messages to the console, coloured by
// role.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/minhyannv/weather-chat-go/pkg/conversation"
)

// Printer writes one block per message.
type Printer struct {
	out    io.Writer
	colors map[conversation.Role]color.Attribute
	plain  bool
}

// Option configures a Printer.
type Option func(*Printer)

// WithoutColor disables ANSI escapes regardless of the terminal.
func WithoutColor() Option {
	return func(p *Printer) { p.plain = true }
}

// New returns a printer writing to out.
func New(out io.Writer, opts ...Option) *Printer {
	p := &Printer{
		out: out,
		colors: map[conversation.Role]color.Attribute{
			conversation.RoleSystem:    color.FgRed,
			conversation.RoleUser:      color.FgGreen,
			conversation.RoleAssistant: color.FgBlue,
			conversation.RoleFunction:  color.FgHiBlack,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Print renders m. Function calls and results are indented and not bold.
func (p *Printer) Print(m conversation.Message) {
	text := Format(m)
	c := color.New(p.attributes(m.Role, text)...)
	if p.plain {
		c.DisableColor()
	}
	_, _ = fmt.Fprintln(p.out, c.Sprint(text))
}

// attributes picks the role colour, bold unless text is indented.
func (p *Printer) attributes(role conversation.Role, text string) []color.Attribute {
	attrs := []color.Attribute{p.colors[role]}
	if !strings.HasPrefix(text, "\n") && !strings.HasPrefix(text, " ") {
		attrs = append(attrs, color.Bold)
	}
	return attrs
}

// Format returns the uncoloured text for m.
func Format(m conversation.Message) string {
	switch {
	case m.Role == conversation.RoleSystem:
		return fmt.Sprintf("system: %s\n", m.Content)
	case m.Role == conversation.RoleUser:
		return fmt.Sprintf("user: %s\n", m.Content)
	case m.HasFunctionCall():
		return fmt.Sprintf("\n   >>> function call (%s): %s", m.FunctionCall.Name, quote(m.FunctionCall.Arguments))
	case m.Role == conversation.RoleAssistant:
		return fmt.Sprintf("assistant: %s\n", m.Content)
	case m.Role == conversation.RoleFunction:
		return fmt.Sprintf("   <<< function result (%s): %s\n", m.Name, m.Content)
	default:
		return fmt.Sprintf("%s: %s\n", m.Role, m.Content)
	}
}

// quote renders the argument text as a JSON string literal.
func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("%q", s)
	}
	return string(b)
}
