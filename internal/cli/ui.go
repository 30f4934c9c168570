package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/arturoeanton/soundgate/internal/port"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	noticeBox    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// noticeTitle picks the heading shown for a failure.
func noticeTitle(err error) string {
	var typed *port.Error
	if !errors.As(err, &typed) {
		return "Error"
	}
	switch typed.Kind {
	case port.KindConfig:
		return "Configuration error"
	case port.KindAuth:
		return "Sign in failed"
	case port.KindLocalFile:
		return "File error"
	case port.KindInvalidArgument:
		return "Invalid input"
	case port.KindRemote:
		return "Backend error"
	default:
		return "Error"
	}
}

func printError(w io.Writer, err error) {
	body := errorStyle.Render(noticeTitle(err)) + "\n" + err.Error()
	fmt.Fprintln(w, noticeBox.BorderForeground(lipgloss.Color("196")).Render(body))
}

func printSuccess(w io.Writer, title, detail string) {
	body := successStyle.Render(title)
	if detail != "" {
		body += "\n" + detail
	}
	fmt.Fprintln(w, noticeBox.BorderForeground(lipgloss.Color("42")).Render(body))
}

func printWarn(w io.Writer, msg string) {
	fmt.Fprintln(w, warnStyle.Render(msg))
}

// table prints rows as aligned columns under a bold header.
func table(w io.Writer, header []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("(none)"))
		return
	}
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if i < len(widths) && len(c) > widths[i] {
				widths[i] = len(c)
			}
		}
	}
	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = c + strings.Repeat(" ", widths[i]-len(c))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}
	fmt.Fprintln(w, titleStyle.Render(line(header)))
	for _, r := range rows {
		fmt.Fprintln(w, line(r))
	}
}

// promptMissing asks for every field whose value is empty.
func promptMissing(fields ...promptField) error {
	var inputs []huh.Field
	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		in := huh.NewInput().Title(f.title).Value(f.value)
		if f.secret {
			in = in.EchoMode(huh.EchoModePassword)
		}
		inputs = append(inputs, in)
	}
	if len(inputs) == 0 {
		return nil
	}
	if err := huh.NewForm(huh.NewGroup(inputs...)).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

type promptField struct {
	title  string
	value  *string
	secret bool
}
