package tui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/muesli/termenv"
)

const (
	colorError = "#f87171"
	colorOK    = "#4ade80"
	colorRule  = "#facc15"
	colorPos   = "#94a3b8"
)

// Printer renders CLI output, colored when the writer is a terminal.
type Printer struct {
	out *termenv.Output
}

// NewPrinter wraps w. Pass termenv.WithProfile(termenv.Ascii) to disable color.
func NewPrinter(w io.Writer, opts ...termenv.OutputOption) *Printer {
	return &Printer{out: termenv.NewOutput(w, opts...)}
}

// Violations prints one line per violation followed by a summary.
// It returns the number printed.
func (p *Printer) Violations(vs []domain.Violation) int {
	for _, v := range vs {
		if v.Position != "" {
			fmt.Fprintf(p.out, "%s: ", p.out.String(v.Position).Foreground(p.out.Color(colorPos)))
		}
		target := v.Component
		if v.Method != "" {
			target += "." + v.Method
		}
		fmt.Fprintf(p.out, "%s %s %s %s\n",
			p.out.String(target).Bold(),
			p.out.String("["+string(v.Kind)+"]").Faint(),
			p.out.String(string(v.Rule)).Foreground(p.out.Color(colorRule)),
			v.Message,
		)
	}

	switch n := len(vs); n {
	case 0:
		fmt.Fprintln(p.out, p.out.String("✓ all components respect their roles").Foreground(p.out.Color(colorOK)))
	case 1:
		fmt.Fprintln(p.out, p.out.String("✗ 1 violation").Foreground(p.out.Color(colorError)).Bold())
	default:
		fmt.Fprintln(p.out, p.out.String(fmt.Sprintf("✗ %d violations", n)).Foreground(p.out.Color(colorError)).Bold())
	}
	return len(vs)
}

// Roles prints the role table.
func (p *Printer) Roles(defs []domain.RoleDefinition) error {
	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tMETHODS\tPARAMS\tRESULTS\tMUTATION\tBRANCHING\tFORBIDDEN")
	for _, d := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.Kind,
			methods(d),
			orDash(string(d.Params)),
			results(d.Results),
			yesNo(d.MutationAllowed),
			yesNo(d.BranchingAllowed),
			kinds(d.ForbiddenDependencies),
		)
	}
	return tw.Flush()
}

func methods(d domain.RoleDefinition) string {
	pattern := d.MethodPattern
	if pattern == "" {
		pattern = "*"
	}
	switch {
	case d.MaxMethods > 0 && d.MaxMethods == d.MinMethods:
		return fmt.Sprintf("%s (=%d)", pattern, d.MinMethods)
	case d.MaxMethods > 0:
		return fmt.Sprintf("%s (%d-%d)", pattern, d.MinMethods, d.MaxMethods)
	}
	return fmt.Sprintf("%s (>=%d)", pattern, d.MinMethods)
}

func results(rs []domain.ResultShape) string {
	if len(rs) == 0 {
		return "-"
	}
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = "(" + string(r) + ")"
	}
	return strings.Join(parts, "|")
}

func kinds(ks []domain.Kind) string {
	if len(ks) == 0 {
		return "-"
	}
	parts := make([]string, len(ks))
	for i, k := range ks {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
