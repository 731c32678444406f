package tui

import (
	"fmt"
)

// Banner writes the teamwork banner with the version underneath.
func (p *Printer) Banner(version string) {
	colors := []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6"}
	lines := []string{
		"  _                                        _   ",
		" | |_ ___  __ _ _ __ _____      _____  _ _| |__",
		" |  _/ -_)/ _` | '  \\ V  V / _ \\| '_| / /",
		"  \\__\\___|\\__,_|_|_|_\\_/\\_/\\___/|_| |_\\_\\",
		"",
	}
	fmt.Fprintln(p.out)
	for i, l := range lines {
		fmt.Fprintln(p.out, p.out.String(l).Foreground(p.out.Color(colors[i%len(colors)])))
	}
	fmt.Fprintln(p.out, p.out.String("  version "+version).Faint())
}
