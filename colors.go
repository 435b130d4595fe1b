package main

import (
	"github.com/fatih/color"

	"fox/diag"
)

// colorizeSeverity wraps a rendered diagnostic line in the color its
// severity deserves, the same inline-helper pattern sam-decook-lox uses for
// its "passed"/"failed" test summary words rather than a dedicated logging
// layer.
func colorizeSeverity(severity diag.Severity, line string) string {
	switch severity {
	case diag.Fatal, diag.Error:
		return color.RedString(line)
	case diag.Warning:
		return color.YellowString(line)
	case diag.Note:
		return color.CyanString(line)
	default:
		return line
	}
}
