package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"strata/internal/diag"
)

func setupColor(cmd *cobra.Command) {
	value, _ := cmd.Root().PersistentFlags().GetString("color")
	switch value {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		// auto: honor the library's terminal detection.
	}
}

// printDiagnostics renders the bag to stderr, errors first. In quiet
// mode warnings are dropped.
func printDiagnostics(bag *diag.Bag, quiet bool) {
	if bag.Len() == 0 {
		return
	}
	bag.Sort()

	errStyle := color.New(color.FgRed, color.Bold)
	warnStyle := color.New(color.FgYellow)
	infoStyle := color.New(color.FgCyan)

	for _, d := range bag.Items() {
		if quiet && d.Severity != diag.SevError {
			continue
		}
		var label string
		switch d.Severity {
		case diag.SevError:
			label = errStyle.Sprint("error")
		case diag.SevWarning:
			label = warnStyle.Sprint("warning")
		default:
			label = infoStyle.Sprint("info")
		}
		where := ""
		if d.Unit != "" {
			where = d.Unit + ": "
		}
		fmt.Fprintf(os.Stderr, "%s[%s]: %s%s\n", label, d.Code, where, d.Message)
		for _, note := range d.Notes {
			fmt.Fprintf(os.Stderr, "  note: %s\n", note.Msg)
		}
	}
}
