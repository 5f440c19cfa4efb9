package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nhle/offercal/internal/theme"
)

func printSnapshotSummary(w io.Writer, offers int, target string) {
	if target == "" {
		fmt.Fprintf(w, "%s collected %s offers %s\n",
			theme.SuccessStyle.Render("✓"),
			theme.CountStyle.Render(strconv.Itoa(offers)),
			theme.HelpStyle.Render("(not saved: pass --json or --db)"),
		)
		return
	}
	fmt.Fprintf(w, "%s %s offers in %s\n",
		theme.SuccessStyle.Render("✓"),
		theme.CountStyle.Render(strconv.Itoa(offers)),
		theme.PathStyle.Render(target),
	)
}

func printCalendarSummary(w io.Writer, offers, weeks int, path string) {
	fmt.Fprintf(w, "%s wrote %s offers across %s weeks to %s\n",
		theme.SuccessStyle.Render("✓"),
		theme.CountStyle.Render(strconv.Itoa(offers)),
		theme.CountStyle.Render(strconv.Itoa(weeks)),
		theme.PathStyle.Render(path),
	)
}
