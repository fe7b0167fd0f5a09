package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"movielog-server/internal/charts"
)

// render prints the dashboard as plain text tables.
func render(w io.Writer, d charts.Dashboard) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Viewings %s to %s", d.Filter.StartDate, d.Filter.EndDate)
	if d.Filter.Title != "" {
		fmt.Fprintf(tw, " matching %q", d.Filter.Title)
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Total\t%d\nFeatures\t%d\nShorts\t%d\n", d.Stats.Total, d.Stats.Features, d.Stats.Shorts)

	section := func(name string, buckets []charts.CategoryBucket) {
		fmt.Fprintf(tw, "\n%s\n", name)
		for _, b := range buckets {
			fmt.Fprintf(tw, "  %s\t%d", b.Name, b.Count)
			if len(b.Absorbed) > 0 {
				names := make([]string, 0, len(b.Absorbed))
				for _, a := range b.Absorbed {
					names = append(names, fmt.Sprintf("%s (%d)", a.Name, a.Count))
				}
				fmt.Fprintf(tw, "\t%s", strings.Join(names, ", "))
			}
			fmt.Fprintln(tw)
		}
	}
	section("Theatre", d.Theatre)
	section("Format", d.Format)
	section("Genre", d.Genre)
	section("First viewing", d.FirstViewing)

	fmt.Fprintf(tw, "\nBy month\n")
	for i, n := range d.Months {
		fmt.Fprintf(tw, "  %s\t%d\n", d.MonthLabels[i], n)
	}
	return tw.Flush()
}
