package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	dupescan "github.com/mattkeenan/dupescan/pkg"
)

func renderReport(w io.Writer, report *dupescan.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "human", "":
		renderHuman(w, report)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func renderHuman(w io.Writer, report *dupescan.Report) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(w, "Scanned %s: %d files, %d candidates in %d size groups (%s)\n",
		report.Root, report.Scan.FilesWalked, report.Stats.FilesScanned,
		report.Stats.SizeGroups, report.Duration)
	fmt.Fprintf(w, "Hashed %d files (%d sampled first), %d cache hits\n",
		report.Stats.FilesHashed, report.Stats.FilesSampled, report.Stats.CacheHits)

	if len(report.Groups) == 0 {
		fmt.Fprintf(w, "%s No duplicates found.\n", green("✓"))
	} else {
		fmt.Fprintf(w, "\n%d duplicate groups, %d redundant files, %s reclaimable:\n\n",
			report.Stats.DuplicateGroups, report.Stats.DuplicateFiles,
			dupescan.FormatBytes(report.Stats.BytesReclaimable))

		for _, g := range report.Groups {
			fmt.Fprintf(w, "%s  %s × %d  (%s)\n",
				cyan(shortDigest(g.Digest)), dupescan.FormatBytes(g.Size),
				g.Members(), g.Reason)
			fmt.Fprintf(w, "  keep   %s\n", green(g.Keep.Path))
			for _, rec := range g.Delete {
				fmt.Fprintf(w, "  delete %s\n", red(rec.Path))
			}
			fmt.Fprintln(w)
		}
	}

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "%s %d files could not be processed:\n", yellow("⚠"), len(report.Errors))
		for _, fe := range report.Errors {
			fmt.Fprintf(w, "  %s\n", fe.Error())
		}
		fmt.Fprintln(w)
	}

	if report.Deletion != nil {
		renderDeletion(w, report.Deletion, green, red, yellow)
	}
}

func renderDeletion(w io.Writer, d *dupescan.DeletionReport,
	green, red, yellow func(a ...interface{}) string) {

	if d.Preview {
		fmt.Fprintf(w, "Preview: %d files would be deleted, reclaiming %s.\n",
			d.FilesDeleted, dupescan.FormatBytes(d.BytesReclaimed))
		fmt.Fprintln(w, "Run with --execute to delete them.")
		return
	}

	fmt.Fprintf(w, "%s Deleted %d files, reclaimed %s.\n",
		green("✓"), d.FilesDeleted, dupescan.FormatBytes(d.BytesReclaimed))
	if d.FilesFailed > 0 {
		fmt.Fprintf(w, "%s %d deletions failed:\n", yellow("⚠"), d.FilesFailed)
		for _, fe := range d.Failures() {
			fmt.Fprintf(w, "  %s\n", red(fe.Error()))
		}
	}
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
