package internal

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/xlab/treeprint"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Summary renders r as a colored tree. When prev is a past run of the same
// case, each version also shows how its median time moved since.
func Summary(r *Report, prev *Report, unit time.Duration) string {
	tree := treeprint.NewWithRoot(colorize(fmt.Sprintf("[bold][cyan]%s[reset]", r.Case)))
	if r.Description != "" {
		tree.AddNode(r.Description)
	}

	for _, name := range r.Order {
		v := r.Versions[name]
		branch := tree.AddBranch(colorize(fmt.Sprintf("[magenta]%s[reset]", name)))
		branch.AddNode(printer.Sprintf("time: %s ± %s (%d/%d trials)",
			secondsIn(v.ExecTime, unit), secondsIn(v.IQR, unit), v.Successes, v.Attempts))
		branch.AddNode(printer.Sprintf("cpu: %s, memory: %.2f MB", secondsIn(v.CPUTime, unit), v.MemoryMB))
		if v.Quality.Valid() {
			branch.AddNode(printer.Sprintf("quality: complexity %d, maintainability %.1f, %d lines",
				v.Quality.Complexity, v.Quality.Maintainability, v.Quality.SLOC))
		}
		if c := v.Comparison; c != nil {
			speed := printer.Sprintf("%.2fx faster", c.TimeRatio)
			if c.Marginal {
				speed += " (marginal)"
			}
			branch.AddNode(colorize(fmt.Sprintf("[green]%s[reset], cpu %.2fx, memory %+.2f MB", speed, c.CPURatio, c.MemoryDeltaMB)))
			if !c.Correct {
				branch.AddNode(colorize("[red]results differ from baseline[reset]"))
			}
		}
		if s := v.Score; s != nil {
			branch.AddNode(colorize(fmt.Sprintf("[yellow]score %.1f, %s[reset]", s.Total, v.GradeLabel)))
		}
		if prev != nil {
			if old, ok := prev.Versions[name]; ok && old.ExecTime > 0 {
				change := (v.ExecTime - old.ExecTime) / old.ExecTime * 100
				branch.AddNode(printer.Sprintf("%+.1f%% vs run %s", change, shortID(prev.RunID)))
			}
		}
	}

	skipped := lo.Keys(r.Skipped)
	slices.Sort(skipped)
	for _, name := range skipped {
		tree.AddNode(colorize(fmt.Sprintf("[red]%s skipped:[reset] %s", name, r.Skipped[name])))
	}
	if r.Best != "" {
		tree.AddNode(colorize(fmt.Sprintf("[bold]best: %s[reset]", r.Best)))
	}
	return tree.String()
}

// Consolify writes the summary of r to w.
func Consolify(w io.Writer, r *Report, prev *Report, unit time.Duration) {
	fmt.Fprintln(w, Summary(r, prev, unit))
}

// HistoryTable renders past runs one per line, newest first.
func HistoryTable(reports []*Report, unit time.Duration) string {
	tree := treeprint.New()
	for _, r := range reports {
		branch := tree.AddBranch(fmt.Sprintf("%s  %s", r.Started.Format(dateLayout), shortID(r.RunID)))
		for _, name := range r.Order {
			v := r.Versions[name]
			line := fmt.Sprintf("%s: %s", name, secondsIn(v.ExecTime, unit))
			if v.Score != nil {
				line += fmt.Sprintf(", score %.1f (%s)", v.Score.Total, v.Score.Grade)
			}
			branch.AddNode(line)
		}
	}
	return tree.String()
}

// Leaderboard ranks the best variant of each case by total score. Cases
// without a scored variant are listed last.
func Leaderboard(reports []*Report, unit time.Duration) string {
	ranked, unscored := lo.FilterReject(reports, func(r *Report, _ int) bool {
		v := r.Versions[r.Best]
		return v != nil && v.Score != nil
	})
	slices.SortStableFunc(ranked, func(a, b *Report) int {
		return cmp.Compare(b.Versions[b.Best].Score.Total, a.Versions[a.Best].Score.Total)
	})

	tree := treeprint.NewWithRoot(colorize("[bold]Leaderboard[reset]"))
	for i, r := range ranked {
		v := r.Versions[r.Best]
		line := fmt.Sprintf("%d. %s: %s, score %.1f %s", i+1, r.Case, v.Name, v.Score.Total, v.GradeLabel)
		if v.Comparison != nil {
			line += printer.Sprintf(", %.2fx faster (%s)", v.Comparison.TimeRatio, secondsIn(v.ExecTime, unit))
		}
		tree.AddNode(line)
	}
	for _, r := range unscored {
		tree.AddNode(colorize(fmt.Sprintf("[yellow]%s: no scored variant[reset]", r.Case)))
	}
	return tree.String()
}

func secondsIn(s float64, unit time.Duration) string {
	return formatDuration(time.Duration(s*float64(time.Second)), unit)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
