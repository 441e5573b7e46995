package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/shravanasati/tck/internal/bench"
)

// ProgressObserver draws one progress bar per candidate.
type ProgressObserver struct {
	Writer io.Writer
	bar    *progressbar.ProgressBar
}

// NewProgressObserver draws to stderr.
func NewProgressObserver() *ProgressObserver {
	return &ProgressObserver{Writer: os.Stderr}
}

func (p *ProgressObserver) CandidateStarted(caseName, candidate string, trials int) {
	p.finish()
	pbarOptions := []progressbar.Option{
		progressbar.OptionSetWriter(p.Writer),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription(tags(fmt.Sprintf("[magenta]%s/%s[reset]", caseName, candidate))),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        tags("[green]=[reset]"),
			SaucerHead:    tags("[green]>[reset]"),
			SaucerPadding: " ",
			BarStart:      "|",
			BarEnd:        "|",
		}),
	}
	p.bar = progressbar.NewOptions(trials, pbarOptions...)
}

func (p *ProgressObserver) TrialDone(caseName, candidate string, trial int, res bench.TrialResult) {
	if p.bar == nil {
		return
	}
	p.bar.Add(1)
	if res.Success {
		p.bar.Describe(tags(fmt.Sprintf("[magenta]%s/%s:[reset] [green]%s[reset]", caseName, candidate, res.ExecTime)))
	} else {
		p.bar.Describe(tags(fmt.Sprintf("[magenta]%s/%s:[reset] [red]failed[reset]", caseName, candidate)))
	}
}

// Trials can stop early, so the bar is closed when the candidate is done.
func (p *ProgressObserver) VersionDone(string, *bench.VersionResult) { p.finish() }

func (p *ProgressObserver) VersionSkipped(caseName, candidate string, err error) {
	p.finish()
	Log("yellow", fmt.Sprintf("%s/%s skipped: %v", caseName, candidate, err))
}

// tags strips color tags when color is off; progressbar renders them otherwise.
func tags(text string) string {
	if NO_COLOR {
		return colorize(text)
	}
	return text
}

func (p *ProgressObserver) finish() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}

// MultiObserver fans events out to several observers.
type MultiObserver []bench.Observer

func (m MultiObserver) CandidateStarted(caseName, candidate string, trials int) {
	for _, o := range m {
		o.CandidateStarted(caseName, candidate, trials)
	}
}

func (m MultiObserver) TrialDone(caseName, candidate string, trial int, res bench.TrialResult) {
	for _, o := range m {
		o.TrialDone(caseName, candidate, trial, res)
	}
}

func (m MultiObserver) VersionDone(caseName string, v *bench.VersionResult) {
	for _, o := range m {
		o.VersionDone(caseName, v)
	}
}

func (m MultiObserver) VersionSkipped(caseName, candidate string, err error) {
	for _, o := range m {
		o.VersionSkipped(caseName, candidate, err)
	}
}
