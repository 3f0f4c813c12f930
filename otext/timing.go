//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"fmt"
	"os"
	"time"

	"github.com/markkurossi/ote/p2p"
	"github.com/markkurossi/tabulate"
)

// Timing records timing samples of an extension session and renders
// a profiling report.
type Timing struct {
	Start   time.Time
	Samples []*Sample
}

// NewTiming creates a new Timing instance.
func NewTiming() *Timing {
	return &Timing{
		Start: time.Now(),
	}
}

// Sample adds a timing sample with label and data columns.
func (t *Timing) Sample(label string, cols []string) *Sample {
	start := t.Start
	if len(t.Samples) > 0 {
		start = t.Samples[len(t.Samples)-1].End
	}
	sample := &Sample{
		Label: label,
		Start: start,
		End:   time.Now(),
		Cols:  cols,
	}
	t.Samples = append(t.Samples, sample)
	return sample
}

// Print prints the profiling report to standard output.
func (t *Timing) Print(stats p2p.IOStats) {
	if len(t.Samples) == 0 {
		return
	}

	sent := stats.Sent.Load()
	received := stats.Recvd.Load()
	flushed := stats.Flushed.Load()

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Op").SetAlign(tabulate.ML)
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("%").SetAlign(tabulate.MR)
	tab.Header("Xfer").SetAlign(tabulate.MR)

	total := t.Samples[len(t.Samples)-1].End.Sub(t.Start)
	for _, sample := range t.Samples {
		row := tab.Row()
		row.Column(sample.Label)

		duration := sample.End.Sub(sample.Start)
		row.Column(duration.String())
		row.Column(fmt.Sprintf("%.2f%%",
			float64(duration)/float64(total)*100))

		for _, col := range sample.Cols {
			row.Column(col)
		}
	}
	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column(total.String()).SetFormat(tabulate.FmtBold)
	row.Column("").SetFormat(tabulate.FmtBold)
	row.Column(TransferSize(sent + received).String()).
		SetFormat(tabulate.FmtBold)

	row = tab.Row()
	row.Column("├╴Sent").SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column(
		fmt.Sprintf("%.2f%%", float64(sent)/float64(sent+received)*100)).
		SetFormat(tabulate.FmtItalic)
	row.Column(TransferSize(sent).String()).SetFormat(tabulate.FmtItalic)

	row = tab.Row()
	row.Column("├╴Rcvd").SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column(
		fmt.Sprintf("%.2f%%", float64(received)/float64(sent+received)*100)).
		SetFormat(tabulate.FmtItalic)
	row.Column(TransferSize(received).String()).SetFormat(tabulate.FmtItalic)

	row = tab.Row()
	row.Column("╰╴Flcd").SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column("")
	row.Column(fmt.Sprintf("%v", flushed)).SetFormat(tabulate.FmtItalic)

	tab.Print(os.Stdout)
}

// Sample contains information about one timing sample.
type Sample struct {
	Label string
	Start time.Time
	End   time.Time
	Cols  []string
}

// TransferSize formats a byte count for the report.
type TransferSize uint64

func (s TransferSize) String() string {
	if s > 1000*1000*1000*1000 {
		return fmt.Sprintf("%dTB", s/(1000*1000*1000*1000))
	} else if s > 1000*1000*1000 {
		return fmt.Sprintf("%dGB", s/(1000*1000*1000))
	} else if s > 1000*1000 {
		return fmt.Sprintf("%dMB", s/(1000*1000))
	} else if s > 1000 {
		return fmt.Sprintf("%dkB", s/1000)
	} else {
		return fmt.Sprintf("%dB", s)
	}
}
