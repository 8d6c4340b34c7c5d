package pretty

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fwojciec/xconnector"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// DefaultBarWidth is the length of the tallest bar of a peak chart.
const DefaultBarWidth = 40

const barRune = "█"

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PeakTable returns the peaks of s as a table labelled by s's label.
func PeakTable(s xconnector.Spectrum) xconnector.Table {
	t := xconnector.Table{Columns: []string{"m/z", "Intensity", "Relative Intensity"}}
	for _, p := range s.Peaks {
		t.Rows = append(t.Rows, xconnector.PropertyRow{
			Label:  s.Label,
			Values: []string{formatFloat(p.MZ), formatFloat(p.Intensity), formatFloat(p.RelativeIntensity)},
		})
	}
	return t
}

// WriteSpectrum writes the spectrum's record followed by its peak list.
func WriteSpectrum(w io.Writer, s xconnector.Spectrum, f Format) error {
	if err := WriteRecords(w, []xconnector.Record{s.Record}, f); err != nil {
		return err
	}
	return WriteTable(w, PeakTable(s), f)
}

// PeakChart writes the peaks of s as a bar chart, one bar per peak in m/z
// order. Bars are scaled to relative intensity, or to absolute intensity
// when no peak has a relative one. width is the tallest bar's length.
func PeakChart(w io.Writer, s xconnector.Spectrum, width int) error {
	if width <= 0 {
		width = DefaultBarWidth
	}
	peaks := xconnector.SortPeaks(s.Peaks)

	height := func(p xconnector.Peak) float64 { return p.RelativeIntensity }
	var top float64
	for _, p := range peaks {
		top = math.Max(top, p.RelativeIntensity)
	}
	if top == 0 {
		height = func(p xconnector.Peak) float64 { return p.Intensity }
		for _, p := range peaks {
			top = math.Max(top, p.Intensity)
		}
	}

	tw := newWriter()
	tw.SetTitle(s.Label)
	tw.AppendHeader(table.Row{"m/z", "Rel. Int.", ""})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
	})
	for _, p := range peaks {
		n := 0
		if top > 0 {
			n = int(math.Round(height(p) / top * float64(width)))
		}
		tw.AppendRow(table.Row{formatFloat(p.MZ), formatFloat(height(p)), strings.Repeat(barRune, n)})
	}
	return render(w, tw, FormatTable)
}
