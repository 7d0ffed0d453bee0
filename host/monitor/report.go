package monitor

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// maxListed bounds how many individual violations Print lists
const maxListed = 20

// Print writes a human-readable summary to w
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Reports:      %d\n", s.Reports)
	fmt.Fprintf(w, "Lost frames:  %d (CRC errors %d)\n", s.SeqGaps, s.CRCErrors)
	if s.ExpectedMs > 0 {
		fmt.Fprintf(w, "Spacing:      %.2fms +/- %.2fms (requested %.0fms)\n", s.MeanMs, s.StdDevMs, s.ExpectedMs)
	}

	if s.Passed() {
		color.New(color.FgGreen).Fprintf(w, "PASS\n")
		return
	}

	for _, k := range s.Kinds() {
		fmt.Fprintf(w, "  %-16s %d\n", k, s.ByKind[k])
	}
	for i, v := range s.Violations {
		if i == maxListed {
			fmt.Fprintf(w, "  ... %d more\n", len(s.Violations)-maxListed)
			break
		}
		fmt.Fprintf(w, "  [%s] seq=%d %s\n", v.Kind, v.Seq, v.Detail)
	}
	color.New(color.FgRed).Fprintf(w, "FAIL (%d violations)\n", len(s.Violations))
}
