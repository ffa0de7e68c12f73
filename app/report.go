package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/orestischaral/water-temp-analysis/domain/run"
	"github.com/orestischaral/water-temp-analysis/domain/spike"
)

// RenderReport builds a markdown summary of one analysis run, suitable
// for writing next to the JSON artifact or serving over HTTP.
func RenderReport(rn *run.Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Water Temperature Analysis Run %s\n\n", rn.ID)
	fmt.Fprintf(&b, "- Started: %s\n", rn.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Finished: %s\n", rn.FinishedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Filter: %s\n", rn.FilterMode)
	fmt.Fprintf(&b, "- Locations: %d\n\n", len(rn.Locations))

	for _, loc := range rn.Locations {
		fmt.Fprintf(&b, "## %s\n\n", loc.Location)
		if loc.Error != "" {
			fmt.Fprintf(&b, "Analysis failed: %s\n\n", loc.Error)
			continue
		}
		fmt.Fprintf(&b, "%d points analyzed.\n\n", loc.Points)

		writeSpikeTable(&b, "Up spikes", loc.UpSpikes)
		writeSpikeTable(&b, "Down spikes", loc.DownSpikes)

		if loc.CrossCorrelation != nil {
			cc := loc.CrossCorrelation
			fmt.Fprintf(&b, "### Ship correlation\n\n")
			fmt.Fprintf(&b, "- Peak correlation: %.3f at lag %.0f h\n", cc.MaxCorrelation, cc.MaxLag)
			fmt.Fprintf(&b, "- Ship presence: %.1f%% of samples\n\n", cc.PresenceFraction*100)
		}

		relations := relationLines(loc)
		if len(relations) > 0 {
			fmt.Fprintf(&b, "### Spikes overlapping ship visits\n\n")
			for _, line := range relations {
				fmt.Fprintf(&b, "- %s\n", line)
			}
			b.WriteString("\n")
		}
	}

	if len(rn.Stratification) > 0 {
		fmt.Fprintf(&b, "## Stratification\n\n")
		for _, st := range rn.Stratification {
			fmt.Fprintf(&b, "### %s vs %s\n\n", st.Loc1Name, st.Loc2Name)
			fmt.Fprintf(&b, "- Common points: %d (skipped %d", st.CommonPoints, st.SkippedCount)
			if st.RoundedMatch {
				b.WriteString(", minute-rounded matching")
			}
			b.WriteString(")\n")
			fmt.Fprintf(&b, "- Mean difference: %.3f °C (min %.3f, max %.3f, std %.3f)\n",
				st.MeanDiff, st.MinDiff, st.MaxDiff, st.StdDiff)
			fmt.Fprintf(&b, "- %s warmer %d times, %s warmer %d times\n\n",
				st.Loc1Name, st.Loc1WarmerCount, st.Loc2Name, st.Loc2WarmerCount)
		}
	}

	return b.String()
}

func writeSpikeTable(b *strings.Builder, title string, spikes []spike.Spike) {
	fmt.Fprintf(b, "### %s (%d)\n\n", title, len(spikes))
	if len(spikes) == 0 {
		b.WriteString("None detected.\n\n")
		return
	}
	b.WriteString("| # | Start | End | Base | Amplitude | Points | Inner |\n")
	b.WriteString("|---|-------|-----|------|-----------|--------|-------|\n")
	for i, s := range spikes {
		fmt.Fprintf(b, "| %d | %s | %s | %.2f | %.2f | %d | %d |\n",
			i+1,
			s.StartTime.Format("2006-01-02 15:04"),
			s.EndTime.Format("2006-01-02 15:04"),
			s.BaseValue,
			s.Amplitude(),
			s.NumPoints,
			s.Inner.Count(),
		)
	}
	b.WriteString("\n")
}

func relationLines(loc run.LocationResult) []string {
	var lines []string
	for _, rel := range append(loc.UpRelations, loc.DownRelations...) {
		if len(rel.Ships) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s spike %d (%s – %s): %s",
			rel.SeriesLabel, rel.SpikeID,
			rel.SpikeStart.Format("2006-01-02 15:04"),
			rel.SpikeEnd.Format("2006-01-02 15:04"),
			strings.Join(rel.Ships, ", ")))
	}
	return lines
}
