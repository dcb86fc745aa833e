/*
Copyright © 2026 The GiziSehat Authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/facility"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/history"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// assessment is the JSON output of the assess command.
type assessment struct {
	Entry      history.Entry       `json:"entry"`
	Label      string              `json:"label"`
	Advice     string              `json:"advice"`
	Facilities []facility.Facility `json:"facilities,omitempty"`
}

// getAssessCmd returns the assess command.
func getAssessCmd() *cobra.Command {
	var m history.Measurement
	var muac float64
	var at, supersedes string

	assessCmd := &cobra.Command{
		Use:   "assess CHILD_ID",
		Short: "Assess and record a growth measurement",
		Long: `Compute z-scores of weight and height (and MUAC when given),
classify the nutritional status and store the measurement.

A measurement that corrects an earlier one names it with --supersedes.

Examples:
  gizi assess sari --weight 8 --height 70
  gizi assess sari -w 8.1 -l 70.5 --muac 13.2 --at 2026-09-15T09:00:00Z`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("muac") {
				m.MUACCm = &muac
			}
			m.Supersedes = supersedes
			if at != "" {
				ts, err := time.Parse(time.RFC3339, at)
				if err != nil {
					err = child.ValidationError("timestamp", at, "an RFC 3339 time")
					gn.PrintErrorMessage(err)
					return err
				}
				m.Timestamp = ts
			}
			return runAssess(args[0], m)
		},
	}

	fs := assessCmd.Flags()
	fs.Float64VarP(&m.WeightKg, "weight", "w", 0, "weight in kg")
	fs.Float64VarP(&m.HeightCm, "height", "l", 0, "length or height in cm")
	fs.Float64Var(&muac, "muac", 0, "mid-upper arm circumference in cm")
	fs.StringVar(&at, "at", "", "measurement time (RFC 3339), now when empty")
	fs.StringVar(&m.Note, "note", "", "free text note")
	fs.StringVar(&supersedes, "supersedes", "", "ID of the measurement this one corrects")
	assessCmd.MarkFlagRequired("weight")
	assessCmd.MarkFlagRequired("height")
	return assessCmd
}

func runAssess(childID string, m history.Measurement) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return withEngine(func(ctx context.Context, svc gizi.Gizi) error {
		e, err := svc.SubmitMeasurement(ctx, childID, m)
		if err != nil {
			return err
		}
		res := assessment{
			Entry:  e,
			Label:  e.Status.Verdict.Label(),
			Advice: e.Status.Verdict.Advice(),
		}
		if e.Status.RequiresReferral {
			res.Facilities = svc.Facilities("", 3)
		}
		return output(res, func() { printAssessment(res) })
	})
}

func printAssessment(a assessment) {
	e := a.Entry
	gn.Info("Status: <em>%s</em> (%s)", a.Label, child.AgeLabel(e.AgeMonths))
	for _, f := range e.Status.Findings {
		fmt.Printf("  %-5s z=%6.2f  %s\n", f.Metric.Abbr(), f.Z, f.Label)
	}
	if e.Status.RequiresRecheck {
		gn.Warn("Measurement looks implausible, please measure again")
	}
	if e.Trend.Decelerating {
		gn.Warn("Weight gain is slow for two measurements in a row")
	} else if e.Trend.SlowGain {
		gn.Warn("Weight gain since the last measurement is slow")
	}
	if a.Advice != "" {
		fmt.Println(a.Advice)
	}
	if len(a.Facilities) > 0 {
		gn.Info("Nearest health services:")
		printFacilities(a.Facilities)
	}
}

// getHistoryCmd returns the history command.
func getHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history CHILD_ID",
		Short: "Show measurements of a child with statuses and trends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, svc gizi.Gizi) error {
				seq, err := svc.History(ctx, args[0])
				if err != nil {
					return err
				}
				es := slices.Collect(seq)
				if es == nil {
					es = []history.Entry{}
				}
				return output(es, func() { printHistory(es) })
			})
		},
	}
}

func printHistory(es []history.Entry) {
	if len(es) == 0 {
		gn.Info("No measurements yet")
		return
	}
	for _, e := range es {
		mark := ""
		switch {
		case e.Superseded:
			mark = " (corrected)"
		case e.Trend.SlowGain:
			mark = " (slow gain)"
		}
		fmt.Printf("%s  %5.1f kg  %5.1f cm  %-18s%s\n",
			e.Timestamp.Format(time.DateOnly), e.WeightKg, e.HeightCm,
			e.Status.Verdict.Label(), mark)
	}
}

// getFacilitiesCmd returns the facilities command.
func getFacilitiesCmd() *cobra.Command {
	var service string
	var limit int

	facCmd := &cobra.Command{
		Use:   "facilities",
		Short: "List nearby health services",
		Long: `List the nearest Puskesmas, Posyandu and hospitals, optionally
only those offering a service.

Examples:
  gizi facilities
  gizi facilities --service gizi -n 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(_ context.Context, svc gizi.Gizi) error {
				fs := svc.Facilities(service, limit)
				return output(fs, func() { printFacilities(fs) })
			})
		},
	}
	facCmd.Flags().StringVar(&service, "service", "", "required service")
	facCmd.Flags().IntVarP(&limit, "limit", "n", 5, "number of facilities")
	return facCmd
}

func printFacilities(fs []facility.Facility) {
	for _, f := range fs {
		fmt.Printf("  %s %s (%s, %.1f km) %s\n",
			f.Type.Icon(), f.Name, f.Type, f.DistanceKm, f.Phone)
		if f.NextSchedule != "" {
			fmt.Printf("     %s\n", f.NextSchedule)
		}
	}
}
