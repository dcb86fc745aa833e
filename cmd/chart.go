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
	"strings"

	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/growth"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getChartCmd returns the chart command.
func getChartCmd() *cobra.Command {
	var metric string

	chartCmd := &cobra.Command{
		Use:   "chart CHILD_ID",
		Short: "Show growth chart lines of a metric with the child's measurements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChart(args[0], metric)
		},
	}
	chartCmd.Flags().StringVarP(&metric, "metric", "m", "wfa",
		"wfa, hfa, wfh, bfa or muac")
	return chartCmd
}

func runChart(childID, metric string) error {
	m := growth.ParseMetric(metric)
	if m == growth.UnknownMetric {
		err := growth.ValidationError("metric", metric, "wfa, hfa, wfh, bfa or muac")
		gn.PrintErrorMessage(err)
		return err
	}
	return withEngine(func(ctx context.Context, svc gizi.Gizi) error {
		ch, err := svc.GrowthChart(ctx, childID, m)
		if err != nil {
			return err
		}
		return output(ch, func() { printChart(ch) })
	})
}

func printChart(ch gizi.GrowthChart) {
	c := ch.Curve
	unit := "months"
	if c.Metric.IndexedByHeight() {
		unit = "cm"
	}
	gn.Info("<em>%s</em> reference for %s", c.Metric, c.Sex)

	head := make([]string, len(c.SD))
	for i, z := range c.SD {
		head[i] = fmt.Sprintf("%7s", fmt.Sprintf("%+g SD", z))
	}
	fmt.Printf("%8s %s\n", unit, strings.Join(head, " "))
	for _, p := range c.Points {
		vals := make([]string, len(p.Values))
		for i, v := range p.Values {
			vals[i] = fmt.Sprintf("%7.1f", v)
		}
		fmt.Printf("%8g %s\n", p.Index, strings.Join(vals, " "))
	}

	if len(ch.Points) == 0 {
		gn.Info("No measurements yet")
		return
	}
	gn.Info("Measurements")
	for _, p := range ch.Points {
		at := child.AgeLabel(p.Index)
		if c.Metric.IndexedByHeight() {
			at = fmt.Sprintf("%.1f cm", p.Index)
		}
		fmt.Printf("  %s  %s  %.1f (z %+.2f)\n",
			p.Timestamp.Format("2006-01-02"), at, p.Value, p.Z)
	}
}
