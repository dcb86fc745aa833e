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
	"maps"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gizisehat/gizi/internal/iooptimize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnlib"
	"github.com/spf13/cobra"
)

// getOptimizeCmd returns the optimize command.
func getOptimizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Clean orphaned records and refresh storage statistics",
		Long: `Remove measurements, intake logs and sessions that point to a
missing child, and messages of missing sessions. Then run VACUUM and
ANALYZE so the database stays compact and queries stay fast.

Examples:
  gizi optimize`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize()
		},
	}
}

func runOptimize() error {
	ctx := context.Background()
	opt, err := iooptimize.Open(ctx, cfg)
	if err != nil {
		gnlib.PrintUserMessage(err)
		return err
	}
	defer opt.Close()

	gn.Info("Optimization in progress, <em>it might take a while</em>...")
	res, err := opt.Optimize(ctx)
	if err != nil {
		gnlib.PrintUserMessage(err)
		return err
	}

	return output(res, func() {
		if len(res.Removed) == 0 {
			gn.Info("<em>No orphaned records found</em>")
		}
		for _, table := range slices.Sorted(maps.Keys(res.Removed)) {
			gn.Warn("Removed %s orphaned records from %s",
				humanize.Comma(res.Removed[table]), table)
		}
		var sizes []string
		for _, table := range slices.Sorted(maps.Keys(res.Rows)) {
			sizes = append(sizes, table+": "+humanize.Comma(res.Rows[table]))
		}
		gn.Info("Rows: %s", strings.Join(sizes, ", "))
		gn.Info("Elapsed time: %s", gnfmt.TimeString(res.Duration.Seconds()))
	})
}
