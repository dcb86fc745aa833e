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

	"github.com/dustin/go-humanize"
	"github.com/gizisehat/gizi/internal/ioimport"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
)

// getImportCmd returns the import command.
func getImportCmd() *cobra.Command {
	var jobs int

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import children, measurements and intake from YAML",
		Long: `Import records kept elsewhere, for example a Posyandu register.
The YAML file lists children with their measurements and intake logs.

Import can be repeated: known children are reused, measurements not
newer than the last stored one and days that already have intake are
skipped. Invalid records are reported and skipped.

Examples:
  gizi import posyandu.yaml
  gizi import posyandu.yaml --jobs 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("jobs") {
				jobs = cfg.JobsNumber
			}
			return runImport(args[0], jobs)
		},
	}
	importCmd.Flags().IntVarP(&jobs, "jobs", "J", 0,
		"children imported at once (default jobs_number)")
	return importCmd
}

func runImport(path string, jobs int) error {
	return withEngine(func(ctx context.Context, svc gizi.Gizi) error {
		im := ioimport.New(svc,
			ioimport.OptJobs(jobs),
			ioimport.OptProgress(!jsonOutput),
		)
		res, err := im.Import(ctx, path)
		if err != nil {
			return err
		}
		return output(res, func() {
			gn.Info("Imported <em>%s</em> measurements and <em>%s</em> intake entries"+
				" for %d children (%d new)",
				humanize.Comma(int64(res.Measurements)),
				humanize.Comma(int64(res.Intake)),
				res.Children, res.ChildrenAdded)
			if res.Skipped > 0 {
				gn.Info("Skipped %s records imported before",
					humanize.Comma(int64(res.Skipped)))
			}
			if res.Rejected > 0 {
				gn.Warn("Rejected %s invalid records, see the log for details",
					humanize.Comma(int64(res.Rejected)))
			}
			gn.Info("Elapsed time: %s", gnfmt.TimeString(res.Duration.Seconds()))
		})
	})
}
