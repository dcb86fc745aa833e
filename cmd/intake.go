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
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gizisehat/gizi/internal/iofs"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/nutrient"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getIntakeCmd returns the intake command group.
func getIntakeCmd() *cobra.Command {
	intakeCmd := &cobra.Command{
		Use:   "intake",
		Short: "Log food intake and track daily nutrients",
	}
	intakeCmd.AddCommand(
		getIntakeLogCmd(),
		getIntakePhotoCmd(),
		getIntakeProgressCmd(),
		getIntakeRecommendCmd(),
		getIntakePlanCmd(),
	)
	return intakeCmd
}

func getIntakeLogCmd() *cobra.Command {
	var e nutrient.IntakeEntry
	var energy, protein, iron, zinc float64

	logCmd := &cobra.Command{
		Use:   "log CHILD_ID",
		Short: "Log a catalog food or an ad-hoc food",
		Long: `Log food eaten by a child. A catalog food is given by --food (ID or
name) with an optional --portion. Food that is not in the catalog is
described with --desc and its nutrients per portion.

Examples:
  gizi intake log sari --food telur-rebus
  gizi intake log sari --food "Tempe Kukus" --portion 0.5 --date 2026-10-18
  gizi intake log sari --desc ASI --energy 100 --protein 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.FoodID == "" {
				a := nutrient.NewAmounts(energy, protein, iron, zinc)
				e.AdHoc = &a
			}
			e.Date = day(e.Date)
			return runIntakeLog(args[0], e)
		},
	}

	fs := logCmd.Flags()
	fs.StringVarP(&e.FoodID, "food", "f", "", "catalog food ID or name")
	fs.Float64VarP(&e.Portion, "portion", "p", 1, "number of portions")
	fs.StringVarP(&e.Date, "date", "d", "", "day YYYY-MM-DD, today when empty")
	fs.StringVar(&e.Description, "desc", "", "description of an ad-hoc food")
	fs.Float64Var(&energy, "energy", 0, "ad-hoc energy, kcal")
	fs.Float64Var(&protein, "protein", 0, "ad-hoc protein, g")
	fs.Float64Var(&iron, "iron", 0, "ad-hoc iron, mg")
	fs.Float64Var(&zinc, "zinc", 0, "ad-hoc zinc, mg")
	return logCmd
}

func runIntakeLog(childID string, e nutrient.IntakeEntry) error {
	return withEngine(func(ctx context.Context, svc gizi.Gizi) error {
		res, err := svc.LogIntake(ctx, childID, e)
		if err != nil {
			return err
		}
		return output(res, func() {
			gn.Info("Logged intake for <em>%s</em>", res.Date)
		})
	})
}

func getIntakePhotoCmd() *cobra.Command {
	var date, hint string

	photoCmd := &cobra.Command{
		Use:   "photo CHILD_ID IMAGE_FILE",
		Short: "Log food recognised on a photo",
		Long: `Send a food photo to the configured analysis gateway (photo.url)
and log the recognised food. Nothing is logged when the analysis fails.

Examples:
  gizi intake photo sari lunch.jpg --hint "bubur ayam"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntakePhoto(args[0], args[1], day(date), hint)
		},
	}
	photoCmd.Flags().StringVarP(&date, "date", "d", "", "day YYYY-MM-DD, today when empty")
	photoCmd.Flags().StringVar(&hint, "hint", "", "what is on the photo, optional")
	return photoCmd
}

func runIntakePhoto(childID, path, date, hint string) error {
	b, err := iofs.ReadFile(path)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	p := gizi.Photo{
		Data:     b,
		MIMEType: http.DetectContentType(b),
		Hint:     hint,
	}

	return withEngine(func(ctx context.Context, svc gizi.Gizi) error {
		res, err := svc.LogPhoto(ctx, childID, date, p)
		if err != nil {
			return err
		}
		return output(res, func() {
			name := res.Description
			if res.FoodID != "" {
				name = res.FoodID
			}
			gn.Info("Recognised <em>%s</em>, logged for %s", name, res.Date)
		})
	})
}

func getIntakeProgressCmd() *cobra.Command {
	var date string

	progressCmd := &cobra.Command{
		Use:   "progress CHILD_ID",
		Short: "Show nutrient intake of a day against the age target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, svc gizi.Gizi) error {
				p, err := svc.DailyProgress(ctx, args[0], day(date))
				if err != nil {
					return err
				}
				return output(p, func() { printProgress(p) })
			})
		},
	}
	progressCmd.Flags().StringVarP(&date, "date", "d", "", "day YYYY-MM-DD, today when empty")
	return progressCmd
}

func printProgress(p nutrient.Progress) {
	gn.Info("Intake on <em>%s</em>, %d entries", p.Date, p.Entries)
	for _, it := range p.Items {
		fmt.Printf("  %s\n", it)
	}
	if s := p.Shortfall(); s != "" {
		fmt.Println(s)
	}
}

func getIntakeRecommendCmd() *cobra.Command {
	var date string

	recommendCmd := &cobra.Command{
		Use:   "recommend CHILD_ID",
		Short: "Suggest foods that close the nutrient gap of a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, svc gizi.Gizi) error {
				recs, err := svc.Recommendations(ctx, args[0], day(date))
				if err != nil {
					return err
				}
				if recs == nil {
					recs = []nutrient.Recommendation{}
				}
				return output(recs, func() { printRecommendations(recs) })
			})
		},
	}
	recommendCmd.Flags().StringVarP(&date, "date", "d", "", "day YYYY-MM-DD, today when empty")
	return recommendCmd
}

func printRecommendations(recs []nutrient.Recommendation) {
	if len(recs) == 0 {
		gn.Info("Targets of the day are reached")
		return
	}
	for i, r := range recs {
		covers := make([]string, len(r.Covers))
		for j, n := range r.Covers {
			covers[j] = n.Label()
		}
		fmt.Printf("%d. %s (%s, Rp %s): %s\n", i+1, r.Food.Name, r.Food.Portion,
			humanize.Comma(int64(r.Food.Cost)), strings.Join(covers, ", "))
	}
}

func getIntakePlanCmd() *cobra.Command {
	var date string

	planCmd := &cobra.Command{
		Use:   "plan CHILD_ID",
		Short: "Show the daily feeding schedule for the child's age",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, svc gizi.Gizi) error {
				p, err := svc.MealPlan(ctx, args[0], day(date))
				if err != nil {
					return err
				}
				return output(p, func() { printMealPlan(p) })
			})
		},
	}
	planCmd.Flags().StringVarP(&date, "date", "d", "", "day YYYY-MM-DD, today when empty")
	return planCmd
}

func printMealPlan(p nutrient.DayPlan) {
	gn.Info("Meal plan on <em>%s</em> for age %s", p.Date, p.Band)
	for _, m := range p.Meals {
		if m.Description == "" {
			fmt.Printf("  %s  %s\n", m.Time, m.Name)
			continue
		}
		fmt.Printf("  %s  %s: %s\n", m.Time, m.Name, m.Description)
	}
}
