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
	"time"

	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getChildCmd returns the child command group.
func getChildCmd() *cobra.Command {
	childCmd := &cobra.Command{
		Use:   "child",
		Short: "Register, list and correct children",
	}
	childCmd.AddCommand(getChildAddCmd(), getChildListCmd(), getChildCorrectCmd())
	return childCmd
}

func getChildAddCmd() *cobra.Command {
	var id, name, sex, birth string

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Register a child",
		Long: `Register a child for growth monitoring. Sex accepts female/male
and perempuan/laki-laki. The ID is generated when not given.

Examples:
  gizi child add --name Sari --sex perempuan --birth 2026-01-01
  gizi child add --id sari --name Sari --sex f --birth 2026-01-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChildAdd(id, name, sex, birth)
		},
	}

	addCmd.Flags().StringVar(&id, "id", "", "child ID (generated when empty)")
	addCmd.Flags().StringVarP(&name, "name", "n", "", "child name")
	addCmd.Flags().StringVarP(&sex, "sex", "s", "", "female or male")
	addCmd.Flags().StringVarP(&birth, "birth", "b", "", "birth date YYYY-MM-DD")
	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("sex")
	addCmd.MarkFlagRequired("birth")
	return addCmd
}

func runChildAdd(id, name, sex, birth string) error {
	s, err := child.ParseSex(sex)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	b, err := parseBirth(birth)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	return withEngine(func(ctx context.Context, svc gizi.Gizi) error {
		c, err := svc.AddChild(ctx, child.Child{
			ID: id, Name: name, Sex: s, BirthDate: b,
		})
		if err != nil {
			return err
		}
		return output(c, func() {
			gn.Info("Registered <em>%s</em> with ID <em>%s</em>", c.Name, c.ID)
		})
	})
}

func getChildListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered children",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, svc gizi.Gizi) error {
				cs, err := svc.Children(ctx)
				if err != nil {
					return err
				}
				return output(cs, func() { printChildren(cs) })
			})
		},
	}
}

func printChildren(cs []child.Child) {
	if len(cs) == 0 {
		gn.Info("No children registered yet")
		return
	}
	now := time.Now()
	for _, c := range cs {
		age := "-"
		if m, err := c.AgeInMonths(now); err == nil {
			age = child.AgeLabel(m)
		}
		fmt.Printf("%-38s %-20s %-7s %s  %s\n",
			c.ID, c.Name, c.Sex, c.BirthDate.Format(time.DateOnly), age)
	}
}

func getChildCorrectCmd() *cobra.Command {
	var name, sex, birth string

	correctCmd := &cobra.Command{
		Use:   "correct CHILD_ID",
		Short: "Store a corrected version of a child profile",
		Long: `Correct the name, sex or birth date of a child. The previous version
is kept, statuses of earlier measurements are recalculated with the
corrected profile.

Examples:
  gizi child correct sari --birth 2025-12-20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChildCorrect(args[0], name, sex, birth)
		},
	}

	correctCmd.Flags().StringVarP(&name, "name", "n", "", "corrected name")
	correctCmd.Flags().StringVarP(&sex, "sex", "s", "", "corrected sex")
	correctCmd.Flags().StringVarP(&birth, "birth", "b", "", "corrected birth date YYYY-MM-DD")
	return correctCmd
}

func runChildCorrect(id, name, sex, birth string) error {
	var fix gizi.ChildCorrection
	var err error
	fix.Name = name
	if sex != "" {
		if fix.Sex, err = child.ParseSex(sex); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}
	if birth != "" {
		if fix.BirthDate, err = parseBirth(birth); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}

	return withEngine(func(ctx context.Context, svc gizi.Gizi) error {
		c, err := svc.CorrectChild(ctx, id, fix)
		if err != nil {
			return err
		}
		return output(c, func() {
			gn.Info("Stored version <em>%d</em> of <em>%s</em>", c.Version, c.Name)
		})
	})
}

func parseBirth(s string) (time.Time, error) {
	res, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, child.ValidationError("birth_date", s, "a date YYYY-MM-DD")
	}
	return res, nil
}
