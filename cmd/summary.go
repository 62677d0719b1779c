/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/defelement/report"
)

// SummaryCmd represents the summary command
var SummaryCmd = &cobra.Command{
	Use:   "summary [report]",
	Short: "Print per library totals from a verification report",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bindFlags(cmd)
		path := viper.GetString("verification-json")
		if len(args) > 0 {
			path = args[0]
		}
		if err := runSummary(path); err != nil {
			fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(SummaryCmd)
	SummaryCmd.Flags().String("verification-json", "verification.json", "report read when none is given")
}

func runSummary(path string) (err error) {
	var (
		r *report.Report
	)
	if r, err = report.Read(path); err != nil {
		return
	}
	levels := map[report.Level]func(format string, a ...interface{}) string{
		report.LevelLow:    color.RedString,
		report.LevelMedium: color.YellowString,
		report.LevelHigh:   color.GreenString,
	}
	fmt.Printf("Verification of %s\n", r.Metadata.Date)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "library\telements\tverified\tnot implemented")
	for _, s := range report.Summarize(r) {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\n", s.Library, s.Elements, levels[s.Level()]("%s", s.Proportion()), s.NotImplemented)
	}
	return tw.Flush()
}
