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
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/defelement/campaign"
	"github.com/notargets/defelement/types"
)

// CheckCmd represents the check command
var CheckCmd = &cobra.Command{
	Use:   "check element example library",
	Short: "Verify one example of one element in one library",
	Long: `Runs a single comparison against the reference and prints the outcome
with its reason, for example:

	defelement check lagrange "triangle,2" basix`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		bindFlags(cmd)
		if err := runCheck(args[0], args[1], args[2]); err != nil {
			fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(CheckCmd)
	CheckCmd.Flags().Bool("hw-counters", false, "report the CPU instructions spent on the comparison")
	addVerifyFlags(CheckCmd)
}

func runCheck(element, example, lib string) (err error) {
	var (
		cfg    campaign.Config
		st     types.Status
		reason string
		instr  uint64
	)
	cat, err := loadCatalogue()
	if err != nil {
		return
	}
	el, ok := cat.Get(element)
	if !ok {
		return fmt.Errorf("unknown element %q", element)
	}
	if cfg, err = campaignConfig(); err != nil {
		return
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	check := func() (err error) {
		st, reason, err = campaign.Check(ctx, el, example, lib, cfg)
		return
	}
	if viper.GetBool("hw-counters") {
		if instr, err = countInstructions(check); err != nil {
			return
		}
	} else if err = check(); err != nil {
		return
	}
	symbol := map[types.Status]string{
		types.Pass:           color.GreenString("✓"),
		types.Fail:           color.RedString("✕"),
		types.NotImplemented: color.BlueString("–"),
	}[st]
	fmt.Printf("%s %s %s %s\n", el.Filename, lib, example, symbol)
	if reason != "" {
		fmt.Printf("  %s\n", reason)
	}
	if viper.GetBool("hw-counters") {
		fmt.Printf("  %d CPU instructions\n", instr)
	}
	return
}
