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
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/defelement/campaign"
	"github.com/notargets/defelement/implementations"
	"github.com/notargets/defelement/report"
)

// VerifyCmd represents the verify command
var VerifyCmd = &cobra.Command{
	Use:   "verify [destination]",
	Short: "Verify the catalogue against the reference library",
	Long: `Compares every example of every element with the reference
implementation in each library that implements it, then writes the
pass, fail and not implemented lists to a JSON report.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bindFlags(cmd)
		dest := viper.GetString("verification-json")
		if len(args) > 0 {
			dest = args[0]
		}
		if err := runVerify(dest); err != nil {
			fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(VerifyCmd)
	VerifyCmd.Flags().String("verification-json", "verification.json", "report written when no destination is given")
	VerifyCmd.Flags().String("test", "", "verify fewer elements: auto, or a comma separated list of element filenames")
	VerifyCmd.Flags().IntP("processes", "p", 1, "number of workers to run the verification on")
	VerifyCmd.Flags().String("skip-missing-libraries", "true", "skip verification if a library is not installed")
	VerifyCmd.Flags().String("print-reasons", "false", "show reasons for failed verification")
	VerifyCmd.Flags().String("impl", "", "comma separated libraries to run verification for")
	VerifyCmd.Flags().String("profile", "", "write a cpu or mem profile to the working directory")
	addVerifyFlags(VerifyCmd)
}

func runVerify(dest string) (err error) {
	var (
		cfg     campaign.Config
		results report.Results
	)
	switch p := viper.GetString("profile"); p {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile %q, want cpu or mem", p)
	}
	cat, err := loadCatalogue()
	if err != nil {
		return
	}
	if cfg, err = campaignConfig(); err != nil {
		return
	}
	cfg.Processes = viper.GetInt("processes")
	cfg.SkipMissing = viper.GetString("skip-missing-libraries") == "true"
	cfg.PrintReasons = viper.GetString("print-reasons") == "true"
	opts := campaign.JobOptions{
		Reference: cfg.Reference,
		Libraries: implementations.VerificationIDs(),
		Elements:  campaign.ParseTest(viper.GetString("test")),
		Impl:      campaign.ParseList(viper.GetString("impl")),
	}
	if viper.GetString("test") != "auto" {
		for _, name := range opts.Elements {
			if _, ok := cat.Get(name); !ok {
				return fmt.Errorf("unknown element %q in --test", name)
			}
		}
	}
	for _, lib := range opts.Impl {
		if !slices.Contains(opts.Libraries, lib) {
			return fmt.Errorf("library %q in --impl is not a registered verifying library", lib)
		}
		if lib == cfg.Reference {
			return fmt.Errorf("library %q in --impl is the reference", lib)
		}
	}
	jobs := campaign.BuildJobs(cat, opts)
	slog.Info("starting verification", "jobs", len(jobs), "processes", cfg.Processes, "reference", cfg.Reference)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	start := time.Now()
	if results, err = campaign.Run(ctx, jobs, cfg); err != nil {
		return
	}
	if err = report.Write(dest, results, time.Now()); err != nil {
		return
	}
	slog.Info("wrote report", "path", dest, "elements", len(results), "elapsed", time.Since(start).Round(time.Millisecond))
	return
}
