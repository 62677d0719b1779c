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
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/defelement/campaign"
	"github.com/notargets/defelement/elements"
	"github.com/notargets/defelement/implementations"
	"github.com/notargets/defelement/verification"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "defelement",
	Short: "Cross-implementation verification of finite elements",
	Long: `Verifies that finite element libraries agree with a reference
implementation on every element of the DefElement catalogue, and writes
the outcome to verification.json.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.defelement.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("python", implementations.DefaultConfig().Python, "python interpreter for the subprocess libraries")
	rootCmd.PersistentFlags().String("elements", "", "folder of .def files (default is the built in catalogue)")
	_ = viper.BindPFlags(rootCmd.PersistentFlags())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		// Search config in home directory with name ".defelement" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".defelement")
	}
	viper.SetEnvPrefix("DEFELEMENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	readErr := viper.ReadInConfig()
	initLogger()
	if readErr == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fatal(readErr)
	}
}

func initLogger() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log-level"))); err != nil {
		fmt.Fprintf(os.Stderr, "%v, using info\n", err)
		level = slog.LevelInfo
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h).With("run", uuid.NewString()))
}

// bindFlags lets viper keys shared between commands follow the running one.
func bindFlags(cmd *cobra.Command) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	slog.Error(err.Error())
	os.Exit(1)
}

func implementationConfig() (cfg implementations.Config) {
	cfg = implementations.DefaultConfig()
	cfg.Python = viper.GetString("python")
	cfg.Logger = slog.Default()
	return
}

func loadCatalogue() (*elements.Catalogue, error) {
	if dir := viper.GetString("elements"); dir != "" {
		return elements.Load(dir)
	}
	return elements.LoadEmbedded()
}

// verifyOptions reads the comparison settings shared by verify and check.
func verifyOptions() (opts []verification.Option, err error) {
	var (
		mode verification.ContinuityMode
	)
	if mode, err = verification.ParseContinuityMode(viper.GetString("continuity")); err != nil {
		return
	}
	opts = append(opts, verification.WithContinuity(mode))
	if tol := viper.GetFloat64("rank-tolerance"); tol > 0 {
		opts = append(opts, verification.WithRankTolerance(tol))
	}
	return
}

func addVerifyFlags(cmd *cobra.Command) {
	cmd.Flags().String("reference", campaign.DefaultConfig().Reference, "library the others are compared with")
	cmd.Flags().String("continuity", verification.ContinuityProjection.String(), "continuity check: points or projection")
	cmd.Flags().Float64("rank-tolerance", 0, "absolute floor on the singular value cutoff")
}

func campaignConfig() (cfg campaign.Config, err error) {
	cfg = campaign.DefaultConfig()
	cfg.Reference = viper.GetString("reference")
	cfg.Implementation = implementationConfig()
	cfg.Logger = slog.Default()
	cfg.Verify, err = verifyOptions()
	return
}
