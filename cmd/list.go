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
	"strings"

	"github.com/spf13/cobra"

	"github.com/notargets/defelement/implementations"
)

// ListCmd represents the list command
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalogue elements, their examples and libraries",
	Run: func(cmd *cobra.Command, args []string) {
		bindFlags(cmd)
		libsOnly, _ := cmd.Flags().GetBool("libraries")
		if libsOnly {
			fmt.Printf("verifying: %s\n", strings.Join(implementations.VerificationIDs(), ", "))
			fmt.Printf("registered: %s\n", strings.Join(implementations.IDs(), ", "))
			return
		}
		cat, err := loadCatalogue()
		if err != nil {
			fatal(err)
		}
		for _, el := range cat.Elements {
			el.Print(os.Stdout)
		}
	},
}

func init() {
	rootCmd.AddCommand(ListCmd)
	ListCmd.Flags().BoolP("libraries", "l", false, "list the registered libraries instead")
}
