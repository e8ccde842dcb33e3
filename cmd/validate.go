// Copyright (c) 2025 Adrián Gómez Morales
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
//
// Author(s): Adrián Gómez Morales

package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/adriangomezmorales/telegommor"
)

// Validate is the telegommor validate commandline subcommand. It checks an
// exported JSON report against the report schema.
func Validate() *cobra.Command {
	var noFail bool
	validateCmd := &cobra.Command{
		Use:   "validate <report.json>",
		Short: "Validate an exported JSON report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			document, err := afero.ReadFile(afero.NewOsFs(), args[0])
			if err != nil {
				return errors.Wrap(err, "could not read report")
			}

			flaws, err := telegommor.ValidateReportJSON(document)
			if err != nil {
				return err
			}

			if len(flaws) > 0 {
				for _, flaw := range flaws {
					fmt.Println(flaw)
				}
				if noFail {
					return nil
				}
				return errors.Errorf("report has %d flaws", len(flaws))
			}

			fmt.Printf("valid report %s: %s messages, %s contacts, %s decode failures\n",
				gjson.GetBytes(document, "id").String(),
				gjson.GetBytes(document, "summary_counts.total_messages").Raw,
				gjson.GetBytes(document, "summary_counts.total_contacts").Raw,
				gjson.GetBytes(document, "summary_counts.decode_failures").Raw)
			return nil
		},
	}
	validateCmd.Flags().BoolVar(&noFail, "no-fail", false, "return exit code 0 even for flawed reports")
	return validateCmd
}
