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
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/adriangomezmorales/telegommor"
	"github.com/adriangomezmorales/telegommor/cachedb"
	"github.com/adriangomezmorales/telegommor/render"
)

// Report is the telegommor report commandline subcommand.
func Report() *cobra.Command {
	var output string
	reportCmd := &cobra.Command{
		Use:   "report <cache4.db>",
		Short: "Generate a PDF forensic report from a cache database",
		Args:  requireOneDatabase,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() // nolint:errcheck

			if output == "" {
				output = viper.GetString("output.pdf")
			}

			report, err := buildReport(args[0], logger)
			if err != nil {
				return err
			}

			if err := render.PDF(report, afero.NewOsFs(), output); err != nil {
				return err
			}
			logger.Info("report written",
				zap.String("path", output),
				zap.Int("messages", report.Summary.TotalMessages),
				zap.Int("contacts", report.Summary.TotalContacts),
				zap.Int("decode_failures", report.Summary.DecodeFailures))
			return nil
		},
	}
	reportCmd.Flags().StringVarP(&output, "output", "o", "", "output path for the PDF report")
	return reportCmd
}

func buildReport(path string, logger *zap.Logger) (*telegommor.Report, error) {
	reader, err := cachedb.Open(path, logger)
	if err != nil {
		return nil, err
	}
	defer reader.Close() // nolint:errcheck

	return telegommor.BuildReport(reader)
}
