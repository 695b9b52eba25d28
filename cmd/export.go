package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tolujimoh/flowdrift/internal/app"
	"github.com/tolujimoh/flowdrift/internal/core/domain"
	"github.com/tolujimoh/flowdrift/internal/export"
)

var (
	exportEnvironment string
	exportFormat      string
	exportOutput      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an environment's latest configuration snapshot for external tooling.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := domain.ParseEnvironment(exportEnvironment)
		if err != nil {
			return err
		}
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		application, err := app.BuildApplicationFromViper(cmd.Context(), viper.GetViper())
		if err != nil {
			reportError(err)
			return err
		}

		records, err := application.Store.FetchEnvironmentRecords(cmd.Context(), env)
		if err != nil {
			reportError(err)
			return err
		}

		data, err := export.Marshal(records, format)
		if err != nil {
			return err
		}

		if exportOutput == "" || exportOutput == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(exportOutput, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", exportOutput, err)
		}
		fmt.Fprintf(os.Stderr, "Exported %d record(s) to %s\n", len(records), exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportEnvironment, "environment", "", "Environment to export (dev, qa, production)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format (csv, json, properties, env, yaml)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	exportCmd.MarkFlagRequired("environment")
}
