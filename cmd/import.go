package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tolujimoh/flowdrift/internal/app"
	"github.com/tolujimoh/flowdrift/internal/core/domain"
	"github.com/tolujimoh/flowdrift/internal/export"
)

var (
	importEnvironment string
	importInput       string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import configuration records into an environment as a new snapshot.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := domain.ParseEnvironment(importEnvironment)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(importInput)
		if err != nil {
			return fmt.Errorf("reading %s: %w", importInput, err)
		}

		format := export.FormatJSON
		if strings.EqualFold(filepath.Ext(importInput), ".csv") {
			format = export.FormatCSV
		}

		records, issues, err := export.Import(data, format)
		if err != nil {
			return err
		}
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "integrity: %s\n", issue)
		}
		if len(issues) > 0 {
			return fmt.Errorf("%d integrity issue(s) found; fix the reported records and retry", len(issues))
		}

		// Imported records belong to the target environment regardless of what
		// the file claims.
		for i := range records {
			records[i].Environment = env
		}

		application, err := app.BuildApplicationFromViper(cmd.Context(), viper.GetViper())
		if err != nil {
			reportError(err)
			return err
		}

		result, err := application.Store.PersistRecords(cmd.Context(), env, records)
		if err != nil {
			reportError(err)
			return err
		}
		fmt.Fprintf(os.Stderr, "Imported %d record(s) into %s as %s\n", result.RecordCount, env, result.Filename)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importEnvironment, "environment", "", "Target environment (dev, qa, production)")
	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "Input file (.json or .csv)")
	importCmd.MarkFlagRequired("environment")
	importCmd.MarkFlagRequired("input")
}
