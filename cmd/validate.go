package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tolujimoh/flowdrift/internal/app"
	"github.com/tolujimoh/flowdrift/internal/core/domain"
)

var (
	validateArtifacts   []string
	validateEnvironment string
	checkConnection     bool
	showLatency         bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run design-guideline compliance validation for a batch of artifacts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.BuildApplicationFromViper(cmd.Context(), viper.GetViper())
		if err != nil {
			reportError(err)
			return err
		}

		if checkConnection {
			env := domain.EnvDev
			if validateEnvironment != "" {
				env, err = domain.ParseEnvironment(validateEnvironment)
				if err != nil {
					return err
				}
			}
			if err := application.CheckConnections(cmd.Context(), env); err != nil {
				reportError(err)
				return err
			}
			fmt.Fprintln(os.Stderr, "Connection check passed.")
			if len(validateArtifacts) == 0 {
				return nil
			}
		}

		refs, err := app.ParseArtifactRefs(validateArtifacts)
		if err != nil {
			return err
		}

		report, runErr := application.RunValidation(cmd.Context(), refs)
		if showLatency {
			if summary := application.LatencySummary(); summary != "" {
				fmt.Fprint(os.Stderr, summary)
			}
		}
		if runErr != nil {
			reportError(runErr)
			return runErr
		}
		if report != nil && len(report.NonCompliantArtifacts) > 0 {
			// Non-compliance is a reportable outcome, not a command failure.
			fmt.Fprintf(os.Stderr, "%d artifact(s) below threshold\n", len(report.NonCompliantArtifacts))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringSliceVar(&validateArtifacts, "artifacts", nil, "Artifact references to validate (id or id:version)")
	validateCmd.Flags().StringVar(&validateEnvironment, "environment", "", "Environment used for the connection probe")
	validateCmd.Flags().BoolVar(&checkConnection, "check-connection", false, "Probe store and compliance service reachability first")
	validateCmd.Flags().BoolVar(&showLatency, "show-latency", false, "Print recorded operation latency stats")
}
