package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tolujimoh/flowdrift/internal/app"
	"github.com/tolujimoh/flowdrift/internal/core/domain"
)

var (
	diffSource     string
	diffTarget     string
	diffKeyPattern string
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare the latest configuration snapshots of two environments.",
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := domain.ParseEnvironment(diffSource)
		if err != nil {
			return err
		}
		target, err := domain.ParseEnvironment(diffTarget)
		if err != nil {
			return err
		}

		application, err := app.BuildApplicationFromViper(cmd.Context(), viper.GetViper())
		if err != nil {
			reportError(err)
			return err
		}

		if _, err := application.RunDiff(cmd.Context(), source, target, diffKeyPattern); err != nil {
			reportError(err)
			return err
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().StringVar(&diffSource, "source", "", "Source environment (dev, qa, production)")
	diffCmd.Flags().StringVar(&diffTarget, "target", "", "Target environment (dev, qa, production)")
	diffCmd.Flags().StringVar(&diffKeyPattern, "key-pattern", "", "Only compare parameter keys matching this glob")
	diffCmd.MarkFlagRequired("source")
	diffCmd.MarkFlagRequired("target")
}
