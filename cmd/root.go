// Package cmd provides the CLI commands for the praxis application.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "praxis",
	Short: "Praxis - an active-inference decision loop",
	Long:  `Praxis runs a single-timestep active-inference agent in a partially observed Markov environment.`,
}

func Execute() error {
	return rootCmd.Execute()
}
