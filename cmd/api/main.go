package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/semesterdesk/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "semesterdesk",
		Short: "SemesterDesk API Server",
		Long:  `SemesterDesk is a personal academic dashboard server: courses, assignments, readings, grades, study tracking, and a chat assistant.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewDigestCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
