package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptuary/promptuary/internal/cli"
	"github.com/promptuary/promptuary/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "promptuary",
		Short: "Promptuary CLI - prompt library client",
		Long: `Promptuary CLI provides commands to manage a shared prompt library.

Environment variables:
  PROMPTUARY_API_KEY      API key for authentication (required)
  PROMPTUARY_SERVER_URL   Server base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("server-url", "", "Server base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.AddCmd())
	rootCmd.AddCommand(client.GetCmd())
	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.UseCmd())
	rootCmd.AddCommand(client.FavoriteCmd())
	rootCmd.AddCommand(client.DeleteCmd())
	rootCmd.AddCommand(client.EditCmd())
	rootCmd.AddCommand(client.PullCmd())
	rootCmd.AddCommand(client.ThemeCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
