package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptuary/promptuary/internal/cli"
	"github.com/promptuary/promptuary/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "promptuaryd",
		Short: "Promptuary daemon and admin CLI",
		Long:  "Promptuary daemon for running the API server and managing libraries and API keys",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.LibraryCmd())
	rootCmd.AddCommand(admin.APIKeyCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
