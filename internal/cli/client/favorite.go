package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// FavoriteCmd creates the favorite command.
func FavoriteCmd() *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "favorite <prompt_id>",
		Short: "Mark a prompt as favorite",
		Long:  "Marks a prompt as favorite. Use --remove to clear the flag.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runFavorite(args[0], !remove, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the favorite flag")

	return cmd
}

func runFavorite(promptID string, favorite, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post(fmt.Sprintf("/prompts/%s/favorite", promptID), map[string]bool{"favorite": favorite})
	if err != nil {
		return fmt.Errorf("failed to update favorite: %w", err)
	}

	var prompt Prompt
	if err := json.Unmarshal(resp.Data, &prompt); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(prompt, "", "  ")
		fmt.Println(string(output))
	} else if prompt.IsFavorite {
		fmt.Printf("Marked as favorite: %s\n", prompt.Title)
	} else {
		fmt.Printf("Removed favorite: %s\n", prompt.Title)
	}

	return nil
}
