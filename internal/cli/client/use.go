package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// UseCmd creates the use command.
func UseCmd() *cobra.Command {
	var contentOnly bool

	cmd := &cobra.Command{
		Use:   "use <prompt_id>",
		Short: "Use a prompt",
		Long:  "Prints the prompt content and records the usage on the server.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUse(args[0], contentOnly, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&contentOnly, "content-only", false, "Print only the prompt content (for piping)")

	return cmd
}

func runUse(promptID string, contentOnly, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post(fmt.Sprintf("/prompts/%s/use", promptID), nil)
	if err != nil {
		return fmt.Errorf("failed to use prompt: %w", err)
	}

	var prompt Prompt
	if err := json.Unmarshal(resp.Data, &prompt); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if contentOnly {
		fmt.Println(prompt.Content)
		return nil
	}

	if outputJSON {
		output, _ := json.MarshalIndent(prompt, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("%s (usage count: %d)\n\n", prompt.Title, prompt.UsageCount)
		fmt.Println(prompt.Content)
	}

	return nil
}
