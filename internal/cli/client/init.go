package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func InitCmd() *cobra.Command {
	var apiKey string
	var serverURL string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Configure the promptuary CLI",
		Long:  "Validates the API key against the server and stores credentials in the global config.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runInit(apiKey, serverURL, outputJSON)
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (pk_...)")
	cmd.Flags().StringVar(&serverURL, "server-url", "", "Server base URL (default: http://localhost:8080)")

	return cmd
}

func runInit(apiKey, serverURL string, outputJSON bool) error {
	_ = godotenv.Load()
	if apiKey == "" {
		apiKey = os.Getenv(envAPIKey)
	}
	if apiKey == "" {
		fmt.Print("Enter API key: ")
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		apiKey = strings.TrimSpace(input)
		if apiKey == "" {
			return fmt.Errorf("API key is required")
		}
	}

	if !IsValidAPIKey(apiKey) {
		return fmt.Errorf("invalid API key format (expected: pk_ + 64 hex characters)")
	}

	if serverURL == "" {
		serverURL = os.Getenv(envAPIURL)
	}
	if serverURL == "" {
		serverURL = defaultAPIURL
	}

	api, err := NewAPIClientWithConfig(apiKey, serverURL)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	resp, err := api.Get("/auth/validate")
	if err != nil {
		return fmt.Errorf("failed to validate API key: %w", err)
	}

	var validated struct {
		LibraryID   string `json:"library_id"`
		LibraryName string `json:"library_name"`
		KeyName     string `json:"key_name"`
	}
	if err := json.Unmarshal(resp.Data, &validated); err != nil {
		return fmt.Errorf("failed to parse validation response: %w", err)
	}

	if err := SaveGlobalConfig(&GlobalConfig{APIKey: apiKey, ServerURL: serverURL}); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	configPath, _ := GetConfigPath()

	if outputJSON {
		result := map[string]interface{}{
			"success":      true,
			"library_id":   validated.LibraryID,
			"library_name": validated.LibraryName,
			"key_name":     validated.KeyName,
			"config":       configPath,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("Connected to library '%s' as key '%s'\n", validated.LibraryName, validated.KeyName)
		fmt.Printf("Config saved to %s\n", configPath)
	}

	return nil
}
