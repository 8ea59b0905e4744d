package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Theme represents a theme as returned by the API.
type Theme struct {
	ID        string                       `json:"id"`
	Name      string                       `json:"name"`
	BaseColor string                       `json:"base_color"`
	BuiltIn   bool                         `json:"built_in"`
	Palettes  map[string]map[string]string `json:"palettes"`
	CreatedAt string                       `json:"created_at"`
}

// ThemeCmd creates the theme parent command.
func ThemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Manage UI themes",
		Long:  "Generate color themes from a base color and export them as CSS variables.",
	}

	cmd.AddCommand(ThemeGenerateCmd())
	cmd.AddCommand(ThemeListCmd())
	cmd.AddCommand(ThemeCSSCmd())

	return cmd
}

// ThemeGenerateCmd creates the theme generate command.
func ThemeGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <name> <base_color>",
		Short: "Generate a theme from a base color",
		Long:  "Generates a full shade palette from a base hex color, e.g. promptuary theme generate ocean '#1e40af'.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runThemeGenerate(args[0], args[1], outputJSON)
		},
	}

	return cmd
}

func runThemeGenerate(name, baseColor string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post("/themes", map[string]string{
		"name":       name,
		"base_color": baseColor,
	})
	if err != nil {
		return fmt.Errorf("failed to generate theme: %w", err)
	}

	var theme Theme
	if err := json.Unmarshal(resp.Data, &theme); err != nil {
		return fmt.Errorf("failed to parse theme: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(theme, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Generated theme '%s' from %s\n", theme.Name, theme.BaseColor)
		fmt.Printf("ID: %s\n", theme.ID)
		fmt.Printf("Palettes: %d\n", len(theme.Palettes))
	}

	return nil
}

// ThemeListCmd creates the theme list command.
func ThemeListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runThemeList(outputJSON)
		},
	}

	return cmd
}

func runThemeList(outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/themes")
	if err != nil {
		return fmt.Errorf("failed to list themes: %w", err)
	}

	var themes []Theme
	if err := json.Unmarshal(resp.Data, &themes); err != nil {
		return fmt.Errorf("failed to parse themes: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(themes, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(themes) == 0 {
		fmt.Println("No themes found.")
		return nil
	}

	fmt.Println("Themes:")
	for _, theme := range themes {
		kind := "custom"
		if theme.BuiltIn {
			kind = "built-in"
		}
		fmt.Printf("  %s: %s (%s, base %s)\n", theme.ID, theme.Name, kind, theme.BaseColor)
	}

	return nil
}

// ThemeCSSCmd creates the theme css command.
func ThemeCSSCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "css <theme_id>",
		Short: "Export a theme as CSS variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runThemeCSS(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "out", "O", "", "Output file (default: stdout)")

	return cmd
}

func runThemeCSS(themeID, outputPath string) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	css, err := api.GetRaw(fmt.Sprintf("/themes/%s/css", themeID))
	if err != nil {
		return fmt.Errorf("failed to fetch theme CSS: %w", err)
	}

	if outputPath == "" {
		fmt.Print(string(css))
		return nil
	}

	if err := os.WriteFile(outputPath, css, 0644); err != nil {
		return fmt.Errorf("failed to write CSS file: %w", err)
	}
	fmt.Printf("Wrote theme CSS to %s\n", outputPath)

	return nil
}
