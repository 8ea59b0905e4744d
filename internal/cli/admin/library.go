package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/promptuary/promptuary/internal/config"
	"github.com/promptuary/promptuary/internal/database"
	"github.com/promptuary/promptuary/internal/repository"
	"github.com/promptuary/promptuary/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

func LibraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage libraries",
		Long:  "Create and list prompt libraries",
	}

	cmd.AddCommand(LibraryCreateCmd())
	cmd.AddCommand(LibraryListCmd())

	return cmd
}

func LibraryCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new library",
		Long:  "Create a new prompt library with the specified name",
		Args:  cobra.ExactArgs(1),
		RunE:  runLibraryCreate,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runLibraryCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := args[0]
	outputFormat, _ := cmd.Flags().GetString("output")

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	libraryRepo := repository.NewLibraryRepository(pool)
	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(libraryRepo, nil, uuidGen, zap.NewNop())

	library, err := authSvc.CreateLibrary(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to create library: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":         library.ID,
			"name":       library.Name,
			"created_at": library.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Library created: %s (%s)\n", library.Name, library.ID)
	}

	return nil
}

func LibraryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all libraries",
		Long:  "List all prompt libraries in the system",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runLibraryList(outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runLibraryList(outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	libraryRepo := repository.NewLibraryRepository(pool)

	libraries, err := libraryRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list libraries: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(libraries))
		for i, library := range libraries {
			data[i] = map[string]interface{}{
				"id":         library.ID,
				"name":       library.Name,
				"created_at": library.CreatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(libraries) == 0 {
			fmt.Println("No libraries found")
			return nil
		}
		fmt.Println("Libraries:")
		for _, library := range libraries {
			fmt.Printf("  %s: %s (created: %s)\n", library.ID, library.Name, library.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	return nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	return pool, nil
}
