package cmd

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pixsort/internal/app"
	"pixsort/internal/config"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "pixsort",
	Short: "Sort images into folders with an AI vision model",
	Long: `pixsort moves images from an intake folder into category subfolders by
asking a remote vision model which folder each image belongs to, creating
folders on demand when the model asks for one.`,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is given, print help.
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		if verbose {
			log.SetLevel(log.DebugLevel)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		appInstance, err := app.NewApp(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		// Store the app instance in the command's context
		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appInstance, err := GetAppFromContext(cmd.Context()); err == nil {
			appInstance.Close()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Define a custom type for the context key to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// GetAppFromContext retrieves the app instance stored by PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, credentials, and folder access",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}

		fmt.Printf("Provider: %s, model: %s\n",
			appInstance.Config.Classifier.Provider, appInstance.Config.Classifier.Model)

		fmt.Println("Checking output root...")
		folders, err := appInstance.Library.Folders()
		if err != nil {
			return fmt.Errorf("output root check failed: %w", err)
		}
		fmt.Printf("Output root %s holds %d category folder(s).\n",
			appInstance.Library.Root(), len(folders))

		fmt.Println("Checking history database...")
		if err := appInstance.History.Ping(ctx); err != nil {
			return fmt.Errorf("history database ping failed: %w", err)
		}
		fmt.Println("History database connection successful.")
		return nil
	},
}
