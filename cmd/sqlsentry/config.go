package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rudolph001/sqlsentry/internal/sentry/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and manage the risk scoring configuration",
}

var configFlagFile string

func riskStore() *config.Store {
	path := configFlagFile
	if path == "" {
		path = config.Get().Analysis.RiskConfigFile
	}
	return config.NewStore(path)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active risk configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := config.Export(riskStore().Load())
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

var configExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the risk configuration to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := config.Export(riskStore().Load())
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[0], []byte(text+"\n"), 0644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Printf("Exported risk config to %s\n", args[0])
		return nil
	},
}

var configImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import and persist a risk configuration from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}

		store := riskStore()
		_, warnings, err := store.Import(string(data))
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "Advisory: %s\n", w)
		}
		fmt.Printf("Imported risk config into %s\n", store.Path())
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a risk configuration JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open file: %w", err)
		}
		defer f.Close()

		_, warnings, err := config.DecodeRiskConfig(f)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "Advisory: %s\n", w)
		}
		fmt.Println("Risk config is valid")
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the risk configuration to compiled-in defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := riskStore()
		if _, err := store.ResetToDefaults(); err != nil {
			return err
		}
		fmt.Printf("Reset risk config at %s to defaults\n", store.Path())
		return nil
	},
}

func init() {
	configCmd.PersistentFlags().StringVar(&configFlagFile, "file", "", "risk config file (default from config.yaml)")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configExportCmd)
	configCmd.AddCommand(configImportCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configResetCmd)
}
