package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/anthropics/cx/internal/store"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .cx directory and database",
	Long: `Initialize the .cx directory and Dolt-backed database in the current directory.

This creates the necessary structure for cx to record syntax-tree build
history: source paths, hashes, node/token counts, and any build errors.

Examples:
  cx init          # Initialize in current directory
  cx init --force  # Reinitialize (overwrites existing database)`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even if .cx already exists")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	cxDir := filepath.Join(cwd, ".cx")
	marker := filepath.Join(cxDir, "cortex")

	_, err = os.Stat(marker)
	if err == nil {
		if !initForce {
			relPath, _ := filepath.Rel(cwd, cxDir)
			fmt.Printf("Already initialized at %s\n", relPath)
			return nil
		}
		if err := os.RemoveAll(marker); err != nil {
			return fmt.Errorf("removing existing database: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking database path: %w", err)
	}

	storeDB, err := store.Open(cxDir)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer storeDB.Close()

	relPath, _ := filepath.Rel(cwd, cxDir)
	fmt.Printf("Initialized cx database at %s\n", relPath)

	return nil
}
