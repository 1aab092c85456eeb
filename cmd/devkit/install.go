package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/zph/devkit/pkg/config"
	"github.com/zph/devkit/pkg/install"
	"github.com/zph/devkit/pkg/logger"
)

var (
	installOperations string
	installBinDir     string
	installJSON       bool
)

// installReport is the machine-readable result emitted with --json.
type installReport struct {
	Success        bool     `json:"success"`
	InstalledFiles []string `json:"installedFiles"`
	BackupsCreated int      `json:"backupsCreated"`
	OperationID    string   `json:"operationID"`
	Error          *string  `json:"error"`
}

var installCmd = &cobra.Command{
	Use:   "install [binary...]",
	Short: "Install binaries atomically",
	Long: `Install one or more binaries with atomic replacement and automatic
rollback on failure.

Each binary is staged next to its destination, the existing destination (if
any) is backed up, and the staged copy is swapped into place. If any file in
the batch fails, every destination is restored to its previous state.

Destinations come from one of two forms:
  # Positional arguments install into the configured bin directory
  devkit install ./build/tool-a ./build/tool-b

  # Explicit operations control each destination individually
  devkit install --operations '[{"source":"./build/tool-a","destination":"/usr/local/bin/tool-a"}]'
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		ops, err := resolveOperations(args)
		if err != nil {
			return reportInstallFailure(err)
		}

		result, err := install.New().Install(ops)
		if err != nil {
			return reportInstallFailure(err)
		}

		for _, w := range result.CleanupWarnings {
			logger.Warn("failed to remove backup %s: %v", w.Path, w.Err)
		}

		if installJSON {
			return printJSON(installReport{
				Success:        true,
				InstalledFiles: result.InstalledFiles,
				BackupsCreated: result.BackupsCreated,
				OperationID:    result.OperationID,
				Error:          nil,
			})
		}

		fmt.Printf("✓ Installed %d file(s) (operation %s)\n", len(result.InstalledFiles), result.OperationID)
		for _, name := range result.InstalledFiles {
			fmt.Printf("  %s\n", name)
		}
		if result.BackupsCreated > 0 {
			fmt.Printf("  replaced %d existing file(s)\n", result.BackupsCreated)
		}
		return nil
	},
}

// resolveOperations builds the operation batch from either the --operations
// JSON payload or positional source paths installed into the bin directory.
func resolveOperations(args []string) ([]install.Operation, error) {
	if installOperations != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("cannot combine positional arguments with --operations")
		}
		var ops []install.Operation
		if err := json.Unmarshal([]byte(installOperations), &ops); err != nil {
			return nil, fmt.Errorf("failed to parse --operations: %w", err)
		}
		return ops, nil
	}

	binDir := installBinDir
	if binDir == "" {
		cfg, err := config.LoadDefault()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		binDir = cfg.Install.BinDir
	}

	ops := make([]install.Operation, 0, len(args))
	for _, src := range args {
		ops = append(ops, install.Operation{
			Source:      src,
			Destination: filepath.Join(binDir, filepath.Base(src)),
		})
	}
	return ops, nil
}

// reportInstallFailure emits the failure in the requested format and always
// returns a non-nil error so the process exits non-zero.
func reportInstallFailure(err error) error {
	if installJSON {
		msg := err.Error()
		if jerr := printJSON(installReport{
			Success:        false,
			InstalledFiles: []string{},
			BackupsCreated: 0,
			OperationID:    "",
			Error:          &msg,
		}); jerr != nil {
			return jerr
		}
		// The JSON payload carries the full description; keep stderr terse.
		return fmt.Errorf("installation failed")
	}
	return err
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().StringVar(&installOperations, "operations", "", "JSON array of {source, destination} pairs")
	installCmd.Flags().StringVar(&installBinDir, "bin-dir", "", "Destination directory for positional arguments (default: from config)")
	installCmd.Flags().BoolVar(&installJSON, "json", false, "Emit machine-readable JSON to stdout")
}
