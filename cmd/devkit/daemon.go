package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zph/devkit/pkg/config"
	"github.com/zph/devkit/pkg/launchd"
)

var (
	daemonInstallArgs      []string
	daemonInstallPort      int
	daemonInstallKeepAlive bool
	daemonInstallNoAutorun bool

	daemonUninstallRemoveBinary bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage launchd background agents",
	Long: `Install, inspect, and remove launchd agents for locally built daemons.

The daemon binary is installed atomically into the configured bin directory,
a plist is written to ~/Library/LaunchAgents, and the agent is loaded with
launchctl.`,
}

var daemonInstallCmd = &cobra.Command{
	Use:   "install <name> <binary>",
	Short: "Install a daemon and load its launch agent",
	Long: `Install a daemon binary and register it as a launchd agent.

Examples:
  # Install and start a daemon built locally
  devkit daemon install syncd ./build/syncd

  # Pass arguments and keep it alive across crashes
  devkit daemon install syncd ./build/syncd --arg=--listen=:8484 --port 8484 --keep-alive
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		name, binary := args[0], args[1]

		cfg, err := config.LoadDefault()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if daemonInstallPort > 0 {
			inUse, owner, err := launchd.PortInUse(daemonInstallPort)
			if err != nil {
				return fmt.Errorf("failed to check port %d: %w", daemonInstallPort, err)
			}
			if inUse {
				return fmt.Errorf("port %d is already in use by %s", daemonInstallPort, owner)
			}
		}

		mgr, err := launchd.NewManager(cfg.Install.BinDir, cfg.Daemon.LogDir)
		if err != nil {
			return err
		}

		label := launchd.Label(cfg.Daemon.LabelPrefix, name)
		agent := launchd.Agent{
			Label:      label,
			BinaryPath: mgr.BinaryDestination(filepath.Base(binary)),
			Args:       daemonInstallArgs,
			RunAtLoad:  !daemonInstallNoAutorun,
			KeepAlive:  daemonInstallKeepAlive,
			StdoutLog:  filepath.Join(cfg.Daemon.LogDir, name+".log"),
			StderrLog:  filepath.Join(cfg.Daemon.LogDir, name+".err.log"),
		}

		if err := mgr.Install(agent, binary); err != nil {
			return err
		}

		fmt.Printf("✓ Installed launch agent %s\n", label)
		return nil
	},
}

var daemonUninstallCmd = &cobra.Command{
	Use:   "uninstall <name>",
	Short: "Unload and remove a launch agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := config.LoadDefault()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		mgr, err := launchd.NewManager(cfg.Install.BinDir, cfg.Daemon.LogDir)
		if err != nil {
			return err
		}

		label := qualifyLabel(cfg.Daemon.LabelPrefix, args[0])
		if err := mgr.Uninstall(label, daemonUninstallRemoveBinary); err != nil {
			return err
		}

		fmt.Printf("✓ Removed launch agent %s\n", label)
		return nil
	},
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status <name>",
	Short: "Show the launchctl status of one agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := config.LoadDefault()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		mgr, err := launchd.NewManager(cfg.Install.BinDir, cfg.Daemon.LogDir)
		if err != nil {
			return err
		}

		label := qualifyLabel(cfg.Daemon.LabelPrefix, args[0])
		status, err := mgr.Status(label)
		if err != nil {
			return err
		}

		printAgentStatus(status)
		return nil
	},
}

var daemonListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded agents managed by devkit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := config.LoadDefault()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		mgr, err := launchd.NewManager(cfg.Install.BinDir, cfg.Daemon.LogDir)
		if err != nil {
			return err
		}

		agents, err := mgr.List()
		if err != nil {
			return err
		}

		shown := 0
		for _, a := range agents {
			if !strings.HasPrefix(a.Label, cfg.Daemon.LabelPrefix+".") {
				continue
			}
			printAgentStatus(a)
			shown++
		}
		if shown == 0 {
			fmt.Println("no devkit-managed agents loaded")
		}
		return nil
	},
}

// qualifyLabel accepts either a bare agent name or a fully qualified label.
func qualifyLabel(prefix, name string) string {
	if strings.HasPrefix(name, prefix+".") {
		return name
	}
	return launchd.Label(prefix, name)
}

func printAgentStatus(s *launchd.AgentStatus) {
	switch {
	case !s.Loaded:
		fmt.Printf("%s: not loaded\n", s.Label)
	case s.PID > 0:
		fmt.Printf("%s: running (pid %d)\n", s.Label, s.PID)
	default:
		fmt.Printf("%s: not running (last exit status %d)\n", s.Label, s.Status)
	}
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.AddCommand(daemonInstallCmd)
	daemonCmd.AddCommand(daemonUninstallCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonListCmd)

	daemonInstallCmd.Flags().StringArrayVar(&daemonInstallArgs, "arg", nil, "Argument passed to the daemon (repeatable)")
	daemonInstallCmd.Flags().IntVar(&daemonInstallPort, "port", 0, "TCP port the daemon listens on; refuses to install if it is taken")
	daemonInstallCmd.Flags().BoolVar(&daemonInstallKeepAlive, "keep-alive", false, "Restart the daemon if it exits")
	daemonInstallCmd.Flags().BoolVar(&daemonInstallNoAutorun, "no-run-at-load", false, "Do not start the daemon when the agent loads")

	daemonUninstallCmd.Flags().BoolVar(&daemonUninstallRemoveBinary, "remove-binary", false, "Also remove the installed daemon binary")
}
