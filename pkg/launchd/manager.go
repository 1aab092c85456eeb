package launchd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zph/devkit/pkg/install"
	"github.com/zph/devkit/pkg/logger"
)

// Manager installs and controls launch agents for daemon binaries.
type Manager struct {
	agentsDir string
	binDir    string
	logDir    string
	installer *install.Installer
}

// AgentStatus represents the launchctl view of one agent.
type AgentStatus struct {
	Label  string
	PID    int // 0 when not running
	Status int // last exit status
	Loaded bool
}

// NewManager creates a manager placing plists in the per-user launch
// agents directory, daemon binaries in binDir, and logs in logDir.
func NewManager(binDir, logDir string) (*Manager, error) {
	agentsDir, err := AgentsDir()
	if err != nil {
		return nil, err
	}

	return &Manager{
		agentsDir: agentsDir,
		binDir:    binDir,
		logDir:    logDir,
		installer: install.New(),
	}, nil
}

// BinaryDestination returns where the daemon binary for an agent is
// installed.
func (m *Manager) BinaryDestination(name string) string {
	return filepath.Join(m.binDir, name)
}

// Install places the daemon binary through the atomic installer, writes the
// agent plist, and loads it. A binary install failure rolls back and leaves
// no plist behind; a plist or load failure leaves the binary in place since
// it is independently useful and a rerun is idempotent.
func (m *Manager) Install(agent Agent, sourceBinary string) error {
	dest := m.BinaryDestination(filepath.Base(agent.BinaryPath))

	result, err := m.installer.Install([]install.Operation{
		{Source: sourceBinary, Destination: dest},
	})
	if err != nil {
		return fmt.Errorf("failed to install daemon binary: %w", err)
	}
	logger.Debug("daemon binary installed (operation %s)", result.OperationID)

	content, err := agent.Plist()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(m.agentsDir, 0755); err != nil {
		return fmt.Errorf("failed to create launch agents directory: %w", err)
	}

	plistPath := filepath.Join(m.agentsDir, agent.Label+".plist")
	if err := os.WriteFile(plistPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write plist: %w", err)
	}

	if err := m.load(plistPath); err != nil {
		return err
	}

	logger.Info("launch agent %s installed", agent.Label)
	return nil
}

// Uninstall unloads the agent and removes its plist. The daemon binary is
// left in place unless removeBinary is set.
func (m *Manager) Uninstall(label string, removeBinary bool) error {
	plistPath := filepath.Join(m.agentsDir, label+".plist")

	if _, err := os.Stat(plistPath); os.IsNotExist(err) {
		return fmt.Errorf("launch agent %s is not installed", label)
	}

	// Resolve the binary path before the plist disappears.
	var binary string
	if removeBinary {
		binary = m.binaryForPlist(plistPath)
	}

	// Unload before removing the plist; an agent that was never loaded
	// makes launchctl complain, which is harmless here.
	if err := m.unload(plistPath); err != nil {
		logger.Warn("failed to unload %s: %v", label, err)
	}

	if err := os.Remove(plistPath); err != nil {
		return fmt.Errorf("failed to remove plist: %w", err)
	}

	if removeBinary {
		if binary != "" {
			if err := os.Remove(binary); err != nil && !os.IsNotExist(err) {
				logger.Warn("failed to remove daemon binary %s: %v", binary, err)
			}
		}
	}

	logger.Info("launch agent %s uninstalled", label)
	return nil
}

// Status returns the launchctl status for a single agent label.
func (m *Manager) Status(label string) (*AgentStatus, error) {
	statuses, err := m.List()
	if err != nil {
		return nil, err
	}

	for _, s := range statuses {
		if s.Label == label {
			return s, nil
		}
	}

	return &AgentStatus{Label: label, Loaded: false}, nil
}

// List returns the status of every loaded job visible to launchctl.
func (m *Manager) List() ([]*AgentStatus, error) {
	cmd := exec.Command("launchctl", "list")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to list launch agents: %w (output: %s)", err, string(output))
	}

	return parseLaunchctlList(string(output)), nil
}

func (m *Manager) load(plistPath string) error {
	cmd := exec.Command("launchctl", "load", plistPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to load launch agent: %w (output: %s)", err, string(output))
	}
	return nil
}

func (m *Manager) unload(plistPath string) error {
	cmd := exec.Command("launchctl", "unload", plistPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to unload launch agent: %w (output: %s)", err, string(output))
	}
	return nil
}

// binaryForPlist extracts the program path from an installed plist so
// uninstall can find the binary it placed. Best effort: returns "" when
// the plist can't be read.
func (m *Manager) binaryForPlist(plistPath string) string {
	content, err := os.ReadFile(plistPath)
	if err != nil {
		return ""
	}
	return parseProgramPath(string(content))
}

// parseLaunchctlList parses `launchctl list` output. Each line is
// "PID\tStatus\tLabel" where PID is "-" for jobs that aren't running.
func parseLaunchctlList(output string) []*AgentStatus {
	var statuses []*AgentStatus

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "PID") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}

		status := &AgentStatus{Label: fields[2], Loaded: true}
		if pid, err := strconv.Atoi(fields[0]); err == nil {
			status.PID = pid
		}
		if code, err := strconv.Atoi(fields[1]); err == nil {
			status.Status = code
		}

		statuses = append(statuses, status)
	}

	return statuses
}

// parseProgramPath extracts the first ProgramArguments entry from plist
// XML rendered by this package.
func parseProgramPath(plist string) string {
	marker := "<key>ProgramArguments</key>"
	idx := strings.Index(plist, marker)
	if idx < 0 {
		return ""
	}

	rest := plist[idx:]
	open := strings.Index(rest, "<string>")
	if open < 0 {
		return ""
	}
	rest = rest[open+len("<string>"):]

	end := strings.Index(rest, "</string>")
	if end < 0 {
		return ""
	}
	return rest[:end]
}
