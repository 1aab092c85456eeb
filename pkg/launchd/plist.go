// Package launchd generates and manages macOS launch agent definitions.
// Process supervision itself is launchd's job; this package renders plists,
// places them, and defers lifecycle control to launchctl.
package launchd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Agent describes one launch agent: the daemon binary to run and how
// launchd should run it.
type Agent struct {
	Label      string
	BinaryPath string
	Args       []string
	WorkingDir string
	RunAtLoad  bool
	KeepAlive  bool
	StdoutLog  string
	StderrLog  string
}

// Label builds a launch agent label from a reverse-DNS prefix and a
// service name.
//
// Examples:
//   - Label("com.devkit", "builder") returns "com.devkit.builder"
func Label(prefix, name string) string {
	return fmt.Sprintf("%s.%s", prefix, name)
}

// AgentsDir returns the per-user launch agents directory.
func AgentsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, "Library", "LaunchAgents"), nil
}

// PlistPath returns the plist location for a label inside the per-user
// launch agents directory.
func PlistPath(label string) (string, error) {
	dir, err := AgentsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, label+".plist"), nil
}

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{.Label}}</string>
	<key>ProgramArguments</key>
	<array>
		<string>{{.BinaryPath}}</string>
{{- range .Args}}
		<string>{{.}}</string>
{{- end}}
	</array>
{{- if .WorkingDir}}
	<key>WorkingDirectory</key>
	<string>{{.WorkingDir}}</string>
{{- end}}
	<key>RunAtLoad</key>
	<{{if .RunAtLoad}}true{{else}}false{{end}}/>
	<key>KeepAlive</key>
	<{{if .KeepAlive}}true{{else}}false{{end}}/>
{{- if .StdoutLog}}
	<key>StandardOutPath</key>
	<string>{{.StdoutLog}}</string>
{{- end}}
{{- if .StderrLog}}
	<key>StandardErrorPath</key>
	<string>{{.StderrLog}}</string>
{{- end}}
</dict>
</plist>
`

// Plist renders the agent as launchd property list XML.
func (a *Agent) Plist() (string, error) {
	if a.Label == "" {
		return "", fmt.Errorf("agent label is required")
	}
	if a.BinaryPath == "" {
		return "", fmt.Errorf("agent binary path is required")
	}

	tmpl := template.Must(template.New("plist").Parse(plistTemplate))

	var b strings.Builder
	if err := tmpl.Execute(&b, a); err != nil {
		return "", fmt.Errorf("failed to render plist: %w", err)
	}
	return b.String(), nil
}
