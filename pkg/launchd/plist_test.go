package launchd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		want   string
	}{
		{prefix: "com.devkit", name: "builder", want: "com.devkit.builder"},
		{prefix: "com.example", name: "sync", want: "com.example.sync"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Label(tt.prefix, tt.name); got != tt.want {
				t.Errorf("Label(%q, %q) = %q, want %q", tt.prefix, tt.name, got, tt.want)
			}
		})
	}
}

func TestAgent_Plist(t *testing.T) {
	agent := Agent{
		Label:      "com.devkit.builder",
		BinaryPath: "/usr/local/bin/builder",
		Args:       []string{"serve", "--port", "8920"},
		WorkingDir: "/tmp/builder",
		RunAtLoad:  true,
		KeepAlive:  true,
		StdoutLog:  "/var/log/builder.out.log",
		StderrLog:  "/var/log/builder.err.log",
	}

	plist, err := agent.Plist()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(plist, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, plist, "<string>com.devkit.builder</string>")
	assert.Contains(t, plist, "<string>/usr/local/bin/builder</string>")
	assert.Contains(t, plist, "<string>serve</string>")
	assert.Contains(t, plist, "<string>--port</string>")
	assert.Contains(t, plist, "<string>8920</string>")
	assert.Contains(t, plist, "<key>WorkingDirectory</key>")
	assert.Contains(t, plist, "<key>RunAtLoad</key>\n\t<true/>")
	assert.Contains(t, plist, "<key>KeepAlive</key>\n\t<true/>")
	assert.Contains(t, plist, "<string>/var/log/builder.out.log</string>")
	assert.Contains(t, plist, "<string>/var/log/builder.err.log</string>")

	// ProgramArguments lists the binary before its arguments.
	binIdx := strings.Index(plist, "<string>/usr/local/bin/builder</string>")
	argIdx := strings.Index(plist, "<string>serve</string>")
	assert.Less(t, binIdx, argIdx)
}

func TestAgent_Plist_MinimalAgent(t *testing.T) {
	agent := Agent{
		Label:      "com.devkit.minimal",
		BinaryPath: "/usr/local/bin/minimal",
	}

	plist, err := agent.Plist()
	require.NoError(t, err)

	assert.Contains(t, plist, "<key>RunAtLoad</key>\n\t<false/>")
	assert.Contains(t, plist, "<key>KeepAlive</key>\n\t<false/>")
	assert.NotContains(t, plist, "WorkingDirectory")
	assert.NotContains(t, plist, "StandardOutPath")
	assert.NotContains(t, plist, "StandardErrorPath")
}

func TestAgent_Plist_Validation(t *testing.T) {
	_, err := (&Agent{BinaryPath: "/bin/x"}).Plist()
	assert.Error(t, err, "missing label should fail")

	_, err = (&Agent{Label: "com.devkit.x"}).Plist()
	assert.Error(t, err, "missing binary path should fail")
}

func TestParseProgramPath(t *testing.T) {
	agent := Agent{
		Label:      "com.devkit.builder",
		BinaryPath: "/usr/local/bin/builder",
		Args:       []string{"serve"},
	}
	plist, err := agent.Plist()
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/builder", parseProgramPath(plist))
	assert.Equal(t, "", parseProgramPath("not a plist"))
}
