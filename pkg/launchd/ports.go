package launchd

import (
	"fmt"
	"os/exec"
	"strings"
)

// PortInUse reports whether a TCP port already has a listening process,
// and if so which command holds it. Uses lsof, so it sees listeners owned
// by any process the current user can inspect.
func PortInUse(port int) (bool, string, error) {
	cmd := exec.Command("lsof", "-nP", fmt.Sprintf("-iTCP:%d", port), "-sTCP:LISTEN")
	output, err := cmd.CombinedOutput()
	if err != nil {
		// lsof exits non-zero when nothing matches; that's the free case.
		if _, ok := err.(*exec.ExitError); ok && strings.TrimSpace(string(output)) == "" {
			return false, "", nil
		}
		return false, "", fmt.Errorf("failed to run lsof: %w (output: %s)", err, string(output))
	}

	inUse, command := parseLsofOutput(string(output))
	return inUse, command, nil
}

// parseLsofOutput extracts the command name from lsof listing output.
// Format: a COMMAND-first header line followed by one row per open file.
func parseLsofOutput(output string) (bool, string) {
	lines := strings.Split(output, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "COMMAND") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) > 0 {
			return true, fields[0]
		}
	}
	return false, ""
}
