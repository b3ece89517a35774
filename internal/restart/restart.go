// Package restart queries the restart behavior of an installer package
// through Apple's installer tool.
package restart

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

const installerTool = "/usr/sbin/installer"

// Query returns the RestartAction of an installer package, or "" when no
// restart is required. The installer tool only exists on macOS; anywhere
// else, or when the query fails, the result is "" rather than an error.
func Query(ctx context.Context, pkgPath string) string {
	if runtime.GOOS != "darwin" {
		logrus.Debugf("RestartAction query skipped on %s", runtime.GOOS)
		return ""
	}
	if _, err := os.Stat(installerTool); err != nil {
		logrus.Warnf("%s not available, skipping RestartAction query", installerTool)
		return ""
	}

	cmd := exec.CommandContext(ctx, installerTool, "-query", "RestartAction", "-pkg", pkgPath)
	out, err := cmd.Output()
	if err != nil {
		logrus.Warnf("installer -query failed for %s: %v", pkgPath, err)
		return ""
	}

	action := strings.TrimSpace(string(out))
	if action == "None" {
		return ""
	}
	return action
}
