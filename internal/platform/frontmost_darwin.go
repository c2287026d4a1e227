//go:build darwin

package platform

import (
	"os/exec"
	"strings"
)

const frontmostScript = `tell application "System Events" to get bundle identifier of first application process whose frontmost is true`

type frontmostProbe struct{}

func newFrontmostProbe() FrontmostProbe {
	return &frontmostProbe{}
}

// CurrentAppID returns the bundle identifier of the frontmost application.
func (probe *frontmostProbe) CurrentAppID() (string, bool) {
	output, err := exec.Command("osascript", "-e", frontmostScript).Output()
	if err != nil {
		return "", false
	}
	identifier := strings.TrimSpace(string(output))
	if identifier == "" {
		return "", false
	}
	return identifier, true
}
