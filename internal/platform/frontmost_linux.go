//go:build linux

package platform

import (
	"os/exec"
	"strings"
)

type frontmostProbe struct {
	xdotoolPath string
}

type unsupportedFrontmostProbe struct{}

func newFrontmostProbe() FrontmostProbe {
	path, err := exec.LookPath("xdotool")
	if err != nil {
		return unsupportedFrontmostProbe{}
	}
	return &frontmostProbe{xdotoolPath: path}
}

// CurrentAppID returns the window class name of the active window.
func (probe *frontmostProbe) CurrentAppID() (string, bool) {
	output, err := exec.Command(probe.xdotoolPath, "getactivewindow", "getwindowclassname").Output()
	if err != nil {
		return "", false
	}
	name := strings.TrimSpace(string(output))
	if name == "" {
		return "", false
	}
	return name, true
}

func (unsupportedFrontmostProbe) CurrentAppID() (string, bool) {
	return "", false
}
