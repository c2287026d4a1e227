//go:build windows

package platform

import (
	"path/filepath"
	"strings"
	"syscall"
	"unsafe"
)

type frontmostProbe struct{}

func newFrontmostProbe() FrontmostProbe {
	return &frontmostProbe{}
}

// CurrentAppID returns the executable name of the foreground window's
// process, without the extension.
func (probe *frontmostProbe) CurrentAppID() (string, bool) {
	user32 := syscall.NewLazyDLL("user32.dll")
	getForegroundWindow := user32.NewProc("GetForegroundWindow")
	getWindowThreadProcessId := user32.NewProc("GetWindowThreadProcessId")

	window, _, _ := getForegroundWindow.Call()
	if window == 0 {
		return "", false
	}

	var pid uint32
	getWindowThreadProcessId.Call(window, uintptr(unsafe.Pointer(&pid)))
	if pid == 0 {
		return "", false
	}

	const processQueryLimitedInformation = 0x1000
	handle, err := syscall.OpenProcess(processQueryLimitedInformation, false, pid)
	if err != nil {
		return "", false
	}
	defer syscall.CloseHandle(handle)

	kernel32 := syscall.NewLazyDLL("kernel32.dll")
	queryFullProcessImageName := kernel32.NewProc("QueryFullProcessImageNameW")

	buffer := make([]uint16, syscall.MAX_PATH)
	size := uint32(len(buffer))
	result, _, _ := queryFullProcessImageName.Call(
		uintptr(handle),
		0,
		uintptr(unsafe.Pointer(&buffer[0])),
		uintptr(unsafe.Pointer(&size)),
	)
	if result == 0 {
		return "", false
	}

	imagePath := syscall.UTF16ToString(buffer[:size])
	name := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	if name == "" {
		return "", false
	}
	return name, true
}
