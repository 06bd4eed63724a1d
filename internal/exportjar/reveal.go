package exportjar

import (
	"os/exec"
	"path/filepath"
	"runtime"
)

// RevealLabel is the platform's name for showing a file in its folder.
func RevealLabel() string {
	switch runtime.GOOS {
	case "windows":
		return "Reveal in File Explorer"
	case "darwin":
		return "Reveal in Finder"
	}
	return "Open Containing Folder"
}

// RevealCommand returns the command that shows path in the platform file
// browser.
func RevealCommand(path string) *exec.Cmd {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("explorer", "/select,"+path)
	case "darwin":
		return exec.Command("open", "-R", path)
	}
	return exec.Command("xdg-open", filepath.Dir(path))
}
