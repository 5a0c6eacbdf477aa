package pkg

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// InstallTools installs the configured cargo CLI tools (cbindgen by default)
// into the workspace .tools directory. Entries may pin a version with the
// name@version form.
func InstallTools(projectRoot string, tools []string) error {
	binPath := filepath.Join(projectRoot, ".tools")

	for _, tool := range tools {
		name := tool
		args := []string{"install", "--root", binPath}

		pos := strings.Index(tool, "@")
		if pos > -1 {
			name = tool[:pos]
			args = append(args, "--version", tool[pos+1:])
		}
		args = append(args, name)

		PrintSubtask("cargo install " + name)

		cmd := exec.Command("cargo", args...)
		cmd.Dir = projectRoot
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		err := cmd.Run()
		if err != nil {
			return eris.Wrapf(err, "Failed to install %s", name)
		}
	}

	return nil
}
