package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/siteforge/demoimport/internal/logger"
	apperrors "github.com/siteforge/demoimport/pkg/errors"
)

// EditorEnvVar carries the editor hint into the external importer process.
const EditorEnvVar = "DEMO_IMPORT_EDITOR"

// ExecDelegate runs a configured external importer command with the content
// file path appended as the final argument. A non-zero exit is a structured
// ImporterError.
type ExecDelegate struct {
	command []string
	log     *logger.Logger
}

// NewExecDelegate creates a delegate around the importer command line.
func NewExecDelegate(command []string, log *logger.Logger) (*ExecDelegate, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("importer command is empty")
	}
	return &ExecDelegate{command: command, log: log.WithComponent("importer")}, nil
}

// Import execs the importer command against path.
func (d *ExecDelegate) Import(ctx context.Context, path, editorHint string) error {
	args := append(append([]string(nil), d.command[1:]...), path)
	cmd := exec.CommandContext(ctx, d.command[0], args...)
	cmd.Env = append(os.Environ(), EditorEnvVar+"="+editorHint)

	d.log.WithFields(map[string]any{"path": path}).Progress("starting content import")

	output, err := cmd.CombinedOutput()
	if err != nil {
		message := strings.TrimSpace(string(output))
		if message == "" {
			message = err.Error()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return apperrors.NewImporterError(fmt.Sprintf("importer_exit_%d", exitErr.ExitCode()), message, err)
		}
		return apperrors.NewImporterError("importer_exec", message, err)
	}

	return nil
}

var _ Delegate = (*ExecDelegate)(nil)
