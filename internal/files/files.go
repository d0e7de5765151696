// Package files manages the lifecycle of input and result artifacts.
// Inputs are staged under the upload area keyed by task id plus original
// name, consumed once by a worker and deleted regardless of outcome.
// Results are retained until an external retention policy removes them.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("files: not found")

type Manager struct {
	uploadDir  string
	resultsDir string
}

func NewManager(uploadDir, resultsDir string) (*Manager, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	return &Manager{uploadDir: uploadDir, resultsDir: resultsDir}, nil
}

// Stage writes an uploaded input under uploads/{taskID}_{name}. The task
// id prefix keeps concurrent submissions with identical file names from
// colliding.
func (m *Manager) Stage(taskID, name string, r io.Reader) (string, error) {
	name, err := sanitize(name)
	if err != nil {
		return "", err
	}

	path := filepath.Join(m.uploadDir, taskID+"_"+name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("stage file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close staged file: %w", err)
	}
	return path, nil
}

// Remove deletes a staged input. A file that is already gone is not an
// error, so cleanup can run on every exit path.
func (m *Manager) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// ResultName returns the results file name for a task:
// results_{taskID}_{original name}.
func ResultName(taskID, original string) string {
	return "results_" + taskID + "_" + original
}

// ResultPath returns the on-disk path for a result file name.
func (m *Manager) ResultPath(name string) string {
	return filepath.Join(m.resultsDir, name)
}

// OpenResult opens a result artifact for download. A missing file is a
// client-visible not-found, never a server error.
func (m *Manager) OpenResult(name string) (*os.File, error) {
	name, err := sanitize(name)
	if err != nil {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(m.resultsDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open result: %w", err)
	}
	return f, nil
}

// OriginalName strips the staging prefix from an input path, recovering
// the name the client uploaded.
func OriginalName(taskID, inputPath string) string {
	return strings.TrimPrefix(filepath.Base(inputPath), taskID+"_")
}

func sanitize(name string) (string, error) {
	// Prevent path traversal
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid file name: %s", name)
	}
	return name, nil
}
