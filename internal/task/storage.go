package task

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	cafeloopDir = ".cafeloop"
	runsDir     = "runs"
)

// RunsPath returns the directory that holds all run folders.
func RunsPath() string {
	return filepath.Join(cafeloopDir, runsDir)
}

// ResolveRunName checks for name collisions in the runs directory and returns
// a unique name, appending -2, -3, ... when the base name is taken.
func ResolveRunName(baseName string) (string, error) {
	entries, err := os.ReadDir(RunsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return baseName, nil
		}
		return "", fmt.Errorf("failed to read runs directory: %w", err)
	}

	existing := make(map[string]bool)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		// Folder format is <id>-<name>
		parts := strings.SplitN(entry.Name(), "-", 2)
		if len(parts) == 2 {
			existing[parts[1]] = true
		}
	}

	if !existing[baseName] {
		return baseName, nil
	}
	for suffix := 2; ; suffix++ {
		candidate := fmt.Sprintf("%s-%d", baseName, suffix)
		if !existing[candidate] {
			return candidate, nil
		}
	}
}

// CreateRunFolder creates the run folder with run.json and an empty
// progress log at .cafeloop/runs/<id>-<name>/.
func CreateRunFolder(r *Run) error {
	folderPath := filepath.Join(RunsPath(), fmt.Sprintf("%s-%s", r.ID, r.Name))

	if err := os.MkdirAll(folderPath, 0755); err != nil {
		return fmt.Errorf("failed to create run folder: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := os.WriteFile(filepath.Join(folderPath, "run.json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write run.json: %w", err)
	}

	if err := os.WriteFile(filepath.Join(folderPath, progressLogFileName), []byte{}, 0644); err != nil {
		return fmt.Errorf("failed to create progress log: %w", err)
	}
	return nil
}

// FindRunFolder finds a run folder by name suffix in .cafeloop/runs/.
func FindRunFolder(name string) (string, error) {
	entries, err := os.ReadDir(RunsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no runs found. Run 'cafeloop create <tasks.yaml>' first")
		}
		return "", fmt.Errorf("failed to read runs directory: %w", err)
	}

	var matches []string
	suffix := "-" + name
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), suffix) {
			matches = append(matches, entry.Name())
		}
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("run not found: %s", name)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("multiple runs match '%s': %v", name, matches)
	}
	return filepath.Join(RunsPath(), matches[0]), nil
}

// LoadRun reads run.json from a run directory and reverts any task the
// previous process left in_progress back to pending, so an interrupted
// action is re-offered rather than assumed complete.
func LoadRun(runDir string) (*Run, error) {
	data, err := os.ReadFile(filepath.Join(runDir, "run.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read run.json: %w", err)
	}

	var r Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse run.json: %w", err)
	}
	r.RevertInterrupted()
	return &r, nil
}

// SaveRun atomically writes run.json using a temp file + rename, so a crash
// mid-write never corrupts previously committed state.
func SaveRun(runDir string, r *Run) error {
	runPath := filepath.Join(runDir, "run.json")
	tmpPath := fmt.Sprintf("%s.tmp.%d", runPath, os.Getpid())

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, runPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// ListRuns loads every run under .cafeloop/runs/, in folder-name order.
func ListRuns() ([]*Run, error) {
	entries, err := os.ReadDir(RunsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var runs []*Run
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		r, err := LoadRun(filepath.Join(RunsPath(), entry.Name()))
		if err != nil {
			continue
		}
		runs = append(runs, r)
	}
	return runs, nil
}
