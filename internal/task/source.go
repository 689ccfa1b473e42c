package task

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joonhok/cafeloop/internal/util"
)

// SourceEntry is one (article, comment) pair from a task source file.
type SourceEntry struct {
	Article string `yaml:"article"`
	Comment string `yaml:"comment"`
}

type sourceFile struct {
	Tasks []SourceEntry `yaml:"tasks"`
}

// ParseSource reads an ordered task list from a YAML file:
//
//	tasks:
//	  - article: https://cafe.naver.com/mycafe/12345
//	    comment: "..."
func ParseSource(path string) ([]SourceEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task source: %w", err)
	}

	var src sourceFile
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse task source: %w", err)
	}
	if len(src.Tasks) == 0 {
		return nil, fmt.Errorf("task source %s contains no tasks", path)
	}

	for i, e := range src.Tasks {
		if strings.TrimSpace(e.Article) == "" {
			return nil, fmt.Errorf("task %d: article is required", i+1)
		}
		if strings.TrimSpace(e.Comment) == "" {
			return nil, fmt.Errorf("task %d: comment is required", i+1)
		}
	}
	return src.Tasks, nil
}

// NewRun builds a Run from source entries. Task IDs are derived from source
// order (t01, t02, ...) so a rebuilt run maps onto the same persisted state.
func NewRun(name, sourceFile string, entries []SourceEntry) (*Run, error) {
	id, err := util.GenerateShortID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run ID: %w", err)
	}

	r := &Run{
		ID:         id,
		Name:       name,
		SourceFile: sourceFile,
		CreatedAt:  time.Now(),
		Status:     RunStatusNotStarted,
		Tasks:      make([]Task, 0, len(entries)),
	}
	for i, e := range entries {
		r.Tasks = append(r.Tasks, Task{
			ID:      util.TaskID(i),
			Article: e.Article,
			Comment: e.Comment,
			Status:  StatusPending,
		})
	}
	return r, nil
}
