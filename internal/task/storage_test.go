package task

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joonhok/cafeloop/internal/testutil"
)

func TestResolveRunName(t *testing.T) {
	t.Run("new name returns unchanged", func(t *testing.T) {
		testutil.SetupTestDir(t)
		os.MkdirAll(RunsPath(), 0755)

		result, err := ResolveRunName("promo-week")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != "promo-week" {
			t.Errorf("got %q, want %q", result, "promo-week")
		}
	})

	t.Run("existing name returns name-2", func(t *testing.T) {
		testutil.SetupTestDir(t)
		os.MkdirAll(filepath.Join(RunsPath(), "abc123-promo-week"), 0755)

		result, err := ResolveRunName("promo-week")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != "promo-week-2" {
			t.Errorf("got %q, want %q", result, "promo-week-2")
		}
	})

	t.Run("existing name and name-2 returns name-3", func(t *testing.T) {
		testutil.SetupTestDir(t)
		os.MkdirAll(filepath.Join(RunsPath(), "abc123-promo-week"), 0755)
		os.MkdirAll(filepath.Join(RunsPath(), "def456-promo-week-2"), 0755)

		result, err := ResolveRunName("promo-week")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != "promo-week-3" {
			t.Errorf("got %q, want %q", result, "promo-week-3")
		}
	})

	t.Run("nonexistent runs directory works", func(t *testing.T) {
		testutil.SetupTestDir(t)

		result, err := ResolveRunName("first-run")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != "first-run" {
			t.Errorf("got %q, want %q", result, "first-run")
		}
	})
}

func TestCreateRunFolder(t *testing.T) {
	testutil.SetupTestDir(t)

	r := makeRun(StatusPending, StatusPending)
	r.Status = RunStatusNotStarted
	if err := CreateRunFolder(r); err != nil {
		t.Fatalf("CreateRunFolder failed: %v", err)
	}

	folder := filepath.Join(RunsPath(), "abc123-test-run")
	data, err := os.ReadFile(filepath.Join(folder, "run.json"))
	if err != nil {
		t.Fatalf("run.json not written: %v", err)
	}
	var loaded Run
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("run.json is not valid JSON: %v", err)
	}
	if loaded.ID != "abc123" || len(loaded.Tasks) != 2 {
		t.Errorf("round trip mismatch: id=%q tasks=%d", loaded.ID, len(loaded.Tasks))
	}

	if _, err := os.Stat(filepath.Join(folder, "progress.log")); err != nil {
		t.Errorf("progress.log not created: %v", err)
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	t.Run("round trip preserves task state", func(t *testing.T) {
		testutil.SetupTestDir(t)

		r := makeRun(StatusSucceeded, StatusFailedRetry)
		r.Tasks[1].Attempts = 3
		r.Tasks[1].LastError = "throttled"
		r.Tasks[1].UpdatedAt = time.Now()
		if err := CreateRunFolder(r); err != nil {
			t.Fatalf("CreateRunFolder failed: %v", err)
		}
		runDir := filepath.Join(RunsPath(), "abc123-test-run")

		r.Tasks[0].Status = StatusSucceeded
		if err := SaveRun(runDir, r); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}

		loaded, err := LoadRun(runDir)
		if err != nil {
			t.Fatalf("LoadRun failed: %v", err)
		}
		if loaded.Tasks[1].Attempts != 3 {
			t.Errorf("attempts = %d, want 3", loaded.Tasks[1].Attempts)
		}
		if loaded.Tasks[1].LastError != "throttled" {
			t.Errorf("lastError = %q, want %q", loaded.Tasks[1].LastError, "throttled")
		}
	})

	t.Run("load reverts interrupted tasks to pending", func(t *testing.T) {
		testutil.SetupTestDir(t)

		r := makeRun(StatusSucceeded, StatusInProgress)
		r.Tasks[1].Attempts = 1
		if err := CreateRunFolder(r); err != nil {
			t.Fatalf("CreateRunFolder failed: %v", err)
		}
		runDir := filepath.Join(RunsPath(), "abc123-test-run")

		loaded, err := LoadRun(runDir)
		if err != nil {
			t.Fatalf("LoadRun failed: %v", err)
		}
		if loaded.Tasks[1].Status != StatusPending {
			t.Errorf("status = %q, want %q", loaded.Tasks[1].Status, StatusPending)
		}
		if loaded.Tasks[1].Attempts != 1 {
			t.Errorf("attempts = %d, want 1", loaded.Tasks[1].Attempts)
		}
	})

	t.Run("save leaves no temp files behind", func(t *testing.T) {
		testutil.SetupTestDir(t)

		r := makeRun(StatusPending)
		if err := CreateRunFolder(r); err != nil {
			t.Fatalf("CreateRunFolder failed: %v", err)
		}
		runDir := filepath.Join(RunsPath(), "abc123-test-run")
		if err := SaveRun(runDir, r); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}

		entries, _ := os.ReadDir(runDir)
		for _, e := range entries {
			if strings.Contains(e.Name(), ".tmp.") {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
	})
}

func TestFindRunFolder(t *testing.T) {
	t.Run("finds run by name", func(t *testing.T) {
		testutil.SetupTestDir(t)
		os.MkdirAll(filepath.Join(RunsPath(), "abc123-promo-week"), 0755)

		dir, err := FindRunFolder("promo-week")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Base(dir) != "abc123-promo-week" {
			t.Errorf("got %q", dir)
		}
	})

	t.Run("not found", func(t *testing.T) {
		testutil.SetupTestDir(t)
		os.MkdirAll(RunsPath(), 0755)

		if _, err := FindRunFolder("nope"); err == nil {
			t.Fatal("expected error for missing run")
		}
	})

	t.Run("ambiguous suffix is an error", func(t *testing.T) {
		testutil.SetupTestDir(t)
		os.MkdirAll(filepath.Join(RunsPath(), "abc123-promo"), 0755)
		os.MkdirAll(filepath.Join(RunsPath(), "def456-promo"), 0755)

		if _, err := FindRunFolder("promo"); err == nil {
			t.Fatal("expected error for ambiguous name")
		}
	})

	t.Run("suffix match finds run by trailing name segment", func(t *testing.T) {
		testutil.SetupTestDir(t)
		os.MkdirAll(filepath.Join(RunsPath(), "abc123-promo-week"), 0755)

		dir, err := FindRunFolder("week")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Base(dir) != "abc123-promo-week" {
			t.Errorf("got %q", dir)
		}
	})
}

func TestListRuns(t *testing.T) {
	testutil.SetupTestDir(t)

	r1 := makeRun(StatusPending)
	r1.ID = "aaa111"
	r1.Name = "first"
	if err := CreateRunFolder(r1); err != nil {
		t.Fatalf("CreateRunFolder failed: %v", err)
	}
	r2 := makeRun(StatusSucceeded)
	r2.ID = "bbb222"
	r2.Name = "second"
	if err := CreateRunFolder(r2); err != nil {
		t.Fatalf("CreateRunFolder failed: %v", err)
	}

	runs, err := ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Name != "first" || runs[1].Name != "second" {
		t.Errorf("got %q, %q", runs[0].Name, runs[1].Name)
	}
}
