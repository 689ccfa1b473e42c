package task

import "testing"

func makeRun(statuses ...string) *Run {
	r := &Run{
		ID:     "abc123",
		Name:   "test-run",
		Status: RunStatusInProgress,
	}
	for i, s := range statuses {
		r.Tasks = append(r.Tasks, Task{
			ID:      "t0" + string(rune('1'+i)),
			Article: "https://cafe.naver.com/mycafe/100",
			Comment: "hello",
			Status:  s,
		})
	}
	return r
}

func TestNextActionable(t *testing.T) {
	t.Run("returns first pending task", func(t *testing.T) {
		r := makeRun(StatusSucceeded, StatusPending, StatusPending)
		if got := r.NextActionable(5); got != 1 {
			t.Errorf("got %d, want 1", got)
		}
	})

	t.Run("retryable task with attempts left is offered", func(t *testing.T) {
		r := makeRun(StatusFailedRetry)
		r.Tasks[0].Attempts = 4
		if got := r.NextActionable(5); got != 0 {
			t.Errorf("got %d, want 0", got)
		}
	})

	t.Run("retryable task at attempt ceiling is skipped", func(t *testing.T) {
		r := makeRun(StatusFailedRetry, StatusPending)
		r.Tasks[0].Attempts = 5
		if got := r.NextActionable(5); got != 1 {
			t.Errorf("got %d, want 1", got)
		}
	})

	t.Run("all settled returns -1", func(t *testing.T) {
		r := makeRun(StatusSucceeded, StatusFailedFatal)
		if got := r.NextActionable(5); got != -1 {
			t.Errorf("got %d, want -1", got)
		}
	})

	t.Run("preserves source order", func(t *testing.T) {
		r := makeRun(StatusPending, StatusFailedRetry)
		if got := r.NextActionable(5); got != 0 {
			t.Errorf("got %d, want 0", got)
		}
	})
}

func TestRevertInterrupted(t *testing.T) {
	r := makeRun(StatusSucceeded, StatusInProgress, StatusPending)
	r.Tasks[1].Attempts = 2

	n := r.RevertInterrupted()
	if n != 1 {
		t.Errorf("reverted %d tasks, want 1", n)
	}
	if r.Tasks[1].Status != StatusPending {
		t.Errorf("status = %q, want %q", r.Tasks[1].Status, StatusPending)
	}
	if r.Tasks[1].Attempts != 2 {
		t.Errorf("attempts = %d, want 2 (attempt count must survive revert)", r.Tasks[1].Attempts)
	}
	if r.Tasks[0].Status != StatusSucceeded {
		t.Errorf("succeeded task was touched: %q", r.Tasks[0].Status)
	}
}

func TestCounts(t *testing.T) {
	r := makeRun(StatusSucceeded, StatusSucceeded, StatusFailedFatal, StatusPending, StatusFailedRetry)
	succeeded, fatal, remaining := r.Counts()
	if succeeded != 2 || fatal != 1 || remaining != 2 {
		t.Errorf("got (%d, %d, %d), want (2, 1, 2)", succeeded, fatal, remaining)
	}
}

func TestAllSettled(t *testing.T) {
	t.Run("settled run", func(t *testing.T) {
		r := makeRun(StatusSucceeded, StatusFailedFatal)
		if !r.AllSettled() {
			t.Error("expected settled")
		}
	})

	t.Run("pending task means not settled", func(t *testing.T) {
		r := makeRun(StatusSucceeded, StatusPending)
		if r.AllSettled() {
			t.Error("expected not settled")
		}
	})

	t.Run("in_progress task means not settled", func(t *testing.T) {
		r := makeRun(StatusInProgress)
		if r.AllSettled() {
			t.Error("expected not settled")
		}
	})
}

func TestFatalTasks(t *testing.T) {
	r := makeRun(StatusSucceeded, StatusFailedFatal, StatusFailedFatal)
	fatal := r.FatalTasks()
	if len(fatal) != 2 {
		t.Fatalf("got %d fatal tasks, want 2", len(fatal))
	}
	if fatal[0].ID != r.Tasks[1].ID {
		t.Errorf("got %q, want %q", fatal[0].ID, r.Tasks[1].ID)
	}
}

func TestTaskActionable(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{StatusPending, true},
		{StatusFailedRetry, true},
		{StatusInProgress, false},
		{StatusSucceeded, false},
		{StatusFailedFatal, false},
	}
	for _, tc := range cases {
		tk := Task{Status: tc.status}
		if got := tk.Actionable(); got != tc.want {
			t.Errorf("Actionable(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}
