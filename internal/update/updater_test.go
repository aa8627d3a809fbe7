package update

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/adamancini/autoupdater/internal/types"
)

type fakeWaiter struct {
	calls []int
	err   error
	ctx   context.Context
}

func (f *fakeWaiter) Wait(ctx context.Context, pid int) error {
	f.calls = append(f.calls, pid)
	f.ctx = ctx
	return f.err
}

type fakeStager struct {
	calls  int
	result *StageResult
	err    error
}

func (f *fakeStager) Apply(_ context.Context, archives []ArchiveRef) (*StageResult, error) {
	f.calls++
	if f.result == nil {
		f.result = &StageResult{}
		for _, a := range archives {
			f.result.Extracted = append(f.result.Extracted, a.Path)
		}
	}
	return f.result, f.err
}

type fakeLauncher struct {
	specs []RelaunchSpec
	err   error
}

func (f *fakeLauncher) Launch(spec RelaunchSpec) (int, error) {
	f.specs = append(f.specs, spec)
	if f.err != nil {
		return 0, f.err
	}
	return 9001, nil
}

func newFakeUpdater() (*Updater, *fakeWaiter, *fakeStager, *fakeLauncher) {
	w, s, l := &fakeWaiter{}, &fakeStager{}, &fakeLauncher{}
	return New(nil).WithWaiter(w).WithStager(s).WithLauncher(l), w, s, l
}

func TestRun_FullSequence(t *testing.T) {
	u, w, s, l := newFakeUpdater()
	plan := Plan{
		PID:        77,
		Archives:   []ArchiveRef{{Path: "update.zip", Kind: types.ArchiveKindZip}},
		Executable: "./game",
		Args:       []string{"--resume", "slot 1"},
	}

	report, err := u.Run(context.Background(), plan)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !reflect.DeepEqual(w.calls, []int{77}) {
		t.Errorf("waiter calls = %v, want [77]", w.calls)
	}
	if s.calls != 1 {
		t.Errorf("stager calls = %d, want 1", s.calls)
	}
	if len(l.specs) != 1 || l.specs[0].Path != "./game" || !reflect.DeepEqual(l.specs[0].Args, plan.Args) {
		t.Errorf("launcher specs = %+v", l.specs)
	}

	if report.WaitedPID != 77 || report.RelaunchedPID != 9001 || report.Relaunched != "./game" {
		t.Errorf("report = %+v", report)
	}
	if report.Stage == nil || len(report.Stage.Extracted) != 1 {
		t.Errorf("report.Stage = %+v", report.Stage)
	}
	if report.FailedStep != "" {
		t.Errorf("FailedStep = %s, want empty", report.FailedStep)
	}
	if report.Elapsed == "" {
		t.Error("Elapsed should be set")
	}
}

func TestRun_SkipsOptionalSteps(t *testing.T) {
	tests := []struct {
		name       string
		plan       Plan
		wantWaits  int
		wantStages int
		wantLaunch int
	}{
		{
			name: "nothing to do",
		},
		{
			name:       "restart only",
			plan:       Plan{PID: 5, Executable: "./app"},
			wantWaits:  1,
			wantLaunch: 1,
		},
		{
			name:       "files only",
			plan:       Plan{Archives: []ArchiveRef{{Path: "u.zip", Kind: types.ArchiveKindZip}}},
			wantStages: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, w, s, l := newFakeUpdater()
			report, err := u.Run(context.Background(), tt.plan)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if len(w.calls) != tt.wantWaits {
				t.Errorf("waits = %d, want %d", len(w.calls), tt.wantWaits)
			}
			if s.calls != tt.wantStages {
				t.Errorf("stages = %d, want %d", s.calls, tt.wantStages)
			}
			if len(l.specs) != tt.wantLaunch {
				t.Errorf("launches = %d, want %d", len(l.specs), tt.wantLaunch)
			}
			if tt.wantStages == 0 && report.Stage != nil {
				t.Errorf("report.Stage = %+v, want nil", report.Stage)
			}
		})
	}
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	t.Run("wait", func(t *testing.T) {
		u, w, s, l := newFakeUpdater()
		w.err = stepErr(types.StepWait, "", ErrWaitTimeout)

		report, err := u.Run(context.Background(), Plan{PID: 3, Archives: []ArchiveRef{{Path: "u.zip"}}, Executable: "./app"})
		if !errors.Is(err, ErrWaitTimeout) {
			t.Fatalf("Run() error = %v, want ErrWaitTimeout", err)
		}
		if s.calls != 0 || len(l.specs) != 0 {
			t.Error("no step may run after a failed wait")
		}
		if report.FailedStep != types.StepWait {
			t.Errorf("FailedStep = %s, want wait", report.FailedStep)
		}
	})

	t.Run("stage", func(t *testing.T) {
		u, _, s, l := newFakeUpdater()
		s.result = &StageResult{Extracted: []string{"u.zip"}}
		s.err = stepErr(types.StepSwap, "app.exe", errors.New("permission denied"))

		report, err := u.Run(context.Background(), Plan{Archives: []ArchiveRef{{Path: "u.zip"}}, Executable: "./app"})
		if err == nil {
			t.Fatal("Expected error")
		}
		if len(l.specs) != 0 {
			t.Error("relaunch must not run after a failed swap")
		}
		if report.FailedStep != types.StepSwap {
			t.Errorf("FailedStep = %s, want swap", report.FailedStep)
		}
		if report.Stage == nil || len(report.Stage.Extracted) != 1 {
			t.Error("partial stage result should be reported")
		}
	})

	t.Run("relaunch", func(t *testing.T) {
		u, _, _, l := newFakeUpdater()
		l.err = stepErr(types.StepRelaunch, "./app", errors.New("no such file"))

		report, err := u.Run(context.Background(), Plan{Executable: "./app"})
		if err == nil {
			t.Fatal("Expected error")
		}
		if report.FailedStep != types.StepRelaunch {
			t.Errorf("FailedStep = %s, want relaunch", report.FailedStep)
		}
	})
}

func TestRun_WaitTimeoutBoundsContext(t *testing.T) {
	u, w, _, _ := newFakeUpdater()

	if _, err := u.Run(context.Background(), Plan{PID: 9, WaitTimeout: time.Minute}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	deadline, ok := w.ctx.Deadline()
	if !ok {
		t.Fatal("wait context should carry a deadline")
	}
	if time.Until(deadline) > time.Minute {
		t.Errorf("deadline %v is beyond the configured timeout", deadline)
	}

	u, w, _, _ = newFakeUpdater()
	if _, err := u.Run(context.Background(), Plan{PID: 9}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, ok := w.ctx.Deadline(); ok {
		t.Error("zero timeout must not impose a deadline")
	}
}

func TestRun_RealComponents(t *testing.T) {
	appDir, stagingDir := newWorkspace(t)
	archive := filepath.Join(appDir, "update.zip")
	writeZip(t, archive, []fixtureEntry{
		{Name: "app.exe", Content: "v2"},
		{Name: "data/config.json", Content: "{}"},
	})

	report, err := New(nil).Run(context.Background(), Plan{
		Archives:   mustRefs(t, archive),
		StagingDir: stagingDir,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	assertTree(t, appDir, map[string]string{
		"app.exe":          "v2",
		"data/":            "",
		"data/config.json": "{}",
	})
	if !strings.Contains(report.String(), "replaced 2 entries") {
		t.Errorf("report text = %q", report.String())
	}
	if _, err := os.Stat(stagingDir); !os.IsNotExist(err) {
		t.Error("staging directory should be gone")
	}
}
