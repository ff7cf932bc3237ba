package candidate_test

import (
	"testing"

	"hrpipeline/internal/common"
	"hrpipeline/internal/domain/candidate"
	"hrpipeline/internal/domain/job"
)

func TestParseStatus(t *testing.T) {
	status, err := candidate.ParseStatus("interview_manager")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if status != candidate.StatusInterviewManager {
		t.Fatalf("status = %q", status)
	}

	if _, err := candidate.ParseStatus("hired"); !common.Is(err, common.CodeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to candidate.Status
		want     bool
	}{
		{candidate.StatusScreening, candidate.StatusInterviewRecruiter, true},
		{candidate.StatusInterviewRecruiter, candidate.StatusScreening, true},
		{candidate.StatusInterviewRecruiter, candidate.StatusRescheduleRecruiter, true},
		{candidate.StatusRescheduleRecruiter, candidate.StatusInterviewManager, true},
		{candidate.StatusInterviewManager, candidate.StatusRescheduleManager, true},
		{candidate.StatusRescheduleManager, candidate.StatusInterviewManager, true},

		// stage skips are not allowed
		{candidate.StatusScreening, candidate.StatusInterviewManager, false},
		{candidate.StatusScreening, candidate.StatusRescheduleManager, false},
		{candidate.StatusInterviewRecruiter, candidate.StatusRescheduleManager, false},

		// terminal states are reachable from any non-terminal stage
		{candidate.StatusScreening, candidate.StatusApproved, true},
		{candidate.StatusScreening, candidate.StatusRejected, true},
		{candidate.StatusInterviewRecruiter, candidate.StatusApproved, true},
		{candidate.StatusRescheduleManager, candidate.StatusRejected, true},

		// and are absorbing
		{candidate.StatusApproved, candidate.StatusScreening, false},
		{candidate.StatusApproved, candidate.StatusRejected, false},
		{candidate.StatusRejected, candidate.StatusInterviewRecruiter, false},

		{candidate.StatusScreening, candidate.StatusScreening, false},
	}
	for _, tc := range cases {
		if got := candidate.CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !candidate.IsTerminal(candidate.StatusApproved) || !candidate.IsTerminal(candidate.StatusRejected) {
		t.Fatal("approved and rejected must be terminal")
	}
	if candidate.IsTerminal(candidate.StatusScreening) {
		t.Fatal("screening must not be terminal")
	}
}

func TestRequiresInterviewDate(t *testing.T) {
	needsDate := []candidate.Status{
		candidate.StatusInterviewRecruiter,
		candidate.StatusRescheduleRecruiter,
		candidate.StatusInterviewManager,
		candidate.StatusRescheduleManager,
	}
	for _, status := range needsDate {
		if !candidate.RequiresInterviewDate(status) {
			t.Errorf("RequiresInterviewDate(%s) = false", status)
		}
	}
	for _, status := range []candidate.Status{candidate.StatusScreening, candidate.StatusApproved, candidate.StatusRejected} {
		if candidate.RequiresInterviewDate(status) {
			t.Errorf("RequiresInterviewDate(%s) = true", status)
		}
	}
}

func TestMirroredJobStatus(t *testing.T) {
	mirrored, ok := candidate.MirroredJobStatus(candidate.StatusInterviewManager)
	if !ok || mirrored != job.StatusInterviewManager {
		t.Fatalf("mirror = %q, %v", mirrored, ok)
	}
	if _, ok := candidate.MirroredJobStatus(candidate.StatusScreening); ok {
		t.Fatal("screening must not mirror a job status")
	}
	if _, ok := candidate.MirroredJobStatus(candidate.StatusApproved); ok {
		t.Fatal("approved must not mirror a job status")
	}
}
