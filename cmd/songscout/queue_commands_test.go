package main

import (
	"strings"
	"testing"
)

func TestEnqueueThenJobsListsQueuedJob(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, cfgPath, "enqueue", "1,2", "--phase", "metadata")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if !strings.Contains(out, "Queued job") || !strings.Contains(out, "2 tracks") {
		t.Fatalf("unexpected enqueue output: %s", out)
	}

	out, err = runCommand(t, cfgPath, "jobs")
	if err != nil {
		t.Fatalf("jobs: %v", err)
	}
	if !strings.Contains(out, "queued") || !strings.Contains(out, "metadata") {
		t.Fatalf("unexpected jobs output: %s", out)
	}
}

func TestEnqueueRejectsBadInput(t *testing.T) {
	cfgPath := writeTestConfig(t)

	if _, err := runCommand(t, cfgPath, "enqueue", "not-a-number"); err == nil {
		t.Fatal("expected invalid id to be rejected")
	}
	if _, err := runCommand(t, cfgPath, "enqueue", "1", "--phase", "bogus"); err == nil {
		t.Fatal("expected unknown phase to be rejected")
	}
}

func TestRetryWithNothingToDo(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, cfgPath, "retry")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !strings.Contains(out, "0 tracks queued for retry") {
		t.Fatalf("unexpected retry output: %s", out)
	}
}

func TestStatusOnFreshDatabase(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, cfgPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Queued jobs") {
		t.Fatalf("missing queue section: %s", out)
	}
	if !strings.Contains(out, "never authenticated") {
		t.Fatalf("expected never-authenticated auth state: %s", out)
	}
	if !strings.Contains(out, "none captured") {
		t.Fatalf("expected empty snapshot state: %s", out)
	}
}
