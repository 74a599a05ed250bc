package models

import (
	"fmt"
	"time"
)

// Stage is the kind of interval that is currently active.
type Stage string

const (
	StageIdle  Stage = "idle"
	StageFocus Stage = "focus"
	StageBreak Stage = "break"
)

// Status reports whether the active interval's countdown is running.
type Status string

const (
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
)

// Session is the whole persisted timer state.
//
// Deadline is authoritative while Status is running, Remaining while it is
// paused. An idle session is always running with a zero Count.
type Session struct {
	Stage     Stage
	Status    Status
	Count     int // focus intervals in the current row
	Deadline  time.Time
	Remaining time.Duration
}

// NewIdleSession returns the state used when no status file exists yet.
func NewIdleSession(now time.Time) *Session {
	return &Session{
		Stage:    StageIdle,
		Status:   StatusRunning,
		Count:    0,
		Deadline: now,
	}
}

// Paused reports whether the countdown is frozen.
func (s *Session) Paused() bool {
	return s.Status == StatusPaused
}

// Validate checks the rules every stored session obeys: the count is never
// negative, and an idle session is running with a zero count.
func (s *Session) Validate() error {
	if s.Count < 0 {
		return fmt.Errorf("negative session count %d", s.Count)
	}
	if s.Stage == StageIdle {
		if s.Status != StatusRunning {
			return fmt.Errorf("idle session cannot be %s", s.Status)
		}
		if s.Count != 0 {
			return fmt.Errorf("idle session has count %d, want 0", s.Count)
		}
	}
	return nil
}

// ParseStage converts a stored stage name.
func ParseStage(v string) (Stage, error) {
	switch Stage(v) {
	case StageIdle, StageFocus, StageBreak:
		return Stage(v), nil
	}
	return "", fmt.Errorf("unknown stage %q", v)
}

// ParseStatus converts a stored status name.
func ParseStatus(v string) (Status, error) {
	switch Status(v) {
	case StatusRunning, StatusPaused:
		return Status(v), nil
	}
	return "", fmt.Errorf("unknown status %q", v)
}
