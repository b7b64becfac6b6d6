package model

import "time"

type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseAwaitingQuestion Phase = "awaiting_question"
	PhaseNarrating        Phase = "narrating"
	PhaseAnswering        Phase = "answering"
	PhaseExploding        Phase = "exploding"
	PhaseGrading          Phase = "grading"
	PhaseResult           Phase = "result"
)

// Round is the mutable state of a single quiz round. StartedAt is zero until narration completes.
type Round struct {
	Settings          GameSettings
	Question          Question
	SubmittedAnswers  []string
	RevealedHintCount int
	StartedAt         time.Time
	Phase             Phase
}

func (r *Round) Started() bool {
	return !r.StartedAt.IsZero()
}

// Remaining is the time left on the clock at now. Before the round starts it is the full limit.
func (r *Round) Remaining(now time.Time) time.Duration {
	if !r.Started() {
		return r.Settings.TimeLimit()
	}
	return r.Settings.TimeLimit() - now.Sub(r.StartedAt)
}

func (r *Round) RevealedHints() []string {
	n := r.RevealedHintCount
	if n > len(r.Question.Hints) {
		n = len(r.Question.Hints)
	}
	out := make([]string, n)
	copy(out, r.Question.Hints[:n])
	return out
}
