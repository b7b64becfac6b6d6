package model

type AnswerVerdict struct {
	AnswerText string `json:"answer"`
	IsCorrect  bool   `json:"is_correct"`
	Reason     string `json:"reason"`
}

// Result is the grading outcome of a round. Score is whatever the grading model reported.
type Result struct {
	Score     int             `json:"score"`
	PerAnswer []AnswerVerdict `json:"results"`
	Comment   string          `json:"comment"`
}

func (r Result) CorrectCount() int {
	n := 0
	for _, v := range r.PerAnswer {
		if v.IsCorrect {
			n++
		}
	}
	return n
}

func (r Result) Clone() Result {
	out := r
	out.PerAnswer = append([]AnswerVerdict(nil), r.PerAnswer...)
	return out
}
