package model

// AnswerCount is the number of answers a round asks for.
const AnswerCount = 5

// Question is one "name five things" prompt. Hints[i] belongs to ExpectedAnswers[i].
type Question struct {
	PromptText      string   `json:"prompt_text"`
	ExpectedAnswers []string `json:"expected_answers"`
	Hints           []string `json:"hints"`
}
