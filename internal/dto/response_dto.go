package dto

// Timer levels used by the UI to colour the countdown bar.
const (
	TimerLevelDanger  = "danger"
	TimerLevelCaution = "caution"
	TimerLevelSafe    = "safe"
)

type SettingsResponse struct {
	Genre            string `json:"genre"`
	Difficulty       string `json:"difficulty"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
}

type TimerResponse struct {
	RemainingSeconds float64 `json:"remaining_seconds"`
	Percent          float64 `json:"percent"`
	Level            string  `json:"level"`
	Running          bool    `json:"running"`
}

type AnswerVerdictResponse struct {
	AnswerText string `json:"answer"`
	IsCorrect  bool   `json:"is_correct"`
	Reason     string `json:"reason"`
}

type ResultResponse struct {
	Score     int                     `json:"score"`
	PerAnswer []AnswerVerdictResponse `json:"results"`
	Comment   string                  `json:"comment"`
}

type EffectResponse struct {
	Kind  string `json:"kind"`
	Sound string `json:"sound,omitempty"`
	Text  string `json:"text,omitempty"`
	Asset string `json:"asset,omitempty"`
}

// GameStateResponse is everything the UI needs to render the current phase.
type GameStateResponse struct {
	Phase            string            `json:"phase"`
	Settings         *SettingsResponse `json:"settings,omitempty"`
	PromptText       string            `json:"prompt_text,omitempty"`
	SubmittedAnswers []string          `json:"submitted_answers"`
	RevealedHints    []string          `json:"revealed_hints"`
	HintsRemaining   int               `json:"hints_remaining"`
	HintAvailable    bool              `json:"hint_available"`
	NarrationAsset   string            `json:"narration_asset,omitempty"`
	Timer            *TimerResponse    `json:"timer,omitempty"`
	Result           *ResultResponse   `json:"result,omitempty"`
	ExpectedAnswers  []string          `json:"expected_answers,omitempty"`
	Rated            bool              `json:"rated"`
	Effects          []EffectResponse  `json:"effects"`
}

type OptionsResponse struct {
	Genres           []string         `json:"genres"`
	Difficulties     []string         `json:"difficulties"`
	MinTimeLimit     int              `json:"min_time_limit"`
	MaxTimeLimit     int              `json:"max_time_limit"`
	DefaultTimeLimit int              `json:"default_time_limit"`
	Defaults         SettingsResponse `json:"defaults"`
}

type ErrorResponse struct {
	Error string             `json:"error"`
	Code  string             `json:"code,omitempty"`
	State *GameStateResponse `json:"state,omitempty"`
}
