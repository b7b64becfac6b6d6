package dto

type StartGameRequest struct {
	Genre            string `json:"genre" binding:"required"`
	Difficulty       string `json:"difficulty" binding:"required,oneof=easy normal hard"`
	TimeLimitSeconds int    `json:"time_limit_seconds" binding:"required,min=20,max=100"`
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

type SubmitRatingRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}
