package game

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/lshigami/QuizBomber/internal/dto"
	"github.com/lshigami/QuizBomber/internal/model"
	"github.com/lshigami/QuizBomber/internal/service"
	"github.com/rs/zerolog/log"
)

const dangerThreshold = 15 * time.Second

// GameEngine is the session the controller relays player actions to.
type GameEngine interface {
	Snapshot() service.Snapshot
	Clock() service.Clock
	Start(ctx context.Context, settings model.GameSettings) (service.Outcome, error)
	Tick() service.Outcome
	SubmitAnswer(text string) (service.Outcome, error)
	RevealHint() (service.Outcome, error)
	Finish(ctx context.Context) (service.Outcome, error)
	SubmitRating(ctx context.Context, rating int) (service.Outcome, error)
	Next() (service.Outcome, error)
}

type GameController struct {
	engine GameEngine
}

func NewGameController(engine *service.SessionEngine) *GameController {
	return NewGameControllerWithEngine(engine)
}

func NewGameControllerWithEngine(engine GameEngine) *GameController {
	return &GameController{engine: engine}
}

func (c *GameController) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/game")
	g.GET("", c.GetState)
	g.GET("/options", c.GetOptions)
	g.POST("/start", c.Start)
	g.POST("/tick", c.Tick)
	g.POST("/hints", c.RevealHint)
	g.POST("/answers", c.SubmitAnswer)
	g.POST("/finish", c.Finish)
	g.POST("/rating", c.SubmitRating)
	g.POST("/next", c.Next)
}

// GetState godoc
// @Summary Current game state
// @Description Returns the current snapshot without advancing the round.
// @Tags Game
// @Produce json
// @Success 200 {object} dto.GameStateResponse
// @Router /game [get]
func (c *GameController) GetState(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.render(service.Outcome{Snapshot: c.engine.Snapshot()}))
}

// GetOptions godoc
// @Summary Start screen options
// @Tags Game
// @Produce json
// @Success 200 {object} dto.OptionsResponse
// @Router /game/options [get]
func (c *GameController) GetOptions(ctx *gin.Context) {
	defaults := model.DefaultSettings()
	difficulties := make([]string, 0, len(model.Difficulties))
	for _, d := range model.Difficulties {
		difficulties = append(difficulties, string(d))
	}
	ctx.JSON(http.StatusOK, dto.OptionsResponse{
		Genres:           model.Genres,
		Difficulties:     difficulties,
		MinTimeLimit:     model.MinTimeLimit,
		MaxTimeLimit:     model.MaxTimeLimit,
		DefaultTimeLimit: model.DefaultTimeLimit,
		Defaults:         toSettingsResponse(defaults),
	})
}

// Start godoc
// @Summary Start a round
// @Description Generates a question for the chosen settings and begins narration.
// @Tags Game
// @Accept json
// @Produce json
// @Param settings body dto.StartGameRequest true "Round settings"
// @Success 200 {object} dto.GameStateResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid settings"
// @Failure 409 {object} dto.ErrorResponse "A round is already running"
// @Failure 502 {object} dto.ErrorResponse "Question generation failed"
// @Router /game/start [post]
func (c *GameController) Start(ctx *gin.Context) {
	var req dto.StartGameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.badRequest(ctx, err)
		return
	}
	settings := model.GameSettings{
		Genre:            req.Genre,
		Difficulty:       model.Difficulty(req.Difficulty),
		TimeLimitSeconds: req.TimeLimitSeconds,
	}
	if err := settings.Validate(); err != nil {
		c.badRequest(ctx, err)
		return
	}
	out, err := c.engine.Start(ctx.Request.Context(), settings)
	c.respond(ctx, out, err)
}

// Tick godoc
// @Summary Observe the clock
// @Description Applies any timed transition (narration end, time up, explosion end).
// @Tags Game
// @Produce json
// @Success 200 {object} dto.GameStateResponse
// @Router /game/tick [post]
func (c *GameController) Tick(ctx *gin.Context) {
	c.respond(ctx, c.engine.Tick(), nil)
}

// RevealHint godoc
// @Summary Reveal the next hint
// @Tags Game
// @Produce json
// @Success 200 {object} dto.GameStateResponse
// @Failure 409 {object} dto.ErrorResponse "No hint available"
// @Router /game/hints [post]
func (c *GameController) RevealHint(ctx *gin.Context) {
	out, err := c.engine.RevealHint()
	c.respond(ctx, out, err)
}

// SubmitAnswer godoc
// @Summary Submit one answer
// @Tags Game
// @Accept json
// @Produce json
// @Param answer body dto.SubmitAnswerRequest true "Answer"
// @Success 200 {object} dto.GameStateResponse
// @Failure 400 {object} dto.ErrorResponse "Empty answer"
// @Failure 409 {object} dto.ErrorResponse "Answer not accepted or time is up"
// @Router /game/answers [post]
func (c *GameController) SubmitAnswer(ctx *gin.Context) {
	var req dto.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.badRequest(ctx, err)
		return
	}
	out, err := c.engine.SubmitAnswer(req.Answer)
	c.respond(ctx, out, err)
}

// Finish godoc
// @Summary Grade the round
// @Description Grades the collected answers. On 502 the round stays in grading and can be retried.
// @Tags Game
// @Produce json
// @Success 200 {object} dto.GameStateResponse
// @Failure 409 {object} dto.ErrorResponse "Not in grading"
// @Failure 502 {object} dto.ErrorResponse "Grading failed"
// @Router /game/finish [post]
func (c *GameController) Finish(ctx *gin.Context) {
	out, err := c.engine.Finish(ctx.Request.Context())
	c.respond(ctx, out, err)
}

// SubmitRating godoc
// @Summary Rate the round's prompt
// @Tags Game
// @Accept json
// @Produce json
// @Param rating body dto.SubmitRatingRequest true "Rating 1-5"
// @Success 200 {object} dto.GameStateResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid rating"
// @Failure 409 {object} dto.ErrorResponse "Already rated or no result yet"
// @Failure 503 {object} dto.ErrorResponse "Rating could not be stored"
// @Router /game/rating [post]
func (c *GameController) SubmitRating(ctx *gin.Context) {
	var req dto.SubmitRatingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.badRequest(ctx, err)
		return
	}
	out, err := c.engine.SubmitRating(ctx.Request.Context(), req.Rating)
	c.respond(ctx, out, err)
}

// Next godoc
// @Summary Leave the result screen
// @Tags Game
// @Produce json
// @Success 200 {object} dto.GameStateResponse
// @Failure 409 {object} dto.ErrorResponse "Round not finished"
// @Router /game/next [post]
func (c *GameController) Next(ctx *gin.Context) {
	out, err := c.engine.Next()
	c.respond(ctx, out, err)
}

func (c *GameController) respond(ctx *gin.Context, out service.Outcome, err error) {
	state := c.render(out)
	if err == nil {
		ctx.JSON(http.StatusOK, state)
		return
	}

	status, code := statusFor(err)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("path", ctx.FullPath()).Str("phase", state.Phase).Msg("Game action rejected")
	ctx.JSON(status, dto.ErrorResponse{Error: err.Error(), Code: code, State: &state})
}

func (c *GameController) badRequest(ctx *gin.Context, err error) {
	state := c.render(service.Outcome{Snapshot: c.engine.Snapshot()})
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: "bad_request", State: &state})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrTimeUp):
		return http.StatusConflict, "time_up"
	case errors.Is(err, model.ErrAlreadySubmitted):
		return http.StatusConflict, "already_submitted"
	case errors.Is(err, model.ErrInvalidAction):
		return http.StatusConflict, "invalid_action"
	case errors.Is(err, model.ErrGenerationFailed):
		return http.StatusBadGateway, "generation_failed"
	case errors.Is(err, model.ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable, "persistence_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (c *GameController) render(out service.Outcome) dto.GameStateResponse {
	snap := out.Snapshot
	now := c.engine.Clock().Now()

	resp := dto.GameStateResponse{
		Phase:            string(snap.Phase),
		PromptText:       snap.PromptText,
		SubmittedAnswers: nonNil(snap.SubmittedAnswers),
		RevealedHints:    nonNil(snap.RevealedHints),
		NarrationAsset:   snap.NarrationAsset,
		ExpectedAnswers:  snap.ExpectedAnswers,
		Rated:            snap.Rated,
		Effects:          []dto.EffectResponse{},
	}
	if len(out.Effects) > 0 {
		if err := copier.Copy(&resp.Effects, &out.Effects); err != nil {
			log.Error().Err(err).Msg("Failed to map effects")
		}
	}

	if snap.Settings != nil {
		settings := toSettingsResponse(*snap.Settings)
		resp.Settings = &settings
		resp.Timer = timerFor(snap, now)
		resp.HintsRemaining = model.AnswerCount - snap.RevealedHintCount
		resp.HintAvailable = snap.Phase == model.PhaseAnswering &&
			resp.HintsRemaining > 0 &&
			snap.Remaining(now) > service.HintFloor
	}

	if snap.Result != nil {
		result := &dto.ResultResponse{
			Score:     snap.Result.Score,
			Comment:   snap.Result.Comment,
			PerAnswer: []dto.AnswerVerdictResponse{},
		}
		if err := copier.Copy(&result.PerAnswer, &snap.Result.PerAnswer); err != nil {
			log.Error().Err(err).Msg("Failed to map verdicts")
		}
		resp.Result = result
	}
	return resp
}

func timerFor(snap service.Snapshot, now time.Time) *dto.TimerResponse {
	limit := snap.Settings.TimeLimit()
	remaining := snap.Remaining(now)
	if remaining < 0 {
		remaining = 0
	}
	percent := 0.0
	if limit > 0 {
		percent = float64(remaining) / float64(limit) * 100
	}
	return &dto.TimerResponse{
		RemainingSeconds: remaining.Seconds(),
		Percent:          percent,
		Level:            timerLevel(remaining, limit),
		Running:          snap.Phase == model.PhaseAnswering,
	}
}

func timerLevel(remaining, limit time.Duration) string {
	switch {
	case remaining <= dangerThreshold:
		return dto.TimerLevelDanger
	case remaining <= limit/2:
		return dto.TimerLevelCaution
	default:
		return dto.TimerLevelSafe
	}
}

func toSettingsResponse(s model.GameSettings) dto.SettingsResponse {
	return dto.SettingsResponse{
		Genre:            s.Genre,
		Difficulty:       string(s.Difficulty),
		TimeLimitSeconds: s.TimeLimitSeconds,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
