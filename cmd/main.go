package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/QuizBomber/config"
	"github.com/lshigami/QuizBomber/database"
	gamectrl "github.com/lshigami/QuizBomber/internal/controller/game"
	"github.com/lshigami/QuizBomber/internal/logger"
	"github.com/lshigami/QuizBomber/internal/repository"
	"github.com/lshigami/QuizBomber/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"google.golang.org/api/option"
)

// @title QuizBomber API
// @version 1.0
// @description Single-player "name five" party quiz: AI-generated prompts, a countdown bomb and AI grading.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			NewGinEngine,
			NewFeedbackRepository,
			service.NewSystemClock,
		),

		fx.Provide(
			service.NewGeminiLLMService,
			func(cfg *config.Config) *service.Retrier {
				return service.NewRetrier(cfg.LLM.MaxAttempts, cfg.LLM.RetryDelay)
			},
			func(repo repository.FeedbackRepository, clock service.Clock) service.RatingStore {
				return service.NewRatingStoreService(repo, clock, nil)
			},
			func(llm service.GeminiLLMService, store service.RatingStore, retrier *service.Retrier, cfg *config.Config) service.QuestionGenerator {
				return service.NewPromptBuilderService(llm, store, retrier, cfg.LLM.QuestionTemperature, cfg.Game.Language, nil)
			},
			func(llm service.GeminiLLMService, retrier *service.Retrier, cfg *config.Config) service.AnswerGrader {
				return service.NewGraderService(llm, retrier, cfg.Game.Language)
			},
			service.NewNarratorService,
			func(
				questions service.QuestionGenerator,
				grader service.AnswerGrader,
				store service.RatingStore,
				narrator service.Narrator,
				clock service.Clock,
				cfg *config.Config,
			) *service.SessionEngine {
				return service.NewSessionEngine(questions, grader, store, narrator, clock, cfg.TTS.Language)
			},
		),

		fx.Provide(gamectrl.NewGameController),

		fx.Invoke(InitLogger),
		fx.Invoke(CloseLLMOnStop),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop application cleanly")
	}
}

func InitLogger(cfg *config.Config) {
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)
}

// NewFeedbackRepository picks the ratings backend from RATINGS_BACKEND.
func NewFeedbackRepository(lc fx.Lifecycle, cfg *config.Config) (repository.FeedbackRepository, error) {
	if cfg.Ratings.Backend == config.RatingsBackendSheets {
		var opts []option.ClientOption
		if cfg.Sheets.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Sheets.CredentialsFile))
		}
		return repository.NewSheetsFeedbackRepository(context.Background(), cfg.Sheets.SpreadsheetID, cfg.Sheets.Range, opts...)
	}

	db, err := database.NewDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Error().Err(err).Msg("Failed to auto-migrate database")
		return nil, err
	}
	log.Info().Msg("Database auto-migration completed successfully.")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return repository.NewFeedbackRepository(db), nil
}

func CloseLLMOnStop(lc fx.Lifecycle, llm service.GeminiLLMService) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return llm.Close()
		},
	})
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	if cfg.Log.Pretty {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

// RegisterRoutesAndStartServer mounts the game API and narration assets and manages the server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	gameCtrl *gamectrl.GameController,
) error {
	if err := os.MkdirAll(cfg.TTS.AudioDir, 0o755); err != nil {
		return err
	}
	router.Static(cfg.TTS.PublicPath, cfg.TTS.AudioDir)

	gameCtrl.RegisterRoutes(router.Group("/api/v1"))

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("QuizBomber server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
	return nil
}
