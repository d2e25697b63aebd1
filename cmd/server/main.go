package main

import (
	"context"
	"log"

	"replyboost-backend/auth"
	"replyboost-backend/config"
	"replyboost-backend/handlers"
	"replyboost-backend/llm"
	"replyboost-backend/repository"
	"replyboost-backend/service"
	"replyboost-backend/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	auth.InitJWT(cfg.App.JWTSecret)

	db, err := initPostgres(cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to initialize Postgres:", err)
	}
	defer db.Close()

	exportStorage, err := storage.NewStorageFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Println("Storage initialized")

	llmClient, err := initLLM(cfg)
	if err != nil {
		log.Fatal("Failed to initialize LLM client:", err)
	}

	userRepo := repository.NewUserRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	incomeRepo := repository.NewIncomeRepository(db)
	exportRepo := repository.NewExportRepository(db)

	generatorService := service.NewGeneratorService(
		service.GeneratorWithClient(llmClient),
	)

	userService := service.NewUserService(
		service.UserWithStore(userRepo),
	)

	proposalService := service.NewProposalService(
		service.ProposalWithUserStore(userRepo),
		service.ProposalWithProposalStore(proposalRepo),
		service.ProposalWithExportStore(exportRepo),
		service.ProposalWithGenerator(generatorService),
		service.ProposalWithStorage(exportStorage),
	)

	incomeService := service.NewIncomeService(
		service.IncomeWithUserStore(userRepo),
		service.IncomeWithStore(incomeRepo),
	)

	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	generatorHandler := handlers.NewGeneratorHandler(proposalService)
	proposalHandler := handlers.NewProposalHandler(proposalService)
	incomeHandler := handlers.NewIncomeHandler(incomeService)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.FrontendURL}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		protected := api.Group("")
		protected.Use(auth.Middleware())
		{
			protected.GET("/users/me", userHandler.Me)
			protected.PUT("/users/me/profile", userHandler.UpdateProfile)

			protected.POST("/generate", generatorHandler.Generate)
			protected.POST("/refine", generatorHandler.Refine)
			protected.GET("/usage/today", generatorHandler.UsageToday)

			protected.GET("/proposals", proposalHandler.ListProposals)
			protected.PUT("/proposals/:id/status", proposalHandler.UpdateStatus)
			protected.GET("/proposals/analytics", proposalHandler.Analytics)
			protected.POST("/proposals/export", proposalHandler.ExportHistory)
			protected.GET("/exports/:id/download", proposalHandler.DownloadExport)

			protected.POST("/income", incomeHandler.AddIncome)
			protected.GET("/income", incomeHandler.ListIncome)
			protected.GET("/income/summary", incomeHandler.IncomeSummary)
		}
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initPostgres(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Postgres connection established")
	return pool, nil
}

func initLLM(cfg *config.Config) (llm.Client, error) {
	if cfg.LLM.Provider == "gemini" {
		client, err := llm.NewGeminiClient(context.Background(), cfg.LLM.GeminiAPIKey, cfg.LLM.GeminiModel)
		if err != nil {
			return nil, err
		}
		log.Printf("Gemini client initialized (model %s)", cfg.LLM.GeminiModel)
		return client, nil
	}

	if cfg.LLM.APIKey == "" {
		log.Println("Warning: no LLM API key set, generation endpoints will be unavailable")
	}
	log.Printf("OpenAI-compatible client initialized (%s, model %s)", cfg.LLM.BaseURL, cfg.LLM.Model)
	return llm.NewOpenAIClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model), nil
}
