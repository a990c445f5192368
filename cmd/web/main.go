package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/recruit-intake/internal/backend"
	"github.com/yourusername/recruit-intake/internal/config"
	"github.com/yourusername/recruit-intake/internal/handler"
	"github.com/yourusername/recruit-intake/internal/middleware"
	"github.com/yourusername/recruit-intake/internal/questionbank"
	redisRepo "github.com/yourusername/recruit-intake/internal/repository/redis"
	"github.com/yourusername/recruit-intake/internal/service"
	"github.com/yourusername/recruit-intake/internal/service/intake"
	"github.com/yourusername/recruit-intake/internal/web"
	"github.com/yourusername/recruit-intake/pkg/auth"
	"github.com/yourusername/recruit-intake/pkg/auth/manager"
	"github.com/yourusername/recruit-intake/pkg/database"
)

// Период очистки заброшенных анкет
const sweepEvery = time.Minute

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	isProduction := os.Getenv("GIN_MODE") == "release"

	// Контекст приложения: отменяется при остановке и завершает фоновые задачи и опросы
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient, err := database.NewUniversalRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	sessionRepo, err := redisRepo.NewSessionRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize SessionRepo: %v", err)
		os.Exit(1)
	}

	signer, err := auth.NewSessionSigner(cfg.Session.Secret, cfg.Session.Lifetime())
	if err != nil {
		log.Printf("Failed to initialize session signer: %v", err)
		os.Exit(1)
	}

	cookies := manager.NewCookieManager(cfg.Session.CookieName, cfg.Intake.CookieName)
	cookies.SetProductionMode(isProduction)

	bank, err := questionbank.Load(cfg.Intake.QuestionBankPath)
	if err != nil {
		log.Printf("Failed to load question bank: %v", err)
		os.Exit(1)
	}
	bank = bank.WithMaxScore(cfg.Intake.MaxScore)

	backendClient := backend.NewClient(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.RequestTimeout()})
	log.Printf("Backend API: %s", backendClient.BaseURL())

	// Инициализируем сервисы
	employerService := service.NewEmployerService(backendClient, sessionRepo, signer)
	candidateService := service.NewCandidateService(backendClient, bank.MaxScore())
	registry := intake.NewRegistry(ctx, bank, backendClient, cfg.Intake.IdleTimeout(), intake.WithPollInterval(cfg.Intake.PollInterval()))
	registry.SetUnwatchedPollTimeout(cfg.Intake.UnwatchedPollTimeout())
	go registry.Run(ctx, sweepEvery)

	// Инициализируем обработчики
	intakeHandler := handler.NewIntakeHandler(registry, bank)
	employerHandler := handler.NewEmployerHandler(employerService, candidateService, cookies, signer.Lifetime())
	wsHandler := handler.NewWSHandler(registry, cfg.Server.AllowedOrigins)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(employerService, cookies)
	rateLimiter := middleware.NewRateLimiter(redisClient)
	loginLimit := rateLimiter.Limit(middleware.LoginRateLimitConfig(cfg.RateLimit.LoginPerMinute))
	submitLimit := rateLimiter.LimitByIP(middleware.SubmitRateLimitConfig(cfg.RateLimit.SubmitPerMinute))
	visitor := middleware.Visitor(cookies)
	expand := middleware.ExtractIntQuerySet("expand", handler.ContextKeyExpandIDs)

	templates, err := web.Templates()
	if err != nil {
		log.Printf("Failed to parse templates: %v", err)
		os.Exit(1)
	}

	router := gin.Default()
	router.SetHTMLTemplate(templates)

	// Доверенные прокси для корректной работы c.ClientIP() в rate limiting
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		log.Printf("Warning: failed to set trusted proxies: %v", err)
	}

	// Страницы анкеты кандидата
	router.GET("/", visitor, intakeHandler.ShowForm)
	router.POST("/", submitLimit, visitor, intakeHandler.SubmitForm)
	router.POST("/another", visitor, intakeHandler.SubmitAnother)
	router.GET("/ws/intake", visitor, wsHandler.HandleIntake)

	// Вход работодателя и панель кандидатов
	router.GET("/employer", employerHandler.ShowLogin)
	router.POST("/employer", loginLimit, employerHandler.Login)
	router.POST("/employer/logout", employerHandler.Logout)
	dashboard := router.Group("/dashboard")
	dashboard.Use(authMiddleware.RequireEmployer())
	{
		dashboard.GET("", expand, employerHandler.Dashboard)
		dashboard.GET("/export", employerHandler.ExportCandidates)
	}

	// JSON API
	api := router.Group("/api")
	if len(cfg.Server.AllowedOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	{
		api.GET("/questions", intakeHandler.GetQuestions)

		intakeAPI := api.Group("/intake")
		intakeAPI.Use(visitor)
		{
			intakeAPI.GET("", intakeHandler.GetState)
			intakeAPI.PATCH("/form", intakeHandler.EditField)
			intakeAPI.POST("/submit", submitLimit, intakeHandler.Submit)
			intakeAPI.POST("/another", intakeHandler.Another)
		}

		api.GET("/employer/candidates", authMiddleware.RequireEmployer(), employerHandler.ListCandidates)
	}

	// Неизвестные маршруты ведут на анкету
	router.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, "/")
	})

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Отправляем сигнал завершения фоновым задачам
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Останавливаем опросы статуса всех анкет
	registry.Close()

	log.Println("Server exited properly")
}
