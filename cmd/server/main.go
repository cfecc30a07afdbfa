package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/prefborba/requisicoes-api/internal/config"
	"github.com/prefborba/requisicoes-api/internal/database"
	"github.com/prefborba/requisicoes-api/internal/handler"
	"github.com/prefborba/requisicoes-api/internal/queue"
	"github.com/prefborba/requisicoes-api/internal/repository"
	"github.com/prefborba/requisicoes-api/internal/router"
	"github.com/prefborba/requisicoes-api/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Redis is optional; every Redis-backed middleware degrades to a
	// pass-through when the client is nil.
	rdb := config.NewRedisClient()

	reqRepo := repository.NewRequisitionRepo(db)
	logRepo := repository.NewStatusLogRepo(db)
	sigRepo := repository.NewSignatureRepo(db)
	valRepo := repository.NewValidationRepo(db)
	userRepo := repository.NewUserRepo(db)

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, userRepo),
		Users:    handler.NewUserHandler(cfg, userRepo),
		Reqs:     handler.NewRequisitionHandler(reqRepo, logRepo, service.NewCodeGenerator(reqRepo)),
		Workflow: handler.NewWorkflowHandler(reqRepo, logRepo, sigRepo, valRepo),
	}

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())
	router.RegisterRoutes(e, cfg, rdb, h)

	// Status events drain into logs/requisicoes.log; the consumer keeps
	// reconnecting on its own and must never take the API down.
	go func() {
		if err := queue.StartStatusConsumer(); err != nil {
			log.Printf("rabbitmq consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
