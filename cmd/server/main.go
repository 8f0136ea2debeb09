package main

import (
	"log"
	"net/http"
	"os"

	"geo_tracker/internal/auth"
	"geo_tracker/internal/config"
	"geo_tracker/internal/controllers"
	"geo_tracker/internal/logger"
	"geo_tracker/internal/middleware"
	"geo_tracker/internal/pipeline"
	"geo_tracker/internal/registry"
	"geo_tracker/internal/routes"
	"geo_tracker/internal/store"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()

	// Structured logging to a rotating file
	logger.Setup(cfg.LogFile)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	trackers := registry.NewTrackerRegistry(db)
	eventStore := store.NewEventStore(db)
	eventQuery := store.NewEventQuery(db, cfg.DefaultMaxResults, cfg.AllowedMaxResults)

	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret, cfg.JWTTTL)
	classifier := auth.NewClassifier(trackers)
	policy := auth.Policy{
		RequireAuthentication: cfg.RequireAuthentication,
		AllowTrackerCreation:  cfg.AllowTrackerCreation,
	}

	hub := controllers.NewTrackerHub()
	ingest := pipeline.New(eventStore, classifier, policy, hub, cfg.RealtimeEnabled)

	// Recovery plus request logging, registered ahead of every route
	requestLogger := ginlog.SetLogger(ginlog.WithLogger(func(_ *gin.Context, l zerolog.Logger) zerolog.Logger {
		return l.Output(os.Stdout)
	}))

	r := routes.SetupRouter(routes.Controllers{
		Events:    controllers.NewEventController(ingest, eventQuery),
		Trackers:  controllers.NewTrackerController(trackers, jwtAuth),
		WebSocket: controllers.NewWebSocketController(hub, jwtAuth),
		JWT:       jwtAuth,
	}, gin.Recovery(), requestLogger)

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	log.Printf("🚀 Server running at %s", cfg.ServerAddr)
	log.Fatal(http.ListenAndServe(cfg.ServerAddr, handler))
}
