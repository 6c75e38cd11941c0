package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bauliver.org/internal/auth"
	"bauliver.org/internal/bot"
	"bauliver.org/internal/httpapi"
	"bauliver.org/internal/obs"
	"bauliver.org/internal/permit"
	"bauliver.org/internal/store/pg"
	"bauliver.org/internal/stream"
)

var version = "0.3.1"

func main() {
	// Local development reads BAULIVER_* settings from .env when present.
	_ = godotenv.Load()

	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("BAULIVER_COMMIT"))

	var (
		db        *sql.DB
		users     auth.UserStore
		permits   permit.Store
		tasks     bot.TaskStore
		workflows bot.WorkflowStore
	)
	if dsn := os.Getenv("BAULIVER_PG_DSN"); dsn != "" {
		store, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db = store.DB()
		users = store.Users()
		permits = store.Permits()
		tasks = store.Tasks()
		workflows = store.Workflows()
	} else {
		// DSN-less runs keep everything in memory for local development.
		log.Println("BAULIVER_PG_DSN not set, using in-memory stores")
		users = auth.NewInMemoryStore()
		permits = permit.NewInMemoryStore()
		tasks = bot.NewInMemoryTaskStore()
		workflows = bot.NewInMemoryWorkflowStore()
	}

	events := stream.New()
	authSvc := auth.NewService(users)
	permitSvc := permit.NewService(permits)
	botSvc := bot.NewService(tasks, workflows, bot.WithEventStream(events))

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, authSvc, permitSvc, botSvc, events)

	addr := os.Getenv("BAULIVER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting bauliver-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	obs.SetReady(true)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	obs.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
