package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	cfg "github.com/example/openchallenge/internal/config"
	"github.com/gorilla/mux"
)

var jwtSecret []byte

type App struct {
	Store Store
	ready atomic.Bool
}

func newRouter(app *App) *mux.Router {
	r := mux.NewRouter()

	r.Use(SecurityHeaders)
	r.Use(app.Logging)
	r.Use(app.CORS)
	r.NotFoundHandler = app.Logging(app.CORS(http.HandlerFunc(app.HandleNotFound)))

	r.HandleFunc("/", app.HandleIndex).Methods("GET")
	r.HandleFunc("/health", app.HandleHealth).Methods("GET")
	r.HandleFunc("/ready", app.HandleReady).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(app.Readiness)

	api.HandleFunc("/auth/register", app.HandleRegister).Methods("POST")
	api.HandleFunc("/auth/login", app.HandleLogin).Methods("POST")
	api.HandleFunc("/auth/refresh", app.RequireToken(tokenTypeRefresh, app.HandleRefresh)).Methods("POST")
	api.HandleFunc("/auth/me", app.RequireToken(tokenTypeAccess, app.HandleMe)).Methods("GET")

	return r
}

func main() {
	c, err := cfg.New()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	jwtSecret = []byte(c.JwtSecret)
	accessTokenTTL = c.AccessTokenTTL
	refreshTokenTTL = c.RefreshTokenTTL

	ctx := context.Background()

	var store Store
	switch c.DBAdapter {
	case "mongo":
		m, err := NewMongoStore(ctx, c.MongoURI, c.MongoDB)
		if err != nil {
			log.Fatalf("mongo init: %v", err)
		}
		store = m
	case "memory":
		log.Println("Using in-memory store (not recommended for production)")
		store = NewMemStore()
	default:
		log.Fatalf("unsupported DB_ADAPTER: %s (supported: mongo, memory)", c.DBAdapter)
	}

	app := &App{Store: store}

	// The datastore being down must not prevent boot; data routes return 500
	// until it comes back and the Readiness middleware retries index setup.
	pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		log.Printf("datastore unreachable, starting degraded: %v", err)
	} else if err := store.EnsureIndexes(pingCtx); err != nil {
		log.Printf("ensure indexes: %v", err)
	} else {
		app.ready.Store(true)
	}
	cancelPing()

	srv := &http.Server{
		Handler:      newRouter(app),
		Addr:         ":" + c.Port,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Println("Starting server on", c.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := app.Store.Close(shutCtx); err != nil {
		log.Printf("store close: %v", err)
	}
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Fatalf("shutdown failed:%+v", err)
	}
	fmt.Println("Server exited properly")
}
