package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"cinevault/api"
	"cinevault/config"
	"cinevault/handlers"
	"cinevault/internal/database"
	"cinevault/services/accounts"
	"cinevault/services/catalog"
	"cinevault/services/mylist"
	"cinevault/services/sessions"
)

func main() {
	configPath := flag.String("config", "config.json", "path to config file")
	flag.Parse()

	settings, err := config.NewManager(*configPath).Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}

	setupLogging(settings.LogPath)

	if err := os.MkdirAll(settings.DataDir, 0o755); err != nil {
		log.Fatalf("[main] failed to create data dir: %v", err)
	}

	db, err := database.NewDB(database.Config{DatabasePath: settings.DatabasePath})
	if err != nil {
		log.Fatalf("[main] failed to open database: %v", err)
	}
	defer db.Close()

	accountsSvc, err := accounts.NewService(settings.DataDir)
	if err != nil {
		log.Fatalf("[main] failed to init accounts: %v", err)
	}

	sessionsSvc, err := sessions.NewService(settings.DataDir, settings.SessionDuration())
	if err != nil {
		log.Fatalf("[main] failed to init sessions: %v", err)
	}

	catalogSvc := catalog.NewService(db.Movies)
	if settings.SeedDemoCatalog {
		if err := catalogSvc.Seed(); err != nil {
			log.Fatalf("[main] failed to seed catalog: %v", err)
		}
	}

	mylistSvc := mylist.NewService(catalogSvc, db.Lists)

	authHandler := handlers.NewAuthHandler(accountsSvc, sessionsSvc)
	moviesHandler := handlers.NewMoviesHandler(catalogSvc, mylistSvc)
	mylistHandler := handlers.NewMyListHandler(mylistSvc)
	artworkHandler, err := handlers.NewArtworkHandler(catalogSvc, afero.NewOsFs(), settings.ArtworkDir)
	if err != nil {
		log.Fatalf("[main] failed to init artwork storage: %v", err)
	}

	loginLimiter := api.NewIPRateLimiter(
		rate.Every(time.Minute/time.Duration(settings.LoginRatePerMin)),
		settings.LoginRateBurst,
	)

	router := mux.NewRouter()
	router.Use(api.CORSMiddleware)

	// Public auth routes, rate limited per client IP.
	authRouter := router.PathPrefix("/api/auth").Subrouter()
	authRouter.Use(loginLimiter.Middleware())
	authRouter.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost, http.MethodOptions)
	authRouter.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost, http.MethodOptions)
	authRouter.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost, http.MethodOptions)
	authRouter.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet, http.MethodOptions)
	authRouter.HandleFunc("/refresh", authHandler.Refresh).Methods(http.MethodPost, http.MethodOptions)
	authRouter.HandleFunc("/password", authHandler.ChangePassword).Methods(http.MethodPut, http.MethodOptions)

	// Catalog routes require a session like everything else the app shows.
	moviesRouter := router.PathPrefix("/api/movies").Subrouter()
	moviesRouter.Use(api.AccountAuthMiddleware(sessionsSvc))
	moviesRouter.HandleFunc("/homepage/sections", moviesHandler.HomepageSections).Methods(http.MethodGet, http.MethodOptions)
	moviesRouter.HandleFunc("/featured", moviesHandler.Featured).Methods(http.MethodGet, http.MethodOptions)
	moviesRouter.HandleFunc("/genres", moviesHandler.Genres).Methods(http.MethodGet, http.MethodOptions)
	moviesRouter.HandleFunc("/search", moviesHandler.Search).Methods(http.MethodGet, http.MethodOptions)
	moviesRouter.HandleFunc("/lucky", moviesHandler.Lucky).Methods(http.MethodGet, http.MethodOptions)
	moviesRouter.HandleFunc("/{movieID}/artwork/{kind}", artworkHandler.Upload).Methods(http.MethodPost, http.MethodOptions)
	moviesRouter.HandleFunc("/{movieID}/artwork/{kind}", artworkHandler.Serve).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/{movieID}", moviesHandler.GetByID).Methods(http.MethodGet, http.MethodOptions)

	mylistRouter := router.PathPrefix("/api/mylist").Subrouter()
	mylistRouter.Use(api.AccountAuthMiddleware(sessionsSvc))
	mylistRouter.HandleFunc("", mylistHandler.List).Methods(http.MethodGet, http.MethodOptions)
	mylistRouter.HandleFunc("/add/{movieID}", mylistHandler.Add).Methods(http.MethodPost, http.MethodOptions)
	mylistRouter.HandleFunc("/remove/{movieID}", mylistHandler.Remove).Methods(http.MethodDelete, http.MethodOptions)
	mylistRouter.HandleFunc("/check/{movieID}", mylistHandler.Check).Methods(http.MethodGet, http.MethodOptions)
	mylistRouter.HandleFunc("/progress/{movieID}", mylistHandler.UpdateProgress).Methods(http.MethodPut, http.MethodOptions)
	mylistRouter.HandleFunc("/recent", mylistHandler.Recent).Methods(http.MethodGet, http.MethodOptions)
	mylistRouter.HandleFunc("/stats", mylistHandler.Stats).Methods(http.MethodGet, http.MethodOptions)

	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         settings.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", settings.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
}

// setupLogging mirrors log output to a size-rotated file alongside stderr.
func setupLogging(logPath string) {
	if logPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		log.Printf("[main] failed to create log dir: %v", err)
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
}
