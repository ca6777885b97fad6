package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/Petroo-2/marnstack4/docs"
	"github.com/Petroo-2/marnstack4/internal/handlers"
	"github.com/Petroo-2/marnstack4/internal/imagehost"
	"github.com/Petroo-2/marnstack4/internal/logger"
	"github.com/Petroo-2/marnstack4/internal/repository"
	"github.com/Petroo-2/marnstack4/internal/repository/db"
	"github.com/Petroo-2/marnstack4/internal/server"
	"github.com/Petroo-2/marnstack4/internal/service"

	"github.com/spf13/viper"
)

// @title Blog API
// @version 1.0
// @description Blog service: registration/login, post CRUD, comments, image attachment.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// the signing secret must come from configuration, never from source
	secret := viper.GetString("auth.signing_key")
	if secret == "" {
		log.Fatalw("auth.signing_key is not configured")
	}

	// open DB
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	tokens := service.NewTokenManager(secret, viper.GetDuration("auth.token_ttl"))
	uploader := imagehost.New(viper.GetString("imagehost.url"), viper.GetString("imagehost.api_key"))
	services := service.NewService(repos, service.Deps{
		Tokens:         tokens,
		Uploader:       uploader,
		MinPasswordLen: viper.GetInt("auth.min_password_len"),
	})
	apiHandler := handlers.NewHandler(services, log)

	// optional admin bootstrap; registration never assigns the admin role
	if err := seedAdmin(services); err != nil {
		log.Fatalw("failed to seed admin user", "err", err)
	}

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "blog.db")
		dbPath = "blog.db"
	}
	return db.InitDB(dbPath)
}

// seedAdmin creates the configured admin account if it does not exist yet.
func seedAdmin(services *service.Service) error {
	username := viper.GetString("auth.admin_username")
	password := viper.GetString("auth.admin_password")
	if username == "" || password == "" {
		return nil
	}
	email := viper.GetString("auth.admin_email")
	if email == "" {
		email = username + "@localhost"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return services.EnsureAdmin(ctx, username, email, password)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
