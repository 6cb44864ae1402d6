package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispenser_control/internal/handlers"
	"dispenser_control/internal/logger"
	"dispenser_control/internal/repository"
	"dispenser_control/internal/repository/db"
	"dispenser_control/internal/server"
	"dispenser_control/internal/service"

	"github.com/spf13/viper"
)

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB (audit event log only; nozzle state is in-memory)
	eventDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := eventDB.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(eventDB)
	services := service.NewService(repos, simulationConfig(), log)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start engine lifecycle (stops nozzle timers on shutdown)
	go services.Engine.Run(ctx)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// simulationConfig builds the engine config from viper, falling back to the
// reference deployment values.
func simulationConfig() service.Config {
	cfg := service.DefaultConfig()
	if v := viper.GetInt("simulation.nozzle_count"); v > 0 {
		cfg.NozzleCount = v
	}
	if v := viper.GetString("simulation.initial_status"); v != "" {
		cfg.InitialStatus = v
	}
	if v := viper.GetFloat64("simulation.unit_price"); v > 0 {
		cfg.UnitPrice = v
	}
	if v := viper.GetFloat64("simulation.volume_quantum"); v > 0 {
		cfg.VolumeQuantum = v
	}
	if v := viper.GetFloat64("simulation.target_volume"); v > 0 {
		cfg.TargetVolume = v
	}
	if v := viper.GetDuration("simulation.authorize_delay"); v > 0 {
		cfg.AuthorizeDelay = v
	}
	if v := viper.GetDuration("simulation.tick_period"); v > 0 {
		cfg.TickPeriod = v
	}
	if v := viper.GetDuration("simulation.completion_delay"); v > 0 {
		cfg.CompletionDelay = v
	}
	return cfg
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return db.InitDB(dbPath)
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
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
