package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pellog/skirmish/internal/config"
	"github.com/pellog/skirmish/internal/logging"
	"github.com/pellog/skirmish/internal/server"
	"github.com/pellog/skirmish/internal/store"
)

func main() {
	var configDir string
	flag.StringVar(&configDir, "config", ".", "directory holding skirmish.cfg.json")
	flag.Parse()

	if err := config.Load(configDir); err != nil {
		// no config yet, so plain stderr
		os.Stderr.WriteString("skirmishd: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.New(config.GetString("logLevel"))

	weapons, upgrades, err := config.LoadDefinitions(config.GetString("definitionsDir"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load definitions")
	}
	log.Info().Int("weapons", len(weapons)).Int("upgrades", len(upgrades)).Msg("definitions loaded")

	st, err := store.Open(config.GetDBConfig().Path, logging.Component(log, "store"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	srv := server.New(logging.Component(log, "server"), weapons, upgrades, st, config.GetSimConfig())

	addr := config.GetString("listenAddr")
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", addr).Msg("skirmishd listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown did not complete cleanly")
	}
}
