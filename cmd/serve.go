package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/sp-meter/circles/internal/history"
	"github.com/sp-meter/circles/internal/page"
	"github.com/sp-meter/circles/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server hosting the conversion pages",
	Long: `Starts the circles web server: the conversion pages, the websocket each
open page talks to, the page catalog API and the conversion history API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		log, err := newLogger(cfg)
		if err != nil {
			return errors.Wrap(err, "creating logger")
		}
		defer log.Sync()

		cat, apis, err := buildBackends(cfg, log)
		if err != nil {
			return err
		}

		database, store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		srv := server.New(server.Config{
			Port:           cfg.Server.Port,
			AllowAll:       cfg.Server.AllowAll,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}, database, log)

		r := srv.Router()
		page.New(cat, apis, page.Options{
			Logger:      log,
			Recorder:    store,
			DefaultPage: cfg.DefaultPage,
		}).RegisterRoutes(r)
		history.RegisterRoutes(r, store)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		for _, p := range cat.Pages() {
			log.Infow("page ready", "page", p.ID, "path", "/pages/"+p.ID, "backend", p.BaseURL+p.PathPrefix)
		}
		log.Infow("history database", "path", cfg.DBPath)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
