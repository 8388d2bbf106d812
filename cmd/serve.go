package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"socialgraph/internal/config"
	"socialgraph/internal/graph"
	"socialgraph/internal/metrics"
	"socialgraph/internal/render"
	"socialgraph/internal/server"
	"socialgraph/internal/session"
)

var (
	serveAddr       string
	serveAlias      string
	serveSaveOnExit bool
	servePaused     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulation and serve it over HTTP and WebSocket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		if serveAlias != "" {
			cfg.Alias = graph.SanitizeAlias(serveAlias)
		}

		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		doc, err := graph.LoadOrDefault(d, cfg.Alias, time.Now())
		if err != nil {
			return fmt.Errorf("loading graph: %w", err)
		}

		m := metrics.NewCollector("socialgraph")
		sess, err := session.New(doc, session.Options{
			Params:   cfg.Physics,
			Viewport: cfg.Viewport,
			Interval: cfg.FrameInterval.Duration,
			Logger:   logger.Named("session"),
			Stats:    m,
		})
		if err != nil {
			return err
		}
		if servePaused {
			sess.Pause()
		}
		hub := render.NewHub(logger.Named("hub"), m, cfg.Server.ClientBuffer, cfg.Server.MaxFPS)
		sess.AddRenderer(hub)

		srv := server.New(server.Options{
			Session:     sess,
			Hub:         hub,
			DB:          d,
			Metrics:     m,
			Logger:      logger.Named("http"),
			BaseURL:     cfg.Server.BaseURL,
			CORSOrigins: cfg.Server.CORSOrigins,
		})
		httpSrv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error { return sess.Run(ctx) })
		g.Go(func() error {
			logger.Info("listening", zap.String("addr", httpSrv.Addr), zap.String("alias", sess.Alias()))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			hub.Close()
			return httpSrv.Shutdown(shutdownCtx)
		})
		if path := watchedConfig(); path != "" {
			g.Go(func() error {
				return config.Watch(ctx, path, logger.Named("config"), func(c *config.Config) {
					if err := sess.SetParams(c.Physics); err != nil {
						logger.Warn("rejected physics params", zap.Error(err))
					}
					sess.SetViewport(c.Viewport)
				})
			})
		}

		err = g.Wait()
		if serveSaveOnExit {
			out := sess.Document()
			if saveErr := graph.SaveDocument(d, out); saveErr != nil {
				return errors.Join(err, saveErr)
			}
			logger.Info("graph saved", zap.String("alias", out.Metadata.Alias))
		}
		return err
	},
}

// watchedConfig returns the config file to hot-reload, or "" when none is in use.
func watchedConfig() string {
	if configPath != "" {
		return configPath
	}
	if _, err := os.Stat(config.DefaultFile); err == nil {
		return config.DefaultFile
	}
	return ""
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().StringVar(&serveAlias, "alias", "", "Graph to serve (default from config)")
	serveCmd.Flags().BoolVar(&serveSaveOnExit, "save-on-exit", false, "Store the final positions on shutdown")
	serveCmd.Flags().BoolVar(&servePaused, "paused", false, "Start with the simulation paused")
	rootCmd.AddCommand(serveCmd)
}
