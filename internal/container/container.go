package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"flagman/parser/internal/api"
	"flagman/parser/internal/client"
	"flagman/parser/internal/config"
	"flagman/parser/internal/service"

	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config  *config.Config
	Client  client.FlagmanClient
	Service *service.Service
	API     *api.Server

	server *http.Server
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	flagmanClient := client.NewFlagmanClient(cfg.Flagman)
	svc := service.NewService(flagmanClient, cfg.Flagman)
	apiServer := api.NewServer(svc)

	return &Container{
		Config:  cfg,
		Client:  flagmanClient,
		Service: svc,
		API:     apiServer,
		server: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: apiServer.Router(),
		},
	}, nil
}

// Run serves the API until the context is cancelled, then shuts down
// gracefully.
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("🚀 HTTP server listening on %s", c.server.Addr)
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return c.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
