package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/healthycare/healthycare/auth"
	"github.com/healthycare/healthycare/internal/config"
	"github.com/healthycare/healthycare/internal/metrics"
	"github.com/healthycare/healthycare/placeholder"
	"github.com/healthycare/healthycare/providers"
	"github.com/healthycare/healthycare/server"
	"github.com/healthycare/healthycare/session"
	"github.com/healthycare/healthycare/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	store := session.NewFileStore(c.GetDataFolder())
	tokens := token.NewCreator(c.GetSessionTokenSecret(), c.GetSessionTokenExpiry())

	registry, err := buildRegistry(context.Background(), c)
	if err != nil {
		return fmt.Errorf("building provider registry: %w", err)
	}

	registerer := prometheus.NewRegistry()
	collector := metrics.NewCollector(registerer)

	machine, err := auth.NewMachine(store, registry, tokens, c, auth.WithMetrics(collector))
	if err != nil {
		return fmt.Errorf("creating auth machine: %w", err)
	}
	machine.Initialize(context.Background())

	apiClient := placeholder.NewClient(c.GetPlaceholderBaseURL())

	srv, err := server.New(c, machine, apiClient,
		server.WithMetrics(collector, metrics.Handler(registerer)))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func buildRegistry(ctx context.Context, c config.Config) (*providers.Registry, error) {
	githubProvider := providers.NewGithub(c)

	googleOptions := []providers.GoogleOption{}
	if c.GetGoogleClientID() != "" {
		// Discovery needs the network. A failure here degrades to exchanging
		// without local ID-token verification rather than refusing to start.
		verifier, err := providers.NewGoogleIDTokenVerifier(ctx, c.GetGoogleClientID())
		if err != nil {
			log.Warn().Err(err).Msg("google oidc discovery failed, id tokens will not be verified locally")
		} else {
			googleOptions = append(googleOptions, providers.WithGoogleVerifier(verifier))
		}
	}
	googleProvider := providers.NewGoogle(c, googleOptions...)

	return providers.NewRegistry(githubProvider, googleProvider), nil
}

func setupLogging(c config.Config) {
	if c.GetEnv() == "DEV" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
