package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-session-refresh/auth"
	"github.com/jrsteele09/go-session-refresh/internal/config"
	"github.com/jrsteele09/go-session-refresh/internal/logging"
	"github.com/jrsteele09/go-session-refresh/server"
	"github.com/jrsteele09/go-session-refresh/token/refresh"
	"github.com/jrsteele09/go-session-refresh/token/refresh/badgerrepo"
	refreshrepofake "github.com/jrsteele09/go-session-refresh/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/go-session-refresh/users/repofake"
	"github.com/rs/zerolog/log"
)

const insecureDefaultSecret = "change-me"

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load("")
	if err != nil {
		return err
	}
	logging.Init(c.GetLogLevel(), c.GetLogFormat())
	displayAppname(c.GetAppName())

	if c.GetJWTSecret() == insecureDefaultSecret {
		if c.GetEnv() != "DEV" {
			return errors.New("JWT_SECRET must be set outside DEV")
		}
		log.Warn().Msg("using the default jwt secret, set JWT_SECRET")
	}

	refreshRepo, closeRepo, err := newRefreshRepo(c)
	if err != nil {
		return err
	}
	defer closeRepo()

	sessions, err := auth.NewSessionService(auth.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		RefreshTokens: refreshRepo,
	}, c)
	if err != nil {
		return err
	}
	handler, err := server.New(c, sessions)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(httpServer) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// newRefreshRepo picks the refresh token store. Badger keeps sessions across restarts.
func newRefreshRepo(c config.Config) (refresh.Repo, func(), error) {
	if c.GetRefreshStore() != "badger" {
		return refreshrepofake.NewFakeRefreshTokenRepo(), func() {}, nil
	}
	db, err := badgerrepo.Open(filepath.Join(c.GetDataFolder(), "refresh"))
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("folder", c.GetDataFolder()).Msg("refresh tokens stored in badger")
	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Err(err).Msg("failed to close badger")
		}
	}
	return badgerrepo.New(db), closeDB, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
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
