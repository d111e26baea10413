package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/scrabble-backend/internal/config"
	"github.com/rocketscienceinc/scrabble-backend/internal/lexicon"
	"github.com/rocketscienceinc/scrabble-backend/internal/repository"
	"github.com/rocketscienceinc/scrabble-backend/internal/repository/storage"
	"github.com/rocketscienceinc/scrabble-backend/internal/scheduler"
	"github.com/rocketscienceinc/scrabble-backend/internal/scrabble"
	"github.com/rocketscienceinc/scrabble-backend/internal/service"
	"github.com/rocketscienceinc/scrabble-backend/internal/usecase"
	"github.com/rocketscienceinc/scrabble-backend/transport/rest"
	"github.com/rocketscienceinc/scrabble-backend/transport/tcp"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	words, err := loadLexicon(conf.LexiconPath)
	if err != nil {
		return err
	}

	log.Info("lexicon loaded", "words", words.Len())

	userRepo, closeStorage, err := openUserRepository(ctx, log, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = closeStorage.Close(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	now := time.Now
	seed := uint64(now().UnixNano())

	userService := service.NewUserService(logger, userRepo, now)
	authService := service.NewAuthService(conf.JWTSecretKey, service.DefaultTokenTTL, now)

	engine := scrabble.NewEngine(words, scrabble.Rules{
		TurnTimeout:         conf.Game.TurnTimeout,
		DrawOfferTimeout:    conf.Game.DrawOfferTimeout,
		MaxConsecutiveSkips: conf.Game.MaxConsecutiveSkips,
	}, rand.New(rand.NewPCG(seed, seed>>1)), now)

	registry := tcp.NewRegistry(logger)
	rooms := usecase.NewRoomManager(logger, registry, conf.Rooms.QueueSize, now)
	reconnects := usecase.NewReconnectionManager(conf.Game.ReconnectWindow, now)
	gameManager := usecase.NewGameManager(logger, rooms, engine, reconnects, userService, registry, usecase.RoomPolicy{
		EmptyGrace:  conf.Rooms.EmptyGrace,
		InactiveTTL: conf.Rooms.InactiveTTL,
	}, now)

	// run background maintenance
	go scheduler.New(logger, conf.Scheduler.Interval, gameManager).Run(ctx)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, rest.NewHandlers(logger, gameManager)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run socket server
	tcpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting socket server", "port", conf.SocketPort)
		tcpServer := tcp.New(logger, tcp.Config{
			MaxFrameSize:  conf.Server.MaxFrameSize,
			SendQueueSize: conf.Server.SendQueueSize,
			WriteTimeout:  conf.Server.WriteTimeout,
			IdleTimeout:   conf.Server.IdleTimeout,
		}, gameManager, userService, authService, registry)
		if tcpErr := tcpServer.Start(ctx, conf.SocketPort); tcpErr != nil {
			log.Error("Socket server error", "error", tcpErr)
			tcpErrCh <- tcpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-tcpErrCh:
		return fmt.Errorf("socket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func loadLexicon(path string) (*lexicon.WordList, error) {
	if path == "" {
		words, err := lexicon.Default()
		if err != nil {
			return nil, fmt.Errorf("could not load embedded lexicon: %w", err)
		}

		return words, nil
	}

	words, err := lexicon.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not load lexicon %s: %w", path, err)
	}

	return words, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openUserRepository - the user store selected by storage.driver.
func openUserRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.UserRepository, io.Closer, error) {
	switch conf.Storage.Driver {
	case config.StorageRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString, conf.Redis.Password, conf.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		log.Info("using redis user storage", "addr", redisAddrString)

		return repository.NewRedisUserRepository(redisStorage.Connection), redisStorage, nil
	case config.StorageSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		log.Info("using sqlite user storage", "path", conf.Storage.SQLitePath)

		return repository.NewUserRepository(sqliteStorage.Connection), sqliteStorage, nil
	default:
		log.Info("using in-memory user storage")

		return repository.NewMemoryUserRepository(), nopCloser{}, nil
	}
}
