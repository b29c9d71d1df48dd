package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talkeasy/backend/internal/config"
	"github.com/talkeasy/backend/internal/handler"
	"github.com/talkeasy/backend/internal/logging"
	"github.com/talkeasy/backend/internal/model/topic"
	"github.com/talkeasy/backend/internal/service/auth"
	"github.com/talkeasy/backend/internal/service/chat"
	"github.com/talkeasy/backend/internal/service/conversation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Debug("no .env file loaded, using process environment", zap.Error(envErr))
	}

	corpus, err := loadCorpus(cfg.Chat)
	if err != nil {
		logger.Fatal("failed to load topic corpus", zap.Error(err))
	}
	logger.Info("topic corpus ready",
		zap.Int("topics", corpus.Size()),
		zap.Int("categories", len(corpus.Categories())),
		zap.String("source", corpusSource(cfg.Chat)))

	var convOpts []conversation.Option
	if cfg.Chat.RandomSeed != nil {
		convOpts = append(convOpts, conversation.WithSeed(*cfg.Chat.RandomSeed))
		logger.Info("topic sampling is seeded", zap.Uint64("seed", *cfg.Chat.RandomSeed))
	}
	convSvc := conversation.NewService(corpus, convOpts...)

	chatSvc := chat.NewService(convSvc,
		chat.WithTypist(chat.NewRandomDelay(cfg.Chat.TypingDelayMin, cfg.Chat.TypingDelayMax)),
		chat.WithLogger(logger.Named("chat")),
	)
	authSvc := auth.NewService(logger.Named("auth"))

	router := handler.NewRouter(cfg, handler.Services{
		Conversation: convSvc,
		Chat:         chatSvc,
		Auth:         authSvc,
	}, logger.Named("http"))

	if err := startServer(ctx, cfg.Server, router, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func loadCorpus(cfg config.ChatConfig) (*topic.Corpus, error) {
	if cfg.CorpusFile == "" {
		return topic.Default(), nil
	}
	return topic.LoadFile(cfg.CorpusFile)
}

func corpusSource(cfg config.ChatConfig) string {
	if cfg.CorpusFile == "" {
		return "builtin"
	}
	return cfg.CorpusFile
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("TalkEasy backend listening", zap.String("addr", serverCfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
