package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/elvenwooddev-web/designquote/internal/app"
	"github.com/elvenwooddev-web/designquote/internal/auth"
	"github.com/elvenwooddev-web/designquote/internal/catalog/categories"
	"github.com/elvenwooddev-web/designquote/internal/catalog/products"
	"github.com/elvenwooddev-web/designquote/internal/catalog/units"
	"github.com/elvenwooddev-web/designquote/internal/clients"
	"github.com/elvenwooddev-web/designquote/internal/pdf"
	"github.com/elvenwooddev-web/designquote/internal/platform/cache"
	"github.com/elvenwooddev-web/designquote/internal/platform/db"
	"github.com/elvenwooddev-web/designquote/internal/quotes"
	"github.com/elvenwooddev-web/designquote/internal/templates"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, redisClient, cfg.JWTSecret, cfg.TokenTTL)
	authHandler := auth.NewHandler(logger, authService)

	clientRepo := clients.NewRepository(pool)
	clientService := clients.NewService(clientRepo)
	clientHandler := clients.NewHandler(logger, clientService)

	categoryRepo := categories.NewRepository(pool)
	categoryService := categories.NewService(categoryRepo)
	categoryHandler := categories.NewHandler(logger, categoryService)

	unitRepo := units.NewRepository(pool)
	unitService := units.NewService(unitRepo)
	unitHandler := units.NewHandler(logger, unitService)

	productRepo := products.NewRepository(pool)
	productService := products.NewService(productRepo)
	productHandler := products.NewHandler(logger, productService)

	templateRepo := templates.NewRepository(pool)
	templateService := templates.NewService(templateRepo)
	templateHandler := templates.NewHandler(logger, templateService)

	renderer := pdf.NewRenderer()

	quoteRepo := quotes.NewRepository(pool)
	quoteService := quotes.NewService(quoteRepo, clientRepo, productRepo, templateService, renderer, logger)
	quoteHandler := quotes.NewHandler(logger, quoteService)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthService:       authService,
		AuthHandler:       authHandler,
		QuotesHandler:     quoteHandler,
		ClientsHandler:    clientHandler,
		ProductsHandler:   productHandler,
		CategoriesHandler: categoryHandler,
		UnitsHandler:      unitHandler,
		TemplatesHandler:  templateHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
