package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/damon-houk/currency-rate-cache/internal/application/service"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/handler"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func (a *app) router() http.Handler {
	conversions := service.NewConversionService(a.rates, a.log)

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.RecoverMiddleware(a.log))
	router.Use(middleware.LoggingMiddleware(a.log))
	handler.NewRatesHandler(a.rates, conversions, a.log).RegisterRoutes(router)

	return router
}

func (a *app) serve(ctx context.Context) error {
	if snapshot := a.rates.GetUsableRates(ctx); snapshot == nil {
		a.log.Warn("Starting without rates, they will be resolved on the first request", nil)
	} else {
		a.log.Info("Rates loaded", map[string]interface{}{"date": snapshot.Date})
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.HTTPPort,
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("Server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		a.log.Info("Shutting down server", nil)
		return srv.Shutdown(shutCtx)
	})

	return g.Wait()
}
