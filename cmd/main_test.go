package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/prepare"
	"github.com/0xJagger/poc-geo-tier-list/internal/catalog"
	"github.com/0xJagger/poc-geo-tier-list/internal/config"
	"github.com/0xJagger/poc-geo-tier-list/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("TIERLIST_ADDR", ":8181")
			_ = os.Setenv("TIERLIST_SCORE_MODE", "clamp")
			_ = os.Setenv("TIERLIST_PREPARE_QUEUE_SIZE", "4")
			defer func() {
				_ = os.Unsetenv("TIERLIST_ADDR")
				_ = os.Unsetenv("TIERLIST_SCORE_MODE")
				_ = os.Unsetenv("TIERLIST_PREPARE_QUEUE_SIZE")
			}()

			convey.Convey("Then the service is built with those settings", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8181")

				svc, err := buildService(cfg, logger.Get())
				convey.So(err, convey.ShouldBeNil)
				stats := svc.GetStats()
				convey.So(stats["scoreMode"], convey.ShouldEqual, "clamp")
				convey.So(stats["queueCapacity"], convey.ShouldEqual, 4)
				convey.So(stats["totalItems"], convey.ShouldEqual, len(catalog.Default().Items))
			})
		})

		convey.Convey("When the catalog path does not exist", func() {
			cfg := config.New(context.Background())
			cfg.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")

			convey.Convey("Then building the service fails", func() {
				_, err := buildService(cfg, logger.Get())
				convey.So(errors.Is(err, os.ErrNotExist), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the example catalog is configured", func() {
			cfg := config.New(context.Background())
			cfg.CatalogPath = filepath.Join("..", "configs", "catalog.example.yaml")

			convey.Convey("Then the service ranks over it", func() {
				svc, err := buildService(cfg, logger.Get())
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.GetStats()["list"], convey.ShouldEqual, "euro-capitals")
			})
		})
	})
}

func TestNewPreparer(t *testing.T) {
	convey.Convey("Given preparer modes", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When local mode is selected", func() {
			p, err := newPreparer(cfg)

			convey.Convey("Then a local preparer is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok := p.(*prepare.LocalPreparer)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When http mode is selected", func() {
			cfg.PreparerMode = config.PreparerHTTP
			cfg.PreparerURL = "http://127.0.0.1:1/prepare"
			p, err := newPreparer(cfg)

			convey.Convey("Then an HTTP preparer is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok := p.(*prepare.HTTPPreparer)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the mode is unknown", func() {
			cfg.PreparerMode = "carrier-pigeon"
			_, err := newPreparer(cfg)

			convey.Convey("Then a config error is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given a mux built from a started service", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cfg := config.New(ctx)
		svc, err := buildService(cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop(context.Background())

		mux := newMux(ctx, svc)

		for _, path := range []string{"/healthz", "/items", "/ranking", "/graph", "/api-docs", "/openapi.yaml"} {
			convey.Convey("Then GET "+path+" is served", func() {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})
		}
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		svc, err := buildService(config.New(context.Background()), logger.Get())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then they return when the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then single updates do not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}
