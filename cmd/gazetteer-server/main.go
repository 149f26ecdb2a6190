// Command gazetteer-server exposes the gazetteer lookup contract over
// HTTP. The index is built lazily on the first request that needs it
// (there is no eager build at startup) and then served from memory for
// the life of the process.
//
// @title Gazetteer API
// @version 1.0
// @description Name and id based lookups over countries, admin divisions, and cities.
// @BasePath /v1
package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/geonames/gazetteer/internal/gazetteer"
	"github.com/geonames/gazetteer/internal/gazetteer/gazcache"
	"github.com/geonames/gazetteer/internal/middleware"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	dataDir := envOr("GAZETTEER_DATA_DIR", ".")
	addr := envOr("GAZETTEER_ADDR", ":8080")

	lazy := gazetteer.NewLazyIndex(func() (*gazetteer.Index, error) {
		files, err := openSourceFiles(dataDir)
		if err != nil {
			return nil, err
		}
		defer files.Close()
		return gazetteer.Build(files.Inputs(), slog.Default())
	})

	var cache *gazcache.Cache
	if url := os.Getenv("REDIS_URL"); url != "" {
		c, err := gazcache.NewWithURL(url)
		if err != nil {
			slog.Warn("could not connect to redis, continuing without lookup cache", "error", err)
		} else {
			cache = c
			defer cache.Close()
		}
	}

	h := &handlers{lazy: lazy, cache: cache}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.LogFailedLookups)
	r.Use(middleware.Timeout(10 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.ContentType("application/json"))
		r.Get("/cities", h.search(func(ds *gazetteer.DataSource, name string) map[int64]gazetteer.Location {
			return ds.CitySearch(name)
		}, gazetteer.City))
		r.Get("/admin1", h.search(func(ds *gazetteer.DataSource, name string) map[int64]gazetteer.Location {
			return ds.AdminLevel1Search(name)
		}, gazetteer.Admin1))
		r.Get("/admin2", h.search(func(ds *gazetteer.DataSource, name string) map[int64]gazetteer.Location {
			return ds.AdminLevel2Search(name)
		}, gazetteer.Admin2))
		r.Get("/countries", h.search(func(ds *gazetteer.DataSource, name string) map[int64]gazetteer.Location {
			return ds.CountrySearch(name)
		}, gazetteer.Country))
		r.Get("/locations", h.search(func(ds *gazetteer.DataSource, name string) map[int64]gazetteer.Location {
			return ds.AllLocationsSearch(name)
		}, ""))
		r.Get("/locations/{id}", h.getByID)
	})

	slog.Info("gazetteer-server listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
