package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/conduit-lang/resourcegraph/internal/store"
	"github.com/conduit-lang/resourcegraph/internal/web/cache"
	"github.com/conduit-lang/resourcegraph/internal/web/middleware"
	"github.com/conduit-lang/resourcegraph/pkg/web/query"
	"github.com/conduit-lang/resourcegraph/pkg/web/resource"
	"github.com/conduit-lang/resourcegraph/pkg/web/response"
	"github.com/conduit-lang/resourcegraph/pkg/web/serializer"
)

// APIConfig configures the read-only JSON:API surface over a store
type APIConfig struct {
	Store      *store.Store
	Serializer serializer.Options
	Limits     query.PageLimits

	// Prefix mounts the resource routes under a path such as "/api"
	Prefix string

	// Cache stores rendered documents when non-nil
	Cache    cache.Cache
	CacheTTL time.Duration

	Logger *zap.Logger

	// Registry receives the server metrics; a fresh registry is used when nil
	Registry *prometheus.Registry
}

// api serves documents for the records of a store
type api struct {
	store   *store.Store
	ser     *serializer.Serializer
	limits  query.PageLimits
	prefix  string
	types   map[string]*resource.Schema
	keys    *cache.KeyGenerator
	metrics *middleware.Metrics
	logger  *zap.Logger
}

// NewAPI builds the router:
//
//	GET /metrics
//	GET {prefix}/{type}
//	GET {prefix}/{type}/{id}
//	GET {prefix}/{type}/{id}/{relation}
//	GET {prefix}/{type}/{id}/relationships/{relation}
func NewAPI(config APIConfig) (http.Handler, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if err := config.Serializer.Validate(); err != nil {
		return nil, err
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	if config.Limits.DefaultSize < 1 {
		config.Limits = query.DefaultPageLimits()
	}

	metrics, err := middleware.NewMetrics(config.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	a := &api{
		store:   config.Store,
		ser:     serializer.New(config.Serializer),
		limits:  config.Limits,
		prefix:  config.Prefix,
		types:   make(map[string]*resource.Schema),
		keys:    cache.DefaultKeyGenerator(),
		metrics: metrics,
		logger:  config.Logger,
	}
	for _, name := range config.Store.Types() {
		schema, _ := config.Store.Registry().Get(name)
		a.types[serializer.TypeName(name, config.Serializer.SingularTypeNames)] = schema
	}

	r := chi.NewRouter()
	r.Use(middleware.NewChain(
		middleware.RequestID(),
		middleware.Logging(config.Logger, "/metrics"),
		middleware.Recovery(config.Logger),
		metrics.Middleware(routePattern),
	).Handlers()...)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		a.written(r, response.RenderJSONAPIError(w, http.StatusNotFound, fmt.Errorf("no route for %s", r.URL.Path)))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		a.written(r, response.RenderJSONAPIError(w, http.StatusMethodNotAllowed, fmt.Errorf("%s is not supported; this API is read-only", r.Method)))
	})

	r.Handle("/metrics", promhttp.HandlerFor(config.Registry, promhttp.HandlerOpts{}))

	routes := func(r chi.Router) {
		if config.Cache != nil {
			r.Use(cache.Middleware(cache.MiddlewareConfig{
				Cache:        config.Cache,
				KeyGenerator: a.keys,
				TTL:          config.CacheTTL,
				ContentType:  response.JSONAPIMediaType,
				OnLookup:     metrics.CacheLookup,
				Logger:       config.Logger,
			}))
		}

		r.Get("/{type}", a.index)
		r.Get("/{type}/{id}", a.show)
		r.Get("/{type}/{id}/relationships/{relation}", a.relationship)
		r.Get("/{type}/{id}/{relation}", a.related)
	}
	if config.Prefix == "" {
		r.Group(routes)
	} else {
		r.Route(config.Prefix, routes)
	}

	return r, nil
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

func (a *api) index(w http.ResponseWriter, r *http.Request) {
	schema, ok := a.schema(w, r)
	if !ok {
		return
	}

	params, ok := a.params(w, r)
	if !ok {
		return
	}

	records, total := a.store.Slice(schema.Name, params.Page.Offset(), params.Page.Size)
	page := params.Page
	page.Total = total

	b := a.ser.NewBuilder()
	err := b.Page(records, page, a.pageBase(r), params.Fields, params.Include)
	a.render(w, r, b, "collection", err)
}

// pageBase is the base URL of pagination links: the path plus the
// parameters the document cache keys on. Other parameters are dropped.
func (a *api) pageBase(r *http.Request) string {
	q := a.keys.Query(r)
	if len(q) == 0 {
		return r.URL.Path
	}
	return r.URL.Path + "?" + q.Encode()
}

func (a *api) show(w http.ResponseWriter, r *http.Request) {
	record, ok := a.record(w, r)
	if !ok {
		return
	}

	params, ok := a.params(w, r)
	if !ok {
		return
	}

	b := a.ser.NewBuilder().AddLink("self", r.URL.Path)
	err := b.Resource(record, params.Fields, params.Include)
	a.render(w, r, b, "resource", err)
}

func (a *api) related(w http.ResponseWriter, r *http.Request) {
	record, ok := a.record(w, r)
	if !ok {
		return
	}

	b := a.ser.NewBuilder().AddLink("self", r.URL.Path)
	err := b.Related(record, chi.URLParam(r, "relation"), query.ParseFields(r))
	a.render(w, r, b, "related", err)
}

func (a *api) relationship(w http.ResponseWriter, r *http.Request) {
	record, ok := a.record(w, r)
	if !ok {
		return
	}

	relation := chi.URLParam(r, "relation")
	b := a.ser.NewBuilder().
		AddLink("self", r.URL.Path).
		AddLink("related", fmt.Sprintf("%s/%s/%s/%s", a.prefix, chi.URLParam(r, "type"), chi.URLParam(r, "id"), relation))
	err := b.Relationship(record, relation)
	a.render(w, r, b, "relationship", err)
}

func (a *api) schema(w http.ResponseWriter, r *http.Request) (*resource.Schema, bool) {
	typeName := chi.URLParam(r, "type")
	schema, ok := a.types[typeName]
	if !ok {
		a.written(r, response.RenderJSONAPIError(w, http.StatusNotFound, fmt.Errorf("unknown resource type %q", typeName)))
		return nil, false
	}
	return schema, true
}

func (a *api) record(w http.ResponseWriter, r *http.Request) (resource.Record, bool) {
	schema, ok := a.schema(w, r)
	if !ok {
		return nil, false
	}

	id := chi.URLParam(r, "id")
	record, err := a.store.Find(schema.Name, id)
	if err != nil {
		a.written(r, response.RenderJSONAPIError(w, http.StatusNotFound, fmt.Errorf("no %s resource with id %q", chi.URLParam(r, "type"), id)))
		return nil, false
	}
	return record, true
}

func (a *api) params(w http.ResponseWriter, r *http.Request) (query.Params, bool) {
	params, err := query.Parse(r, a.ser.Options(), a.limits)
	if err != nil {
		if errors.Is(err, query.ErrInvalidPageParam) {
			a.written(r, response.RenderJSONAPIError(w, http.StatusBadRequest, err))
		} else {
			a.written(r, response.RenderError(w, err))
		}
		return query.Params{}, false
	}
	return params, true
}

func (a *api) render(w http.ResponseWriter, r *http.Request, b *serializer.Builder, kind string, err error) {
	a.metrics.DocumentBuilt(kind, err)
	if err != nil {
		a.written(r, response.RenderError(w, err))
		return
	}
	err = response.RenderDocument(w, http.StatusOK, b.Build())
	if errors.Is(err, response.ErrMarshalDocument) {
		a.logger.Error("document marshal failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err),
		)
		err = response.RenderError(w, err)
	}
	a.written(r, err)
}

// written logs a failed response write; the client has usually gone away
func (a *api) written(r *http.Request, err error) {
	if err == nil {
		return
	}
	a.logger.Debug("response write failed",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
}
