// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/questline/internal/auth"
	"github.com/tomtom215/questline/internal/authz"
	"github.com/tomtom215/questline/internal/middleware"
	"github.com/tomtom215/questline/internal/models"
)

// BasePath prefixes every recommendation route.
const BasePath = "/recommendation"

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	authn         *auth.Middleware
	authz         *authz.Middleware
}

// NewRouter creates a router. A nil authn treats every caller as
// anonymous; a nil authz makes protected routes answer 403.
func NewRouter(handler *Handler, mw *ChiMiddleware, authn *auth.Middleware, authzMW *authz.Middleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	if authn == nil {
		authn = auth.NewMiddleware(nil, handler.logger)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
		authn:         authn,
		authz:         authzMW,
	}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to ALL routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.Handle("/metrics", promhttp.Handler())

	r.Route(BasePath, func(r chi.Router) {
		r.Use(APISecurityHeaders())

		// Monitoring endpoints get a permissive limit
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitHealth())
			r.Get("/health", router.handler.Health)
			r.Get("/cache/stats", router.handler.CacheStats)
			r.Get("/examples", router.handler.Examples)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			r.Post("/search", router.handler.Search)

			r.Group(func(r chi.Router) {
				r.Use(router.authn.OptionalAuth)
				r.Post("/continue/{conversationId}", router.handler.Continue)
				r.Get("/ws", router.handler.WebSocket)
			})

			r.Group(func(r chi.Router) {
				r.Use(router.authn.Authenticate)
				r.With(router.authorize(authz.ObjectRecommendations, authz.ActionPersonalize)).
					Post("/personalized", router.handler.Personalized)
				r.With(router.authorize(authz.ObjectCache, authz.ActionWrite)).
					Post("/cache/refresh", router.handler.CacheRefresh)

				r.Route("/admin", func(r chi.Router) {
					r.With(router.authorize(authz.ObjectIndex, authz.ActionWrite)).
						Post("/reindex", router.handler.Reindex)
					r.With(router.authorize(authz.ObjectIndex, authz.ActionWrite)).
						Post("/games/{id}/changed", router.handler.GameChanged)
					r.With(router.authorize(authz.ObjectIndex, authz.ActionWrite)).
						Delete("/games/{id}", router.handler.GameDeleted)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, models.ErrCodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, models.ErrCodeValidation, "method not allowed", nil)
	})

	return r
}

func (router *Router) authorize(object, action string) func(http.Handler) http.Handler {
	if router.authz != nil {
		return router.authz.Authorize(object, action)
	}
	return func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, r, http.StatusForbidden, models.ErrCodeAuthorization, "authorization is not configured", nil)
		})
	}
}
