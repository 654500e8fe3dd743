// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics holds the Prometheus collectors for the HTTP surface,
// uploads, logins, the listing cache and the signed URL refresh job.
// All methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can create independent instances.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	uploads         *prometheus.CounterVec
	uploadBytes     *prometheus.CounterVec
	blobDeletes     *prometheus.CounterVec
	logins          *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	urlRefreshes    *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campus",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "blob_uploads_total",
			Help:      "Blob uploads by backend, category and result",
		}, []string{"backend", "category", "result"}),
		uploadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "blob_upload_bytes_total",
			Help:      "Bytes written to blob storage",
		}, []string{"backend", "category"}),
		blobDeletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "blob_deletes_total",
			Help:      "Blob deletions by backend and result",
		}, []string{"backend", "result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "admin_logins_total",
			Help:      "Admin login attempts by result",
		}, []string{"result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "listing_cache_lookups_total",
			Help:      "Public listing cache lookups by result",
		}, []string{"result"}),
		urlRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "signed_url_refreshes_total",
			Help:      "Signed URL refreshes by content kind and result",
		}, []string{"kind", "result"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.requestTotal,
		m.uploads,
		m.uploadBytes,
		m.blobDeletes,
		m.logins,
		m.cacheLookups,
		m.urlRefreshes,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency labelled by chi route pattern,
// so /admin/photos/{id} is one series rather than one per id.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := []string{r.Method, route, strconv.Itoa(status)}
		m.requestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		m.requestTotal.WithLabelValues(labels...).Inc()
	})
}

// ObserveUpload counts an upload attempt; size is added only on success.
func (m *Metrics) ObserveUpload(backend, category string, err error, size int64) {
	if m == nil {
		return
	}
	if err != nil {
		m.uploads.WithLabelValues(backend, category, "error").Inc()
		return
	}
	m.uploads.WithLabelValues(backend, category, "ok").Inc()
	m.uploadBytes.WithLabelValues(backend, category).Add(float64(size))
}

// ObserveBlobDelete counts a blob deletion.
func (m *Metrics) ObserveBlobDelete(backend string, ok bool) {
	if m == nil {
		return
	}
	m.blobDeletes.WithLabelValues(backend, result(ok)).Inc()
}

// ObserveLogin counts a login attempt. result is one of ok, invalid, throttled.
func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// ObserveCacheLookup counts a listing cache hit or miss.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// ObserveURLRefresh counts one signed URL refresh. result is refreshed,
// skipped or failed.
func (m *Metrics) ObserveURLRefresh(kind, result string) {
	if m == nil {
		return
	}
	m.urlRefreshes.WithLabelValues(kind, result).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
