package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register adds every route to r.
func (h *Handlers) Register(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/thumbnails", h.ListThumbnails).Methods(http.MethodGet)
	api.HandleFunc("/scan", h.TriggerScan).Methods(http.MethodPost)
	api.HandleFunc("/videos/{path:.*}/thumbnails", h.GetVideoThumbnails).Methods(http.MethodGet)
	api.HandleFunc("/videos/{path:.*}/thumbnails", h.GenerateThumbnails).Methods(http.MethodPost)
	api.HandleFunc("/videos/{path:.*}/thumbnails", h.DeleteThumbnails).Methods(http.MethodDelete)
}
