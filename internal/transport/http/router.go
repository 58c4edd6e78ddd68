package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter configures the API routes, output file serving and metrics.
func NewRouter(handler *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/videos/info", handler.VideoInfo).Methods("GET")
	r.HandleFunc("/api/videos/download", handler.Download).Methods("POST")
	r.HandleFunc("/download", handler.CheckDownload).Methods("GET")
	r.HandleFunc("/audios/{name}", handler.ServeOutput("audios")).Methods("GET", "HEAD")
	r.HandleFunc("/videos/{name}", handler.ServeOutput("videos")).Methods("GET", "HEAD")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return r
}
