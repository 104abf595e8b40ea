package prometheus

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Handler serves the scrape endpoint for one registry
type Handler struct {
	path     string
	gatherer prometheus.Gatherer
}

func New(path string, gatherer prometheus.Gatherer) *Handler {
	if path == "" {
		path = "/metrics"
	}
	return &Handler{
		path:     path,
		gatherer: gatherer,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET(h.path, h.Handler())
}

func (h *Handler) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{
		ErrorLog:      promLogger{},
		ErrorHandling: promhttp.ContinueOnError,
	}))
}

// promLogger routes collection errors to zerolog
type promLogger struct{}

func (promLogger) Println(v ...interface{}) {
	log.Error().Msg(fmt.Sprint(v...))
}
