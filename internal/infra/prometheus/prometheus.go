package prometheus

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/linkmint/linkmint/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 10 * time.Second
	defaultPort       = 9090
)

var (
	clicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkmint_clicks_total",
		Help: "Recorded clicks, partitioned by the uniqueness decision.",
	}, []string{"unique"})

	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkmint_conversions_total",
		Help: "Recorded conversions, partitioned by attribution path.",
	}, []string{"attributed"})
)

// IncClick counts one recorded click.
func IncClick(unique bool) {
	clicksTotal.WithLabelValues(strconv.FormatBool(unique)).Inc()
}

// IncConversion counts one recorded conversion. attributed is true when the
// conversion carried a click correlation token.
func IncConversion(attributed bool) {
	if attributed {
		conversionsTotal.WithLabelValues("token").Inc()
	} else {
		conversionsTotal.WithLabelValues("webhook").Inc()
	}
}

// NewServer builds a basic HTTP server that exposes /metrics for Prometheus
// scraping.
func NewServer(cfg config.PrometheusConfig) *http.Server {
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
}
