package metrics

import (
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

func outcome(failure bool) Outcome {
	if failure {
		return Error
	}
	return Success
}

var defaultHistogramBucketsSeconds = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

// Collectors exist before Init so recording is safe in tests; Init registers them.
var (
	once          sync.Once
	metricsRouter *chi.Mux

	// client requests are the ones sending to other service
	clientRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "client_request_duration_seconds",
			Help:    "Histogram of outgoing client request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"baseurl", "method", "path", "status"},
	)

	venueClientLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "venue_client_latency_seconds",
			Help:    "Histogram of staking venue call durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	// add a counter for the number of errors from the fail to push message into queue
	queueSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_send_error_count",
			Help: "The total number of errors when sending messages to the queue",
		},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	workflowDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflow_duration_seconds",
			Help:    "Histogram of stake and redeem batch run durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"workflow", "status"},
	)

	stakeLockGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stake_lock_held",
			Help: "1 while a stake batch run holds the stake lock",
		},
	)

	redeemLockGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "redeem_lock_state",
			Help: "1 for the current redeem lock state, 0 for the others",
		},
		[]string{"state"},
	)

	liquidityPoolGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "liquidity_pool_balance",
			Help: "Reserve held in the liquidity pool, in base units",
		},
	)

	shareSupplyGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "total_share_supply",
			Help: "Total share supply, in base units",
		},
	)

	illegalStateCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "illegal_state_count",
			Help: "Number of broken ledger invariants caught at the service boundary",
		},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

func registerMetrics() {
	prometheus.MustRegister(
		clientRequestDurationHistogram,
		venueClientLatency,
		queueSendErrorCounter,
		pollerDurationHistogram,
		workflowDurationHistogram,
		stakeLockGauge,
		redeemLockGauge,
		liquidityPoolGauge,
		shareSupplyGauge,
		illegalStateCounter,
		dbLatency,
	)
}

func RecordVenueClientLatency(d time.Duration, method string, failure bool) {
	venueClientLatency.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	dbLatency.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

func RecordWorkflowDuration(d time.Duration, workflow string, failure bool) {
	workflowDurationHistogram.WithLabelValues(workflow, outcome(failure).String()).Observe(d.Seconds())
}

func RecordStakeLock(held bool) {
	if held {
		stakeLockGauge.Set(1)
		return
	}
	stakeLockGauge.Set(0)
}

// RecordRedeemLock marks state as the current redeem lock among all known states.
func RecordRedeemLock(state string, all []string) {
	for _, s := range all {
		v := 0.0
		if s == state {
			v = 1
		}
		redeemLockGauge.WithLabelValues(s).Set(v)
	}
}

func RecordLiquidityPool(amount *big.Int) {
	liquidityPoolGauge.Set(toFloat(amount))
}

func RecordShareSupply(amount *big.Int) {
	shareSupplyGauge.Set(toFloat(amount))
}

func IncIllegalState() {
	illegalStateCounter.Inc()
}

// StartClientRequestDurationTimer starts a timer to measure outgoing client request duration.
func StartClientRequestDurationTimer(baseUrl, method, path string) func(statusCode int) {
	startTime := time.Now()
	return func(statusCode int) {
		duration := time.Since(startTime).Seconds()
		clientRequestDurationHistogram.WithLabelValues(
			baseUrl,
			method,
			path,
			fmt.Sprintf("%d", statusCode),
		).Observe(duration)
	}
}

func RecordQueueSendError() {
	queueSendErrorCounter.Inc()
}

func toFloat(amount *big.Int) float64 {
	if amount == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(amount).Float64()
	return f
}
