package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"pagewatch/internal/models"
)

var (
	keywordAlertDesc = prometheus.NewDesc(
		"pagewatch_keyword_alerts_total",
		"Total alerts a keyword took part in",
		[]string{"keyword"},
		nil,
	)

	pageChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pagewatch_page_checks_total",
		Help: "Page checks by outcome",
	}, []string{"outcome"})

	notableKeywords = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pagewatch_notable_keywords_total",
		Help: "Keywords reported as new or increased",
	})
)

// AlertCountStore reads and updates persisted keyword alert counts.
type AlertCountStore interface {
	IncrementKeywordAlert(ctx context.Context, keyword string) error
	GetAllKeywordAlertCounts(ctx context.Context) ([]models.KeywordAlertCount, error)
}

// KeywordCollector is a custom Prometheus collector that reads keyword alert
// counts from the database on each scrape.
type KeywordCollector struct {
	store AlertCountStore
}

// Describe sends the metric descriptor to the channel.
func (c *KeywordCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- keywordAlertDesc
}

// Collect queries the database for all keyword alert counts and emits them as counters.
func (c *KeywordCollector) Collect(ch chan<- prometheus.Metric) {
	counts, err := c.store.GetAllKeywordAlertCounts(context.Background())
	if err != nil {
		slog.Error("failed to collect keyword alert metrics", "error", err)
		return
	}
	for _, kc := range counts {
		ch <- prometheus.MustNewConstMetric(
			keywordAlertDesc,
			prometheus.CounterValue,
			float64(kc.Count),
			kc.Keyword,
		)
	}
}

// Recorder provides async keyword alert recording.
type Recorder struct {
	store AlertCountStore
}

var (
	recorder     *Recorder
	recorderOnce sync.Once
)

// Init registers the collectors and initializes the recorder.
// Must be called once at startup.
func Init(store AlertCountStore) {
	recorderOnce.Do(func() {
		recorder = &Recorder{store: store}
		prometheus.MustRegister(&KeywordCollector{store: store}, pageChecks, notableKeywords)
	})
}

// RecordPageCheck counts one page check with the given outcome.
func RecordPageCheck(outcome string) {
	pageChecks.WithLabelValues(outcome).Inc()
}

// RecordKeywordAlerts asynchronously records that keywords took part in an alert.
func RecordKeywordAlerts(keywords []string) {
	notableKeywords.Add(float64(len(keywords)))
	if recorder == nil {
		return
	}
	go func() {
		for _, kw := range keywords {
			if err := recorder.store.IncrementKeywordAlert(context.Background(), kw); err != nil {
				slog.Error("failed to record keyword alert", "keyword", kw, "error", err)
			}
		}
	}()
}
