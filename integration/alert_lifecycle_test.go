package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"vigil-go/internal/api"
	"vigil-go/internal/condition"
	"vigil-go/internal/config"
	"vigil-go/internal/dispatch"
	"vigil-go/internal/domain"
	"vigil-go/internal/ingest"
	queuememory "vigil-go/internal/queue/memory"
	"vigil-go/internal/scheduler"
	"vigil-go/internal/snapshot"
	storememory "vigil-go/internal/store/memory"
	"vigil-go/internal/tracker"
)

// captureBroadcaster records SYSTEM notifications instead of pushing them
// over websockets.
type captureBroadcaster struct {
	mu            sync.Mutex
	notifications []*domain.Notification
}

func (b *captureBroadcaster) Notify(_ context.Context, n *domain.Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifications = append(b.notifications, n)
	return nil
}

func (b *captureBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.notifications)
}

func (b *captureBroadcaster) last() *domain.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.notifications) == 0 {
		return nil
	}
	return b.notifications[len(b.notifications)-1]
}

// stack is the full in-process memory-mode deployment under test.
type stack struct {
	server       *api.Server
	metricsStore *storememory.MetricsStore
	repo         *storememory.AlertRepository
	broadcaster  *captureBroadcaster
	scheduler    *scheduler.Scheduler
	cancel       context.CancelFunc
	queue        *queuememory.Queue
	trackerDone  chan struct{}
}

func buildStack() *stack {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default()

	repo := storememory.NewAlertRepository()
	metricsStore := storememory.NewMetricsStore()
	q := queuememory.NewQueue(1000)

	catalog := condition.DefaultCatalog()
	evaluator := condition.NewEvaluator(catalog, logger)

	broadcaster := &captureBroadcaster{}
	dispatcher := dispatch.NewDispatcher(
		dispatch.NewLogSender(logger),
		broadcaster,
		dispatch.NewWebhookSender(logger),
		logger,
	)

	ingestService := ingest.NewService(q, logger)
	trackerService := tracker.NewService(q, metricsStore, logger)

	builder := snapshot.NewMetricsBuilder(metricsStore, logger)
	sched := scheduler.New(repo, builder, evaluator, dispatcher, logger, scheduler.Options{
		Interval:        cfg.Scheduler.Interval,
		Cooldown:        cfg.Scheduler.Cooldown,
		DispatchTimeout: cfg.Scheduler.DispatchTimeout,
	})

	server := api.NewServer(api.ServerDeps{
		Config:           &cfg.Server,
		Logger:           logger,
		AlertHandler:     api.NewAlertHandler(repo, evaluator, logger),
		ConditionHandler: api.NewConditionHandler(catalog, evaluator, builder, logger),
		IngestHandler:    api.NewIngestHandler(ingestService, logger),
		SweepHandler:     api.NewSweepHandler(sched, logger),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = trackerService.Start(ctx)
	}()

	return &stack{
		server:       server,
		metricsStore: metricsStore,
		repo:         repo,
		broadcaster:  broadcaster,
		scheduler:    sched,
		cancel:       cancel,
		queue:        q,
		trackerDone:  done,
	}
}

func (s *stack) teardown() {
	s.cancel()
	select {
	case <-s.trackerDone:
	case <-time.After(2 * time.Second):
	}
	_ = s.queue.Close()
}

// do performs an in-process HTTP request against the Fiber app.
func (s *stack) do(method, path string, body interface{}) *http.Response {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	Expect(err).NotTo(HaveOccurred())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.server.App().Test(req, 10000)
	Expect(err).NotTo(HaveOccurred())
	return resp
}

func parseData(resp *http.Response) map[string]interface{} {
	defer resp.Body.Close()
	var envelope map[string]interface{}
	Expect(json.NewDecoder(resp.Body).Decode(&envelope)).To(Succeed())
	data, _ := envelope["data"].(map[string]interface{})
	return data
}

var _ = Describe("Alert Lifecycle", func() {
	var s *stack

	BeforeEach(func() {
		s = buildStack()
	})

	AfterEach(func() {
		s.teardown()
	})

	It("serves the health check", func() {
		resp := s.do("GET", "/healthz", nil)
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})

	Context("when a low-throughput alert is configured", func() {
		createAlert := func() int64 {
			resp := s.do("POST", "/v1/alerts", map[string]interface{}{
				"name":        "Low throughput",
				"description": "Fewer documents than expected",
				"condition":   "documents_today < 50",
				"channel":     "SYSTEM",
				"priority":    "HIGH",
				"created_by":  1,
			})
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			data := parseData(resp)
			return int64(data["id"].(float64))
		}

		It("fires on a sweep and records run-state", func() {
			id := createAlert()

			// Feed some activity through the full ingest pipeline
			for i := 0; i < 3; i++ {
				resp := s.do("POST", "/v1/events", map[string]interface{}{
					"kind": "document_processed",
				})
				Expect(resp.StatusCode).To(Equal(http.StatusAccepted))
				resp.Body.Close()
			}

			Eventually(func() int64 {
				processed, _, err := s.metricsStore.DocumentCounts(context.Background())
				Expect(err).NotTo(HaveOccurred())
				return processed
			}, "2s", "10ms").Should(Equal(int64(3)))

			resp := s.do("POST", "/v1/sweep", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()

			Expect(s.broadcaster.count()).To(Equal(1))
			notification := s.broadcaster.last()
			Expect(notification.Title).To(ContainSubstring("Low throughput"))
			Expect(notification.PlaySound).To(BeTrue())
			Expect(notification.ActionURL).To(ContainSubstring("/alerts/"))

			getResp := s.do("GET", "/v1/alerts/1", nil)
			Expect(getResp.StatusCode).To(Equal(http.StatusOK))
			data := parseData(getResp)
			Expect(int64(data["id"].(float64))).To(Equal(id))
			Expect(data["trigger_count"]).To(BeEquivalentTo(1))
			Expect(data["last_result"]).To(Equal("TRIGGERED"))
			Expect(data["last_triggered_at"]).NotTo(BeNil())
		})

		It("honors the cooldown on back-to-back sweeps", func() {
			createAlert()

			resp := s.do("POST", "/v1/sweep", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()

			resp = s.do("POST", "/v1/sweep", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()

			Expect(s.broadcaster.count()).To(Equal(1))

			getResp := s.do("GET", "/v1/alerts/1", nil)
			data := parseData(getResp)
			Expect(data["trigger_count"]).To(BeEquivalentTo(1))
		})

		It("stops firing once deactivated", func() {
			createAlert()

			active := false
			resp := s.do("PUT", "/v1/alerts/1", map[string]interface{}{"active": active})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()

			resp = s.do("POST", "/v1/sweep", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()

			Expect(s.broadcaster.count()).To(Equal(0))
		})
	})

	Context("alert definition validation", func() {
		It("rejects a condition referencing an unknown variable", func() {
			resp := s.do("POST", "/v1/alerts", map[string]interface{}{
				"name":       "Bogus",
				"condition":  "warp_factor > 9",
				"channel":    "SYSTEM",
				"priority":   "LOW",
				"created_by": 1,
			})
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects an email alert without recipients", func() {
			resp := s.do("POST", "/v1/alerts", map[string]interface{}{
				"name":       "No recipients",
				"condition":  "error_rate > 5",
				"channel":    "EMAIL",
				"priority":   "LOW",
				"created_by": 1,
			})
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects mixed AND/OR in the flat grammar", func() {
			resp := s.do("POST", "/v1/conditions/validate", map[string]interface{}{
				"condition": "error_rate > 5 AND queue_size > 10 OR cpu_usage > 90",
			})
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Context("condition authoring surface", func() {
		It("lists the variable catalog", func() {
			resp := s.do("GET", "/v1/conditions/variables", nil)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var envelope struct {
				Data []condition.VariableDescriptor `json:"data"`
			}
			Expect(json.NewDecoder(resp.Body).Decode(&envelope)).To(Succeed())
			Expect(envelope.Data).To(HaveLen(10))
			Expect(envelope.Data[0].Name).To(Equal("active_users"))
		})

		It("serves templates that all validate", func() {
			resp := s.do("GET", "/v1/conditions/templates", nil)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var envelope struct {
				Data []condition.Template `json:"data"`
			}
			Expect(json.NewDecoder(resp.Body).Decode(&envelope)).To(Succeed())
			Expect(envelope.Data).NotTo(BeEmpty())

			for _, tmpl := range envelope.Data {
				vresp := s.do("POST", "/v1/conditions/validate", map[string]interface{}{
					"condition": tmpl.Condition,
				})
				Expect(vresp.StatusCode).To(Equal(http.StatusOK), "template %s", tmpl.Name)
				vresp.Body.Close()
			}
		})

		It("dry-runs a condition against supplied values", func() {
			resp := s.do("POST", "/v1/conditions/test", map[string]interface{}{
				"condition": "error_rate > 5",
				"variables": map[string]interface{}{"error_rate": 7.5},
			})
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			data := parseData(resp)
			Expect(data["result"]).To(BeTrue())
		})
	})
})
