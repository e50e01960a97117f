package simd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/evolution-core/internal/engine"
	"github.com/GoSim-25-26J-441/evolution-core/internal/metrics"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/logger"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/utils"
)

// NotificationPayload represents the JSON payload sent to the callback URL
type NotificationPayload struct {
	RunID           string           `json:"run_id"`
	Status          RunStatus        `json:"status"`
	CreatedAtUnixMs int64            `json:"created_at_unix_ms"`
	StartedAtUnixMs int64            `json:"started_at_unix_ms,omitempty"`
	EndedAtUnixMs   int64            `json:"ended_at_unix_ms,omitempty"`
	Error           string           `json:"error,omitempty"`
	Result          *engine.Result   `json:"result,omitempty"`
	Summary         *metrics.Summary `json:"summary,omitempty"`
	Timestamp       int64            `json:"timestamp"` // When notification was sent
}

// Notifier posts run outcomes to client callback URLs
type Notifier struct {
	httpClient *http.Client
	maxRetries int
	backoff    utils.BackoffStrategy
	wg         sync.WaitGroup

	// ctx aborts in-flight requests and pending retries on Shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// NewNotifier creates a notifier retrying with exponential backoff
func NewNotifier() *Notifier {
	ctx, cancel := context.WithCancel(context.Background())
	return &Notifier{
		ctx:    ctx,
		cancel: cancel,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxRetries: 3,
		backoff:    utils.NewExponentialBackoff(time.Second, 30*time.Second, 2.0, nil),
	}
}

// WithRetry overrides the retry count and delay strategy
func (n *Notifier) WithRetry(maxRetries int, backoff utils.BackoffStrategy) *Notifier {
	n.maxRetries = maxRetries
	n.backoff = backoff
	return n
}

// Notify sends a notification to the callback URL asynchronously
func (n *Notifier) Notify(callbackURL string, callbackSecret string, rec *RunRecord) {
	if callbackURL == "" {
		return
	}
	if rec == nil || rec.Run == nil {
		logger.Warn("cannot notify: invalid run record", "callback_url", callbackURL)
		return
	}

	// {run_id} in the URL is replaced by the run's ID
	finalURL := strings.ReplaceAll(callbackURL, "{run_id}", rec.Run.ID)

	payload := NotificationPayload{
		RunID:           rec.Run.ID,
		Status:          rec.Run.Status,
		CreatedAtUnixMs: rec.Run.CreatedAtUnixMs,
		StartedAtUnixMs: rec.Run.StartedAtUnixMs,
		EndedAtUnixMs:   rec.Run.EndedAtUnixMs,
		Error:           rec.Run.Error,
		Result:          rec.Run.Result,
		Timestamp:       time.Now().UTC().UnixMilli(),
	}
	if rec.Collector != nil {
		summary := rec.Collector.Summary()
		payload.Summary = &summary
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.sendNotification(finalURL, callbackSecret, payload)
	}()
}

// Wait blocks until pending notifications are delivered or abandoned
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// Shutdown waits for pending notifications until ctx is done, then abandons
// the rest.
func (n *Notifier) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		n.cancel()
		<-done
		return ctx.Err()
	}
}

// sendNotification performs the HTTP POST with retries
func (n *Notifier) sendNotification(callbackURL string, callbackSecret string, payload NotificationPayload) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal notification payload",
			"callback_url", callbackURL,
			"run_id", payload.RunID,
			"error", err)
		return
	}

	err = utils.Retry(n.ctx, n.maxRetries, n.backoff, func(attempt int) error {
		if attempt > 0 {
			logger.Debug("retrying notification", "run_id", payload.RunID, "attempt", attempt+1)
		}
		code, err := n.post(callbackURL, callbackSecret, payloadJSON)
		if err != nil {
			logger.Warn("notification attempt failed",
				"callback_url", callbackURL,
				"run_id", payload.RunID,
				"attempt", attempt+1,
				"status_code", code,
				"error", err)
		}
		return err
	})
	if err != nil {
		logger.Error("failed to send notification",
			"callback_url", callbackURL,
			"run_id", payload.RunID,
			"status", payload.Status,
			"max_retries", n.maxRetries,
			"error", err)
		return
	}
	logger.Info("notification sent", "run_id", payload.RunID, "status", payload.Status)
}

// post sends one attempt and returns the response code when there was one
func (n *Notifier) post(callbackURL, callbackSecret string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(n.ctx, http.MethodPost, callbackURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "evolution-core/1.0")
	if callbackSecret != "" {
		req.Header.Set("X-Evolution-Callback-Secret", callbackSecret)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
	return resp.StatusCode, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, snippet)
}
