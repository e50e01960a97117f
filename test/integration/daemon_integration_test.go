//go:build integration
// +build integration

package integration_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/evolution-core/internal/simd"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/logger"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/utils"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// x + y = 3 is solved quickly by most seeds
const quickConfigYAML = `
seed: 3
population: {size: 8, gene_range: {low: 0, high: 10}}
mutation: {chance: 0.2, delta: {value: 1}}
limits: {max_generations: 40}
problem: {type: linear_equation, coefficients: [1, 1], target: 3}
`

// 2x = 1 never resolves, so the run only ends when stopped
const endlessConfigYAML = `
seed: 11
population: {size: 4, gene_range: {low: -10, high: 10}}
mutation: {chance: 0.3, delta: {value: 1}}
limits: {max_generations: 100000000}
problem: {type: linear_equation, coefficients: [2], target: 1}
`

type daemon struct {
	httpURL  string
	client   *simd.EvolutionClient
	store    *simd.RunStore
	executor *simd.RunExecutor
	notifier *simd.Notifier
}

// startDaemon wires the daemon the way cmd/simd does, on ephemeral ports.
func startDaemon(t *testing.T) *daemon {
	t.Helper()
	logger.SetDefault(logger.Discard())

	store := simd.NewRunStore()
	executor := simd.NewRunExecutor(store)
	notifier := simd.NewNotifier().WithRetry(2, utils.NewConstantBackoff(5*time.Millisecond))
	executor.SetNotifier(notifier)

	grpcServer := grpc.NewServer()
	simd.RegisterEvolutionServer(grpcServer, simd.NewEvolutionGRPCServer(store, executor))
	grpcLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen grpc: %v", err)
	}
	go func() {
		_ = grpcServer.Serve(grpcLis)
	}()

	httpLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen http: %v", err)
	}
	httpSrv := &http.Server{
		Handler:           simd.NewHTTPServer(store, executor).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = httpSrv.Serve(httpLis)
	}()

	conn, err := grpc.NewClient(grpcLis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}

	t.Cleanup(func() {
		executor.StopAll()
		executor.Wait()
		notifier.Wait()
		conn.Close()
		grpcServer.GracefulStop()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(ctx)
	})

	return &daemon{
		httpURL:  "http://" + httpLis.Addr().String(),
		client:   simd.NewEvolutionClient(conn),
		store:    store,
		executor: executor,
		notifier: notifier,
	}
}

func (d *daemon) postJSON(t *testing.T, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	resp, err := http.Post(d.httpURL+path, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (d *daemon) getJSON(t *testing.T, path string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(d.httpURL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (d *daemon) waitForTerminal(t *testing.T, runID string) *simd.RunRecord {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if rec, ok := d.store.Get(runID); ok && rec.Run.Status.IsTerminal() {
			return rec
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("run %s did not finish", runID)
	return nil
}

func TestIntegration_Daemon_HTTPCreateGRPCRead(t *testing.T) {
	d := startDaemon(t)

	code, body := d.postJSON(t, "/v1/runs", map[string]any{
		"run_id":      "quick",
		"config_yaml": quickConfigYAML,
		"mode":        "lazy",
	})
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", code, body)
	}

	rec := d.waitForTerminal(t, "quick")
	if rec.Run.Status != simd.RunStatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", rec.Run.Status, rec.Run.Error)
	}
	if rec.Run.Result == nil {
		t.Fatal("expected a result to be stored")
	}

	got, err := d.client.GetRun(context.Background(), "quick")
	if err != nil {
		t.Fatalf("GetRun error: %v", err)
	}
	run := got.GetFields()["run"].GetStructValue().GetFields()
	if run["status"].GetStringValue() != string(simd.RunStatusCompleted) {
		t.Fatalf("gRPC status %v does not match HTTP-created run", run["status"])
	}
	result := run["result"].GetStructValue().GetFields()
	if result["found"].GetBoolValue() != rec.Run.Result.Found {
		t.Fatalf("gRPC and store disagree on result: %v vs %+v", result, rec.Run.Result)
	}

	code, metricsBody := d.getJSON(t, "/v1/runs/quick/metrics?last=5")
	if code != http.StatusOK {
		t.Fatalf("expected 200 for metrics, got %d", code)
	}
	if gens, _ := metricsBody["generations"].([]any); len(gens) == 0 || len(gens) > 5 {
		t.Fatalf("expected between 1 and 5 generations, got %d", len(gens))
	}
}

func TestIntegration_Daemon_GRPCCreateHTTPStop(t *testing.T) {
	d := startDaemon(t)
	ctx := context.Background()

	if _, err := d.client.CreateRun(ctx, "endless", endlessConfigYAML, "lazy"); err != nil {
		t.Fatalf("CreateRun error: %v", err)
	}
	if _, err := d.client.CreateRun(ctx, "endless", endlessConfigYAML, "lazy"); status.Code(err) != codes.AlreadyExists {
		t.Fatalf("expected AlreadyExists for duplicate id, got %v", err)
	}

	code, body := d.postJSON(t, "/v1/runs/endless:stop", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200 on stop, got %d: %v", code, body)
	}
	rec := d.waitForTerminal(t, "endless")
	if rec.Run.Status != simd.RunStatusCancelled {
		t.Fatalf("expected cancelled, got %s", rec.Run.Status)
	}

	list, err := d.client.ListRuns(ctx, 10, simd.RunStatusCancelled)
	if err != nil {
		t.Fatalf("ListRuns error: %v", err)
	}
	if n := len(list.GetFields()["runs"].GetListValue().GetValues()); n != 1 {
		t.Fatalf("expected 1 cancelled run, got %d", n)
	}
}

func TestIntegration_Daemon_CallbackAndStream(t *testing.T) {
	d := startDaemon(t)

	var mu sync.Mutex
	var payloads []simd.NotificationPayload
	var secrets []string
	callback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p simd.NotificationPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		payloads = append(payloads, p)
		secrets = append(secrets, r.Header.Get("X-Evolution-Callback-Secret"))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer callback.Close()

	code, body := d.postJSON(t, "/v1/runs", map[string]any{
		"run_id":          "notified",
		"config_yaml":     quickConfigYAML,
		"callback_url":    callback.URL + "/runs/{run_id}",
		"callback_secret": "s3cret",
	})
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", code, body)
	}

	resp, err := http.Get(d.httpURL + "/v1/runs/notified/metrics/stream?interval_ms=10")
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer resp.Body.Close()
	events := map[string]int{}
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
			events[name]++
		}
	}
	if events["complete"] != 1 {
		t.Fatalf("expected the stream to end with a complete event, got %v", events)
	}
	if events["generation"] == 0 {
		t.Fatalf("expected generation events, got %v", events)
	}

	d.executor.Wait()
	d.notifier.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(payloads) != 1 {
		t.Fatalf("expected 1 callback, got %d", len(payloads))
	}
	if payloads[0].RunID != "notified" || payloads[0].Status != simd.RunStatusCompleted {
		t.Fatalf("unexpected payload %+v", payloads[0])
	}
	if secrets[0] != "s3cret" {
		t.Fatalf("expected callback secret header, got %q", secrets[0])
	}
}
