package bridge

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zaptest"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/event"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/exporter"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

type fakePipeline struct {
	mu     sync.Mutex
	calls  []string
	states []model.AppState
	state  model.MonitorState
}

func (f *fakePipeline) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakePipeline) Start() {
	f.record("start")
	f.mu.Lock()
	f.state = model.Running
	f.mu.Unlock()
}

func (f *fakePipeline) Stop() {
	f.record("stop")
	f.mu.Lock()
	f.state = model.Stopped
	f.mu.Unlock()
}

func (f *fakePipeline) ForceUpdate() { f.record("refresh") }

func (f *fakePipeline) SetAppState(s model.AppState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, s)
}

func (f *fakePipeline) State() model.MonitorState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func newTestServer(t *testing.T) (*httptest.Server, *fakePipeline, *event.Bus) {
	t.Helper()
	bus := event.NewBus(zaptest.NewLogger(t))
	reg := prometheus.NewRegistry()
	exp := exporter.New(reg)
	t.Cleanup(exp.Attach(bus).Unsubscribe)

	p := &fakePipeline{}
	profile := model.DeviceProfile{Model: "XPS 13", OSVersion: "ubuntu 24.04", Brand: "Dell Inc.", Hostname: "box"}
	srv := httptest.NewServer(New(p, bus, profile, reg, zaptest.NewLogger(t)).Handler())
	t.Cleanup(srv.Close)
	return srv, p, bus
}

func post(t *testing.T, url, body string) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func decode(resp *http.Response, v any) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}

func TestControlEndpoints(t *testing.T) {
	srv, p, _ := newTestServer(t)
	for _, path := range []string{"/v1/monitor/start", "/v1/monitor/refresh", "/v1/monitor/stop"} {
		if code := post(t, srv.URL+path, ""); code != http.StatusAccepted {
			t.Fatalf("%s status = %d", path, code)
		}
	}
	want := []string{"start", "refresh", "stop"}
	if strings.Join(p.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", p.calls, want)
	}

	resp, err := http.Get(srv.URL + "/v1/monitor/start")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET start status = %d", resp.StatusCode)
	}
}

func TestWrongMethodIsRejected(t *testing.T) {
	srv, p, _ := newTestServer(t)
	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/v1/monitor/stop", http.StatusMethodNotAllowed},
		{http.MethodGet, "/v1/monitor/refresh", http.StatusMethodNotAllowed},
		{http.MethodGet, "/v1/app-state", http.StatusMethodNotAllowed},
		{http.MethodPost, "/v1/device", http.StatusMethodNotAllowed},
		{http.MethodPost, "/v1/state", http.StatusMethodNotAllowed},
		{http.MethodGet, "/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
		if err != nil {
			t.Fatal(err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tt.method, tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.want)
		}
	}
	if len(p.calls) != 0 {
		t.Fatalf("rejected requests reached the pipeline: %v", p.calls)
	}
}

func TestAppState(t *testing.T) {
	srv, p, _ := newTestServer(t)
	if code := post(t, srv.URL+"/v1/app-state", `{"state":"background"}`); code != http.StatusAccepted {
		t.Fatalf("status = %d", code)
	}
	if code := post(t, srv.URL+"/v1/app-state", `{"state":"asleep"}`); code != http.StatusBadRequest {
		t.Fatalf("unknown state status = %d", code)
	}
	if code := post(t, srv.URL+"/v1/app-state", `not json`); code != http.StatusBadRequest {
		t.Fatalf("bad body status = %d", code)
	}
	if len(p.states) != 1 || p.states[0] != model.AppBackground {
		t.Fatalf("states = %v", p.states)
	}
}

func TestStateAndDevice(t *testing.T) {
	srv, p, _ := newTestServer(t)
	p.Start()

	resp, err := http.Get(srv.URL + "/v1/state")
	if err != nil {
		t.Fatal(err)
	}
	var state map[string]string
	if err := decode(resp, &state); err != nil {
		t.Fatal(err)
	}
	if state["state"] != model.Running.String() {
		t.Fatalf("state = %v", state)
	}

	resp, err = http.Get(srv.URL + "/v1/device")
	if err != nil {
		t.Fatal(err)
	}
	var profile model.DeviceProfile
	if err := decode(resp, &profile); err != nil {
		t.Fatal(err)
	}
	if profile.Brand != "Dell Inc." || profile.Model != "XPS 13" {
		t.Fatalf("profile = %+v", profile)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, bus := newTestServer(t)
	bus.CPU.Publish(model.CPU{Usage: 42})

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "pulse_cpu_usage_percent 42") {
		t.Fatalf("metrics missing cpu gauge:\n%s", body)
	}
}

func TestEventStream(t *testing.T) {
	srv, _, bus := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The subscription is attached after the upgrade completes on the server.
	deadline := time.Now().Add(2 * time.Second)
	for bus.CPU.Len() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if bus.CPU.Len() < 2 {
		t.Fatalf("stream listener not attached, cpu listeners = %d", bus.CPU.Len())
	}

	bus.Memory.Publish(model.Memory{Used: 1, Total: 2, UsagePercent: 50})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env struct {
		Event string       `json:"event"`
		Data  model.Memory `json:"data"`
	}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Event != event.NameMemory || env.Data.UsagePercent != 50 {
		t.Fatalf("envelope = %+v", env)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for bus.CPU.Len() > 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if bus.CPU.Len() != 1 {
		t.Fatalf("listener leaked after close, cpu listeners = %d", bus.CPU.Len())
	}
}
