package simenv_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/serverless-sim/simclient/internal/fakes"
	"github.com/serverless-sim/simclient/internal/simconfig"
	"github.com/serverless-sim/simclient/internal/simserver"
	"github.com/serverless-sim/simclient/simenv"
)

func newFakeAPI(hooks *fakes.SimulatorHooks, maxSteps int) (*fakes.Simulator, *httptest.Server) {
	sim := fakes.NewSimulator(hooks, maxSteps)
	srv := httptest.NewServer(simserver.NewAPI(sim, nil))
	return sim, srv
}

func defaultConfig(t *testing.T) json.RawMessage {
	t.Helper()
	raw, err := simenv.ConfigJSON(simconfig.Default())
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

// This test runs a full episode through the HTTP API.
func TestResetStep(t *testing.T) {
	_, srv := newFakeAPI(nil, 3)
	defer srv.Close()
	ctx := context.Background()

	client := simenv.NewAt(srv.URL)
	reset, err := client.Reset(ctx, &simenv.ResetReq{Config: defaultConfig(t)})
	if err != nil {
		t.Fatal("can't reset:", err)
	}
	ok, isOK := reset.Success()
	if !isOK {
		t.Fatalf("reset failed: %#v", reset.Result())
	}

	var stopped bool
	for i := 0; i < 3; i++ {
		step, err := client.Step(ctx, &simenv.StepReq{EnvID: ok.EnvID, Action: 2})
		if err != nil {
			t.Fatal("can't step:", err)
		}
		s, isOK := step.Success()
		if !isOK {
			t.Fatalf("step failed: %#v", step.Result())
		}
		if s.Score != 2 {
			t.Fatalf("wrong score %v", s.Score)
		}
		stopped = s.Stop
	}
	if !stopped {
		t.Fatal("episode did not stop")
	}
}

func TestDeclaredFailures(t *testing.T) {
	_, srv := newFakeAPI(nil, 0)
	defer srv.Close()
	ctx := context.Background()
	client := simenv.NewAt(srv.URL)

	reset, err := client.Reset(ctx, &simenv.ResetReq{Config: json.RawMessage(`{"request_freq": "extreme"}`)})
	if err != nil {
		t.Fatal("declared failure returned as error:", err)
	}
	if _, ok := reset.InvalidConfig(); !ok {
		t.Fatalf("wrong reset outcome %#v", reset.Result())
	}

	step, err := client.Step(ctx, &simenv.StepReq{EnvID: "missing"})
	if err != nil {
		t.Fatal("declared failure returned as error:", err)
	}
	nf, ok := step.EnvNotFound()
	if !ok {
		t.Fatalf("wrong step outcome %#v", step.Result())
	}
	if !strings.Contains(nf.Msg, "missing") {
		t.Fatalf("wrong message %q", nf.Msg)
	}

	ids, err := client.GetEnvID(ctx, &simenv.GetEnvIDReq{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ids.NotFound(); !ok {
		t.Fatalf("wrong get_env_id outcome %#v", ids.Result())
	}
}

func TestSession(t *testing.T) {
	sim, srv := newFakeAPI(nil, 5)
	defer srv.Close()
	ctx := context.Background()
	sess := simenv.NewAt(srv.URL).NewSession()

	if _, err := sess.Step(ctx, 1); !errors.Is(err, simenv.ErrNoEnv) {
		t.Fatalf("wrong error before reset: %v", err)
	}
	if _, err := sess.Topology(ctx); !errors.Is(err, simenv.ErrNoEnv) {
		t.Fatalf("wrong error before reset: %v", err)
	}

	// Rejected configs don't create an environment.
	bad := simconfig.Default()
	bad.DagType = "tree"
	if _, err := sess.Reset(ctx, bad); err != nil {
		t.Fatal(err)
	}
	if sess.EnvID() != "" {
		t.Fatalf("env id set after rejected reset: %q", sess.EnvID())
	}

	if _, err := sess.Reset(ctx, simconfig.Default()); err != nil {
		t.Fatal("can't reset:", err)
	}
	if sess.EnvID() == "" {
		t.Fatal("no env id after reset")
	}
	if _, err := sess.Step(ctx, 1); err != nil {
		t.Fatal("can't step:", err)
	}
	if n, _ := sim.Steps(sess.EnvID()); n != 1 {
		t.Fatalf("wrong step count %d", n)
	}

	topo, err := sess.Topology(ctx)
	if err != nil {
		t.Fatal(err)
	}
	exist, ok := topo.Exist()
	if !ok || !reflect.DeepEqual(exist.Topo, fakes.Topology()) {
		t.Fatalf("wrong topology %#v", topo.Result())
	}
}

// This test checks that responses with undeclared ids are errors, not outcomes.
func TestUnknownVariantFromServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"id": 9, "kernel": {"env_id": "x"}}`))
	}))
	defer srv.Close()

	resp, err := simenv.NewAt(srv.URL).Reset(context.Background(), &simenv.ResetReq{})
	if err == nil {
		t.Fatalf("expected error, got %#v", resp.Result())
	}
	if resp != nil {
		t.Fatal("response returned with error")
	}
}

func TestHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/step":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "simulator exploded"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	client := simenv.NewAt(srv.URL)
	ctx := context.Background()

	_, err := client.Step(ctx, &simenv.StepReq{EnvID: "x"})
	var herr *simenv.HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("wrong error %v", err)
	}
	if herr.StatusCode != 500 || herr.Message != "simulator exploded" || herr.API != "step" {
		t.Fatalf("wrong error %+v", herr)
	}

	_, err = client.GetEnvID(ctx, &simenv.GetEnvIDReq{})
	if !errors.As(err, &herr) || herr.StatusCode != 404 {
		t.Fatalf("wrong error %v", err)
	}
	if !strings.Contains(err.Error(), "404 page not found") {
		t.Fatalf("error lacks body: %v", err)
	}
}

func TestTransportError(t *testing.T) {
	_, srv := newFakeAPI(nil, 0)
	url := srv.URL
	srv.Close()

	_, err := simenv.NewAt(url).GetEnvID(context.Background(), &simenv.GetEnvIDReq{})
	if err == nil {
		t.Fatal("expected error from closed server")
	}
	if !strings.HasPrefix(err.Error(), "get_env_id:") {
		t.Fatalf("error does not name the api: %v", err)
	}
}

func TestContextCanceled(t *testing.T) {
	_, srv := newFakeAPI(nil, 0)
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := simenv.NewAt(srv.URL).GetEnvID(ctx, &simenv.GetEnvIDReq{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("wrong error %v", err)
	}
}

func TestRequestID(t *testing.T) {
	var (
		mu  sync.Mutex
		ids []string
	)
	sim := fakes.NewSimulator(nil, 0)
	api := simserver.NewAPI(sim, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get("X-Request-Id"))
		mu.Unlock()
		api.ServeHTTP(w, r)
	}))
	defer srv.Close()
	ctx := context.Background()

	simenv.NewAt(srv.URL).GetEnvID(ctx, &simenv.GetEnvIDReq{})
	client := simenv.NewAt(srv.URL, simenv.WithRequestID())
	client.GetEnvID(ctx, &simenv.GetEnvIDReq{})
	client.GetEnvID(ctx, &simenv.GetEnvIDReq{})

	if len(ids) != 3 {
		t.Fatalf("wrong request count %d", len(ids))
	}
	if ids[0] != "" {
		t.Fatalf("request id sent without option: %q", ids[0])
	}
	if ids[1] == "" || ids[2] == "" || ids[1] == ids[2] {
		t.Fatalf("bad request ids %q", ids[1:])
	}
}

func TestRateLimit(t *testing.T) {
	_, srv := newFakeAPI(nil, 0)
	defer srv.Close()

	// One call per 50ms, no burst beyond the first.
	client := simenv.NewAt(srv.URL, simenv.WithRateLimit(20, 1))
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.GetEnvID(context.Background(), &simenv.GetEnvIDReq{}); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Fatalf("calls not paced: %v", elapsed)
	}

	// A limiter wait that can't finish before the deadline fails the call.
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	slow := simenv.NewAt(srv.URL, simenv.WithRateLimit(0.1, 1))
	slow.GetEnvID(context.Background(), &simenv.GetEnvIDReq{})
	if _, err := slow.GetEnvID(ctx, &simenv.GetEnvIDReq{}); err == nil {
		t.Fatal("expected rate limiter error")
	}
}

// This test checks that concurrent calls on one client don't interfere.
func TestConcurrentSessions(t *testing.T) {
	sim, srv := newFakeAPI(nil, 100)
	defer srv.Close()
	client := simenv.NewAt(srv.URL)
	ctx := context.Background()

	const sessions, steps = 8, 5
	var wg sync.WaitGroup
	envs := make([]string, sessions)
	errs := make(chan error, sessions)
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess := client.NewSession()
			if _, err := sess.Reset(ctx, simconfig.Default()); err != nil {
				errs <- err
				return
			}
			for j := 0; j < steps; j++ {
				if _, err := sess.Step(ctx, j); err != nil {
					errs <- err
					return
				}
			}
			envs[i] = sess.EnvID()
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
	for _, id := range envs {
		if n, _ := sim.Steps(id); n != steps {
			t.Fatalf("env %s: wrong step count %d", id, n)
		}
	}
}

func TestNewPanicsWithoutEnv(t *testing.T) {
	if _, ok := os.LookupEnv(simenv.EnvVar); ok {
		t.Skip(simenv.EnvVar + " is set")
	}
	defer func() {
		if recover() == nil {
			t.Fatal("New did not panic")
		}
	}()
	simenv.New()
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv(simenv.EnvVar, "http://sim.example:3000/")
	if url := simenv.New().URL(); url != "http://sim.example:3000" {
		t.Fatalf("wrong url %q", url)
	}
}
