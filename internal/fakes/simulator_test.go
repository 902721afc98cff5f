package fakes

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/serverless-sim/simclient/internal/simconfig"
	"github.com/serverless-sim/simclient/simenv"
)

func resetEnv(t *testing.T, sim *Simulator) string {
	t.Helper()
	cfg, _ := json.Marshal(simconfig.Default())
	res, err := sim.Reset(context.Background(), &simenv.ResetReq{Config: cfg})
	if err != nil {
		t.Fatal("reset failed:", err)
	}
	ok, isOK := res.(*simenv.ResetSuccess)
	if !isOK {
		t.Fatalf("reset not successful: %#v", res)
	}
	return ok.EnvID
}

func TestSimulatorEpisode(t *testing.T) {
	ctx := context.Background()
	sim := NewSimulator(nil, 3)
	envID := resetEnv(t, sim)
	if envID != "00000001" {
		t.Fatalf("wrong env id %q", envID)
	}

	for i := 1; i <= 3; i++ {
		res, err := sim.Step(ctx, &simenv.StepReq{EnvID: envID, Action: i})
		if err != nil {
			t.Fatal("step failed:", err)
		}
		step, ok := res.(*simenv.StepSuccess)
		if !ok {
			t.Fatalf("step %d: wrong outcome %#v", i, res)
		}
		if step.Score != float64(i) {
			t.Fatalf("step %d: wrong score %v", i, step.Score)
		}
		if step.Stop != (i == 3) {
			t.Fatalf("step %d: wrong stop flag %v", i, step.Stop)
		}
	}
	if n, _ := sim.Steps(envID); n != 3 {
		t.Fatalf("wrong step count %d", n)
	}

	// Stepping a finished episode does not advance it.
	res, _ := sim.Step(ctx, &simenv.StepReq{EnvID: envID, Action: 1})
	if step := res.(*simenv.StepSuccess); !step.Stop {
		t.Fatal("finished episode not stopped")
	}
	if n, _ := sim.Steps(envID); n != 3 {
		t.Fatalf("finished episode advanced to %d steps", n)
	}
}

func TestSimulatorUnknownEnv(t *testing.T) {
	ctx := context.Background()
	sim := NewSimulator(nil, 0)

	step, _ := sim.Step(ctx, &simenv.StepReq{EnvID: "nope"})
	if _, ok := step.(*simenv.StepEnvNotFound); !ok {
		t.Fatalf("wrong step outcome %#v", step)
	}
	topo, _ := sim.GetNetworkTopo(ctx, &simenv.GetNetworkTopoReq{EnvID: "nope"})
	if _, ok := topo.(*simenv.GetNetworkTopoNotFound); !ok {
		t.Fatalf("wrong topo outcome %#v", topo)
	}
	ids, _ := sim.GetEnvID(ctx, &simenv.GetEnvIDReq{})
	if _, ok := ids.(*simenv.GetEnvIDNotFound); !ok {
		t.Fatalf("wrong env id outcome %#v", ids)
	}
}

func TestSimulatorEnvIDs(t *testing.T) {
	ctx := context.Background()
	sim := NewSimulator(nil, 0)
	a := resetEnv(t, sim)
	b := resetEnv(t, sim)

	res, _ := sim.GetEnvID(ctx, &simenv.GetEnvIDReq{})
	exist, ok := res.(*simenv.GetEnvIDExist)
	if !ok {
		t.Fatalf("wrong outcome %#v", res)
	}
	if !reflect.DeepEqual(exist.EnvID, []string{a, b}) {
		t.Fatalf("wrong env ids %v", exist.EnvID)
	}

	topo, _ := sim.GetNetworkTopo(ctx, &simenv.GetNetworkTopoReq{EnvID: b})
	if e, ok := topo.(*simenv.GetNetworkTopoExist); !ok || !reflect.DeepEqual(e.Topo, Topology()) {
		t.Fatalf("wrong topology %#v", topo)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	ctx := context.Background()
	sim := NewSimulator(nil, 0)
	for _, cfg := range []string{"", `"text"`, `{"request_freq": "extreme"}`} {
		res, err := sim.Reset(ctx, &simenv.ResetReq{Config: json.RawMessage(cfg)})
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := res.(*simenv.ResetInvalidConfig); !ok {
			t.Errorf("config %q: wrong outcome %#v", cfg, res)
		}
	}
}

func TestSimulatorHooks(t *testing.T) {
	sim := NewSimulator(&SimulatorHooks{
		Step: func(envID string, action int) (simenv.StepResult, error) {
			return &simenv.StepSuccess{State: envID, Score: 0.5, Info: "hooked"}, nil
		},
	}, 0)
	res, _ := sim.Step(context.Background(), &simenv.StepReq{EnvID: "x"})
	if s, ok := res.(*simenv.StepSuccess); !ok || s.Info != "hooked" || s.State != "x" {
		t.Fatalf("hook not used: %#v", res)
	}
}
