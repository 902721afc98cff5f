// Package fakes contains a fake serverless simulator for tests and local
// development. It keeps environments in memory and does not simulate anything.
package fakes

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/serverless-sim/simclient/internal/simconfig"
	"github.com/serverless-sim/simclient/internal/simserver"
	"github.com/serverless-sim/simclient/simenv"
)

// DefaultMaxSteps is the episode length used when NewSimulator is given zero.
const DefaultMaxSteps = 10

// SimulatorHooks can be used to override the behavior of the fake simulator.
type SimulatorHooks struct {
	GetNetworkTopo func(envID string) (simenv.GetNetworkTopoResult, error)
	GetEnvID       func() (simenv.GetEnvIDResult, error)
	Reset          func(config json.RawMessage) (simenv.ResetResult, error)
	Step           func(envID string, action int) (simenv.StepResult, error)
}

var _ = simserver.Handler(&Simulator{})

// Simulator implements simserver.Handler without running a simulation. Every
// environment stops after a fixed number of steps, and the score of a step is
// the action taken.
type Simulator struct {
	hooks    SimulatorHooks
	maxSteps int

	mu         sync.Mutex
	envCounter uint64
	envs       map[string]*fakeEnv
}

type fakeEnv struct {
	config simconfig.Config
	steps  int
}

// NewSimulator creates a fake simulator.
func NewSimulator(hooks *SimulatorHooks, maxSteps int) *Simulator {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	s := &Simulator{maxSteps: maxSteps, envs: make(map[string]*fakeEnv)}
	if hooks != nil {
		s.hooks = *hooks
	}
	return s
}

// Topology is the network topology reported for every environment.
func Topology() [][]int {
	return [][]int{
		{0, 1, 1},
		{1, 0, 1},
		{1, 1, 0},
	}
}

func (s *Simulator) GetNetworkTopo(ctx context.Context, req *simenv.GetNetworkTopoReq) (simenv.GetNetworkTopoResult, error) {
	if s.hooks.GetNetworkTopo != nil {
		return s.hooks.GetNetworkTopo(req.EnvID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.envs[req.EnvID]; !ok {
		return &simenv.GetNetworkTopoNotFound{Msg: fmt.Sprintf("env %q not found", req.EnvID)}, nil
	}
	return &simenv.GetNetworkTopoExist{Topo: Topology()}, nil
}

func (s *Simulator) GetEnvID(ctx context.Context, req *simenv.GetEnvIDReq) (simenv.GetEnvIDResult, error) {
	if s.hooks.GetEnvID != nil {
		return s.hooks.GetEnvID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.envs) == 0 {
		return &simenv.GetEnvIDNotFound{Msg: "no env"}, nil
	}
	ids := make([]string, 0, len(s.envs))
	for id := range s.envs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &simenv.GetEnvIDExist{EnvID: ids}, nil
}

func (s *Simulator) Reset(ctx context.Context, req *simenv.ResetReq) (simenv.ResetResult, error) {
	if s.hooks.Reset != nil {
		return s.hooks.Reset(req.Config)
	}
	var cfg simconfig.Config
	if len(req.Config) == 0 {
		return &simenv.ResetInvalidConfig{Msg: "missing config"}, nil
	}
	if err := json.Unmarshal(req.Config, &cfg); err != nil {
		return &simenv.ResetInvalidConfig{Msg: err.Error()}, nil
	}
	if err := cfg.Validate(); err != nil {
		return &simenv.ResetInvalidConfig{Msg: err.Error()}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.envCounter++
	id := fmt.Sprintf("%0.8x", s.envCounter)
	s.envs[id] = &fakeEnv{config: cfg}
	return &simenv.ResetSuccess{EnvID: id}, nil
}

func (s *Simulator) Step(ctx context.Context, req *simenv.StepReq) (simenv.StepResult, error) {
	if s.hooks.Step != nil {
		return s.hooks.Step(req.EnvID, req.Action)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	env, ok := s.envs[req.EnvID]
	if !ok {
		return &simenv.StepEnvNotFound{Msg: fmt.Sprintf("env %q not found", req.EnvID)}, nil
	}
	if env.steps >= s.maxSteps {
		return &simenv.StepSuccess{State: stateString(env), Score: 0, Stop: true, Info: "episode over"}, nil
	}
	env.steps++
	return &simenv.StepSuccess{
		State: stateString(env),
		Score: float64(req.Action),
		Stop:  env.steps >= s.maxSteps,
		Info:  "ok",
	}, nil
}

// Steps returns the number of steps taken in an environment.
func (s *Simulator) Steps(envID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	env, ok := s.envs[envID]
	if !ok {
		return 0, false
	}
	return env.steps, true
}

func stateString(env *fakeEnv) string {
	return fmt.Sprintf("%s/step%d", env.config.Key(), env.steps)
}
