package main

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/serverless-sim/simclient/internal/simconfig"
	"github.com/serverless-sim/simclient/simenv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"gopkg.in/inconshreveable/log15.v2"
)

// episodeResult is the record written for every episode.
type episodeResult struct {
	RunID    string        `json:"run_id"`
	Run      string        `json:"run"`
	Episode  int           `json:"episode"`
	EnvID    string        `json:"env_id,omitempty"`
	Steps    int           `json:"steps"`
	Score    float64       `json:"score"` // sum of step scores
	Stopped  bool          `json:"stopped"`
	Failure  string        `json:"failure,omitempty"`
	State    string        `json:"state,omitempty"`
	Duration time.Duration `json:"duration"`
}

type runnerConfig struct {
	episodes  int   // per run, unless the run overrides it
	maxSteps  int   // per episode, 0 means until the simulator stops
	parallel  int64 // concurrent episodes
	actionMax int   // actions are drawn from [0, actionMax]
	seed      int64
}

// runner plays experiment episodes against a simulator.
type runner struct {
	client *simenv.Client
	cfg    runnerConfig
	runID  string
	logger log15.Logger
}

func newRunner(client *simenv.Client, cfg runnerConfig, logger log15.Logger) *runner {
	if cfg.parallel < 1 {
		cfg.parallel = 1
	}
	if cfg.episodes < 1 {
		cfg.episodes = 1
	}
	runID := uuid.NewString()
	return &runner{client: client, cfg: cfg, runID: runID, logger: logger.New("runid", runID[:8])}
}

// runAll plays all episodes of the experiment. Results are delivered to emit
// in completion order. Declared failures of the simulator end an episode but
// not the experiment; transport and decode errors abort everything.
func (r *runner) runAll(ctx context.Context, exp *simconfig.Experiment, emit func(*episodeResult) error) error {
	var (
		sem    = semaphore.NewWeighted(r.cfg.parallel)
		emitMu sync.Mutex
		index  int64
	)
	g, ctx := errgroup.WithContext(ctx)
loop:
	for _, run := range exp.Runs {
		run := run
		episodes := r.cfg.episodes
		if run.Episodes > 0 {
			episodes = run.Episodes
		}
		for ep := 0; ep < episodes; ep++ {
			ep, seed := ep, r.cfg.seed+index
			index++
			if err := sem.Acquire(ctx, 1); err != nil {
				// Context canceled, g.Wait reports the cause.
				break loop
			}
			g.Go(func() error {
				defer sem.Release(1)
				res, err := r.episode(ctx, run, ep, seed)
				if err != nil {
					return fmt.Errorf("run %s episode %d: %w", run.Name, ep, err)
				}
				emitMu.Lock()
				defer emitMu.Unlock()
				return emit(res)
			})
		}
	}
	return g.Wait()
}

// episode resets an environment and steps it until it stops.
func (r *runner) episode(ctx context.Context, run simconfig.Run, ep int, seed int64) (*episodeResult, error) {
	var (
		start  = time.Now()
		rng    = rand.New(rand.NewSource(seed))
		sess   = r.client.NewSession()
		res    = &episodeResult{RunID: r.runID, Run: run.Name, Episode: ep}
		logger = r.logger.New("run", run.Name, "episode", ep)
	)
	defer func() { res.Duration = time.Since(start) }()

	reset, err := sess.Reset(ctx, run.Config)
	if err != nil {
		return nil, err
	}
	switch out := reset.Result().(type) {
	case *simenv.ResetInvalidConfig:
		logger.Warn("simulator rejected config", "msg", out.Msg)
		res.Failure = "invalid config: " + out.Msg
		return res, nil
	case *simenv.ResetSuccess:
		res.EnvID = out.EnvID
	}
	logger.Debug("environment ready", "env", res.EnvID)

	for r.cfg.maxSteps == 0 || res.Steps < r.cfg.maxSteps {
		step, err := sess.Step(ctx, rng.Intn(r.cfg.actionMax+1))
		if err != nil {
			return nil, err
		}
		switch out := step.Result().(type) {
		case *simenv.StepEnvNotFound:
			logger.Warn("environment vanished", "env", res.EnvID, "msg", out.Msg)
			res.Failure = "env not found: " + out.Msg
			return res, nil
		case *simenv.StepSuccess:
			res.Steps++
			res.Score += out.Score
			res.State = out.State
			if out.Stop {
				res.Stopped = true
				logger.Info("episode done", "steps", res.Steps, "score", res.Score)
				return res, nil
			}
		}
	}
	logger.Info("episode hit step limit", "steps", res.Steps, "score", res.Score)
	return res, nil
}
