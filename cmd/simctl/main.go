// Command simctl plays experiment episodes against a serverless simulator.
//
// The simulator is found through -sim, the SERVERLESS_SIM environment
// variable, or started from a docker image with -docker-image.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/serverless-sim/simclient/internal/simconfig"
	"github.com/serverless-sim/simclient/internal/simdocker"
	"github.com/serverless-sim/simclient/simenv"
	"gopkg.in/inconshreveable/log15.v2"
)

func main() {
	var (
		simURL     = flag.String("sim", "", "Base URL of the simulator API (default $"+simenv.EnvVar+")")
		configFile = flag.String("config", "", "Experiment file (.yaml, .toml or .json), default config if empty")
		episodes   = flag.Int("episodes", 1, "Episodes per run")
		maxSteps   = flag.Int("max-steps", 0, "Step limit per episode, 0 means until the simulator stops")
		parallel   = flag.Int("parallel", 4, "Number of episodes played concurrently")
		rateLimit  = flag.Float64("rate", 0, "Maximum API calls per second, 0 means unlimited")
		seed       = flag.Int64("seed", 1, "Seed of the random action generator")
		actionMax  = flag.Int("action-max", 1, "Actions are drawn from [0, action-max]")
		outFile    = flag.String("out", "-", "Result file, JSON lines ('-' is stdout)")
		loglevel   = flag.Int("loglevel", 3, "Log level to use for displaying system events")

		dockerImage    = flag.String("docker-image", "", "Start the simulator from this image")
		dockerEndpoint = flag.String("docker-endpoint", "", "Endpoint to the local Docker daemon (default $DOCKER_HOST)")
		dockerTimeout  = flag.Duration("docker-timeout", time.Minute, "Time to wait for the simulator container to come up")
		dockerCleanup  = flag.Duration("docker-cleanup", 0, "Remove simulator containers older than this before starting (0 disables)")
	)
	flag.Parse()
	log15.Root().SetHandler(log15.LvlFilterHandler(log15.Lvl(*loglevel), log15.StreamHandler(os.Stderr, log15.TerminalFormat())))

	if *actionMax < 0 {
		fatal("invalid -action-max", "value", *actionMax)
	}
	exp, err := loadExperiment(*configFile)
	if err != nil {
		fatal("can't load experiment", "err", err)
	}
	cfg := runnerConfig{
		episodes:  *episodes,
		maxSteps:  *maxSteps,
		parallel:  int64(*parallel),
		actionMax: *actionMax,
		seed:      *seed,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if *dockerImage != "" {
		launcher, err := simdocker.Connect(*dockerEndpoint, simdocker.Config{
			Image:        *dockerImage,
			StartTimeout: *dockerTimeout,
		})
		if err != nil {
			fatal("can't connect to docker", "err", err)
		}
		if *dockerCleanup > 0 {
			if _, err := launcher.Cleanup(ctx, *dockerCleanup); err != nil {
				log15.Warn("docker cleanup failed", "err", err)
			}
		}
		inst, err := launcher.Start(ctx)
		if err != nil {
			fatal("can't start simulator", "image", *dockerImage, "err", err)
		}
		*simURL = inst.URL
		err = run(ctx, *simURL, exp, cfg, *rateLimit, *outFile)
		if serr := launcher.Stop(inst); serr != nil {
			log15.Error("can't stop simulator", "container", inst.ID, "err", serr)
		}
		if err != nil {
			fatal("experiment failed", "err", err)
		}
		return
	}

	if *simURL == "" {
		*simURL = os.Getenv(simenv.EnvVar)
	}
	if *simURL == "" {
		fatal("simulator location unknown, set -sim or $" + simenv.EnvVar)
	}
	if err := run(ctx, *simURL, exp, cfg, *rateLimit, *outFile); err != nil {
		fatal("experiment failed", "err", err)
	}
}

// run plays the experiment against the simulator at url and writes the
// episode results to outFile.
func run(ctx context.Context, url string, exp *simconfig.Experiment, cfg runnerConfig, rateLimit float64, outFile string) error {
	out, closeOut, err := openOutput(outFile)
	if err != nil {
		return err
	}
	defer closeOut()

	client := simenv.NewAt(url, simenv.WithRateLimit(rateLimit, int(cfg.parallel)), simenv.WithRequestID())
	r := newRunner(client, cfg, log15.Root())
	log15.Info("starting experiment", "sim", client.URL(), "runs", len(exp.Runs), "runid", r.runID)

	bw := bufio.NewWriter(out)
	enc := json.NewEncoder(bw)
	var failures int
	err = r.runAll(ctx, exp, func(res *episodeResult) error {
		if res.Failure != "" {
			failures++
		}
		return enc.Encode(res)
	})
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		return err
	}
	log15.Info("experiment done", "failed-episodes", failures)
	return nil
}

// loadExperiment reads the experiment file. Without a file, a single run of
// the default config is played.
func loadExperiment(file string) (*simconfig.Experiment, error) {
	if file != "" {
		return simconfig.Load(file)
	}
	exp := &simconfig.Experiment{Runs: []simconfig.Run{{Config: simconfig.Default()}}}
	return exp, exp.Validate()
}

func openOutput(file string) (io.Writer, func(), error) {
	if file == "-" || file == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(file)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func fatal(msg string, ctx ...interface{}) {
	log15.Crit(msg, ctx...)
	os.Exit(1)
}
