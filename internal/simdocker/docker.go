// Package simdocker runs the simulator image in a local docker container.
package simdocker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	docker "github.com/fsouza/go-dockerclient"
	"gopkg.in/inconshreveable/log15.v2"
)

// DefaultPort is the port the simulator listens on inside its container.
const DefaultPort = 3000

// This is the default timeout for the simulator to accept connections.
const defaultStartTimeout = 60 * time.Second

// Config is the configuration of the launcher.
type Config struct {
	Image string
	Port  int               // container port of the API, DefaultPort if zero
	Env   map[string]string // environment of the container

	// How long Start waits for the API port to accept connections.
	StartTimeout time.Duration

	Logger log15.Logger
}

// Launcher starts simulator containers.
type Launcher struct {
	client *docker.Client
	config Config
	logger log15.Logger
}

// Instance is a running simulator container.
type Instance struct {
	ID  string
	URL string // base URL of the simulator API
}

// Connect creates a launcher using the docker daemon at dockerEndpoint. An
// empty endpoint uses the DOCKER_HOST environment.
func Connect(dockerEndpoint string, cfg Config) (*Launcher, error) {
	if cfg.Image == "" {
		return nil, errors.New("simulator image not set")
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.StartTimeout == 0 {
		cfg.StartTimeout = defaultStartTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log15.Root()
	}

	var client *docker.Client
	var err error
	if dockerEndpoint == "" {
		client, err = docker.NewClientFromEnv()
	} else {
		client, err = docker.NewClient(dockerEndpoint)
	}
	if err != nil {
		return nil, fmt.Errorf("can't connect to docker: %v", err)
	}
	env, err := client.Version()
	if err != nil {
		return nil, fmt.Errorf("can't get docker version: %v", err)
	}
	logger.Debug("docker daemon online", "version", env.Get("Version"))
	return &Launcher{client: client, config: cfg, logger: logger}, nil
}

func (l *Launcher) apiPort() docker.Port {
	return docker.Port(strconv.Itoa(l.config.Port) + "/tcp")
}

// Start creates and starts a simulator container and waits until its API port
// accepts connections. The port is published on a random loopback port.
func (l *Launcher) Start(ctx context.Context) (*Instance, error) {
	vars := []string{}
	for key, val := range l.config.Env {
		vars = append(vars, key+"="+val)
	}
	port := l.apiPort()
	c, err := l.client.CreateContainer(docker.CreateContainerOptions{
		Context: ctx,
		Config: &docker.Config{
			Image:        l.config.Image,
			Env:          vars,
			Labels:       containerLabels(l.config.Image, time.Now()),
			ExposedPorts: map[docker.Port]struct{}{port: {}},
		},
		HostConfig: &docker.HostConfig{
			PortBindings: map[docker.Port][]docker.PortBinding{
				port: {{HostIP: "127.0.0.1", HostPort: ""}},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("can't create simulator container: %v", err)
	}
	logger := l.logger.New("image", l.config.Image, "container", shortID(c.ID))
	logger.Debug("container created")

	startTime := time.Now()
	if err := l.client.StartContainerWithContext(c.ID, nil, ctx); err != nil {
		l.remove(c.ID)
		return nil, fmt.Errorf("container did not start: %v", err)
	}

	// The published port is only known after the container has started.
	container, err := l.client.InspectContainerWithOptions(docker.InspectContainerOptions{Context: ctx, ID: c.ID})
	if err != nil {
		l.remove(c.ID)
		return nil, err
	}
	hostPort, err := publishedPort(container, port)
	if err != nil {
		l.remove(c.ID)
		return nil, err
	}
	addr := net.JoinHostPort("127.0.0.1", hostPort)

	ctx, cancel := context.WithTimeout(ctx, l.config.StartTimeout)
	defer cancel()
	if err := waitPort(ctx, logger, addr); err != nil {
		l.remove(c.ID)
		return nil, fmt.Errorf("simulator did not come online: %v", err)
	}
	logger.Info("simulator online", "addr", addr, "time", time.Since(startTime))
	return &Instance{ID: c.ID, URL: "http://" + addr}, nil
}

// Stop removes the container of a simulator instance.
func (l *Launcher) Stop(inst *Instance) error {
	return l.remove(inst.ID)
}

func (l *Launcher) remove(containerID string) error {
	l.logger.Debug("removing container", "container", shortID(containerID))
	err := l.client.RemoveContainer(docker.RemoveContainerOptions{ID: containerID, Force: true})
	if err != nil {
		l.logger.Error("can't remove container", "container", shortID(containerID), "err", err)
	}
	return err
}

// publishedPort returns the host port bound to the given container port.
func publishedPort(c *docker.Container, port docker.Port) (string, error) {
	if c.NetworkSettings == nil {
		return "", errors.New("container has no network settings")
	}
	for _, b := range c.NetworkSettings.Ports[port] {
		if b.HostPort != "" {
			return b.HostPort, nil
		}
	}
	return "", fmt.Errorf("port %s is not published", port)
}

// waitPort waits for the given TCP address to accept a connection.
func waitPort(ctx context.Context, logger log15.Logger, addr string) error {
	var (
		lastMsg time.Time
		ticker  = time.NewTicker(100 * time.Millisecond)
	)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if time.Since(lastMsg) >= time.Second {
				logger.Debug("checking simulator online...")
				lastMsg = time.Now()
			}
			var dialer net.Dialer
			conn, err := dialer.DialContext(ctx, "tcp", addr)
			if err == nil {
				conn.Close()
				return nil
			}
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
