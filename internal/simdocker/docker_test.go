package simdocker

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	docker "github.com/fsouza/go-dockerclient"
	"gopkg.in/inconshreveable/log15.v2"
)

func TestPublishedPort(t *testing.T) {
	port := docker.Port("3000/tcp")
	c := &docker.Container{
		NetworkSettings: &docker.NetworkSettings{
			Ports: map[docker.Port][]docker.PortBinding{
				port: {{HostIP: "127.0.0.1", HostPort: "49153"}},
			},
		},
	}
	hostPort, err := publishedPort(c, port)
	if err != nil {
		t.Fatal(err)
	}
	if hostPort != "49153" {
		t.Fatalf("wrong host port %q", hostPort)
	}

	if _, err := publishedPort(c, docker.Port("8080/tcp")); err == nil {
		t.Fatal("expected error for unpublished port")
	}
	if _, err := publishedPort(&docker.Container{}, port); err == nil {
		t.Fatal("expected error for missing network settings")
	}
}

func TestWaitPort(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := waitPort(ctx, log15.Root(), l.Addr().String()); err != nil {
		t.Fatal("port not detected:", err)
	}
}

func TestWaitPortTimeout(t *testing.T) {
	// Grab a free port and close it again so nothing listens there.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := waitPort(ctx, log15.Root(), addr); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("wrong error %v", err)
	}
}

func TestConnectNeedsImage(t *testing.T) {
	if _, err := Connect("", Config{}); err == nil {
		t.Fatal("expected error without image")
	}
}
