package simenv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoEnv is returned by Session methods that need an environment before
// Reset has created one.
var ErrNoEnv = errors.New("no environment, call Reset first")

// Session drives a single simulator environment: Reset creates it and the
// environment id is remembered for subsequent calls.
//
// A Session is not safe for concurrent use. Use one session per environment.
type Session struct {
	client *Client
	envID  string
}

// NewSession creates a session without an environment.
func (c *Client) NewSession() *Session {
	return &Session{client: c}
}

// EnvID returns the id of the current environment, or "" before a successful Reset.
func (s *Session) EnvID() string {
	return s.envID
}

// Reset asks the simulator for a fresh environment with the given config. The
// config is marshaled to JSON unless it already is a json.RawMessage. If the
// simulator rejects the config, the previous environment id is kept.
func (s *Session) Reset(ctx context.Context, config interface{}) (*ResetResp, error) {
	raw, err := ConfigJSON(config)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Reset(ctx, &ResetReq{Config: raw})
	if err != nil {
		return nil, err
	}
	if ok, isSuccess := resp.Success(); isSuccess {
		s.envID = ok.EnvID
	}
	return resp, nil
}

// Step performs one action in the current environment.
func (s *Session) Step(ctx context.Context, action int) (*StepResp, error) {
	if s.envID == "" {
		return nil, ErrNoEnv
	}
	return s.client.Step(ctx, &StepReq{EnvID: s.envID, Action: action})
}

// Topology returns the network topology of the current environment.
func (s *Session) Topology(ctx context.Context) (*GetNetworkTopoResp, error) {
	if s.envID == "" {
		return nil, ErrNoEnv
	}
	return s.client.GetNetworkTopo(ctx, &GetNetworkTopoReq{EnvID: s.envID})
}

// ConfigJSON converts an environment config into the opaque form sent by reset.
func ConfigJSON(config interface{}) (json.RawMessage, error) {
	switch c := config.(type) {
	case json.RawMessage:
		return c, nil
	case []byte:
		if !json.Valid(c) {
			return nil, errors.New("config is not valid JSON")
		}
		return json.RawMessage(c), nil
	}
	raw, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("can't encode config: %v", err)
	}
	return raw, nil
}
