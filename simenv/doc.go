/*
Package simenv is a Go wrapper for the HTTP API of the serverless simulator.

Every API call is a POST of a JSON request to /<api>. The simulator answers with
an envelope naming one of a fixed set of outcomes for that api:

	{"id": 1, "kernel": {"env_id": "0000002a"}}

The client decodes the envelope into a response value with one accessor per
outcome. Exactly one accessor reports ok; all others return nil, false:

	client := simenv.NewAt("http://127.0.0.1:3000")
	resp, err := client.Reset(ctx, &simenv.ResetReq{Config: cfg})
	if err != nil {
		// transport failure, non-2xx status or an undecodable response
	}
	if bad, ok := resp.InvalidConfig(); ok {
		log.Println("config rejected:", bad.Msg)
	}
	if s, ok := resp.Success(); ok {
		envID = s.EnvID
	}

Declared failure outcomes such as InvalidConfig are not errors; only transport
problems and envelopes with an id the api does not declare are. Callers who want
the compiler to help them cover every outcome can switch on Result():

	switch r := resp.Result().(type) {
	case *simenv.StepSuccess:
	case *simenv.StepEnvNotFound:
	}

The request, outcome and response types in apis_gen.go are generated from
apis.yaml; edit that file and run go generate instead of editing the bindings.

For the common reset-then-step loop, Session keeps track of the environment id.
*/
package simenv

//go:generate go run ../cmd/simapigen -in apis.yaml -out apis_gen.go -pkg simenv -mode client
