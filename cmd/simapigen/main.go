// Command simapigen generates the Go bindings of the simulator API from an api
// list. In client mode it writes request types, one sum type per response with
// an accessor per outcome, envelope decoders and Client methods. In server mode
// it writes the Handler interface and routes of the stub server.
package main

import (
	"flag"
	"os"

	"gopkg.in/inconshreveable/log15.v2"
)

const modulePath = "github.com/serverless-sim/simclient"

func main() {
	var (
		in       = flag.String("in", "apis.yaml", "API list to read")
		out      = flag.String("out", "", "Output file (default: stdout)")
		pkg      = flag.String("pkg", "simenv", "Package name of the generated file")
		mode     = flag.String("mode", "client", "What to generate (client, server)")
		simapi   = flag.String("simapi", modulePath+"/internal/simapi", "Import path of the wire package")
		client   = flag.String("client", modulePath+"/simenv", "Import path of the client package (server mode)")
		loglevel = flag.Int("loglevel", 3, "Log level for generator output")
	)
	flag.Parse()
	log15.Root().SetHandler(log15.LvlFilterHandler(log15.Lvl(*loglevel), log15.StreamHandler(os.Stderr, log15.TerminalFormat())))

	data, err := os.ReadFile(*in)
	if err != nil {
		fatal("can't read api list", "file", *in, "err", err)
	}
	list, err := parseAPIList(data)
	if err != nil {
		fatal("can't parse api list", "file", *in, "err", err)
	}
	src, err := generate(list, genConfig{Mode: *mode, Package: *pkg, SimAPI: *simapi, Client: *client})
	if err != nil {
		fatal("code generation failed", "err", err)
	}

	if *out == "" {
		os.Stdout.Write(src)
		return
	}
	if err := os.WriteFile(*out, src, 0644); err != nil {
		fatal("can't write output", "file", *out, "err", err)
	}
	log15.Info("generated api bindings", "mode", *mode, "apis", len(list.APIs), "out", *out)
}

func fatal(msg string, ctx ...interface{}) {
	log15.Crit(msg, ctx...)
	os.Exit(1)
}
