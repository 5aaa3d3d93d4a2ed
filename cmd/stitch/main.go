package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hanpama/stitch/internal/eventbus"
	"github.com/hanpama/stitch/internal/logging"
	"github.com/hanpama/stitch/internal/merge"
	"github.com/hanpama/stitch/internal/otel"
	"github.com/hanpama/stitch/internal/remote"
	"github.com/hanpama/stitch/internal/schema"
	"github.com/hanpama/stitch/internal/server"
)

const rootUsage = `stitch — GraphQL schema stitching gateway & tools

USAGE:
  stitch <command> [flags]

COMMANDS:
  serve            Run the HTTP gateway over the stitched schema
  compile-sdl      Merge subschema SDL into a single stitched schema
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -subschema <Name=URL>            GraphQL endpoint of a subschema. Repeatable;
                                   at least one mapping required.
  -subschema.sdl <Name=file>       SDL file for a subschema. Required for every
                                   -subschema name. Repeatable.
  -server.addr <addr>              HTTP listen address (default: :8080)
  -server.pretty                   Pretty-print JSON responses
  -server.timeout <duration>       Per-request timeout, e.g. 10s (default: 10s)
  -server.forward-header <name>    Forward HTTP header to subschema requests. Repeatable
  -server.cors-origin <origin>     Allow CORS origin. Repeatable
  -log.level <level>               Log level: debug, info, warn, error (default: info)
  -log.dev                         Development log formatting
  -otel.endpoint <addr>            OTLP collector endpoint
  -otel.service <name>             OpenTelemetry service name (default: stitch)
`

const compileSDLUsage = `compile-sdl FLAGS:
  -subschema.sdl <Name=file>  SDL file for a subschema. Repeatable; at least
                              one required.
  -out <file>                 Write stitched SDL to file (default: stdout)
  (Merging always validates; exits non-zero on errors)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("stitch", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "compile-sdl":
		return cmdCompileSDL(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "compile-sdl":
		fmt.Print(compileSDLUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

// mappingFlag collects repeatable Name=value pairs.
type mappingFlag struct {
	m map[string]string
}

func (f *mappingFlag) String() string { return "" }

func (f *mappingFlag) Set(v string) error {
	parts := strings.SplitN(v, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid mapping %q", v)
	}
	name := strings.TrimSpace(parts[0])
	val := strings.TrimSpace(parts[1])
	if name == "" || val == "" {
		return fmt.Errorf("invalid mapping %q", v)
	}
	if f.m == nil {
		f.m = map[string]string{}
	}
	if _, dup := f.m[name]; dup {
		return fmt.Errorf("duplicate mapping for %q", name)
	}
	f.m[name] = val
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// sortedNames gives subschemas a deterministic merge order.
func sortedNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func loadSubschemaSchemas(sdls map[string]string) (map[string]*schema.Schema, error) {
	out := make(map[string]*schema.Schema, len(sdls))
	for name, file := range sdls {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read SDL for %s: %w", name, err)
		}
		sch, err := schema.BuildFromSDL(string(src))
		if err != nil {
			return nil, fmt.Errorf("build schema for %s: %w", name, err)
		}
		out[name] = sch
	}
	return out, nil
}

func cmdServe(args []string) error {
	addr := ":8080"
	pretty := false
	timeout := 10 * time.Second
	logLevel := "info"
	logDev := false
	otelEndpoint := ""
	otelService := "stitch"
	var endpoints mappingFlag
	var sdls mappingFlag
	var forwardHeaders stringListFlag
	var corsOrigins stringListFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.Var(&endpoints, "subschema", "GraphQL endpoint of a subschema")
	fs.Var(&sdls, "subschema.sdl", "SDL file for a subschema")
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Var(&forwardHeaders, "server.forward-header", "Forward HTTP header to subschema requests")
	fs.Var(&corsOrigins, "server.cors-origin", "Allow CORS origin")
	fs.StringVar(&logLevel, "log.level", logLevel, "Log level")
	fs.BoolVar(&logDev, "log.dev", logDev, "Development log formatting")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}
	if len(endpoints.m) == 0 {
		fmt.Fprint(os.Stderr, serveUsage)
		return fmt.Errorf("at least one -subschema mapping is required")
	}
	for name := range endpoints.m {
		if _, ok := sdls.m[name]; !ok {
			return fmt.Errorf("no -subschema.sdl mapping for %s", name)
		}
	}
	for name := range sdls.m {
		if _, ok := endpoints.m[name]; !ok {
			return fmt.Errorf("no -subschema mapping for %s", name)
		}
	}

	schemas, err := loadSubschemaSchemas(sdls.m)
	if err != nil {
		return err
	}

	subschemas := make([]merge.Subschema, 0, len(endpoints.m))
	for _, name := range sortedNames(endpoints.m) {
		subschemas = append(subschemas, merge.Subschema{
			Schema:   schemas[name],
			Executor: remote.New(endpoints.m[name]),
		})
	}
	stitched, err := merge.Merge(subschemas)
	if err != nil {
		return fmt.Errorf("merge schemas: %w", err)
	}

	eventbus.Use(eventbus.New())
	logger, err := logging.Setup(logLevel, logDev)
	if err != nil {
		return fmt.Errorf("logging setup: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	var sopts []server.Option
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if timeout > 0 {
		sopts = append(sopts, server.WithTimeout(timeout))
	}
	if len(forwardHeaders) > 0 {
		sopts = append(sopts, server.WithForwardHeaders(forwardHeaders...))
	}
	if len(corsOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(corsOrigins...))
	}
	h, err := server.New(stitched.NewExecutor(), sopts...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)

	log.Printf("GraphQL gateway listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func cmdCompileSDL(args []string) error {
	outFile := ""
	var sdls mappingFlag
	fs := flag.NewFlagSet("compile-sdl", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.Var(&sdls, "subschema.sdl", "SDL file for a subschema")
	fs.StringVar(&outFile, "out", outFile, "Write stitched SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, compileSDLUsage)
		return err
	}
	if len(sdls.m) == 0 {
		fmt.Fprint(os.Stderr, compileSDLUsage)
		return fmt.Errorf("at least one -subschema.sdl mapping is required")
	}

	schemas, err := loadSubschemaSchemas(sdls.m)
	if err != nil {
		return err
	}
	subschemas := make([]merge.Subschema, 0, len(schemas))
	for _, name := range sortedNames(sdls.m) {
		subschemas = append(subschemas, merge.Subschema{Schema: schemas[name]})
	}
	stitched, err := merge.Merge(subschemas)
	if err != nil {
		return fmt.Errorf("merge schemas: %w", err)
	}

	sdl := schema.Render(stitched.Schema)
	if outFile == "" {
		fmt.Print(sdl)
		return nil
	}
	return os.WriteFile(outFile, []byte(sdl), 0644)
}
