package main

import (
	"bufio"
	"flag"
	"fmt"
	"strings"

	"github.com/sadopc/apitrack/internal/config"
	"github.com/sadopc/apitrack/internal/importer"
	"github.com/sadopc/apitrack/internal/output"
	"github.com/sadopc/apitrack/internal/tracker"
)

// kvFlag collects repeated key=value flags.
type kvFlag map[string]string

func (f kvFlag) String() string {
	parts := make([]string, 0, len(f))
	for _, k := range tracker.SortedKeys(f) {
		parts = append(parts, k+"="+f[k])
	}
	return strings.Join(parts, ",")
}

func (f kvFlag) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	f[strings.TrimSpace(k)] = v
	return nil
}

func hitCmd(e *env, args []string) int {
	fs := flag.NewFlagSet("hit", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: apitrack hit <id>\n\n")
		fmt.Fprintf(e.stderr, "Ask the backend to call a tracked API once and record the result.\n")
	}
	id, code := parseWithID(fs, args)
	if code != exitOK {
		return code
	}

	s, code := e.requireLogin()
	if s == nil {
		return code
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()
	out := e.coordinator(s).Invoke(ctx, id)
	if out.OK() && out.Endpoint != nil {
		output.PrintEndpoint(e.stdout, *out.Endpoint)
	}
	return e.report(out)
}

func deleteCmd(e *env, args []string) int {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	yesFlag := fs.Bool("yes", false, "Do not ask for confirmation")
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: apitrack delete <id> [--yes]\n\n")
		fmt.Fprintf(e.stderr, "Stop tracking an API. Asks for confirmation unless --yes is given.\n\n")
		fs.PrintDefaults()
	}
	id, code := parseWithID(fs, args)
	if code != exitOK {
		return code
	}

	s, code := e.requireLogin()
	if s == nil {
		return code
	}
	defer s.Close()

	coord := e.coordinator(s)
	req := coord.RequestDelete(id, id)
	if !*yesFlag {
		answer := prompt(e.stderr, bufio.NewReader(e.stdin), req.Message()+" [y/N] ")
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(e.stderr, "Cancelled.")
			return exitOK
		}
	}
	req.Confirm()

	ctx, cancel := signalContext()
	defer cancel()
	return e.report(coord.Delete(ctx, req))
}

func addCmd(e *env, args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	endpointFlag := fs.String("endpoint", "", "URL of the API to track")
	methodFlag := fs.String("method", "GET", "HTTP method: GET, POST, PUT or DELETE")
	bodyFlag := fs.String("body", "", "Request body")
	headers, params := kvFlag{}, kvFlag{}
	fs.Var(headers, "header", "Request header as key=value (repeatable)")
	fs.Var(params, "param", "Query parameter as key=value (repeatable)")
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: apitrack add --endpoint URL [flags]\n\n")
		fmt.Fprintf(e.stderr, "Track a new API.\n\n")
		fs.PrintDefaults()
		fmt.Fprintf(e.stderr, "\nPOST, PUT and DELETE need at least one --param when require_params_for_non_get\n")
		fmt.Fprintf(e.stderr, "is set in the config file or %s=true (currently %t).\n",
			config.EnvRequireParams, e.cfg.RequireParamsForNonGET)
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	p := tracker.Payload{
		Endpoint: *endpointFlag,
		Method:   tracker.Method(strings.ToUpper(strings.TrimSpace(*methodFlag))),
		Headers:  headers,
		Params:   params,
		Body:     *bodyFlag,
	}

	s, code := e.requireLogin()
	if s == nil {
		return code
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()
	out := e.coordinator(s).Create(ctx, p)
	if out.OK() && out.Endpoint != nil {
		fmt.Fprintln(e.stdout, out.Endpoint.ID)
	}
	return e.report(out)
}

func importCmd(e *env, args []string) int {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: apitrack import <file>\n\n")
		fmt.Fprintf(e.stderr, "Track every API defined in a JSON or YAML file (one object or a list)\n")
		fmt.Fprintf(e.stderr, "or a file of curl commands.\n")
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	defs, err := importer.ReadFile(fs.Arg(0))
	if err != nil {
		code := e.fail(err)
		if fs.NArg() == 0 {
			return exitUsage
		}
		return code
	}

	s, code := e.requireLogin()
	if s == nil {
		return code
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()
	coord := e.coordinator(s)
	var failed int
	for i, p := range defs {
		out := coord.Create(ctx, p)
		if out.OK() {
			fmt.Fprintf(e.stdout, "%s\t%s %s\n", out.Endpoint.ID, p.Method, p.Endpoint)
			continue
		}
		if tracker.IsAuthExpired(out.Err) {
			return e.fail(out.Err)
		}
		failed++
		fmt.Fprintf(e.stderr, "definition %d (%s): %s\n", i+1, p.Endpoint, out.Notice.Text)
	}
	fmt.Fprintf(e.stderr, "Imported %d of %d APIs.\n", len(defs)-failed, len(defs))
	if failed > 0 {
		return exitFailed
	}
	return exitOK
}

func loadTestCmd(e *env, args []string) int {
	fs := flag.NewFlagSet("loadtest", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	usersFlag := fs.Int("users", 10, "Concurrent users")
	durationFlag := fs.Int("duration", 2, "Duration in minutes")
	outputFlag := fs.String("output", "text", "Output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: apitrack loadtest <id> [flags]\n\n")
		fmt.Fprintf(e.stderr, "Have the backend load test a tracked API. Blocks for the whole duration.\n\n")
		fs.PrintDefaults()
	}
	id, code := parseWithID(fs, args)
	if code != exitOK {
		return code
	}
	format, err := output.ParseFormat(*outputFlag)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitUsage
	}

	s, code := e.requireLogin()
	if s == nil {
		return code
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()
	fmt.Fprintf(e.stderr, "Running load test: %d users for %d min...\n", *usersFlag, *durationFlag)
	res, out := e.coordinator(s).LoadTest(ctx, id, tracker.LoadTestRequest{Users: *usersFlag, Duration: *durationFlag})
	if !out.OK() {
		return e.fail(out.Err)
	}
	if format == output.FormatJSON {
		if err := output.PrintJSON(e.stdout, res); err != nil {
			return e.fail(err)
		}
	} else {
		output.PrintLoadTest(e.stdout, res)
	}
	return e.report(out)
}
