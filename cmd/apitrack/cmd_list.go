package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/sadopc/apitrack/internal/listview"
	"github.com/sadopc/apitrack/internal/output"
	"github.com/sadopc/apitrack/internal/tracker"
)

func listCmd(e *env, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	pageFlag := fs.Int("page", 1, "Page number")
	sizeFlag := fs.Int("page-size", e.cfg.PageSize, "Rows per page")
	searchFlag := fs.String("search", "", "Only endpoints containing this text")
	methodFlag := fs.String("method", "", "Filter by method: GET, POST, PUT or DELETE")
	statusFlag := fs.String("status", "", "Filter by status: active or inactive")
	codeFlag := fs.String("code", "", "Filter by last status code")
	sortFlag := fs.String("sort", "", "Sort the page by: endpoint, method, status, code, response_time, updated_at")
	descFlag := fs.Bool("desc", false, "Sort descending")
	outputFlag := fs.String("output", "text", "Output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: apitrack list [flags]\n\n")
		fmt.Fprintf(e.stderr, "List tracked APIs one page at a time.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	format, err := output.ParseFormat(*outputFlag)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitUsage
	}
	filters := listview.Filters{Code: strings.TrimSpace(*codeFlag)}
	if *methodFlag != "" {
		m, err := tracker.ParseMethod(*methodFlag)
		if err != nil {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
			return exitUsage
		}
		filters.Method = m
	}
	status, ok := tracker.ParseStatusFilter(*statusFlag)
	if !ok {
		fmt.Fprintf(e.stderr, "Error: status must be active or inactive, got %q\n", *statusFlag)
		return exitUsage
	}
	filters.Status = status

	refiner := listview.EndpointRefiner()
	if *sortFlag != "" && !refiner.Sortable(*sortFlag) {
		fmt.Fprintf(e.stderr, "Error: cannot sort by %q (one of %s)\n", *sortFlag, strings.Join(refiner.FieldNames(), ", "))
		return exitUsage
	}

	s, code := e.requireLogin()
	if s == nil {
		return code
	}
	defer s.Close()

	store := listview.NewStore(*sizeFlag, refiner)
	store.SetFilters(filters)
	store.SetSearchTerm(*searchFlag)
	order := listview.Asc
	if *descFlag {
		order = listview.Desc
	}
	store.SetSort(*sortFlag, order)

	ctx, cancel := signalContext()
	defer cancel()

	// An out-of-range page comes back clamped to the last page.
	fetch := store.ApplyFilters()
	if f, ok := store.SetPage(*pageFlag); ok {
		fetch = f
	}
	if err := resolve(ctx, store, s.client.FetchPage, fetch); err != nil {
		return e.fail(err)
	}

	page := output.ListPage{
		Items:      store.Visible(),
		Page:       store.Page(),
		PageSize:   store.PageSize(),
		Total:      store.Total(),
		TotalPages: store.TotalPages(),
		Window:     store.Window(e.cfg.MaxPageButtons),
	}
	if format == output.FormatJSON {
		if err := output.PrintJSON(e.stdout, page); err != nil {
			return e.fail(err)
		}
		return exitOK
	}
	output.PrintList(e.stdout, page)
	return exitOK
}

// resolve runs fetch and any follow-up the store asks for, such as a
// re-fetch of the last page after the requested one came back empty.
func resolve[T any](ctx context.Context, store *listview.Store[T], fetcher listview.Fetcher[T], fetch listview.Fetch) error {
	for {
		res := store.Resolve(listview.Run(ctx, fetcher, fetch))
		if res.Follow == nil {
			return store.Err()
		}
		fetch = *res.Follow
	}
}

func showCmd(e *env, args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	logsPageFlag := fs.Int("logs-page", 1, "Call-log page")
	outputFlag := fs.String("output", "text", "Output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: apitrack show <id> [flags]\n\n")
		fmt.Fprintf(e.stderr, "Show one tracked API and a page of its call logs.\n\n")
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

	ep, err := s.client.FetchOne(ctx, id)
	if err != nil {
		return e.fail(err)
	}
	logs, err := s.client.FetchLogs(ctx, id, max(*logsPageFlag, 1), e.cfg.LogPageSize)
	if err != nil {
		return e.fail(err)
	}

	if format == output.FormatJSON {
		doc := struct {
			Endpoint tracker.Endpoint  `json:"endpoint"`
			Logs     []tracker.CallLog `json:"logs"`
			Total    int               `json:"logs_total"`
		}{ep, logs.Items, logs.Total}
		if err := output.PrintJSON(e.stdout, doc); err != nil {
			return e.fail(err)
		}
		return exitOK
	}
	output.PrintEndpoint(e.stdout, ep)
	output.PrintLogs(e.stdout, logs.Items, max(*logsPageFlag, 1), e.cfg.LogPageSize, logs.Total, e.cfg.MaxPageButtons)
	return exitOK
}

// parseWithID parses flags that may appear before or after a single
// positional id.
func parseWithID(fs *flag.FlagSet, args []string) (string, int) {
	var id string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		id, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", exitUsage
	}
	if id == "" && fs.NArg() > 0 {
		id = fs.Arg(0)
	}
	if strings.TrimSpace(id) == "" {
		fmt.Fprintf(fs.Output(), "Error: an API id is required\n\n")
		fs.Usage()
		return "", exitUsage
	}
	return id, exitOK
}
