package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sadopc/apitrack/internal/mock"
)

func startMock(t *testing.T) string {
	t.Helper()
	store, err := mock.NewStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	srv, err := mock.New(store, mock.Config{
		Username:   "admin",
		Password:   "admin",
		Secret:     []byte("cli-test"),
		BcryptCost: bcrypt.MinCost,
	})
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go srv.App().Listener(ln)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
		store.Close()
	})
	return "http://" + ln.Addr().String()
}

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	e := &env{stdin: strings.NewReader(stdin), stdout: &out, stderr: &errOut}
	code := run(e, args)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

// isolate points config and session storage at a temp home.
func isolate(t *testing.T, apiURL string) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APITRACK_API_URL", apiURL)
	t.Setenv("APITRACK_LOG_LEVEL", "error")
}

func TestUnknownCommandIsUsageError(t *testing.T) {
	isolate(t, "http://localhost:8000")
	r := runCLI(t, "", "frobnicate")
	if r.code != exitUsage {
		t.Errorf("code = %d, want %d", r.code, exitUsage)
	}
	if !strings.Contains(r.stderr, "unknown command") {
		t.Errorf("stderr = %q", r.stderr)
	}
}

func TestVersionAndHelp(t *testing.T) {
	isolate(t, "http://localhost:8000")
	if r := runCLI(t, "", "version"); r.code != exitOK || !strings.HasPrefix(r.stdout, "apitrack ") {
		t.Errorf("version = %+v", r)
	}
	if r := runCLI(t, "", "help"); r.code != exitOK || !strings.Contains(r.stdout, "loadtest") {
		t.Errorf("help = %+v", r)
	}
}

func TestInvalidConfigIsUsageError(t *testing.T) {
	isolate(t, "not a url")
	if r := runCLI(t, "", "list"); r.code != exitUsage {
		t.Errorf("code = %d, want %d", r.code, exitUsage)
	}
}

func TestListWithoutLogin(t *testing.T) {
	isolate(t, startMock(t))
	r := runCLI(t, "", "list")
	if r.code != exitExpired {
		t.Fatalf("code = %d, want %d; stderr %q", r.code, exitExpired, r.stderr)
	}
	if !strings.Contains(r.stderr, "apitrack login") {
		t.Errorf("stderr = %q", r.stderr)
	}
}

func TestLoginRejected(t *testing.T) {
	isolate(t, startMock(t))
	r := runCLI(t, "", "login", "--username", "admin", "--password", "nope")
	if r.code != exitFailed {
		t.Fatalf("code = %d, want %d", r.code, exitFailed)
	}
}

func TestSessionLifecycle(t *testing.T) {
	isolate(t, startMock(t))

	// Password is read from stdin when the flag is absent.
	if r := runCLI(t, "admin\n", "login", "--username", "admin"); r.code != exitOK {
		t.Fatalf("login = %+v", r)
	}

	add := runCLI(t, "", "add", "--endpoint", "https://example.com/health", "--method", "post", "--param", "q=1", "--header", "X-Key=abc")
	if add.code != exitOK {
		t.Fatalf("add = %+v", add)
	}
	id := strings.TrimSpace(add.stdout)
	if id == "" {
		t.Fatal("add printed no id")
	}
	if !strings.Contains(add.stderr, "API added successfully!") {
		t.Errorf("add stderr = %q", add.stderr)
	}

	list := runCLI(t, "", "list", "--output", "json", "--method", "POST")
	if list.code != exitOK {
		t.Fatalf("list = %+v", list)
	}
	var page struct {
		Items []struct {
			ID       string `json:"id"`
			Endpoint string `json:"endpoint"`
		} `json:"items"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal([]byte(list.stdout), &page); err != nil {
		t.Fatalf("decoding list: %v\n%s", err, list.stdout)
	}
	if page.Total != 1 || page.Items[0].ID != id {
		t.Errorf("page = %+v", page)
	}

	show := runCLI(t, "", "show", id)
	if show.code != exitOK || !strings.Contains(show.stdout, "https://example.com/health") {
		t.Errorf("show = %+v", show)
	}

	// Declining the prompt keeps the API.
	if r := runCLI(t, "n\n", "delete", id); r.code != exitOK || !strings.Contains(r.stderr, "Cancelled") {
		t.Errorf("declined delete = %+v", r)
	}
	if r := runCLI(t, "", "delete", id, "--yes"); r.code != exitOK {
		t.Errorf("delete = %+v", r)
	}
	if r := runCLI(t, "", "show", id); r.code != exitFailed {
		t.Errorf("show after delete code = %d", r.code)
	}

	if r := runCLI(t, "", "logout"); r.code != exitOK {
		t.Fatalf("logout = %+v", r)
	}
	if r := runCLI(t, "", "list"); r.code != exitExpired {
		t.Errorf("list after logout code = %d, want %d", r.code, exitExpired)
	}
}

func TestAddValidation(t *testing.T) {
	isolate(t, startMock(t))
	if r := runCLI(t, "", "login", "--username", "admin", "--password", "admin"); r.code != exitOK {
		t.Fatalf("login = %+v", r)
	}
	r := runCLI(t, "", "add", "--method", "GET")
	if r.code != exitFailed || !strings.Contains(r.stderr, "API Endpoint is required.") {
		t.Errorf("add = %+v", r)
	}

	if r := runCLI(t, "", "add", "--endpoint", "https://svc/orders", "--method", "POST"); r.code != exitOK {
		t.Errorf("POST without params under the default rule = %+v", r)
	}
	t.Setenv("APITRACK_REQUIRE_PARAMS", "true")
	r = runCLI(t, "", "add", "--endpoint", "https://svc/orders", "--method", "POST")
	if r.code != exitFailed || !strings.Contains(r.stderr, "Parameters are required for non-GET requests.") {
		t.Errorf("POST without params under the strict rule = %+v", r)
	}
}

func TestAddHelpNamesParamsRule(t *testing.T) {
	isolate(t, "http://localhost:8000")
	r := runCLI(t, "", "add", "--help")
	if r.code != exitUsage {
		t.Errorf("code = %d, want %d", r.code, exitUsage)
	}
	for _, want := range []string{"require_params_for_non_get", "APITRACK_REQUIRE_PARAMS=true", "(currently false)"} {
		if !strings.Contains(r.stderr, want) {
			t.Errorf("add --help missing %q:\n%s", want, r.stderr)
		}
	}
}

func TestImportWithoutFile(t *testing.T) {
	isolate(t, "http://localhost:8000")
	r := runCLI(t, "", "import")
	if r.code != exitUsage || !strings.Contains(r.stderr, "JSON file is required.") {
		t.Errorf("import = %+v", r)
	}
}

func TestKVFlag(t *testing.T) {
	f := kvFlag{}
	for _, s := range []string{"a=1", "b = x=y", "a=2"} {
		if err := f.Set(s); err != nil {
			t.Fatalf("Set(%q): %v", s, err)
		}
	}
	if f["a"] != "2" || f["b"] != " x=y" {
		t.Errorf("kv = %v", f)
	}
	if err := f.Set("novalue"); err == nil {
		t.Error("expected an error without '='")
	}
	if got := f.String(); got != "a=2,b= x=y" {
		t.Errorf("String() = %q", got)
	}
}
