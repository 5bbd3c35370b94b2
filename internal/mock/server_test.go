package mock

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sadopc/apitrack/internal/tracker"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := New(newTestStore(t), Config{
		Username:            "admin",
		Password:            "secret",
		Secret:              []byte("test-signing-key"),
		BcryptCost:          bcrypt.MinCost,
		ProbeTimeout:        2 * time.Second,
		LoadTestUnit:        100 * time.Millisecond,
		MaxLoadTestDuration: 300 * time.Millisecond,
		MaxLoadTestUsers:    5,
	})
	if err != nil {
		t.Fatal(err)
	}
	return srv
}

func do(t *testing.T, srv *Server, method, path, token, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func login(t *testing.T, srv *Server) string {
	t.Helper()
	form := url.Values{"username": {"admin"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	var out struct{ Token string }
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Token == "" {
		t.Fatalf("login response: %v %+v", err, out)
	}
	return out.Token
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodGet, "/health", "", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"ok"`) {
		t.Fatalf("health = %d %s", resp.StatusCode, body)
	}

	do(t, srv, http.MethodGet, "/api/api-list/", "", "")
	resp, body = do(t, srv, http.MethodGet, "/metrics", "", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "apitrack_http_requests_total") {
		t.Fatalf("metrics = %d\n%s", resp.StatusCode, body)
	}
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name   string
		form   url.Values
		status int
		want   string
	}{
		{"wrong password", url.Values{"username": {"admin"}, "password": {"nope"}}, http.StatusUnauthorized, "Invalid credentials"},
		{"unknown user", url.Values{"username": {"root"}, "password": {"secret"}}, http.StatusUnauthorized, "Invalid credentials"},
		{"missing username", url.Values{"password": {"secret"}}, http.StatusBadRequest, "username"},
		{"ok", url.Values{"username": {"admin"}, "password": {"secret"}}, http.StatusOK, "token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/login/", strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			resp, err := srv.App().Test(req, -1)
			if err != nil {
				t.Fatal(err)
			}
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if resp.StatusCode != tt.status || !strings.Contains(string(body), tt.want) {
				t.Errorf("got %d %s", resp.StatusCode, body)
			}
		})
	}
}

func TestAPIRequiresBearer(t *testing.T) {
	srv := newTestServer(t)
	for _, token := range []string{"", "garbage"} {
		resp, _ := do(t, srv, http.MethodGet, "/api/api-list/", token, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("token %q: status = %d, want 401", token, resp.StatusCode)
		}
	}
}

func TestEndpointLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	resp, body := do(t, srv, http.MethodPost, "/api/api-list/", token, `{"endpoint": "  "}`)
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(string(body), tracker.MsgEndpointRequired) {
		t.Fatalf("blank endpoint = %d %s", resp.StatusCode, body)
	}
	resp, _ = do(t, srv, http.MethodPost, "/api/api-list/", token, `{"endpoint": "https://x", "method": "PATCH"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad method status = %d", resp.StatusCode)
	}

	resp, body = do(t, srv, http.MethodPost, "/api/api-list/", token,
		`{"endpoint": "https://api.example.com/a", "method": "post", "headers": {"X": "1"}, "params": {}, "body": "{}"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create = %d %s", resp.StatusCode, body)
	}
	var created tracker.Endpoint
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatal(err)
	}
	if created.Method != tracker.MethodPOST || created.Code != nil {
		t.Errorf("created = %+v", created)
	}

	resp, body = do(t, srv, http.MethodPut, "/api/api-list/"+created.ID+"/", token, `{"method": "DELETE"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update = %d %s", resp.StatusCode, body)
	}
	var updated tracker.Endpoint
	_ = json.Unmarshal(body, &updated)
	if updated.Method != tracker.MethodDELETE || updated.Endpoint != created.Endpoint || updated.Headers["X"] != "1" {
		t.Errorf("updated = %+v", updated)
	}

	resp, body = do(t, srv, http.MethodGet, "/api/api-list/?page=1&page_size=10&method=DELETE", token, "")
	var page struct {
		Data  []tracker.Endpoint `json:"data"`
		Total int                `json:"total"`
	}
	if err := json.Unmarshal(body, &page); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list = %d %s", resp.StatusCode, body)
	}
	if page.Total != 1 || len(page.Data) != 1 || page.Data[0].ID != created.ID {
		t.Errorf("page = %+v", page)
	}

	resp, _ = do(t, srv, http.MethodGet, "/api/api-list/?code=abc", token, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad code filter status = %d", resp.StatusCode)
	}

	resp, _ = do(t, srv, http.MethodDelete, "/api/api-list/"+created.ID+"/", token, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp, _ = do(t, srv, http.MethodGet, "/api/api-list/"+created.ID+"/", token, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d", resp.StatusCode)
	}
}

func TestHitRecordsCallLogs(t *testing.T) {
	var hits atomic.Int32
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("fail") == "1" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if r.Header.Get("X-Key") != "k" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	srv := newTestServer(t)
	token := login(t, srv)

	_, body := do(t, srv, http.MethodPost, "/api/api-list/", token,
		`{"endpoint": "`+target.URL+`", "method": "GET", "headers": {"X-Key": "k"}}`)
	var e tracker.Endpoint
	_ = json.Unmarshal(body, &e)

	resp, body := do(t, srv, http.MethodPost, "/api/hit-api/"+e.ID+"/", token, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("hit = %d %s", resp.StatusCode, body)
	}
	var hit tracker.Endpoint
	_ = json.Unmarshal(body, &hit)
	if !hit.Status || hit.Code == nil || *hit.Code != 200 || hit.ResponseTime == nil {
		t.Errorf("after hit = %+v", hit)
	}

	do(t, srv, http.MethodPut, "/api/api-list/"+e.ID+"/", token, `{"params": {"fail": "1"}}`)
	resp, body = do(t, srv, http.MethodGet, "/api/hit-api/"+e.ID+"/", token, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("hit on failing target should still be 200, got %d", resp.StatusCode)
	}
	_ = json.Unmarshal(body, &hit)
	if hit.Status || *hit.Code != 500 {
		t.Errorf("after failing hit = %+v", hit)
	}

	_, body = do(t, srv, http.MethodGet, "/api/api-list/"+e.ID+"/call-logs/?page=1&page_size=10", token, "")
	var logs struct {
		CallLogs  []tracker.CallLog `json:"call_logs"`
		TotalLogs int               `json:"total_logs"`
	}
	if err := json.Unmarshal(body, &logs); err != nil {
		t.Fatal(err)
	}
	if logs.TotalLogs != 2 || *logs.CallLogs[0].StatusCode != 500 || *logs.CallLogs[1].StatusCode != 200 {
		t.Errorf("logs = %s", body)
	}
	if hits.Load() != 2 {
		t.Errorf("target hit %d times", hits.Load())
	}
}

func TestHitUnreachableTarget(t *testing.T) {
	target := httptest.NewServer(http.NotFoundHandler())
	addr := target.URL
	target.Close()

	srv := newTestServer(t)
	token := login(t, srv)
	_, body := do(t, srv, http.MethodPost, "/api/api-list/", token, `{"endpoint": "`+addr+`"}`)
	var e tracker.Endpoint
	_ = json.Unmarshal(body, &e)

	resp, body := do(t, srv, http.MethodPost, "/api/hit-api/"+e.ID+"/", token, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var hit tracker.Endpoint
	_ = json.Unmarshal(body, &hit)
	if hit.Status || hit.Code != nil {
		t.Errorf("unreachable target = %+v", hit)
	}
}

func TestLoadTestEndpoint(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	srv := newTestServer(t)
	token := login(t, srv)
	_, body := do(t, srv, http.MethodPost, "/api/api-list/", token, `{"endpoint": "`+target.URL+`"}`)
	var e tracker.Endpoint
	_ = json.Unmarshal(body, &e)

	for _, q := range []string{"numUsers=0&duration=1", "numUsers=2&duration=0", "numUsers=50&duration=1"} {
		resp, _ := do(t, srv, http.MethodGet, "/api/api-list/"+e.ID+"/load-test/?"+q, token, "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d", q, resp.StatusCode)
		}
	}

	resp, body := do(t, srv, http.MethodGet, "/api/api-list/"+e.ID+"/load-test/?numUsers=2&duration=1", token, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load test = %d %s", resp.StatusCode, body)
	}
	var res tracker.LoadTestResult
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatal(err)
	}
	if res.UserCount != 2 || res.Duration != 1 || len(res.Responses) == 0 {
		t.Errorf("result = %+v", res)
	}
	if res.MinResponseTime <= 0 || res.MinResponseTime > res.AvgResponseTime || res.AvgResponseTime > res.MaxResponseTime {
		t.Errorf("min/avg/max out of order: %+v", res)
	}
}
