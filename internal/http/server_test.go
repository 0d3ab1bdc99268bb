package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"budgetbuddy/internal/auth"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/session"
	"budgetbuddy/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := memory.New()
	txs := services.NewTransactionService(st, nil, nil)
	authSvc := auth.NewService(st, session.NewMemoryStore())
	srv, err := NewServer(":0", txs, authSvc, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

// Embedded templates and static assets must parse at construction time.
func TestNewServerParsesEmbeddedAssets(t *testing.T) {
	srv := newTestServer(t)
	if srv.templates == nil {
		t.Fatal("templates not parsed")
	}
	if srv.templates.Lookup("dashboard.html") == nil {
		t.Error("dashboard.html missing from parsed set")
	}
}

// registerAndLogin creates a user and returns its session cookie.
func registerAndLogin(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()

	form := url.Values{"name": {"Alex"}, "email": {"alex@example.com"}, "password": {"secret"}}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("register status = %d, want 303", rr.Code)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", rr.Code)
	}

	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func doAuthed(srv *Server, cookie *http.Cookie, method, path, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.AddCookie(cookie)
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rr.Code)
		}
	}
}

func TestDashboardRequiresLogin(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestLoginPageRenders(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Login") {
		t.Error("login page missing heading")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv)

	form := url.Values{"email": {"alex@example.com"}, "password": {"wrong"}}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid email or password") {
		t.Error("response missing generic failure message")
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName && c.Value != "" {
			t.Error("failed login set a session cookie")
		}
	}
}

func TestDashboardRendersTotals(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv)

	save := doAuthed(srv, cookie, http.MethodPost, "/transactions",
		"name=Salary&amount=2500.00&type=INCOME&category=Work&date=2025-12-01")
	if save.Code != http.StatusSeeOther {
		t.Fatalf("save status = %d, want 303; body: %s", save.Code, save.Body.String())
	}

	rr := doAuthed(srv, cookie, http.MethodGet, "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "$2,500.00") {
		t.Errorf("dashboard missing income total: %s", body)
	}
	if !strings.Contains(body, "Salary") {
		t.Error("dashboard missing recent transaction")
	}
}

func TestTransactionListAndFilter(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv)

	doAuthed(srv, cookie, http.MethodPost, "/transactions",
		"name=Salary&amount=2500.00&type=INCOME&category=Work&date=2025-12-01")
	doAuthed(srv, cookie, http.MethodPost, "/transactions",
		"name=Rent&amount=900.00&type=EXPENSE&category=Housing&date=2025-12-02")

	rr := doAuthed(srv, cookie, http.MethodGet, "/transactions", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Salary") || !strings.Contains(body, "Rent") {
		t.Error("unfiltered list missing transactions")
	}

	rr = doAuthed(srv, cookie, http.MethodGet, "/transactions?type=EXPENSE", "")
	body = rr.Body.String()
	if strings.Contains(body, "Salary") {
		t.Error("expense filter still shows income row")
	}
	if !strings.Contains(body, "Rent") {
		t.Error("expense filter dropped expense row")
	}
}

func TestTransactionSaveValidation(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv)

	rr := doAuthed(srv, cookie, http.MethodPost, "/transactions",
		"name=Rent&amount=abc&type=EXPENSE")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad amount status = %d, want 422", rr.Code)
	}

	rr = doAuthed(srv, cookie, http.MethodPost, "/transactions",
		"name=&amount=10.00&type=EXPENSE")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty name status = %d, want 422", rr.Code)
	}
}

func TestTransactionEditMissingRedirects(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv)

	rr := doAuthed(srv, cookie, http.MethodGet, "/transactions/9999/edit", "")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/transactions" {
		t.Errorf("Location = %q, want /transactions", loc)
	}
}

func TestTransactionDeleteMissingIsSilent(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv)

	rr := doAuthed(srv, cookie, http.MethodPost, "/transactions/9999/delete", "")
	if rr.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rr.Code)
	}
}

func TestTransactionNewForm(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv)

	rr := doAuthed(srv, cookie, http.MethodGet, "/transactions/new", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Add Transaction") {
		t.Error("new form missing title")
	}
}

func TestTransactionEditKeepsID(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv)

	doAuthed(srv, cookie, http.MethodPost, "/transactions",
		"name=Rent&amount=900.00&type=EXPENSE&category=Housing&date=2025-12-02")

	rr := doAuthed(srv, cookie, http.MethodGet, "/transactions/1/edit", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("edit status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Edit Transaction") {
		t.Error("edit form missing title")
	}
	if !strings.Contains(body, `name="id" value="1"`) {
		t.Error("edit form missing hidden id field")
	}

	// Replace through the same id and check the new amount shows up.
	rr = doAuthed(srv, cookie, http.MethodPost, "/transactions",
		"id=1&name=Rent&amount=950.00&type=EXPENSE&category=Housing&date=2025-12-02")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("update status = %d, want 303", rr.Code)
	}

	rr = doAuthed(srv, cookie, http.MethodGet, "/transactions", "")
	if !strings.Contains(rr.Body.String(), "$950.00") {
		t.Error("list does not reflect updated amount")
	}
	if strings.Count(rr.Body.String(), "Rent") > 2 {
		t.Error("update created a duplicate row")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv)

	rr := doAuthed(srv, cookie, http.MethodGet, "/logout", "")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("logout status = %d, want 303", rr.Code)
	}

	// The old token must no longer authenticate.
	rr = doAuthed(srv, cookie, http.MethodGet, "/", "")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("post-logout dashboard status = %d, want redirect", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestRateLimiterAllows60PerMinute(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d blocked, want first 60 allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("request 61 allowed, want blocked")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("other client blocked by unrelated limit")
	}
}
