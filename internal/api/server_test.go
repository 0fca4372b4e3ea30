package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/radioloan-core/internal/device"
	"github.com/nerrad567/radioloan-core/internal/infrastructure/config"
	"github.com/nerrad567/radioloan-core/internal/infrastructure/database"
	"github.com/nerrad567/radioloan-core/internal/infrastructure/logging"
	"github.com/nerrad567/radioloan-core/internal/loan"
	_ "github.com/nerrad567/radioloan-core/migrations" // registers embedded migrations
)

// testServer creates a Server over a migrated SQLite database with a real
// device repository and loan service.
func testServer(t *testing.T) (*Server, *device.SQLRepository) {
	t.Helper()

	db, err := database.Open(database.Config{
		Driver:      database.DriverSQLite,
		Path:        filepath.Join(t.TempDir(), "api.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close() //nolint:errcheck // Test cleanup
	})
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	repo := device.NewSQLRepository(db)
	store := loan.NewStore(db, repo, loan.StoreConfig{DefaultPageSize: 2, MaxPageSize: 3}, nil)

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		Logger:   logging.Discard(),
		Devices:  repo,
		Loans:    loan.NewService(store, nil, nil, nil, nil),
		Database: db,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return srv, repo
}

// stubLoans returns a fixed error from every call.
type stubLoans struct{ err error }

func (s stubLoans) Create(context.Context, string, string) (*loan.Loan, error) {
	return nil, s.err
}

func (s stubLoans) ReturnLoan(context.Context, string, *string) (*loan.Loan, error) {
	return nil, s.err
}

func (s stubLoans) FindActive(context.Context, *int, *int) ([]loan.Loan, error) {
	return nil, s.err
}

type stubChecker struct{ err error }

func (c stubChecker) HealthCheck(context.Context) error { return c.err }

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
}

func addDevice(t *testing.T, repo *device.SQLRepository, id string) {
	t.Helper()
	d := &device.Device{ID: id, CallSign: "Florian " + id}
	if err := repo.Create(context.Background(), d); err != nil {
		t.Fatalf("Create(%s): %v", id, err)
	}
}

func borrow(t *testing.T, h http.Handler, deviceID, borrower string) loan.Loan {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/v1/loans",
		fmt.Sprintf(`{"device_id": %q, "borrower_name": %q}`, deviceID, borrower))
	if w.Code != http.StatusCreated {
		t.Fatalf("borrow status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	var l loan.Loan
	decode(t, w, &l)
	return l
}

// ─── Health Endpoint Tests ─────────────────────────────────────────

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := do(t, router, http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var resp map[string]any
	decode(t, w, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version = %v, want test", resp["version"])
	}
}

func TestHealth_Components(t *testing.T) {
	tests := []struct {
		name       string
		database   error
		optional   error
		wantCode   int
		wantStatus string
	}{
		{"all healthy", nil, nil, http.StatusOK, "ok"},
		{"optional down", nil, errors.New("mqtt: client not connected"), http.StatusOK, "degraded"},
		{"database down", errors.New("database: ping failed"), nil, http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := testServer(t)
			srv.database = stubChecker{err: tt.database}
			srv.optional = map[string]HealthChecker{"mqtt": stubChecker{err: tt.optional}}

			w := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/health", "")
			if w.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", w.Code, tt.wantCode)
			}
			var resp map[string]any
			decode(t, w, &resp)
			if resp["status"] != tt.wantStatus {
				t.Errorf("status = %v, want %s", resp["status"], tt.wantStatus)
			}
		})
	}
}

func TestNew_RequiresDeps(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("New(Deps{}) should fail without a logger")
	}
	if _, err := New(Deps{Logger: logging.Discard()}); err == nil {
		t.Error("New() should fail without a device repository")
	}
}

func TestStart_AppliesConfiguredTimeouts(t *testing.T) {
	srv, _ := testServer(t)
	srv.cfg.Timeouts = config.APITimeoutConfig{Read: 7, Write: 9, Idle: 11}

	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(func() {
		srv.Close() //nolint:errcheck // Test cleanup
	})

	if srv.server.ReadTimeout != 7*time.Second || srv.server.ReadHeaderTimeout != 7*time.Second {
		t.Errorf("read timeouts = %v/%v, want 7s", srv.server.ReadTimeout, srv.server.ReadHeaderTimeout)
	}
	if srv.server.WriteTimeout != 9*time.Second {
		t.Errorf("WriteTimeout = %v, want 9s", srv.server.WriteTimeout)
	}
	if srv.server.IdleTimeout != 11*time.Second {
		t.Errorf("IdleTimeout = %v, want 11s", srv.server.IdleTimeout)
	}
}

// ─── Middleware Tests ──────────────────────────────────────────────

func TestRequestID_Generated(t *testing.T) {
	srv, _ := testServer(t)

	w := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/health", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}
}

func TestRequestID_PreservesClient(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "client-123")
	w := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-123")
	}
}

func TestCORS_Preflight(t *testing.T) {
	srv, _ := testServer(t)
	srv.cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	router := srv.buildRouter()

	tests := []struct {
		origin string
		want   string
	}{
		{"http://localhost:3000", "http://localhost:3000"},
		{"http://evil.example", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/loans", nil)
		req.Header.Set("Origin", tt.origin)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
			t.Errorf("ACAO for %s = %q, want %q", tt.origin, got, tt.want)
		}
	}
}

func TestRecovery(t *testing.T) {
	srv, _ := testServer(t)
	h := srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := do(t, h, http.MethodGet, "/", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestNotFound(t *testing.T) {
	srv, _ := testServer(t)

	w := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/nonexistent", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// ─── Device Tests ──────────────────────────────────────────────────

func TestListDevices_Empty(t *testing.T) {
	srv, _ := testServer(t)

	w := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/devices", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Devices []device.Device `json:"devices"`
		Count   int             `json:"count"`
	}
	decode(t, w, &resp)
	if resp.Count != 0 || resp.Devices == nil {
		t.Errorf("got %+v, want an empty list", resp)
	}
}

func TestCreateAndGetDevice(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := do(t, router, http.MethodPost, "/api/v1/devices", `{"call_sign": "Florian 4-83-1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var created device.Device
	decode(t, w, &created)
	if created.ID == "" {
		t.Error("expected device ID to be generated")
	}
	if created.Status != device.StatusAvailable {
		t.Errorf("status = %s, want %s", created.Status, device.StatusAvailable)
	}

	w = do(t, router, http.MethodGet, "/api/v1/devices/"+created.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want %d", w.Code, http.StatusOK)
	}
	var got device.Device
	decode(t, w, &got)
	if got.CallSign != "Florian 4-83-1" {
		t.Errorf("call_sign = %q, want %q", got.CallSign, "Florian 4-83-1")
	}
}

func TestCreateDevice_Errors(t *testing.T) {
	srv, repo := testServer(t)
	addDevice(t, repo, "dev-1")
	router := srv.buildRouter()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"missing call sign", `{"id": "dev-2"}`, http.StatusBadRequest},
		{"unknown status", `{"call_sign": "x", "status": "LOST"}`, http.StatusBadRequest},
		{"on loan reserved", `{"call_sign": "x", "status": "ON_LOAN"}`, http.StatusBadRequest},
		{"duplicate id", `{"id": "dev-1", "call_sign": "Other"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/v1/devices", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d; body: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestGetDevice_NotFound(t *testing.T) {
	srv, _ := testServer(t)

	w := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/devices/nonexistent-id", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestListDevices_FilterByStatus(t *testing.T) {
	srv, repo := testServer(t)
	addDevice(t, repo, "dev-1")
	addDevice(t, repo, "dev-2")
	if _, err := repo.SetStatus(context.Background(), "dev-2", device.StatusDefect); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	router := srv.buildRouter()

	w := do(t, router, http.MethodGet, "/api/v1/devices?status=defect", "")
	var resp struct {
		Devices []device.Device `json:"devices"`
	}
	decode(t, w, &resp)
	if len(resp.Devices) != 1 || resp.Devices[0].ID != "dev-2" {
		t.Errorf("got %+v, want only dev-2", resp.Devices)
	}

	w = do(t, router, http.MethodGet, "/api/v1/devices?status=LOST", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid filter status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSetDeviceStatus(t *testing.T) {
	srv, repo := testServer(t)
	addDevice(t, repo, "dev-1")
	addDevice(t, repo, "dev-2")
	router := srv.buildRouter()
	borrow(t, router, "dev-2", "Max")

	tests := []struct {
		name string
		id   string
		body string
		want int
	}{
		{"maintenance", "dev-1", `{"status": "MAINTENANCE"}`, http.StatusOK},
		{"back to available", "dev-1", `{"status": "AVAILABLE"}`, http.StatusOK},
		{"on loan reserved", "dev-1", `{"status": "ON_LOAN"}`, http.StatusBadRequest},
		{"unknown status", "dev-1", `{"status": "LOST"}`, http.StatusBadRequest},
		{"loaned device", "dev-2", `{"status": "DEFECT"}`, http.StatusConflict},
		{"missing device", "dev-9", `{"status": "DEFECT"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPut, "/api/v1/devices/"+tt.id+"/status", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d; body: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

// ─── Loan Tests ────────────────────────────────────────────────────

func TestLoanLifecycle(t *testing.T) {
	srv, repo := testServer(t)
	addDevice(t, repo, "dev-1")
	router := srv.buildRouter()

	l := borrow(t, router, "dev-1", "  Max  ")
	if l.BorrowerName != "Max" {
		t.Errorf("borrower_name = %q, want trimmed %q", l.BorrowerName, "Max")
	}
	if l.Device.Status != device.StatusOnLoan {
		t.Errorf("device status = %s, want %s", l.Device.Status, device.StatusOnLoan)
	}

	// Second borrow of the same device conflicts.
	w := do(t, router, http.MethodPost, "/api/v1/loans", `{"device_id": "dev-1", "borrower_name": "Anna"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("second borrow status = %d, want %d", w.Code, http.StatusConflict)
	}
	var apiErr Error
	decode(t, w, &apiErr)
	if apiErr.Code != ErrCodeConflict || apiErr.Message != loan.MsgDeviceNotAvailable {
		t.Errorf("error = %+v", apiErr)
	}

	w = do(t, router, http.MethodPost, "/api/v1/loans/"+l.ID+"/return", `{"return_note": "antenna loose"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("return status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var returned loan.Loan
	decode(t, w, &returned)
	if returned.ReturnedAt == nil || returned.ReturnNote == nil || *returned.ReturnNote != "antenna loose" {
		t.Errorf("returned loan = %+v", returned)
	}
	if returned.Device.Status != device.StatusAvailable {
		t.Errorf("device status = %s, want %s", returned.Device.Status, device.StatusAvailable)
	}

	// Returning twice conflicts.
	w = do(t, router, http.MethodPost, "/api/v1/loans/"+l.ID+"/return", "")
	if w.Code != http.StatusConflict {
		t.Errorf("second return status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestReturnLoan_WithoutBody(t *testing.T) {
	srv, repo := testServer(t)
	addDevice(t, repo, "dev-1")
	router := srv.buildRouter()
	l := borrow(t, router, "dev-1", "Max")

	w := do(t, router, http.MethodPost, "/api/v1/loans/"+l.ID+"/return", "")
	if w.Code != http.StatusOK {
		t.Fatalf("return status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var returned loan.Loan
	decode(t, w, &returned)
	if returned.ReturnNote != nil {
		t.Errorf("return_note = %q, want null", *returned.ReturnNote)
	}
}

func TestLoanNotFound(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := do(t, router, http.MethodPost, "/api/v1/loans", `{"device_id": "dev-9", "borrower_name": "Max"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("borrow unknown device status = %d, want %d", w.Code, http.StatusNotFound)
	}

	w = do(t, router, http.MethodPost, "/api/v1/loans/01ARZ3NDEKTSV4RRFFQ69G5FAV/return", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("return unknown loan status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestCreateLoan_Validation(t *testing.T) {
	srv, repo := testServer(t)
	addDevice(t, repo, "dev-1")
	router := srv.buildRouter()

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"device_id":`},
		{"missing device", `{"borrower_name": "Max"}`},
		{"device id too long", fmt.Sprintf(`{"device_id": %q, "borrower_name": "Max"}`, strings.Repeat("d", 65))},
		{"blank borrower", `{"device_id": "dev-1", "borrower_name": "   "}`},
		{"borrower too long", fmt.Sprintf(`{"device_id": "dev-1", "borrower_name": %q}`, strings.Repeat("b", 101))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/v1/loans", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusBadRequest, w.Body.String())
			}
		})
	}

	// Nothing reached the engine.
	d, err := repo.GetByID(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if d.Status != device.StatusAvailable {
		t.Errorf("device status = %s, want %s", d.Status, device.StatusAvailable)
	}
}

func TestReturnLoan_NoteTooLong(t *testing.T) {
	srv, repo := testServer(t)
	addDevice(t, repo, "dev-1")
	router := srv.buildRouter()
	l := borrow(t, router, "dev-1", "Max")

	body := fmt.Sprintf(`{"return_note": %q}`, strings.Repeat("n", 501))
	w := do(t, router, http.MethodPost, "/api/v1/loans/"+l.ID+"/return", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestListActiveLoans(t *testing.T) {
	srv, repo := testServer(t)
	router := srv.buildRouter()
	for _, id := range []string{"dev-1", "dev-2", "dev-3", "dev-4"} {
		addDevice(t, repo, id)
		borrow(t, router, id, "Max")
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"default page", "", 2},
		{"capped at max", "?take=50", 3},
		{"skip past some", "?take=3&skip=3", 1},
		{"negative skip clamps", "?take=1&skip=-5", 1},
		{"skip past end", "?skip=10", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodGet, "/api/v1/loans/active"+tt.query, "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
			}
			var resp struct {
				Loans []loan.Loan `json:"loans"`
				Count int         `json:"count"`
			}
			decode(t, w, &resp)
			if resp.Count != tt.want || len(resp.Loans) != tt.want {
				t.Errorf("count = %d, want %d", resp.Count, tt.want)
			}
		})
	}
}

func TestListActiveLoans_NewestFirst(t *testing.T) {
	srv, repo := testServer(t)
	router := srv.buildRouter()
	addDevice(t, repo, "dev-1")
	addDevice(t, repo, "dev-2")
	first := borrow(t, router, "dev-1", "Max")
	second := borrow(t, router, "dev-2", "Anna")

	w := do(t, router, http.MethodGet, "/api/v1/loans/active?take=3", "")
	var resp struct {
		Loans []loan.Loan `json:"loans"`
	}
	decode(t, w, &resp)
	if len(resp.Loans) != 2 {
		t.Fatalf("got %d loans, want 2", len(resp.Loans))
	}
	// Equal timestamps fall back to id order, which ULIDs keep chronological.
	if resp.Loans[0].ID != second.ID || resp.Loans[1].ID != first.ID {
		t.Errorf("order = [%s %s], want [%s %s]", resp.Loans[0].ID, resp.Loans[1].ID, second.ID, first.ID)
	}
}

func TestListActiveLoans_InvalidPaging(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	for _, q := range []string{"?take=abc", "?skip=1.5", "?take=10&skip=x"} {
		w := do(t, router, http.MethodGet, "/api/v1/loans/active"+q, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", q, w.Code, http.StatusBadRequest)
		}
	}
}

func TestLoanErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
		wantMsg  string
	}{
		{"not found", &loan.Error{Kind: loan.KindNotFound, Message: loan.MsgLoanNotFound}, http.StatusNotFound, ErrCodeNotFound, loan.MsgLoanNotFound},
		{"conflict", &loan.Error{Kind: loan.KindConflict, Message: loan.MsgJustReturned, Race: true}, http.StatusConflict, ErrCodeConflict, loan.MsgJustReturned},
		{"timeout", &loan.Error{Kind: loan.KindTimeout, Message: loan.MsgTimeout}, http.StatusGatewayTimeout, ErrCodeTimeout, loan.MsgTimeout},
		{"internal", &loan.Error{Kind: loan.KindInternal, Message: loan.MsgInternal}, http.StatusInternalServerError, ErrCodeInternal, loan.MsgInternal},
		{"unclassified", errors.New("no such table: loans"), http.StatusInternalServerError, ErrCodeInternal, loan.MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := testServer(t)
			srv.loans = stubLoans{err: tt.err}
			router := srv.buildRouter()

			requests := []struct{ method, path, body string }{
				{http.MethodPost, "/api/v1/loans", `{"device_id": "dev-1", "borrower_name": "Max"}`},
				{http.MethodPost, "/api/v1/loans/L1/return", ""},
				{http.MethodGet, "/api/v1/loans/active", ""},
			}
			for _, rq := range requests {
				w := do(t, router, rq.method, rq.path, rq.body)
				if w.Code != tt.wantCode {
					t.Errorf("%s %s: status = %d, want %d", rq.method, rq.path, w.Code, tt.wantCode)
				}
				var apiErr Error
				decode(t, w, &apiErr)
				if apiErr.Code != tt.wantErr || apiErr.Message != tt.wantMsg {
					t.Errorf("%s %s: error = %+v", rq.method, rq.path, apiErr)
				}
			}
		})
	}
}
