package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func gateRequest(t *testing.T, path string, withCookie bool) *httptest.ResponseRecorder {
	t.Helper()
	passed := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		passed = true
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if withCookie {
		req.AddCookie(&http.Cookie{Name: AdminCookie, Value: "true"})
	}
	w := httptest.NewRecorder()
	AdminGate()(next).ServeHTTP(w, req)
	if w.Code == http.StatusOK && !passed {
		t.Fatal("gate wrote 200 without calling next")
	}
	return w
}

func TestAdminGate(t *testing.T) {
	cases := []struct {
		name       string
		path       string
		cookie     bool
		wantStatus int
		wantLoc    string
	}{
		{"dashboard without cookie redirects to login", "/admin/dashboard", false, http.StatusFound, "/admin/login"},
		{"login with cookie redirects to dashboard", "/admin/login", true, http.StatusFound, "/admin/dashboard"},
		{"login without cookie passes through", "/admin/login", false, http.StatusOK, ""},
		{"dashboard with cookie passes through", "/admin/dashboard", true, http.StatusOK, ""},
		{"public page without cookie passes through", "/news", false, http.StatusOK, ""},
		{"public page with cookie passes through", "/", true, http.StatusOK, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := gateRequest(t, c.path, c.cookie)
			if w.Code != c.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, c.wantStatus)
			}
			if c.wantLoc != "" && w.Header().Get("Location") != c.wantLoc {
				t.Fatalf("location = %q, want %q", w.Header().Get("Location"), c.wantLoc)
			}
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Context().Value(RequestIDKey{}) == nil {
			t.Error("request id missing from context")
		}
	})
	w := httptest.NewRecorder()
	RequestID()(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}
}
