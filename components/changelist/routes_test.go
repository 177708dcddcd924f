package changelist

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	cases := []struct {
		name  string
		base  string
		route string
		want  string
	}{
		{"default route under base", "/admin/landmarks", "", "/admin/landmarks/"},
		{"empty base keeps route", "", "", "/"},
		{"slash base keeps route", "/", "", "/"},
		{"trailing slash trimmed", "/admin/landmarks/", "", "/admin/landmarks/"},
		{"custom route", "/admin/landmarks", "/list", "/admin/landmarks/list"},
		{"missing slashes added", "admin", "list", "/admin/list"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var fns []OptionFn
			if tc.route != "" {
				fns = append(fns, WithRoutePath(tc.route))
			}
			if got := MountPath(tc.base, fns...); got != tc.want {
				t.Fatalf("MountPath(%q, %q) = %q, want %q", tc.base, tc.route, got, tc.want)
			}
		})
	}
}

func TestRegisterRoutes_ServesList(t *testing.T) {
	resource := landmarkResource()
	mux := http.NewServeMux()

	pattern, err := RegisterRoutes(mux, "/admin/landmarks",
		WithResource(resource),
		WithStore(seededLandmarks(t, resource)),
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if pattern != "/admin/landmarks/" {
		t.Fatalf("pattern = %q", pattern)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/landmarks/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/landmarks/?bogus=1", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("lookup error status = %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/admin/landmarks/?e=1" {
		t.Fatalf("location = %q", got)
	}
}

func TestRegisterRoutes_MissingMux(t *testing.T) {
	if _, err := RegisterRoutes(nil, "/admin"); err == nil {
		t.Fatalf("nil mux should error")
	}
}
