package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/utsavhq/utsav-backend/pkg/auth"
	"github.com/utsavhq/utsav-backend/pkg/config"
	"github.com/utsavhq/utsav-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "utsav-test",
		ExpirationMinutes: 15,
	}
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	mw := Auth(testJWTConfig(), nil)
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	})

	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/marketplace", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if handlerCalled {
		t.Fatalf("handler should not run without credentials")
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	mw := Auth(testJWTConfig(), nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/marketplace", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsVendorContext(t *testing.T) {
	cfg := testJWTConfig()
	vendorID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		VendorID: vendorID,
		Role:     enums.ActorRoleVendor,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	mw := Auth(cfg, nil)
	var gotVendor, gotRole string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVendor = VendorIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/marketplace", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotVendor != vendorID.String() {
		t.Fatalf("expected vendor %s got %q", vendorID, gotVendor)
	}
	if gotRole != string(enums.ActorRoleVendor) {
		t.Fatalf("expected vendor role got %q", gotRole)
	}
}

func TestRequireRoleBlocksMismatch(t *testing.T) {
	mw := RequireRole("admin", nil)
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/settings/lead-costs", nil)
	req = req.WithContext(WithRole(req.Context(), "vendor"))
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
	if handlerCalled {
		t.Fatalf("handler should not run for mismatched role")
	}
}
