package db

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestExtractTenantID_Priority(t *testing.T) {
	e := echo.New()

	// JWT claim wins over header and query param.
	req := httptest.NewRequest(http.MethodGet, "/?tenant_id=fromquery", nil)
	req.Header.Set("X-Tenant-ID", "fromheader")
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set("jwt_tenant_id", "fromjwt")
	if got := extractTenantID(c, "default"); got != "fromjwt" {
		t.Errorf("expected jwt tenant, got %q", got)
	}

	// Header beats query param.
	c = e.NewContext(req, httptest.NewRecorder())
	if got := extractTenantID(c, "default"); got != "fromheader" {
		t.Errorf("expected header tenant, got %q", got)
	}

	// Query param beats default.
	req = httptest.NewRequest(http.MethodGet, "/?tenant_id=fromquery", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	if got := extractTenantID(c, "default"); got != "fromquery" {
		t.Errorf("expected query tenant, got %q", got)
	}

	// Fallback.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	if got := extractTenantID(c, "default"); got != "default" {
		t.Errorf("expected default tenant, got %q", got)
	}
}

func TestTenantIDPattern(t *testing.T) {
	valid := []string{"default", "clinic_01", "ACME", "t1"}
	invalid := []string{"", "a-b", "x;DROP TABLE patients", "a b", "café"}

	for _, id := range valid {
		if !tenantIDPattern.MatchString(id) {
			t.Errorf("%q should be a valid tenant id", id)
		}
	}
	for _, id := range invalid {
		if tenantIDPattern.MatchString(id) {
			t.Errorf("%q should be rejected", id)
		}
	}
}

func TestTxFromContext_Nil(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Errorf("expected nil tx from empty context")
	}
}

func TestTxFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), DBTxKey, "not-a-tx")
	if tx := TxFromContext(ctx); tx != nil {
		t.Errorf("expected nil tx for mistyped value")
	}
}

func TestConnFromContext_Nil(t *testing.T) {
	if conn := ConnFromContext(context.Background()); conn != nil {
		t.Errorf("expected nil conn from empty context")
	}
}

func TestTenantFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TenantIDKey, "clinic_01")
	if got := TenantFromContext(ctx); got != "clinic_01" {
		t.Errorf("expected clinic_01, got %q", got)
	}
	if got := TenantFromContext(context.Background()); got != "" {
		t.Errorf("expected empty tenant, got %q", got)
	}
}

func TestCreateTenantSchema_InvalidID(t *testing.T) {
	err := CreateTenantSchema(context.Background(), nil, "bad-tenant;", "")
	if err == nil {
		t.Error("expected error for invalid tenant identifier")
	}
}
