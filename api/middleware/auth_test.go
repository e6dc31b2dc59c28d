package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/retailops-labs/retailops-backend/pkg/auth"
	"github.com/retailops-labs/retailops-backend/pkg/config"
	"github.com/retailops-labs/retailops-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "retailops-test", ExpirationMinutes: 60}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, role enums.OperatorRole, tenantID uuid.UUID) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
		OperatorID: uuid.New(),
		TenantID:   tenantID,
		Role:       role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWTConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWTConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsContextFromClaims(t *testing.T) {
	cfg := testJWTConfig()
	tenantID := uuid.New()
	token := mintTestToken(t, cfg, enums.OperatorRoleApprover, tenantID)

	var captured struct {
		operator string
		tenant   string
		role     string
	}
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.operator = OperatorIDFromContext(r.Context())
		captured.tenant = TenantIDFromContext(r.Context())
		captured.role = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.operator == "" {
		t.Fatal("expected operator id in context")
	}
	if captured.tenant != tenantID.String() {
		t.Fatalf("expected tenant %s got %s", tenantID, captured.tenant)
	}
	if captured.role != string(enums.OperatorRoleApprover) {
		t.Fatalf("expected approver role got %s", captured.role)
	}
}

func TestRequireDecisionRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		role string
		want int
	}{
		{string(enums.OperatorRoleAdmin), http.StatusOK},
		{string(enums.OperatorRoleApprover), http.StatusOK},
		{string(enums.OperatorRolePlanner), http.StatusForbidden},
		{"", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithRole(req.Context(), tc.role))
		resp := httptest.NewRecorder()
		RequireDecisionRole(nil)(next).ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("role %q: expected %d got %d", tc.role, tc.want, resp.Code)
		}
	}
}
