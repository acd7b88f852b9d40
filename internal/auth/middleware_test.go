package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-tracker/internal/domain"
	apperrors "github.com/spec-kit/repair-tracker/pkg/util"
)

type stubResolver struct {
	profiles map[string]*domain.UserProfile
	seeded   []string
}

func (r *stubResolver) GetProfile(_ context.Context, uid, email string) (*domain.UserProfile, error) {
	if profile, ok := r.profiles[uid]; ok {
		return profile, nil
	}
	profile := &domain.UserProfile{UID: uid, Email: email, Role: domain.RoleOperator}
	r.profiles[uid] = profile
	r.seeded = append(r.seeded, uid)
	return profile, nil
}

func newTestApp(tokens *TokenManager, resolver ProfileResolver, captured *error) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			*captured = err
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/whoami", NewAuthMiddleware(tokens, resolver).Handle, func(c *fiber.Ctx) error {
		profile := ProfileFromContext(c)
		if profile == nil {
			return apperrors.NewInternalError(nil)
		}
		return c.JSON(fiber.Map{"uid": profile.UID, "email": profile.Email})
	})
	return app
}

func TestMiddlewareSeedsFirstTimeCaller(t *testing.T) {
	tokens := NewTokenManager("test-secret", 5)
	token, _, err := tokens.GenerateToken("u-new", "nuovo@officina.it", domain.RoleOperator)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	resolver := &stubResolver{profiles: map[string]*domain.UserProfile{}}

	var captured error
	app := newTestApp(tokens, resolver, &captured)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (err: %v)", resp.StatusCode, captured)
	}
	if len(resolver.seeded) != 1 || resolver.seeded[0] != "u-new" {
		t.Errorf("seeded = %v, want [u-new]", resolver.seeded)
	}
	if resolver.profiles["u-new"].Email != "nuovo@officina.it" {
		t.Errorf("seeded email = %q, want the token's email", resolver.profiles["u-new"].Email)
	}
}

func TestMiddlewareRejectsBadCredentials(t *testing.T) {
	tokens := NewTokenManager("test-secret", 5)
	resolver := &stubResolver{profiles: map[string]*domain.UserProfile{}}

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		var captured error
		app := newTestApp(tokens, resolver, &captured)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s: app.Test: %v", tc.name, err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", tc.name, resp.StatusCode)
		}
		if de := apperrors.ToDomainError(captured); de == nil || de.Code != "UNAUTHORIZED" {
			t.Errorf("%s: error = %v, want UNAUTHORIZED", tc.name, captured)
		}
	}
	if len(resolver.seeded) != 0 {
		t.Errorf("seeded = %v, want none for rejected requests", resolver.seeded)
	}
}
