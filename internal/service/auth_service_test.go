package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/repair-tracker/internal/config"
	"github.com/spec-kit/repair-tracker/internal/domain"
)

func newTestAuth(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            bcrypt.MinCost,
	}}
	return NewAuthService(cfg, AuthDependencies{UserRepo: users}), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	profile, token, _, err := svc.Register(ctx, "Marco@Lab.IT", "marco", "segreto")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if profile.Email != "marco@lab.it" {
		t.Errorf("email = %q, want lowercased", profile.Email)
	}
	if profile.Role != domain.RoleOperator {
		t.Errorf("role = %s, want default operator", profile.Role)
	}
	if token == "" {
		t.Error("expected token")
	}

	logged, token, _, err := svc.Login(ctx, "marco@lab.it", "segreto")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.UID != profile.UID || token == "" {
		t.Errorf("login profile = %+v", logged)
	}

	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UID != profile.UID || claims.Role != domain.RoleOperator {
		t.Errorf("claims = %+v", claims)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()
	if _, _, _, err := svc.Register(ctx, "marco@lab.it", "", "segreto"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, _, _, err := svc.Register(ctx, "marco@lab.it", "", "altro")
	assertDomainCode(t, err, "CONFLICT")
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()
	if _, _, _, err := svc.Register(ctx, "marco@lab.it", "", "segreto"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, _, _, err := svc.Login(ctx, "marco@lab.it", "sbagliata")
	assertDomainCode(t, err, "UNAUTHORIZED")
	_, _, _, err = svc.Login(ctx, "nessuno@lab.it", "segreto")
	assertDomainCode(t, err, "UNAUTHORIZED")
}

func TestGetProfileAutoCreates(t *testing.T) {
	svc, users := newTestAuth(t)
	profile, err := svc.GetProfile(context.Background(), "sconosciuto", "nuovo@lab.it")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.Role != domain.RoleOperator || profile.Email != "nuovo@lab.it" {
		t.Errorf("profile = %+v", profile)
	}
	if len(users.profiles) != 1 {
		t.Errorf("profiles stored = %d, want 1", len(users.profiles))
	}
}

func TestUpdateRole(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()
	target, _, _, err := svc.Register(ctx, "luca@lab.it", "luca", "segreto")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	err = svc.UpdateRole(ctx, operator(), target.UID, domain.RoleHeadTech)
	assertDomainCode(t, err, "FORBIDDEN")

	boss := manager()
	err = svc.UpdateRole(ctx, boss, boss.UID, domain.RoleOperator)
	assertDomainCode(t, err, "CONFLICT")

	err = svc.UpdateRole(ctx, boss, target.UID, domain.Role("admin"))
	assertDomainCode(t, err, "VALIDATION_FAILED")

	if err := svc.UpdateRole(ctx, boss, target.UID, domain.RoleHeadTech); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	updated, err := svc.users.GetByUID(ctx, target.UID)
	if err != nil {
		t.Fatalf("GetByUID: %v", err)
	}
	if updated.Role != domain.RoleHeadTech {
		t.Errorf("role = %s, want head_tech", updated.Role)
	}
}

func TestUpdateRoleUnknownUser(t *testing.T) {
	svc, _ := newTestAuth(t)
	err := svc.UpdateRole(context.Background(), manager(), "missing", domain.RoleLogistics)
	assertDomainCode(t, err, "NOT_FOUND")
}
