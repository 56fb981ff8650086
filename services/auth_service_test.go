package services

import (
	"context"
	"testing"

	"clinicacrm/models"

	"github.com/golang-jwt/jwt/v5"
)

const testJWTSecret = "test-secret"

func newAuthStack() AuthService {
	data := NewDataService(newFakeRepo(), newFakeFallback())
	return NewAuthService(data, testJWTSecret)
}

func TestSignUpIssuesToken(t *testing.T) {
	svc := newAuthStack()
	ctx := context.Background()

	res := svc.SignUp(ctx, "ana@example.com", "segredo123", "Ana")
	if !res.Success {
		t.Fatalf("signup failed: %s", res.Error)
	}
	if res.User == nil || res.User.Email != "ana@example.com" || res.User.Nome != "Ana" {
		t.Errorf("user = %+v", res.User)
	}
	if res.User.ID == "" {
		t.Error("user id not assigned")
	}
	if res.Token == "" {
		t.Fatal("no token issued")
	}

	claims := &models.AuthClaims{}
	parsed, err := jwt.ParseWithClaims(res.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not parse: %v", err)
	}
	if claims.UserID != res.User.ID || claims.Email != "ana@example.com" || claims.Nome != "Ana" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc := newAuthStack()
	ctx := context.Background()

	if res := svc.SignUp(ctx, "ana@example.com", "segredo123", "Ana"); !res.Success {
		t.Fatalf("first signup failed: %s", res.Error)
	}
	res := svc.SignUp(ctx, "ana@example.com", "outrasenha", "Outra Ana")
	if res.Success {
		t.Fatal("duplicate signup succeeded")
	}
	if res.Error != "email already registered" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestSignIn(t *testing.T) {
	svc := newAuthStack()
	ctx := context.Background()

	if res := svc.SignUp(ctx, "ana@example.com", "segredo123", "Ana"); !res.Success {
		t.Fatalf("signup failed: %s", res.Error)
	}

	res := svc.SignIn(ctx, "ana@example.com", "segredo123")
	if !res.Success || res.Token == "" {
		t.Fatalf("signin = %+v", res)
	}

	res = svc.SignIn(ctx, "ana@example.com", "senhaerrada")
	if res.Success {
		t.Fatal("signin with wrong password succeeded")
	}
	if res.Error != "invalid credentials" {
		t.Errorf("wrong password error = %q", res.Error)
	}

	res = svc.SignIn(ctx, "ninguem@example.com", "segredo123")
	if res.Success || res.Error != "invalid credentials" {
		t.Errorf("unknown email result = %+v", res)
	}
}

func TestResetPassword(t *testing.T) {
	svc := newAuthStack()
	ctx := context.Background()

	if res := svc.SignUp(ctx, "ana@example.com", "segredo123", "Ana"); !res.Success {
		t.Fatalf("signup failed: %s", res.Error)
	}

	res := svc.ResetPassword(ctx, "ana@example.com")
	if !res.Success {
		t.Fatalf("reset failed: %s", res.Error)
	}
	if res.TemporaryPassword == "" {
		t.Fatal("no temporary password returned")
	}

	if r := svc.SignIn(ctx, "ana@example.com", "segredo123"); r.Success {
		t.Error("old password still accepted after reset")
	}
	if r := svc.SignIn(ctx, "ana@example.com", res.TemporaryPassword); !r.Success {
		t.Errorf("temporary password rejected: %s", r.Error)
	}
}

func TestResetPasswordUnknownEmail(t *testing.T) {
	svc := newAuthStack()

	res := svc.ResetPassword(context.Background(), "ninguem@example.com")
	if res.Success {
		t.Fatal("reset for unknown email succeeded")
	}
	if res.Error != "account not found" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestSignOut(t *testing.T) {
	svc := newAuthStack()
	if res := svc.SignOut(context.Background()); !res.Success {
		t.Errorf("signout = %+v", res)
	}
}
