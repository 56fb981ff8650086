package services

import (
	"context"
	"log"
	"time"

	"clinicacrm/models"
	"clinicacrm/utils"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

// AuthResult is the envelope every auth operation returns; errors are
// generic strings, never raw store errors.
type AuthResult struct {
	Success           bool             `json:"success"`
	User              *models.AuthUser `json:"user,omitempty"`
	Token             string           `json:"token,omitempty"`
	TemporaryPassword string           `json:"temporary_password,omitempty"`
	Error             string           `json:"error,omitempty"`
}

type AuthService interface {
	SignUp(ctx context.Context, email, password, displayName string) AuthResult
	SignIn(ctx context.Context, email, password string) AuthResult
	SignOut(ctx context.Context) AuthResult
	ResetPassword(ctx context.Context, email string) AuthResult
}

// authService keeps accounts in the usuarios collection. It talks to the
// Data Service façade like any other caller, so account reads and writes
// get the same fallback behavior as the rest of the system.
type authService struct {
	data      DataService
	jwtSecret string
}

func NewAuthService(data DataService, jwtSecret string) AuthService {
	return &authService{data: data, jwtSecret: jwtSecret}
}

func (s *authService) SignUp(ctx context.Context, email, password, displayName string) AuthResult {
	if existing, _ := s.findByEmail(ctx, email); existing != nil {
		return AuthResult{Success: false, Error: "email already registered"}
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Printf("signup: hash failed: %v", err)
		return AuthResult{Success: false, Error: "could not create account, try again"}
	}

	rec, _, err := s.data.Create(ctx, models.CollectionUsuarios, SistemaActor(), models.Record{
		"email":     email,
		"nome":      displayName,
		"senhaHash": hash,
		"ativo":     true,
	})
	if err != nil {
		log.Printf("signup: create failed: %v", err)
		return AuthResult{Success: false, Error: "could not create account, try again"}
	}

	user := userFromRecord(rec)
	token, err := s.issueToken(user)
	if err != nil {
		log.Printf("signup: token failed: %v", err)
		return AuthResult{Success: false, Error: "could not create account, try again"}
	}
	return AuthResult{Success: true, User: &user, Token: token}
}

func (s *authService) SignIn(ctx context.Context, email, password string) AuthResult {
	rec, err := s.findByEmail(ctx, email)
	if err != nil {
		log.Printf("signin: lookup failed: %v", err)
		return AuthResult{Success: false, Error: "could not sign in, try again"}
	}
	if rec == nil {
		return AuthResult{Success: false, Error: "invalid credentials"}
	}

	hash, _ := rec["senhaHash"].(string)
	if !utils.CheckPassword(hash, password) {
		return AuthResult{Success: false, Error: "invalid credentials"}
	}
	if ativo, ok := rec["ativo"].(bool); ok && !ativo {
		return AuthResult{Success: false, Error: "account disabled"}
	}

	user := userFromRecord(rec)
	token, err := s.issueToken(user)
	if err != nil {
		log.Printf("signin: token failed: %v", err)
		return AuthResult{Success: false, Error: "could not sign in, try again"}
	}
	return AuthResult{Success: true, User: &user, Token: token}
}

// SignOut is stateless: tokens expire on their own and the client discards
// its copy.
func (s *authService) SignOut(ctx context.Context) AuthResult {
	return AuthResult{Success: true}
}

// ResetPassword replaces the account password with a generated temporary
// one. There is no mail delivery here, so the temporary password rides the
// response for the operator to hand over.
func (s *authService) ResetPassword(ctx context.Context, email string) AuthResult {
	rec, err := s.findByEmail(ctx, email)
	if err != nil {
		log.Printf("reset: lookup failed: %v", err)
		return AuthResult{Success: false, Error: "could not reset password, try again"}
	}
	if rec == nil {
		return AuthResult{Success: false, Error: "account not found"}
	}

	temp, err := utils.GenerateTemporaryPassword()
	if err != nil {
		log.Printf("reset: generate failed: %v", err)
		return AuthResult{Success: false, Error: "could not reset password, try again"}
	}
	hash, err := utils.HashPassword(temp)
	if err != nil {
		log.Printf("reset: hash failed: %v", err)
		return AuthResult{Success: false, Error: "could not reset password, try again"}
	}

	id, _ := rec["id"].(string)
	if _, _, err := s.data.Update(ctx, models.CollectionUsuarios, id, SistemaActor(), models.Record{
		"senhaHash": hash,
	}); err != nil {
		log.Printf("reset: update failed: %v", err)
		return AuthResult{Success: false, Error: "could not reset password, try again"}
	}
	return AuthResult{Success: true, TemporaryPassword: temp}
}

func (s *authService) findByEmail(ctx context.Context, email string) (models.Record, error) {
	recs, _, err := s.data.GetAll(ctx, models.CollectionUsuarios)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if e, _ := rec["email"].(string); e == email {
			return rec, nil
		}
	}
	return nil, nil
}

func (s *authService) issueToken(user models.AuthUser) (string, error) {
	now := time.Now()
	claims := models.AuthClaims{
		UserID: user.ID,
		Nome:   user.Nome,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}

func userFromRecord(rec models.Record) models.AuthUser {
	id, _ := rec["id"].(string)
	nome, _ := rec["nome"].(string)
	email, _ := rec["email"].(string)
	return models.AuthUser{ID: id, Nome: nome, Email: email}
}
