package authoriser

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/config"
)

type Authoriser struct {
	AdminEmail        string
	AdminPasswordHash []byte
}

type AuthRq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthRes struct {
	Email   string
	IsAdmin bool
	Valid   bool
}

func NewAuthoriser(cfg config.Config) Authoriser {
	return Authoriser{
		AdminEmail:        cfg.AdminEmail,
		AdminPasswordHash: []byte(cfg.AdminPasswordHash),
	}
}

// ValidAuthRequest checks the credentials against the configured admin
// account. With no admin configured every request is invalid.
func (a Authoriser) ValidAuthRequest(authRq *AuthRq) AuthRes {
	if a.AdminEmail == "" || len(a.AdminPasswordHash) == 0 {
		return AuthRes{}
	}
	if subtle.ConstantTimeCompare([]byte(authRq.Email), []byte(a.AdminEmail)) != 1 {
		return AuthRes{}
	}
	if err := bcrypt.CompareHashAndPassword(a.AdminPasswordHash, []byte(authRq.Password)); err != nil {
		return AuthRes{}
	}
	return AuthRes{Email: authRq.Email, Valid: true, IsAdmin: true}
}
