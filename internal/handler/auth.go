package handler

import (
	"net/http"
	"time"

	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/apperror"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/authoriser"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/middleware"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/server"
)

const tokenTTL = 30 * 24 * time.Hour

type CredentialChecker interface {
	ValidAuthRequest(authRq *authoriser.AuthRq) authoriser.AuthRes
}

// RequestTokenHandler exchanges admin credentials for a signed token. The
// token is returned in the body and also stored in the session cookie.
func RequestTokenHandler(svr server.Server, auth CredentialChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rq authoriser.AuthRq
		if err := decodeJSON(w, r, &rq); err != nil {
			svr.Error(w, r, err)
			return
		}
		res := auth.ValidAuthRequest(&rq)
		if !res.Valid {
			logger := svr.Logger()
			logger.Info().Str("email", rq.Email).Msg("invalid credentials")
			svr.Error(w, r, apperror.Unauthorized())
			return
		}
		token, err := middleware.NewToken(svr.GetJWTSigningKey(), res.Email, res.IsAdmin, tokenTTL)
		if err != nil {
			svr.Error(w, r, err)
			return
		}
		if err := middleware.SaveTokenToSession(w, r, svr.SessionStore, token); err != nil {
			svr.Log(err, "unable to save token to session")
		}
		svr.JSON(w, http.StatusOK, map[string]interface{}{"token": token})
	}
}
