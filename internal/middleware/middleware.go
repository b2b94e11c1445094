package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/apperror"
)

const (
	SessionName      = "__jobly"
	RequestIDHeader  = "X-Request-Id"
	tokenIssuer      = "jobly"
	sessionJWTKey    = "jwt"
	bearerAuthPrefix = "Bearer "
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func LoggingMiddleware(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = ksuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Str("x-forwarded-for", r.Header.Get("x-forwarded-for")).
			Msg("req")
	})
}

func HeadersMiddleware(next http.Handler, env string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		if env != "dev" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			w.Header().Set("Referrer-Policy", "origin")
		}
		next.ServeHTTP(w, r)
	})
}

type UserJWT struct {
	IsAdmin bool   `json:"is_admin"`
	Email   string `json:"email"`
	jwt.StandardClaims
}

// NewToken signs a token for email valid for ttl.
func NewToken(jwtKey []byte, email string, isAdmin bool, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := UserJWT{
		IsAdmin: isAdmin,
		Email:   email,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    tokenIssuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtKey)
}

// SaveTokenToSession stores the token in the session cookie so browser
// clients do not have to send the Authorization header.
func SaveTokenToSession(w http.ResponseWriter, r *http.Request, sessionStore sessions.Store, token string) error {
	sess, err := sessionStore.Get(r, SessionName)
	if err != nil && sess == nil {
		return err
	}
	sess.Values[sessionJWTKey] = token
	return sess.Save(r, w)
}

func tokenFromRequest(r *http.Request, sessionStore sessions.Store) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		if !strings.HasPrefix(h, bearerAuthPrefix) {
			return "", errors.New("authorization header is not a bearer token")
		}
		return strings.TrimSpace(strings.TrimPrefix(h, bearerAuthPrefix)), nil
	}
	if sessionStore == nil {
		return "", errors.New("no credentials")
	}
	sess, err := sessionStore.Get(r, SessionName)
	if err != nil {
		return "", errors.New("could not find cookie")
	}
	tk, ok := sess.Values[sessionJWTKey].(string)
	if !ok {
		return "", errors.New("could not find jwt in session")
	}
	return tk, nil
}

// GetUserFromJWT returns the claims of the token sent with the request, read
// from the Authorization header or else from the session cookie.
func GetUserFromJWT(r *http.Request, sessionStore sessions.Store, jwtKey []byte) (*UserJWT, error) {
	tk, err := tokenFromRequest(r, sessionStore)
	if err != nil {
		return nil, err
	}
	token, err := jwt.ParseWithClaims(tk, &UserJWT{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	claims, ok := token.Claims.(*UserJWT)
	if !ok {
		return nil, errors.New("could not convert jwt claims to UserJWT")
	}
	return claims, nil
}

func UserAuthenticatedMiddleware(sessionStore sessions.Store, jwtKey []byte, next http.HandlerFunc) http.HandlerFunc {
	return authenticated(sessionStore, jwtKey, false, next)
}

func AdminAuthenticatedMiddleware(sessionStore sessions.Store, jwtKey []byte, next http.HandlerFunc) http.HandlerFunc {
	return authenticated(sessionStore, jwtKey, true, next)
}

// authenticated verifies the token once and lets the request through when
// the claims carry an email, and admin rights if requireAdmin is set.
func authenticated(sessionStore sessions.Store, jwtKey []byte, requireAdmin bool, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetUserFromJWT(r, sessionStore, jwtKey)
		if err != nil || claims.Email == "" || (requireAdmin && !claims.IsAdmin) {
			unauthorized(w)
			return
		}
		next(w, r)
	})
}

// unauthorized covers both missing credentials and missing privileges.
func unauthorized(w http.ResponseWriter) {
	e := apperror.Unauthorized()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	json.NewEncoder(w).Encode(e.Response())
}
