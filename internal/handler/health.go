package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/server"
)

const pingTimeout = 2 * time.Second

func HealthHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if svr.Conn == nil || svr.Conn.PingContext(ctx) != nil {
			svr.JSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "unavailable"})
			return
		}
		svr.JSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
	}
}
