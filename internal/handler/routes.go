package handler

import (
	"net/http"

	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/server"
)

// RegisterRoutes wires every endpoint of the API onto svr.
func RegisterRoutes(svr server.Server, jobRepo JobRepository, auth CredentialChecker) {
	svr.RegisterRoute("/health", HealthHandler(svr), []string{http.MethodGet})
	svr.RegisterRoute("/auth/token", RequestTokenHandler(svr, auth), []string{http.MethodPost})

	svr.RegisterRoute("/jobs", CreateJobHandler(svr, jobRepo), []string{http.MethodPost})
	svr.RegisterRoute("/jobs", ListJobsHandler(svr, jobRepo), []string{http.MethodGet})
	svr.RegisterRoute("/jobs/{id:[0-9]+}", GetJobHandler(svr, jobRepo), []string{http.MethodGet})
	svr.RegisterRoute("/jobs/{id:[0-9]+}", UpdateJobHandler(svr, jobRepo), []string{http.MethodPatch})
	svr.RegisterRoute("/jobs/{id:[0-9]+}", DeleteJobHandler(svr, jobRepo), []string{http.MethodDelete})
}
