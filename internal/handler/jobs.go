package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/apperror"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/job"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/middleware"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/server"
)

type JobRepository interface {
	Create(rq job.JobRq) (job.Job, error)
	FindAll() ([]job.Job, error)
	FindAllFiltered(f job.Filters) ([]job.Job, error)
	Get(id int) (job.Job, error)
	Update(id int, rq job.JobRqUpdate) (job.Job, error)
	Remove(id int) error
}

// jobIDFromRequest reads the {id} route variable. Ids that do not fit an
// int cannot exist and are reported as not found.
func jobIDFromRequest(r *http.Request) (int, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NotFound("No job: %s", raw)
	}
	return id, nil
}

func CreateJobHandler(svr server.Server, jobRepo JobRepository) http.HandlerFunc {
	return middleware.AdminAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			var rq job.JobRq
			if err := decodeJSON(w, r, &rq); err != nil {
				svr.Error(w, r, err)
				return
			}
			created, err := jobRepo.Create(rq)
			if err != nil {
				svr.Error(w, r, err)
				return
			}
			svr.JSON(w, http.StatusCreated, map[string]interface{}{"job": created})
		},
	)
}

// ListJobsHandler lists every job, or the jobs matching the title,
// minSalary and hasEquity query parameters when any is given.
func ListJobsHandler(svr server.Server, jobRepo JobRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		var (
			jobs []job.Job
			err  error
		)
		if len(query) == 0 {
			jobs, err = jobRepo.FindAll()
		} else {
			var filters job.Filters
			filters, err = job.ParseFiltersFromQuery(query)
			if err == nil {
				jobs, err = jobRepo.FindAllFiltered(filters)
			}
		}
		if err != nil {
			svr.Error(w, r, err)
			return
		}
		svr.JSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
	}
}

func GetJobHandler(svr server.Server, jobRepo JobRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := jobIDFromRequest(r)
		if err != nil {
			svr.Error(w, r, err)
			return
		}
		j, err := jobRepo.Get(id)
		if err != nil {
			svr.Error(w, r, err)
			return
		}
		svr.JSON(w, http.StatusOK, map[string]interface{}{"job": j})
	}
}

func UpdateJobHandler(svr server.Server, jobRepo JobRepository) http.HandlerFunc {
	return middleware.AdminAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			id, err := jobIDFromRequest(r)
			if err != nil {
				svr.Error(w, r, err)
				return
			}
			var rq job.JobRqUpdate
			if err := decodeJSON(w, r, &rq); err != nil {
				svr.Error(w, r, err)
				return
			}
			updated, err := jobRepo.Update(id, rq)
			if err != nil {
				svr.Error(w, r, err)
				return
			}
			svr.JSON(w, http.StatusOK, map[string]interface{}{"job": updated})
		},
	)
}

func DeleteJobHandler(svr server.Server, jobRepo JobRepository) http.HandlerFunc {
	return middleware.AdminAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			id, err := jobIDFromRequest(r)
			if err != nil {
				svr.Error(w, r, err)
				return
			}
			if err := jobRepo.Remove(id); err != nil {
				svr.Error(w, r, err)
				return
			}
			svr.JSON(w, http.StatusOK, map[string]interface{}{"deleted": id})
		},
	)
}
