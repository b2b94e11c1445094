package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/apperror"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/authoriser"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/config"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/database"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/job"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/middleware"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/server"
)

var testJWTKey = []byte("handler-test-key")

const (
	adminEmail    = "admin@jobly.test"
	adminPassword = "password"
)

// memJobRepo keeps jobs in memory and only knows the companies it was
// created with, like the jobs table foreign key.
type memJobRepo struct {
	mu        sync.Mutex
	nextID    int
	jobs      map[int]job.Job
	companies map[string]bool
}

func newMemJobRepo(companies ...string) *memJobRepo {
	r := &memJobRepo{nextID: 1, jobs: map[int]job.Job{}, companies: map[string]bool{}}
	for _, c := range companies {
		r.companies[c] = true
	}
	return r
}

func (r *memJobRepo) Create(rq job.JobRq) (job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.companies[rq.CompanyHandle] {
		return job.Job{}, fmt.Errorf(`insert or update on table "jobs" violates foreign key constraint "jobs_company_handle_fkey"`)
	}
	j := job.Job{ID: r.nextID, Title: rq.Title, Salary: rq.Salary, Equity: rq.Equity, CompanyHandle: rq.CompanyHandle}
	r.jobs[j.ID] = j
	r.nextID++
	return j, nil
}

func (r *memJobRepo) FindAll() ([]job.Job, error) {
	return r.FindAllFiltered(job.Filters{})
}

func (r *memJobRepo) FindAllFiltered(f job.Filters) ([]job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []job.Job{}
	for _, j := range r.jobs {
		if f.Title != nil && !strings.Contains(strings.ToLower(j.Title), strings.ToLower(*f.Title)) {
			continue
		}
		if f.MinSalary != nil && (j.Salary == nil || *j.Salary < *f.MinSalary) {
			continue
		}
		if f.HasEquity != nil && *f.HasEquity {
			if j.Equity == nil {
				continue
			}
			if e, err := strconv.ParseFloat(*j.Equity, 64); err != nil || e <= 0 {
				continue
			}
		}
		out = append(out, j)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (r *memJobRepo) Get(id int) (job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return job.Job{}, apperror.NotFound("No job: %d", id)
	}
	return j, nil
}

func (r *memJobRepo) Update(id int, rq job.JobRqUpdate) (job.Job, error) {
	assignments := rq.Assignments()
	if _, err := database.SQLForPartialUpdate(assignments, nil); err != nil {
		return job.Job{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return job.Job{}, apperror.NotFound("No job: %d", id)
	}
	for _, a := range assignments {
		switch a.Field {
		case job.FieldTitle:
			j.Title = a.Value.(string)
		case job.FieldSalary:
			j.Salary = nil
			if v, ok := a.Value.(int); ok {
				j.Salary = &v
			}
		case job.FieldEquity:
			j.Equity = nil
			if v, ok := a.Value.(string); ok {
				j.Equity = &v
			}
		}
	}
	r.jobs[id] = j
	return j, nil
}

func (r *memJobRepo) Remove(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return apperror.NotFound("No job: %d", id)
	}
	delete(r.jobs, id)
	return nil
}

type testEnv struct {
	t       *testing.T
	handler http.Handler
	repo    *memJobRepo
	logs    *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	var logs bytes.Buffer
	svr := server.NewServer(
		config.Config{Env: "dev", JwtSigningKey: testJWTKey},
		nil,
		mux.NewRouter(),
		zerolog.New(&logs),
		sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef")),
	)
	repo := newMemJobRepo("c1", "c2", "c3")
	RegisterRoutes(svr, repo, authoriser.Authoriser{AdminEmail: adminEmail, AdminPasswordHash: hash})
	return &testEnv{t: t, handler: svr.Handler(), repo: repo, logs: &logs}
}

func (e *testEnv) token(isAdmin bool) string {
	e.t.Helper()
	tk, err := middleware.NewToken(testJWTKey, "u1@jobly.test", isAdmin, time.Hour)
	require.NoError(e.t, err)
	return tk
}

func (e *testEnv) do(method, target, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var payload bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			payload.WriteString(b)
		default:
			require.NoError(e.t, json.NewEncoder(&payload).Encode(b))
		}
	}
	req := httptest.NewRequest(method, target, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seed() {
	e.t.Helper()
	admin := e.token(true)
	for _, body := range []string{
		`{"title":"J1","salary":1,"equity":"0.1","companyHandle":"c1"}`,
		`{"title":"J2","salary":100000,"equity":"0","companyHandle":"c1"}`,
		`{"title":"J3","salary":70000,"equity":null,"companyHandle":"c2"}`,
		`{"title":"Senior j4","salary":null,"equity":null,"companyHandle":"c3"}`,
	} {
		require.Equal(e.t, http.StatusCreated, e.do(http.MethodPost, "/jobs", admin, body).Code)
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func titles(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	var body struct {
		Jobs []job.Job `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	out := []string{}
	for _, j := range body.Jobs {
		out = append(out, j.Title)
	}
	return out
}

func TestCreateJob(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/jobs", e.token(true), `{"title":"Music Teacher","salary":500000,"equity":"0","companyHandle":"c1"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"job":{"id":1,"title":"Music Teacher","salary":500000,"equity":"0","companyHandle":"c1"}}`, w.Body.String())
}

func TestCreateJobRejected(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name  string
		token string
		body  string
		want  int
	}{
		{"anon", "", `{"title":"new","companyHandle":"c1"}`, http.StatusUnauthorized},
		{"not admin", e.token(false), `{"title":"new","companyHandle":"c1"}`, http.StatusUnauthorized},
		{"missing title", e.token(true), `{"companyHandle":"c1"}`, http.StatusBadRequest},
		{"empty title", e.token(true), `{"title":"","companyHandle":"c1"}`, http.StatusBadRequest},
		{"negative salary", e.token(true), `{"title":"new","salary":-1,"companyHandle":"c1"}`, http.StatusBadRequest},
		{"salary not a number", e.token(true), `{"title":"new","salary":"lots","companyHandle":"c1"}`, http.StatusBadRequest},
		{"equity above one", e.token(true), `{"title":"new","equity":"1.5","companyHandle":"c1"}`, http.StatusBadRequest},
		{"equity not decimal", e.token(true), `{"title":"new","equity":"half","companyHandle":"c1"}`, http.StatusBadRequest},
		{"equity just above one", e.token(true), `{"title":"new","equity":"1.00000000000000001","companyHandle":"c1"}`, http.StatusBadRequest},
		{"equity rounds to one", e.token(true), `{"title":"new","equity":"1.0000000000000001","companyHandle":"c1"}`, http.StatusBadRequest},
		{"unknown field", e.token(true), `{"title":"new","companyHandle":"c1","bad":"data"}`, http.StatusBadRequest},
		{"handle too long", e.token(true), `{"title":"new","companyHandle":"` + strings.Repeat("c", 26) + `"}`, http.StatusBadRequest},
		{"empty body", e.token(true), ``, http.StatusBadRequest},
		{"unknown company", e.token(true), `{"title":"new","companyHandle":"nope"}`, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/jobs", tt.token, tt.body)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	all, _ := e.repo.FindAll()
	assert.Empty(t, all)
}

func TestCreateJobValidationMessages(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/jobs", e.token(true), `{"salary":-5,"equity":"2"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	msgs := decode(t, w)["error"].(map[string]interface{})["message"].([]interface{})
	assert.Len(t, msgs, 4)
	assert.Contains(t, msgs, `instance requires property "title"`)
	assert.Contains(t, msgs, "instance.salary must be greater than or equal to 0")
	assert.Contains(t, msgs, "instance.equity must be a decimal between 0 and 1")
	assert.Contains(t, msgs, `instance requires property "companyHandle"`)
}

func TestListJobs(t *testing.T) {
	e := newTestEnv(t)
	e.seed()

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"J1", "J2", "J3", "Senior j4"}},
		{"?minSalary=70000", []string{"J2", "J3"}},
		{"?hasEquity=true", []string{"J1"}},
		{"?hasEquity=false", []string{"J1", "J2", "J3", "Senior j4"}},
		{"?title=j", []string{"J1", "J2", "J3", "Senior j4"}},
		{"?title=senior", []string{"Senior j4"}},
		{"?title=j&minSalary=1&hasEquity=true", []string{"J1"}},
		{"?title=nope", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := e.do(http.MethodGet, "/jobs"+tt.query, "", nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, titles(t, w))
		})
	}
}

func TestListJobsBadQuery(t *testing.T) {
	e := newTestEnv(t)

	for _, q := range []string{"?minSalary=lots", "?minSalary=-1", "?title=", "?nope=1", "?companyHandle=c1", "?minSalary=3000000000"} {
		t.Run(q, func(t *testing.T) {
			w := e.do(http.MethodGet, "/jobs"+q, "", nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetJob(t *testing.T) {
	e := newTestEnv(t)
	e.seed()

	w := e.do(http.MethodGet, "/jobs/3", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"job":{"id":3,"title":"J3","salary":70000,"equity":null,"companyHandle":"c2"}}`, w.Body.String())

	w = e.do(http.MethodGet, "/jobs/0", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":{"message":"No job: 0","status":404}}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/jobs/abc", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/jobs/99999999999999999999", "", nil).Code)
}

func TestUpdateJob(t *testing.T) {
	e := newTestEnv(t)
	e.seed()

	w := e.do(http.MethodPatch, "/jobs/1", e.token(true), `{"title":"J1-new","salary":null}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"job":{"id":1,"title":"J1-new","salary":null,"equity":"0.1","companyHandle":"c1"}}`, w.Body.String())

	w = e.do(http.MethodGet, "/jobs/1", "", nil)
	assert.JSONEq(t, `{"job":{"id":1,"title":"J1-new","salary":null,"equity":"0.1","companyHandle":"c1"}}`, w.Body.String())
}

func TestUpdateJobRejected(t *testing.T) {
	e := newTestEnv(t)
	e.seed()

	tests := []struct {
		name  string
		token string
		path  string
		body  string
		want  int
	}{
		{"anon", "", "/jobs/1", `{"title":"x"}`, http.StatusUnauthorized},
		{"not admin", e.token(false), "/jobs/1", `{"title":"x"}`, http.StatusUnauthorized},
		{"bad data", e.token(true), "/jobs/1", `{"bad":"data"}`, http.StatusBadRequest},
		{"company handle", e.token(true), "/jobs/1", `{"companyHandle":"c2"}`, http.StatusBadRequest},
		{"id", e.token(true), "/jobs/1", `{"id":5}`, http.StatusBadRequest},
		{"null title", e.token(true), "/jobs/1", `{"title":null}`, http.StatusBadRequest},
		{"empty title", e.token(true), "/jobs/1", `{"title":""}`, http.StatusBadRequest},
		{"negative salary", e.token(true), "/jobs/1", `{"salary":-1}`, http.StatusBadRequest},
		{"equity just above one", e.token(true), "/jobs/1", `{"equity":"1.00000000000000001"}`, http.StatusBadRequest},
		{"no data", e.token(true), "/jobs/1", `{}`, http.StatusBadRequest},
		{"missing", e.token(true), "/jobs/0", `{"title":"x"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPatch, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	j, err := e.repo.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "J1", j.Title)
}

func TestDeleteJob(t *testing.T) {
	e := newTestEnv(t)
	e.seed()

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodDelete, "/jobs/1", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodDelete, "/jobs/1", e.token(false), nil).Code)

	w := e.do(http.MethodDelete, "/jobs/1", e.token(true), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":1}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/jobs/1", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/jobs/1", e.token(true), nil).Code)
}

func TestRequestToken(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/auth/token", "", map[string]string{"email": adminEmail, "password": adminPassword})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)
	assert.NotEmpty(t, w.Result().Cookies())

	w = e.do(http.MethodPost, "/jobs", token, `{"title":"from token","companyHandle":"c1"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRequestTokenRejected(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"wrong password", `{"email":"admin@jobly.test","password":"nope"}`, http.StatusUnauthorized},
		{"wrong email", `{"email":"u1@jobly.test","password":"password"}`, http.StatusUnauthorized},
		{"not an email", `{"email":"admin","password":"password"}`, http.StatusBadRequest},
		{"missing password", `{"email":"admin@jobly.test"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.do(http.MethodPost, "/auth/token", "", tt.body).Code)
		})
	}
	assert.Contains(t, e.logs.String(), "invalid credentials")
}

func TestEquityBounds(t *testing.T) {
	e := newTestEnv(t)
	admin := e.token(true)

	for _, equity := range []string{"0", "0.0", ".5", "1", "1.0", "1.00000000000000000000"} {
		t.Run(equity, func(t *testing.T) {
			w := e.do(http.MethodPost, "/jobs", admin, map[string]interface{}{"title": "eq", "equity": equity, "companyHandle": "c1"})
			assert.Equal(t, http.StatusCreated, w.Code)
		})
	}
}

func TestSessionCookieAuthorisesAdminRoutes(t *testing.T) {
	e := newTestEnv(t)

	login := e.do(http.MethodPost, "/auth/token", "", map[string]string{"email": adminEmail, "password": adminPassword})
	require.Equal(t, http.StatusOK, login.Code)

	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(`{"title":"cookie","companyHandle":"c1"}`))
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}
