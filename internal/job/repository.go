package job

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/apperror"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/database"
)

const jobColumns = `id, title, salary, equity, company_handle`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (Job, error) {
	var job Job
	var salary sql.NullInt64
	var equity sql.NullString
	if err := row.Scan(&job.ID, &job.Title, &salary, &equity, &job.CompanyHandle); err != nil {
		return Job{}, err
	}
	if salary.Valid {
		s := int(salary.Int64)
		job.Salary = &s
	}
	if equity.Valid {
		e := equity.String
		job.Equity = &e
	}
	return job, nil
}

// Create inserts a job and returns it with its assigned id.
// An unknown company handle fails with the driver's foreign key error.
func (r *Repository) Create(rq JobRq) (Job, error) {
	row := r.db.QueryRow(
		`INSERT INTO jobs (title, salary, equity, company_handle)
		VALUES ($1, $2, $3, $4)
		RETURNING `+jobColumns,
		rq.Title,
		rq.Salary,
		rq.Equity,
		rq.CompanyHandle,
	)
	return scanJob(row)
}

func (r *Repository) FindAll() ([]Job, error) {
	return r.query(`SELECT ` + jobColumns + ` FROM jobs ORDER BY id`)
}

// FindAllFiltered returns the jobs matching every filter that is set.
func (r *Repository) FindAllFiltered(f Filters) ([]Job, error) {
	conds := []string{}
	args := []interface{}{}
	if f.Title != nil {
		args = append(args, "%"+*f.Title+"%")
		conds = append(conds, fmt.Sprintf("title ILIKE $%d", len(args)))
	}
	if f.MinSalary != nil {
		args = append(args, *f.MinSalary)
		conds = append(conds, fmt.Sprintf("salary >= $%d", len(args)))
	}
	if f.HasEquity != nil && *f.HasEquity {
		conds = append(conds, "equity > 0")
	}

	stmt := `SELECT ` + jobColumns + ` FROM jobs`
	if len(conds) > 0 {
		stmt += ` WHERE ` + strings.Join(conds, " AND ")
	}
	stmt += ` ORDER BY id`
	return r.query(stmt, args...)
}

func (r *Repository) Get(id int) (Job, error) {
	row := r.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return Job{}, apperror.NotFound("No job: %d", id)
	}
	return job, err
}

// Update applies a partial update and returns the updated job.
// An update with no fields fails with a BadRequest.
func (r *Repository) Update(id int, rq JobRqUpdate) (Job, error) {
	update, err := database.SQLForPartialUpdate(rq.Assignments(), columns)
	if err != nil {
		return Job{}, err
	}
	stmt := `UPDATE jobs SET ` + update.SetCols + ` WHERE id = ` + update.NextPlaceholder() + ` RETURNING ` + jobColumns
	row := r.db.QueryRow(stmt, append(update.Values, id)...)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return Job{}, apperror.NotFound("No job: %d", id)
	}
	return job, err
}

func (r *Repository) Remove(id int) error {
	var deletedID int
	err := r.db.QueryRow(`DELETE FROM jobs WHERE id = $1 RETURNING id`, id).Scan(&deletedID)
	if err == sql.ErrNoRows {
		return apperror.NotFound("No job: %d", id)
	}
	return err
}

func (r *Repository) query(stmt string, args ...interface{}) ([]Job, error) {
	jobs := []Job{}
	rows, err := r.db.Query(stmt, args...)
	if err != nil {
		return jobs, err
	}
	defer rows.Close()
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return jobs, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return jobs, err
	}
	return jobs, nil
}
