package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hr-approvals/internal/db"
	"hr-approvals/internal/db/repository"
	"hr-approvals/internal/domain"
)

// DirectoryFile is the YAML layout of a directory snapshot: departments, work
// schedules, and employees of one or more tenants.
type DirectoryFile struct {
	Departments []DepartmentEntry `yaml:"departments"`
	Schedules   []ScheduleEntry   `yaml:"schedules"`
	Employees   []EmployeeEntry   `yaml:"employees"`
}

type DepartmentEntry struct {
	ID        string  `yaml:"id"`
	TenantID  string  `yaml:"tenant_id"`
	Name      string  `yaml:"name"`
	ManagerID *string `yaml:"manager_id"`
}

type ScheduleEntry struct {
	ID       string   `yaml:"id"`
	TenantID string   `yaml:"tenant_id"`
	Name     string   `yaml:"name"`
	WorkDays []string `yaml:"work_days"` // MON..SUN
}

type EmployeeEntry struct {
	ID           string  `yaml:"id"`
	TenantID     string  `yaml:"tenant_id"`
	Name         string  `yaml:"name"`
	SupervisorID *string `yaml:"supervisor_id"`
	DepartmentID *string `yaml:"department_id"`
	ScheduleID   *string `yaml:"schedule_id"`
	HireDate     string  `yaml:"hire_date"` // YYYY-MM-DD
}

// ImportResult counts what an import wrote and what it found already present.
type ImportResult struct {
	Departments int
	Schedules   int
	Employees   int
	Skipped     int
}

// DirectoryImporter loads directory snapshots into the store. Rows whose ID
// already exists are skipped, so re-running an import is harmless.
type DirectoryImporter struct {
	departments domain.DepartmentRepository
	schedules   domain.ScheduleRepository
	employees   domain.EmployeeRepository
	logger      *slog.Logger
}

// NewDirectoryImporter builds an importer over the write pool.
func NewDirectoryImporter(pools *db.Pools, logger *slog.Logger) *DirectoryImporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectoryImporter{
		departments: repository.NewDepartmentRepo(pools.Write, pools.Dialect),
		schedules:   repository.NewScheduleRepo(pools.Write, pools.Dialect),
		employees:   repository.NewEmployeeRepo(pools.Write, pools.Dialect),
		logger:      logger.With("component", "directory-import"),
	}
}

// ParseDirectory decodes a YAML snapshot and validates every entry.
func ParseDirectory(r io.Reader) (*DirectoryFile, error) {
	var f DirectoryFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode directory: %w", err)
	}
	for i, d := range f.Departments {
		if d.ID == "" || d.TenantID == "" || d.Name == "" {
			return nil, fmt.Errorf("departments[%d]: id, tenant_id and name are required", i)
		}
	}
	for i, s := range f.Schedules {
		if s.ID == "" || s.TenantID == "" {
			return nil, fmt.Errorf("schedules[%d]: id and tenant_id are required", i)
		}
		if _, err := parseWorkDays(s.WorkDays); err != nil {
			return nil, fmt.Errorf("schedules[%d]: %w", i, err)
		}
	}
	for i, e := range f.Employees {
		if e.ID == "" || e.TenantID == "" || e.Name == "" {
			return nil, fmt.Errorf("employees[%d]: id, tenant_id and name are required", i)
		}
		if _, err := time.Parse(time.DateOnly, e.HireDate); err != nil {
			return nil, fmt.Errorf("employees[%d]: hire_date must be YYYY-MM-DD", i)
		}
	}
	return &f, nil
}

// ImportFile reads and imports the snapshot at path.
func (im *DirectoryImporter) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open directory file: %w", err)
	}
	defer fh.Close()

	f, err := ParseDirectory(fh)
	if err != nil {
		return nil, err
	}
	return im.Import(ctx, f)
}

// Import writes schedules, then departments, then employees.
func (im *DirectoryImporter) Import(ctx context.Context, f *DirectoryFile) (*ImportResult, error) {
	var res ImportResult

	for _, s := range f.Schedules {
		days, err := parseWorkDays(s.WorkDays)
		if err != nil {
			return &res, fmt.Errorf("schedule %s: %w", s.ID, err)
		}
		_, err = im.schedules.Create(ctx, &domain.WorkSchedule{
			ID: s.ID, TenantID: s.TenantID, Name: s.Name, WorkDays: days,
		})
		if ok, err := im.counted(err, "schedule", s.ID); err != nil {
			return &res, err
		} else if ok {
			res.Schedules++
		} else {
			res.Skipped++
		}
	}

	for _, d := range f.Departments {
		_, err := im.departments.Create(ctx, &domain.Department{
			ID: d.ID, TenantID: d.TenantID, Name: d.Name, ManagerID: d.ManagerID,
		})
		if ok, err := im.counted(err, "department", d.ID); err != nil {
			return &res, err
		} else if ok {
			res.Departments++
		} else {
			res.Skipped++
		}
	}

	for _, e := range f.Employees {
		hire, err := time.Parse(time.DateOnly, e.HireDate)
		if err != nil {
			return &res, fmt.Errorf("employee %s: hire_date must be YYYY-MM-DD", e.ID)
		}
		_, err = im.employees.Create(ctx, &domain.Employee{
			ID:           e.ID,
			TenantID:     e.TenantID,
			Name:         e.Name,
			SupervisorID: e.SupervisorID,
			DepartmentID: e.DepartmentID,
			ScheduleID:   e.ScheduleID,
			HireDate:     hire,
		})
		if ok, err := im.counted(err, "employee", e.ID); err != nil {
			return &res, err
		} else if ok {
			res.Employees++
		} else {
			res.Skipped++
		}
	}

	im.logger.InfoContext(ctx, "directory imported",
		"departments", res.Departments,
		"schedules", res.Schedules,
		"employees", res.Employees,
		"skipped", res.Skipped)
	return &res, nil
}

// counted reports whether a create wrote a row. A conflict means the row is
// already there.
func (im *DirectoryImporter) counted(err error, kind, id string) (bool, error) {
	if err == nil {
		return true, nil
	}
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		im.logger.Debug("already present", "kind", kind, "id", id)
		return false, nil
	}
	return false, fmt.Errorf("create %s %s: %w", kind, id, err)
}

var weekdayNames = map[string]time.Weekday{
	"SUN": time.Sunday,
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
}

// parseWorkDays turns day names into the weekday flags of a schedule. An
// empty list yields the Monday to Friday default.
func parseWorkDays(names []string) ([7]bool, error) {
	if len(names) == 0 {
		return domain.DefaultWorkSchedule().WorkDays, nil
	}
	var days [7]bool
	for _, n := range names {
		key := strings.ToUpper(strings.TrimSpace(n))
		if len(key) > 3 {
			key = key[:3]
		}
		wd, ok := weekdayNames[key]
		if !ok {
			return days, fmt.Errorf("unknown work day %q", n)
		}
		days[wd] = true
	}
	return days, nil
}
