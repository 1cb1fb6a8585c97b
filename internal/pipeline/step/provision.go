package step

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	artifactmodels "onboard/internal/artifact/models"
	artifactstore "onboard/internal/artifact/store"
	employeestore "onboard/internal/employee/store"
	"onboard/internal/runlog"
	runlogstore "onboard/internal/runlog/store"
	"onboard/pkg/platform/sentinel"
)

// rolePermissions maps roles to their provisioned permission sets. Unknown
// roles get read-only repo access.
var rolePermissions = map[string][]string{
	"AI Engineer":      {"repo:read", "inference:run", "data:read"},
	"Backend Engineer": {"repo:read", "deploy:trigger"},
	"HR":               {"employee:read", "employee:write"},
}

var defaultPermissions = []string{"repo:read"}

// Collisions are resolved by regenerating the random suffix, not by scanning.
const maxUsernameAttempts = 3

// Provision creates the employee's account exactly once, then triggers
// orientation scheduling as a composed call whose log id is folded into this
// step's trace.
type Provision struct {
	base
	accounts artifactstore.AccountStore
	schedule *Schedule
}

func NewProvision(employees employeestore.Store, accounts artifactstore.AccountStore, logs runlogstore.Store, schedule *Schedule, opts ...Option) (*Provision, error) {
	if employees == nil {
		return nil, errors.New("employee store is required")
	}
	if accounts == nil {
		return nil, errors.New("account store is required")
	}
	if logs == nil {
		return nil, errors.New("run log store is required")
	}
	if schedule == nil {
		return nil, errors.New("schedule step is required")
	}
	s := &Provision{
		base:     newBase("Provision", employees, logs),
		accounts: accounts,
		schedule: schedule,
	}
	for _, opt := range opts {
		opt(&s.base)
	}
	return s, nil
}

func (s *Provision) Execute(ctx context.Context, employeeID int64) (Result, error) {
	rec := runlog.NewRecorder()
	input := map[string]any{"employee_id": employeeID}

	emp, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		return Result{}, fmt.Errorf("load employee %d: %w", employeeID, err)
	}
	rec.Record("loaded employee", map[string]any{"id": emp.ID, "name": emp.Name})

	acc, err := s.accounts.FindByEmployee(ctx, employeeID)
	switch {
	case err == nil:
		rec.Record("account already exists", map[string]any{"username": acc.Username})
	case errors.Is(err, sentinel.ErrNotFound):
		acc, err = s.create(ctx, emp.ID, emp.Name, emp.Role, rec)
		if err != nil {
			return Result{}, err
		}
	default:
		return Result{}, fmt.Errorf("find account: %w", err)
	}

	// Composed call: scheduling is not a separate orchestrator stage, its
	// log id only appears in this trace.
	sres, err := s.schedule.Execute(ctx, employeeID)
	if err != nil {
		return Result{}, fmt.Errorf("schedule orientation: %w", err)
	}
	rec.Record("orientation scheduling completed", map[string]any{"schedule_log_id": sres.LogID})

	output := map[string]any{"username": acc.Username, "permissions": acc.Permissions}
	logID, err := s.persist(ctx, employeeID, input, rec, output, runlog.StatusOK)
	if err != nil {
		return Result{}, err
	}
	return Result{LogID: logID, Output: output}, nil
}

func (s *Provision) create(ctx context.Context, employeeID int64, name, role string, rec *runlog.Recorder) (*artifactmodels.Account, error) {
	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		username, err := generateUsername(name)
		if err != nil {
			return nil, err
		}
		password, err := generatePassword()
		if err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}

		acc := &artifactmodels.Account{
			EmployeeID:   employeeID,
			Username:     username,
			PasswordHash: string(hash),
			Permissions:  permissionsFor(role),
		}
		err = s.accounts.Create(ctx, acc)
		switch {
		case err == nil:
			rec.Record("account created", map[string]any{"username": acc.Username})
			return acc, nil
		case errors.Is(err, artifactstore.ErrUsernameTaken):
			rec.Record("username collision, regenerating suffix", map[string]any{"username": username})
		case errors.Is(err, sentinel.ErrConflict):
			// A concurrent run provisioned this employee first. Its account
			// wins; reuse is idempotent success.
			existing, ferr := s.accounts.FindByEmployee(ctx, employeeID)
			if ferr != nil {
				return nil, fmt.Errorf("reread account: %w", ferr)
			}
			rec.Record("account already exists", map[string]any{"username": existing.Username})
			return existing, nil
		default:
			return nil, fmt.Errorf("create account: %w", err)
		}
	}
	return nil, fmt.Errorf("create account: username collisions exhausted %d attempts", maxUsernameAttempts)
}

func permissionsFor(role string) []string {
	if perms, ok := rolePermissions[role]; ok {
		return perms
	}
	return defaultPermissions
}

// generateUsername keeps up to 10 lowercase alphanumerics of the name (or the
// literal "user" when nothing survives) and appends a 4-hex random suffix.
func generateUsername(name string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 10 {
				break
			}
		}
	}
	base := b.String()
	if base == "" {
		base = "user"
	}

	suffix := make([]byte, 2)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("username suffix: %w", err)
	}
	return base + hex.EncodeToString(suffix), nil
}

func generatePassword() (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("temp password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
