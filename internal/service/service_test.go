package service

import (
	"path/filepath"
	"testing"

	"familietask/internal/database"
	"familietask/internal/models"
	"familietask/internal/repository"
)

// testEnv wires the full service stack against a throwaway SQLite
// database for integration-style service tests.
type testEnv struct {
	db           *database.DB
	userRepo     *repository.UserRepository
	familyRepo   *repository.FamilyRepository
	auth         *AuthService
	families     *FamilyService
	joinRequests *JoinRequestService
	tasks        *TaskService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "service_test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	joinRepo := repository.NewJoinRequestRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	return &testEnv{
		db:           db,
		userRepo:     userRepo,
		familyRepo:   familyRepo,
		auth:         NewAuthService(userRepo),
		families:     NewFamilyService(familyRepo, userRepo),
		joinRequests: NewJoinRequestService(joinRepo, familyRepo),
		tasks:        NewTaskService(taskRepo, familyRepo),
	}
}

// signup registers a user and logs them in, returning the user and a
// live session.
func (env *testEnv) signup(t *testing.T, username, email string) (*models.User, *models.Session) {
	t.Helper()

	user, err := env.auth.Register(username, email, "password123")
	if err != nil {
		t.Fatalf("Register(%s) error = %v", email, err)
	}

	session, _, err := env.auth.Login(email, "password123")
	if err != nil {
		t.Fatalf("Login(%s) error = %v", email, err)
	}
	return user, session
}

// createFamily creates a family owned by the user and reloads the
// session so its active family is populated.
func (env *testEnv) createFamily(t *testing.T, session *models.Session, ownerID int64, name string) (*models.Family, *models.Session) {
	t.Helper()

	family, err := env.families.CreateFamily(session.ID, ownerID, name)
	if err != nil {
		t.Fatalf("CreateFamily(%s) error = %v", name, err)
	}

	reloaded, err := env.userRepo.GetSession(session.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	return family, reloaded
}

// joinFamily walks a user through the join-request flow and into
// membership.
func (env *testEnv) joinFamily(t *testing.T, userID int64, joinCode string, approverID int64) {
	t.Helper()

	request, err := env.joinRequests.Submit(userID, joinCode)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := env.joinRequests.Respond(approverID, request.ID, "accept"); err != nil {
		t.Fatalf("Respond(accept) error = %v", err)
	}
}
