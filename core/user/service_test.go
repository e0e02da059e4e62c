package user_test

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/kymawa/ratiba/core"
	"github.com/kymawa/ratiba/core/user"
	inmemdb "github.com/kymawa/ratiba/storage/database/inmem"
	testutil "github.com/kymawa/ratiba/tests"
)

func setup(t *testing.T) (*user.Service, user.Repository, *validator.Validate) {
	t.Helper()
	db := inmemdb.Open()
	repo := inmemdb.NewUserRepository(db)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)

	return user.NewService(repo), repo, validate
}

func TestService_Create(t *testing.T) {
	svc, _, validate := setup(t)

	nu := user.NewUser{Name: " Ada Lovelace ", Email: "ADA@Test.CD", Roles: []string{user.RoleStudent}}
	if err := nu.Validate(validate, svc); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if nu.Name != "Ada Lovelace" || nu.Email != "ada@test.cd" {
		t.Errorf("Validate() did not clean inputs: %q %q", nu.Name, nu.Email)
	}

	usr, err := svc.Create(nu)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if usr.ID == "" || !usr.IsActive {
		t.Errorf("Create() = %+v; want a persisted active user", usr)
	}
	if !usr.IsStudent() || usr.IsTeacher() {
		t.Errorf("roles = %v; want student only", usr.Roles)
	}

	// duplicate email is a validation error
	dup := user.NewUser{Name: "Other", Email: "ada@test.cd"}
	if err := dup.Validate(validate, svc); !core.IsValidationError(err) {
		t.Errorf("Validate() error = %v; want ValidationError for duplicate email", err)
	}

	// unknown role fails the allroles tag
	bad := user.NewUser{Name: "Other", Email: "other@test.cd", Roles: []string{"janitor:"}}
	err = bad.Validate(validate, svc)
	if _, ok := err.(validator.ValidationErrors); !ok {
		t.Errorf("Validate() error = %v; want validator.ValidationErrors", err)
	}
}

func TestService_GetByEmail(t *testing.T) {
	svc, repo, _ := setup(t)
	testutil.CreateUser(t, repo, "Ada", "ada@test.cd", []string{user.RoleStudent}, "")

	usr, err := svc.GetByEmail("  ADA@test.cd ")
	if err != nil {
		t.Fatalf("GetByEmail() failed: %v", err)
	}
	if usr.Email != "ada@test.cd" {
		t.Errorf("Email = %s; want ada@test.cd", usr.Email)
	}

	if _, err = svc.GetByEmail("ghost@test.cd"); err != user.ErrNotFound {
		t.Errorf("GetByEmail() error = %v; want ErrNotFound", err)
	}
}
