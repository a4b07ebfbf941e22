package identitysvc

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/tutorlink/backend/core"
	"github.com/tutorlink/backend/core/user"
	inmemdb "github.com/tutorlink/backend/storage/document/inmem"
)

func newTestService(t *testing.T) (*Service, user.Repository) {
	t.Helper()
	db := inmemdb.NewDB()
	users := inmemdb.NewUserRepository(db)
	return NewService(users, nil), users
}

func newAccount(email string) user.NewAccount {
	return user.NewAccount{
		Name:     "Ada Lovelace",
		Email:    email,
		Password: "Sup€rS3cret",
		Role:     user.RoleStudent,
	}
}

func TestRegisterSignsIn(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, newAccount("ada@test.cd"))
	if err != nil {
		t.Fatalf("Register(): %v", err)
	}
	if usr.ID == "" {
		t.Error("registered user has no id")
	}
	if err := usr.CheckPassword("Sup€rS3cret"); err != nil {
		t.Errorf("CheckPassword(): %v", err)
	}

	// registration makes the new identity current
	cur, ok := svc.Current()
	if !ok || cur.ID != usr.ID {
		t.Errorf("Current() = %+v, %v; want the registered user", cur, ok)
	}
	select {
	case <-svc.Ready():
	default:
		t.Error("Ready() still blocked after registration")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, newAccount("ada@test.cd")); err != nil {
		t.Fatalf("Register(): %v", err)
	}
	_, err := svc.Register(ctx, newAccount("ada@test.cd"))
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Register(duplicate) error = %v, want ValidationError", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "email" {
		t.Errorf("ValidationError fields = %+v, want email", vErr.Fields)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, newAccount("ada@test.cd"))
	if err != nil {
		t.Fatalf("Register(): %v", err)
	}
	svc.Logout()

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{name: "ok", email: "ada@test.cd", pwd: "Sup€rS3cret"},
		{name: "email is cleaned", email: "  ADA@Test.CD ", pwd: "Sup€rS3cret"},
		{name: "unknown email", email: "ghost@test.cd", pwd: "Sup€rS3cret", wantErr: ErrAuthenticationFailed},
		{name: "wrong password", email: "ada@test.cd", pwd: "nope", wantErr: ErrAuthenticationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := svc.Login(ctx, tt.email, tt.pwd)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("Login() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				if usr.ID != reg.ID {
					t.Errorf("Login() = %+v, want %q", usr, reg.ID)
				}
				if usr.LastLogin.IsZero() {
					t.Error("LastLogin not set")
				}
			}
		})
	}
}

func TestLogoutClearsCurrent(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Register(context.Background(), newAccount("ada@test.cd")); err != nil {
		t.Fatalf("Register(): %v", err)
	}
	svc.Logout()
	if _, ok := svc.Current(); ok {
		t.Error("Current() still set after Logout")
	}
}

func TestOnChangeFiresSerially(t *testing.T) {
	svc, _ := newTestService(t)

	var events []string
	svc.OnChange(func(usr *user.User) {
		if usr != nil {
			events = append(events, "in:"+usr.Email)
		} else {
			events = append(events, "out")
		}
	})

	if _, err := svc.Register(context.Background(), newAccount("ada@test.cd")); err != nil {
		t.Fatalf("Register(): %v", err)
	}
	svc.Logout()
	if _, err := svc.Login(context.Background(), "ada@test.cd", "Sup€rS3cret"); err != nil {
		t.Fatalf("Login(): %v", err)
	}

	want := []string{"in:ada@test.cd", "out", "in:ada@test.cd"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
}

func TestStartMarksReady(t *testing.T) {
	svc, _ := newTestService(t)
	select {
	case <-svc.Ready():
		t.Fatal("Ready() closed before Start")
	default:
	}
	svc.Start(context.Background())
	select {
	case <-svc.Ready():
	default:
		t.Error("Ready() still blocked after Start")
	}
}
