package main

import (
	"context"
	"testing"

	"github.com/tutorlink/backend/core/subject"
	"github.com/tutorlink/backend/core/user"
	inmemdb "github.com/tutorlink/backend/storage/document/inmem"
)

func setup(t *testing.T) *commandLine {
	t.Helper()
	db := inmemdb.NewDB()
	return &commandLine{
		users:    inmemdb.NewUserRepository(db),
		subjects: inmemdb.NewSubjectRepository(db),
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
}

func Test_commandLine_addtutor(t *testing.T) {
	cli := setup(t)

	origReadPassword := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("Sup€rS3cret"), nil }
	defer func() { readPasswordFunc = origReadPassword }()

	tests := []cliTest{
		{name: "no subcommand", args: []string{}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"lol"}, wantErr: errHelp},
		{name: "missing name", args: []string{"addtutor", "-email", "alan@test.cd"}, wantErr: errHelp},
		{name: "missing email", args: []string{"addtutor", "-name", "Alan Turing"}, wantErr: errHelp},
		{name: "ok", args: []string{"addtutor", "-name", "Alan Turing", "-email", "Alan@Test.CD"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"admin"}, tt.args...)
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	usr, err := cli.users.GetUserByEmail(context.Background(), "alan@test.cd")
	if err != nil {
		t.Fatalf("GetUserByEmail(): %v", err)
	}
	if usr.Role != user.RoleTutor {
		t.Errorf("role = %q, want %q", usr.Role, user.RoleTutor)
	}
	if err := usr.CheckPassword("Sup€rS3cret"); err != nil {
		t.Errorf("CheckPassword(): %v", err)
	}
}

func Test_commandLine_seedsubjects(t *testing.T) {
	cli := setup(t)

	if err := cli.run([]string{"admin", "seedsubjects"}); err != nil {
		t.Fatalf("run(): %v", err)
	}
	// re-running is harmless
	if err := cli.run([]string{"admin", "seedsubjects"}); err != nil {
		t.Fatalf("run(again): %v", err)
	}
	for _, want := range subject.DefaultSubjects {
		if _, err := cli.subjects.GetSubjectByID(context.Background(), want.ID); err != nil {
			t.Errorf("GetSubjectByID(%s): %v", want.ID, err)
		}
	}
}
