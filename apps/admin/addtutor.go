package main

import (
	"context"
	"time"

	"github.com/tutorlink/backend/core"
	"github.com/tutorlink/backend/core/subject"
	"github.com/tutorlink/backend/core/user"
)

// addTutor creates a tutor account directly in the store, skipping
// self-service registration.
func (cli *commandLine) addTutor(name, email, pwd string) error {
	ctx := context.Background()
	now := time.Now().UTC()
	usr := user.User{
		Name:      core.CleanString(name),
		Email:     core.CleanString(email, true /* lower */),
		Role:      user.RoleTutor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err := cli.users.CreateUser(ctx, usr)
	return err
}

// seedSubjects ensures the default subject catalogue exists.
func (cli *commandLine) seedSubjects() error {
	return subject.Seed(context.Background(), cli.subjects)
}
