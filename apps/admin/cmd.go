package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/tutorlink/backend/core/subject"
	"github.com/tutorlink/backend/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	users    user.Repository
	subjects subject.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  addtutor -name NAME -email EMAIL - create a tutor account")
	fmt.Println("  seedsubjects - create the default subject catalogue")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addTutorCmd := flag.NewFlagSet("addtutor", flag.ExitOnError)
	addTutorName := addTutorCmd.String("name", "", "The tutor's display name.")
	addTutorEmail := addTutorCmd.String("email", "", "The tutor's email. The password will be prompted next.")

	switch args[1] {
	case "addtutor":
		if err := addTutorCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addTutorName == "" || *addTutorEmail == "" {
			addTutorCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addTutorCmd.Usage()
			return errHelp
		}
		return cli.addTutor(*addTutorName, *addTutorEmail, string(pwd))
	case "seedsubjects":
		return cli.seedSubjects()
	default:
		cli.printUsage()
		return errHelp
	}
}
