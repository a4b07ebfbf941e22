package main

import (
	"context"
	"log"
	"os"

	"github.com/tutorlink/backend/core"
	logsvc "github.com/tutorlink/backend/services/logger"
	"github.com/tutorlink/backend/storage/document/mongodb"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	appLogger := logsvc.NewStdLogger(logger)

	// set up DB
	ctx := context.Background()
	db, err := mongodb.Open(ctx, conf)
	errAndDie(err)

	// start CLI
	cli := commandLine{
		users:    mongodb.NewUserRepository(db, appLogger),
		subjects: mongodb.NewSubjectRepository(db, appLogger),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
