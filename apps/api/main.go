package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/tutorlink/backend/apps/api/echo"
	"github.com/tutorlink/backend/core"
	"github.com/tutorlink/backend/core/app"
	"github.com/tutorlink/backend/core/auth"
	"github.com/tutorlink/backend/core/session"
	"github.com/tutorlink/backend/core/subject"
	"github.com/tutorlink/backend/core/user"
	emailsvc "github.com/tutorlink/backend/services/email"
	identitysvc "github.com/tutorlink/backend/services/identity"
	logsvc "github.com/tutorlink/backend/services/logger"
	"github.com/tutorlink/backend/storage/document/mongodb"
)

func main() {
	conf := core.NewConfig()

	// set up loggers
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewStdLogger(log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile))
	} else {
		rollbarLogger := logsvc.NewRollbarLogger(
			log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
			conf,
		)
		rollbarLogger.Enable(true)
		logger = rollbarLogger
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// set up DB
	db, err := mongodb.Open(ctx, conf)
	errAndDie(err)
	users := mongodb.NewUserRepository(db, logger)
	subjects := mongodb.NewSubjectRepository(db, logger)
	sessions := mongodb.NewSessionRepository(db, logger)

	// make sure the subject catalogue exists
	errAndDie(subject.Seed(ctx, subjects))

	// set up validation
	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	identity := identitysvc.NewService(users, logger)
	application := app.New(identity, users, subjects, sessions, logger)
	application.Bind(ctx)
	identity.Start(ctx)

	sessionSvc := session.NewService(sessions, users, subjects, application, mailSvc, logger)
	gate := auth.NewGate(identity, conf.LoginRoute)

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Conf:           conf,
		Logger:         logger,
		App:            application,
		SessionSvc:     sessionSvc,
		Identity:       identity,
		Gate:           gate,
		Validate:       validate,
		Translator:     translator,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },
	})
	go server.Start()
	logger.Info(fmt.Sprintf("API listening on %s", conf.Address()))

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: starting shutdown", sig))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := server.Stop(stopCtx); err != nil {
		logger.Error("could not stop server gracefully", err)
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
