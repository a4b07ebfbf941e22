package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorlink/backend/core"
	"github.com/tutorlink/backend/core/app"
	"github.com/tutorlink/backend/core/session"
)

type sessionApi struct {
	conf     *core.Config
	app      *app.App
	svc      *session.Service
	validate *validator.Validate
}

func registerSessionAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	conf *core.Config,
	application *app.App,
	svc *session.Service,
	validate *validator.Validate,
) {
	api := sessionApi{
		conf:     conf,
		app:      application,
		svc:      svc,
		validate: validate,
	}

	// all session endpoints require authentication
	ag := g.Group("", jwt)

	ag.GET("/users", api.listUsers)
	ag.GET("/tutors", api.listTutors)
	ag.GET("/subjects", api.listSubjects)

	sg := ag.Group("/sessions")
	sg.GET("", api.listSessions)
	sg.POST("", api.createRequest)
	sg.POST("/global", api.createGlobal, coordinatorMiddleware())
	sg.PUT("/:id/status", api.setStatus)
	sg.PUT("/:id", api.updateDetails)
	sg.POST("/:id/attendees", api.addAttendee)
	sg.PUT("/:id/payment", api.setPaymentStatus, tutorMiddleware())

	ag.PUT("/tutors/:id/subjects", api.assignTutorSubjects, coordinatorMiddleware())
}

// Handlers

func (api *sessionApi) listUsers(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.app.AllUsers())
}

func (api *sessionApi) listTutors(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.app.AllTutors())
}

func (api *sessionApi) listSubjects(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.app.AllSubjects())
}

// listSessions serves the joined session views. An optional "view" query
// parameter selects one of the dashboard lists, scoped to the caller.
func (api *sessionApi) listSessions(ctx echo.Context) error {
	views := api.app.AllSessions()
	if views == nil {
		views = session.Views{}
	}

	view := ctx.QueryParam("view")
	if view == "" {
		return ctx.JSON(http.StatusOK, views)
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	now := time.Now()

	switch view {
	case "upcoming":
		views = views.UpcomingForStudent(claims.Subject, now)
	case "past":
		views = views.PastForStudent(claims.Subject, now)
	case "joinable":
		views = views.JoinableGlobal(claims.Subject, now)
	case "tutor-pending":
		views = views.PendingForTutor(claims.Subject)
	case "tutor-upcoming":
		views = views.UpcomingForTutor(claims.Subject, now)
	case "tutor-past":
		views = views.PastForTutor(claims.Subject, now)
	case "global-upcoming":
		views = views.UpcomingGlobal(now)
	case "global-past":
		views = views.PastGlobal(now)
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "view", Error: "unknown view"})
	}
	return ctx.JSON(http.StatusOK, views)
}

// createRequest creates a personal tutoring request on behalf of the
// authenticated student.
func (api *sessionApi) createRequest(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data session.NewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}
	data.StudentID = claims.Subject
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.CreateRequest(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating session request")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *sessionApi) createGlobal(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data session.NewGlobalSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGlobalSession")
	}
	data.CreatedBy = claims.Subject
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.CreateGlobal(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating global session")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *sessionApi) setStatus(ctx echo.Context) error {
	var data StatusUpdateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdateRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.SetStatus(ctx.Request().Context(), ctx.Param("id"), data.Status); err != nil {
		return errors.Wrap(err, "setting session status")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sessionApi) updateDetails(ctx echo.Context) error {
	var data session.DetailsUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DetailsUpdate")
	}

	if err := api.svc.UpdateDetails(ctx.Request().Context(), ctx.Param("id"), data); err != nil {
		return errors.Wrap(err, "updating session details")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// addAttendee joins the authenticated student to a global session.
func (api *sessionApi) addAttendee(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.AddAttendee(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		return errors.Wrap(err, "joining session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sessionApi) setPaymentStatus(ctx echo.Context) error {
	var data PaymentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PaymentRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	id := ctx.Param("id")
	if err := api.svc.SetPaymentStatus(ctx.Request().Context(), id, *data.Paid); err != nil {
		return errors.Wrap(err, "setting payment status")
	}
	rec, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	return ctx.JSON(http.StatusOK, PaymentResponse{
		Paid:   rec.Paid,
		Amount: session.PaymentAmount(rec.DurationMinutes, api.conf.TutorHourlyRate),
	})
}

func (api *sessionApi) assignTutorSubjects(ctx echo.Context) error {
	var data TutorSubjectsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TutorSubjectsRequest")
	}
	if err := api.svc.AssignTutorSubjects(ctx.Request().Context(), ctx.Param("id"), data.SubjectIDs); err != nil {
		return errors.Wrap(err, "assigning tutor subjects")
	}
	return ctx.NoContent(http.StatusNoContent)
}
