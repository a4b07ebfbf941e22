package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/tutorlink/backend/core"
	"github.com/tutorlink/backend/core/session"
	"github.com/tutorlink/backend/core/subject"
	"github.com/tutorlink/backend/core/user"
	identitysvc "github.com/tutorlink/backend/services/identity"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shut down the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator func(validator.FieldError) string, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = translator(vErr)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *session.InvalidTransitionError:
			code = http.StatusConflict
			message = origErr.Error()
		default:
			switch cause {
			case session.ErrInvalidReference, session.ErrNotGlobal, identitysvc.ErrAuthenticationFailed:
				code = http.StatusBadRequest
				message = cause.Error()
			case session.ErrCapacityExceeded:
				code = http.StatusConflict
				message = cause.Error()
			case session.ErrNotFound, user.ErrNotFound, subject.ErrNotFound:
				code = http.StatusNotFound
				message = cause.Error()
			default:
				if core.IsStoreUnavailable(err) {
					code = http.StatusServiceUnavailable
					message = "data store unavailable"
					logger.Error("store unavailable", err)
					break
				}
				// any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
