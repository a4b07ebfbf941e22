package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tutorlink/backend/core"
	"github.com/tutorlink/backend/core/user"
)

const contextTokenKey = "userToken"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role,omitempty"`
	IsStudent     bool   `json:"is_student,omitempty"`     // -> STUDENT DASHBOARD
	IsTutor       bool   `json:"is_tutor,omitempty"`       // -> TUTOR DASHBOARD
	IsCoordinator bool   `json:"is_coordinator,omitempty"` // -> COORDINATOR DASHBOARD
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// GetUserClaims builds the claims encoded in a user's token.
func GetUserClaims(conf *core.Config, usr user.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:          usr.Name,
		Email:         usr.Email,
		Role:          usr.Role,
		IsStudent:     usr.IsStudent(),
		IsTutor:       usr.IsTutor(),
		IsCoordinator: usr.IsCoordinator(),
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(conf.SecretKey))
}

// getContextClaims returns the authenticated Claims set by the JWT middleware.
func getContextClaims(ctx echo.Context) (*Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return claims, nil
		}
	}
	return nil, errUnauthorized
}

// coordinatorMiddleware restricts a route to coordinators.
func coordinatorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if !claims.IsCoordinator {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// tutorMiddleware restricts a route to tutors.
func tutorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if !claims.IsTutor {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// landingRoute is the per-role dashboard route reported on login.
func landingRoute(role string) string {
	switch role {
	case user.RoleTutor:
		return "/tutor"
	case user.RoleCoordinator:
		return "/coordinator"
	default:
		return "/student"
	}
}
