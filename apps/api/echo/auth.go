package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
)

const (
	contextTokenKey = "memberToken"
	contextActorKey = "actor"
	audience        = "Kazi"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func NewClaims(conf *core.Config, m member.Member) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   m.ID,
			Audience:  audience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: m.Email,
		Role:  m.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the member Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// gateMiddleware resolves the verified caller into a member.Actor, stored in both the echo and request contexts.
// The role carried by the token is not trusted: permissions come from the stored member.
func gateMiddleware(svc *member.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			actor, err := svc.Resolve(ctx.Request().Context(), claims.Email)
			if err != nil {
				return errors.Wrap(err, "resolving actor")
			}

			ctx.Set(contextActorKey, actor)
			req := ctx.Request()
			ctx.SetRequest(req.WithContext(member.NewContext(req.Context(), actor)))
			return next(ctx)
		}
	}
}

func getContextActor(ctx echo.Context) (member.Actor, error) {
	if actor, ok := ctx.Get(contextActorKey).(member.Actor); ok {
		return actor, nil
	}
	if actor, ok := member.ActorFromContext(ctx.Request().Context()); ok {
		return actor, nil
	}
	return member.Actor{}, errUnauthorized
}
