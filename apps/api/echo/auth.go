package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
)

const (
	contextTokenKey = "userToken"
	tokenLifetime   = 1 * time.Hour
)

// Claims represents the authorization claims transmitted via a JWT issued by the host platform.
type Claims struct {
	jwt.StandardClaims
	UserID         int   `json:"uid"`
	IsAdmin        bool  `json:"is_admin,omitempty"`
	ManagedCourses []int `json:"managed_courses,omitempty"`
}

// NewClaims returns the claims of a user, valid for an hour.
func NewClaims(issuer string, userID int, isAdmin bool, managedCourses ...int) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    issuer,
			ExpiresAt: now.Add(tokenLifetime).Unix(),
			IssuedAt:  now.Unix(),
		},
		UserID:         userID,
		IsAdmin:        isAdmin,
		ManagedCourses: managedCourses,
	}
}

// Manages reports whether the claims allow managing the XP and levels of a course.
func (c Claims) Manages(courseID int) bool {
	if c.IsAdmin {
		return true
	}
	for _, id := range c.ManagedCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

func newJWTConfig(secretKey string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(secretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)

	ss, err := token.SignedString([]byte(secretKey))
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
