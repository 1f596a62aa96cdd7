package jwt

import (
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Service verifies access tokens issued by the identity provider. Tokens are
// HS256 signed with the shared secret.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	IssueAccessToken(claims auth.Claims, ttl time.Duration) (token string, expiresAt int64, err error)
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// IssueAccessToken signs a token with the shared secret. It is used by the
// seed command and tests; production tokens come from the identity provider.
func (j *JWTService) IssueAccessToken(claims auth.Claims, ttl time.Duration) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(ttl).Unix()

	m := claims.ToMap()
	m["exp"] = expiresAt

	_, token, err = j.tokenAuth.Encode(m)
	return token, expiresAt, err
}
