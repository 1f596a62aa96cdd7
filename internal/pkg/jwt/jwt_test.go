package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret")
	in := auth.Claims{UserID: "u1", CompanyID: "c1", EmployeeID: "e1", Role: auth.RoleOwner}

	token, expiresAt, err := svc.IssueAccessToken(in, time.Hour)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	m, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	out, err := auth.ClaimsFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestVerify_RejectsForeignSecret(t *testing.T) {
	token, _, err := NewJWTService("other").IssueAccessToken(auth.Claims{UserID: "u1", CompanyID: "c1", Role: auth.RoleOwner}, time.Hour)
	require.NoError(t, err)

	_, err = NewJWTService("test-secret").JWTAuth().Decode(token)
	assert.Error(t, err)
}
