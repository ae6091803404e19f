package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionWaiter = "waiter"
	SessionStaff  = "staff"

	sessionIssuer = "tableorder"
)

var ErrInvalidSession = errors.New("invalid or expired session")

// SessionClaims identify a waiter or a staff user inside one tenant. The
// claims only say who the caller was at login; handlers still re-check the
// account on every request.
type SessionClaims struct {
	Kind     string `json:"kind"`
	TenantID uint   `json:"tenant_id"`
	UserID   uint   `json:"user_id"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type SessionIssuer struct {
	secret    []byte
	WaiterTTL time.Duration
	StaffTTL  time.Duration
}

// NewSessionIssuer signs with HS256. A zero TTL issues tokens without an
// expiry.
func NewSessionIssuer(secret []byte, waiterTTL, staffTTL time.Duration) *SessionIssuer {
	return &SessionIssuer{
		secret:    append([]byte(nil), secret...),
		WaiterTTL: waiterTTL,
		StaffTTL:  staffTTL,
	}
}

func (s *SessionIssuer) IssueWaiter(tenantID, waiterID uint) (string, error) {
	return s.issue(SessionClaims{Kind: SessionWaiter, TenantID: tenantID, UserID: waiterID}, s.WaiterTTL)
}

func (s *SessionIssuer) IssueStaff(tenantID, userID uint, role string) (string, error) {
	return s.issue(SessionClaims{Kind: SessionStaff, TenantID: tenantID, UserID: userID, Role: role}, s.StaffTTL)
}

func (s *SessionIssuer) issue(claims SessionClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:  strconv.FormatUint(uint64(claims.UserID), 10),
		IssuedAt: jwt.NewNumericDate(now),
		Issuer:   sessionIssuer,
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		ErrorLogger.Printf("Error generating %s session: %v", claims.Kind, err)
		return "", err
	}
	return signed, nil
}

func (s *SessionIssuer) Parse(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(sessionIssuer))
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	if claims.Kind != SessionWaiter && claims.Kind != SessionStaff {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
