package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the identity carried by a signed session token. The admin
// flag is resolved once at login and trusted for the token's lifetime.
type Session struct {
	UserID       string
	Username     string
	HasAdminRole bool
}

const sessionTTL = 24 * time.Hour

type SessionManager struct {
	secret []byte
}

func NewSessionManager(secret string) *SessionManager {
	return &SessionManager{secret: []byte(secret)}
}

func (m *SessionManager) Issue(sess Session) (string, error) {
	claims := jwt.MapClaims{
		"sub":  sess.UserID,
		"name": sess.Username,
		"adm":  sess.HasAdminRole,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(sessionTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *SessionManager) Validate(tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("invalid token: missing subject")
	}

	sess := &Session{UserID: sub}
	if name, ok := claims["name"].(string); ok {
		sess.Username = name
	}
	if adm, ok := claims["adm"].(bool); ok {
		sess.HasAdminRole = adm
	}
	return sess, nil
}
