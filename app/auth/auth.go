package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rbarros/podcast-hub/app/database"
)

const tokenIssuer = "podcast-hub"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
)

// Auth issues and verifies HS256 access tokens and manages user credentials.
type Auth struct {
	users  database.UserRepository
	secret []byte
	ttl    time.Duration
}

func NewAuth(users database.UserRepository, secret string, ttl time.Duration) *Auth {
	if secret == "" {
		panic("auth: empty token secret")
	}
	return &Auth{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Register creates a new user and returns it with a fresh access token.
// Duplicate username or email surfaces as database.ErrDuplicate.
func (a *Auth) Register(username, email, password string) (*database.User, string, error) {
	if username == "" || email == "" || password == "" {
		return nil, "", fmt.Errorf("username, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.users.Insert(database.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, "", err
	}

	token, err := a.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh access token.
func (a *Auth) Login(email, password string) (*database.User, string, error) {
	user, err := a.users.GetByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Verify validates an access token and returns the user ID it was issued for.
func (a *Auth) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.StandardClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.StandardClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Issuer != tokenIssuer || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

func (a *Auth) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.StandardClaims{
		Subject:   userID,
		Issuer:    tokenIssuer,
		Id:        uuid.NewString(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(a.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
