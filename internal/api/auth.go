package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/damniamgood/backstabbr-bot/internal/spark"
	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"
)

var defaultJwtExpiration = time.Hour * 24

type contextKey string

const sessionKey contextKey = "spark-session"

type SparkAuthorization struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SparkSession is the platform identity a session token carries.
type SparkSession struct {
	Id            string             `json:"id"`
	Authorization SparkAuthorization `json:"authorization"`
}

type SessionClaims struct {
	Spark SparkSession `json:"spark"`
	jwt.StandardClaims
}

type AuthResponse struct {
	Token  string       `json:"token"`
	Person spark.Person `json:"person"`
}

func WithSession(ctx context.Context, sess SparkSession) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

func Session(ctx context.Context) (SparkSession, bool) {
	sess, ok := ctx.Value(sessionKey).(SparkSession)
	return sess, ok
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("malformed authorization header")
	}
	return strings.TrimSpace(token), nil
}

func (s *App) createJwtForSession(sess SparkSession, exp time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Spark: sess,
		StandardClaims: jwt.StandardClaims{
			Subject:   sess.Id,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(exp).Unix(),
		},
	})

	return token.SignedString(s.signingKey)
}

func (s *App) verifyToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Spark.Authorization.AccessToken == "" || claims.Spark.Authorization.RefreshToken == "" {
		return nil, fmt.Errorf("token carries no platform authorization")
	}

	return claims, nil
}

// auth exchanges an OAuth code for platform tokens and mints a session
// token bound to the caller's platform identity.
func (s *App) auth(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	params := s.oauth
	params.Code = code
	authz, err := s.platform("").ExchangeCode(r.Context(), params)
	if err != nil {
		s.log.Warn("oauth code exchange", zap.Error(err))
		errResp := remoteError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	me, err := s.platform(authz.AccessToken).Me(r.Context())
	if err != nil {
		s.log.Warn("resolve authenticated person", zap.Error(err))
		errResp := remoteError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	token, err := s.createJwtForSession(SparkSession{
		Id: me.Id,
		Authorization: SparkAuthorization{
			AccessToken:  authz.AccessToken,
			RefreshToken: authz.RefreshToken,
		},
	}, defaultJwtExpiration)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.log.Info("session issued", zap.String("person_id", me.Id))
	s.writeJson(w, http.StatusOK, AuthResponse{Token: token, Person: me})
}

// sessionPlatform returns the platform client acting as the caller.
func (s *App) sessionPlatform(w http.ResponseWriter, r *http.Request) (Platform, bool) {
	sess, ok := Session(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return nil, false
	}
	return s.platform(sess.Authorization.AccessToken), true
}
