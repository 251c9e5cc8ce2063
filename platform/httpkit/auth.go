package httpkit

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"openhouse_backend/platform/config"
	"openhouse_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ContextAgentIDKey holds the authenticated agent's uuid.UUID.
const ContextAgentIDKey = "agentID"

var (
	errMissingToken = errors.New("missing token")
	errInvalidToken = errors.New("invalid token")
)

// accessClaims mirrors what the account service puts in access tokens.
type accessClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// AuthRequired validates HS256 access tokens issued by the account service.
// The subject is the agent id; refresh tokens and other types are rejected.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (any, error) {
		return []byte(cfg.GetJWTAccessSecret()), nil
	}

	return func(c *gin.Context) {
		agentID, err := authenticate(parser, keyFunc, c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error(), Code: "unauthorized"})
			return
		}

		c.Set(ContextAgentIDKey, agentID)
		ctx := context.WithValue(c.Request.Context(), logger.AgentIDKey, agentID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func authenticate(parser *jwt.Parser, keyFunc jwt.Keyfunc, header string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return uuid.Nil, errMissingToken
	}

	var claims accessClaims
	if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
		return uuid.Nil, errInvalidToken
	}
	if claims.Type != "access" {
		return uuid.Nil, errInvalidToken
	}

	agentID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errInvalidToken
	}
	return agentID, nil
}

// AgentFromContext returns the agent set by AuthRequired.
func AgentFromContext(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(ContextAgentIDKey)
	if !ok {
		return uuid.Nil, false
	}
	agentID, ok := value.(uuid.UUID)
	return agentID, ok && agentID != uuid.Nil
}

// RequireAgent is AgentFromContext for handlers; it answers 401 itself when
// no agent is present.
func RequireAgent(c *gin.Context) (uuid.UUID, bool) {
	agentID, ok := AgentFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Code: "unauthorized"})
	}
	return agentID, ok
}
