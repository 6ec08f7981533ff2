package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/JonathanM-A/costmate/internal/apierror"
)

const (
	ClaimsKey  = "claims"
	OwnerIDKey = "owner_id"

	RoleOwner = "owner"
	RoleAdmin = "admin"
)

// JWTClaims are the custom claims embedded in every access token. OwnerID
// is the tenant every read and write is scoped to.
type JWTClaims struct {
	OwnerID string `json:"owner_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 access token for owner.
func IssueToken(secret string, owner uuid.UUID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		OwnerID: owner.String(),
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   owner.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// JWTAuth validates the Bearer token on every protected route and resolves
// the acting owner. Admins may act for another owner via ?owner_id=.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid or expired token"))
			return
		}

		owner, err := uuid.Parse(claims.OwnerID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("token carries no owner"))
			return
		}
		if claims.Role == RoleAdmin {
			if raw := c.Query("owner_id"); raw != "" {
				if owner, err = uuid.Parse(raw); err != nil {
					c.AbortWithStatusJSON(http.StatusBadRequest, apierror.New("owner_id must be a valid uuid"))
					return
				}
			}
		}

		c.Set(ClaimsKey, claims)
		c.Set(OwnerIDKey, owner.String())
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims, ok := c.MustGet(ClaimsKey).(*JWTClaims)
		if !ok || !allowed[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("insufficient permissions"))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	claims, _ := c.MustGet(ClaimsKey).(*JWTClaims)
	return claims
}

// OwnerID returns the owner resolved by JWTAuth.
func OwnerID(c *gin.Context) uuid.UUID {
	id, _ := uuid.Parse(c.GetString(OwnerIDKey))
	return id
}
