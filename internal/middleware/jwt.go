package middleware

import (
	"net/http"
	"strings"
	"time"

	"psi-tracker/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RolePsychologist = "psicologo"
	RolePatient      = "paciente"
)

const (
	keyUserID   = "user_id"
	keyUserName = "user_name"
	keyRole     = "role"
)

// renewWindow is how close to expiry a token gets a replacement in
// X-New-Token.
const renewWindow = 24 * time.Hour

type JWT struct {
	secret []byte
	ttl    time.Duration
}

func NewJWT(secret string, ttl time.Duration) *JWT {
	return &JWT{secret: []byte(secret), ttl: ttl}
}

func (j *JWT) Sign(uid int, name, role string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":  uid,
		"name": name,
		"role": role,
		"exp":  time.Now().Add(j.ttl).Unix(),
	}).SignedString(j.secret)
}

func (j *JWT) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "não autenticado"})
			return
		}
		token, err := jwt.Parse(auth[7:], func(t *jwt.Token) (interface{}, error) {
			return j.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token inválido"})
			return
		}
		claims := token.Claims.(jwt.MapClaims)
		uid, _ := claims["uid"].(float64)
		name, _ := claims["name"].(string)
		role, _ := claims["role"].(string)
		if uid == 0 || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token inválido"})
			return
		}
		c.Set(keyUserID, int(uid))
		c.Set(keyUserName, name)
		c.Set(keyRole, role)
		c.Request = c.Request.WithContext(logger.With(c.Request.Context(), "user_id", int(uid), "role", role))

		if exp, ok := claims["exp"].(float64); ok && time.Until(time.Unix(int64(exp), 0)) < renewWindow {
			if fresh, err := j.Sign(int(uid), name, role); err == nil {
				c.Header("X-New-Token", fresh)
			}
		}

		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(keyRole) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "acesso negado"})
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) int      { return c.GetInt(keyUserID) }
func UserName(c *gin.Context) string { return c.GetString(keyUserName) }
func Role(c *gin.Context) string     { return c.GetString(keyRole) }
