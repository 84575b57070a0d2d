// Package auth is the identity boundary: every request gets a verified
// subject id before it reaches the engine, either from an HS256 token
// or from a minted guest session.
package auth

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Parth0603/backendServer/internal/domain"
)

const identityKey = "identity"

// Identity is what the middleware attaches to each request.
type Identity struct {
	Subject domain.SubjectID
	Name    string
	Email   string
	Guest   bool
}

// FromContext returns the request identity. Zero value when the
// middleware did not run; handlers behind it can rely on Subject.
func FromContext(c *gin.Context) Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}

// Middleware verifies tokens when a verifier is configured, otherwise
// mints a guest subject once per browser session so identity survives
// reconnects.
func Middleware(verifier *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier != nil {
			token := bearerToken(c)
			if token == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
				return
			}
			claims, err := verifier.Parse(token)
			if err != nil {
				log.Debug().Err(err).Str("module", "auth").Msg("token rejected")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			c.Set(identityKey, Identity{
				Subject: domain.SubjectID(claims.Subject),
				Name:    claims.Name,
				Email:   claims.Email,
			})
			c.Next()
			return
		}

		sess := sessions.Default(c)
		sid, _ := sess.Get("subject_id").(string)
		name, _ := sess.Get("subject_name").(string)
		if sid == "" {
			sid = uuid.NewString()
			name = "guest"
			sess.Set("subject_id", sid)
			sess.Set("subject_name", name)
			if err := sess.Save(); err != nil {
				log.Error().Err(err).Str("module", "auth").Msg("guest session save")
			}
			log.Info().Str("module", "auth").Str("subject", sid).Msg("guest identity minted")
		}
		c.Set(identityKey, Identity{Subject: domain.SubjectID(sid), Name: name, Guest: true})
		c.Next()
	}
}

// bearerToken takes the access token from the Authorization header or,
// for browser WebSocket clients that cannot set headers, from ?token=.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return c.Query("token")
}
