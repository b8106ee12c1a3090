// Package session keeps the logged-in identity and one-shot flash messages in a
// signed cookie session.
package session

import (
	"encoding/gob"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/yigit/coursehub/internal/app/models"
)

const (
	keyUserID = "user_id"
	keyName   = "user_name"
	keyEmail  = "user_email"
	keyRole   = "user_role"
	keyFlash  = "flash"
)

// FlashType is the severity of a flash message.
type FlashType string

const (
	FlashSuccess FlashType = "success"
	FlashInfo    FlashType = "info"
	FlashWarning FlashType = "warning"
	FlashDanger  FlashType = "danger"
)

// Flash is a one-shot notification shown on the next page render.
type Flash struct {
	Type    FlashType `json:"type"`
	Message string    `json:"message"`
}

func init() {
	// flash maps travel inside the gob encoded cookie
	gob.Register(map[string]string{})
}

// Options configures the cookie store.
type Options struct {
	Name   string
	Secret string
	MaxAge int
	Secure bool
}

// Middleware installs the cookie session store on the router.
func Middleware(opts Options) gin.HandlerFunc {
	store := cookie.NewStore([]byte(opts.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(opts.Name, store)
}

// SetIdentity stores the logged-in user in the session.
func SetIdentity(c *gin.Context, identity models.Identity) error {
	s := sessions.Default(c)
	s.Set(keyUserID, identity.ID)
	s.Set(keyName, identity.Name)
	s.Set(keyEmail, identity.Email)
	s.Set(keyRole, string(identity.Role))
	return s.Save()
}

// GetIdentity reads the logged-in user from the session.
func GetIdentity(c *gin.Context) (models.Identity, bool) {
	s := sessions.Default(c)
	id, ok := s.Get(keyUserID).(int64)
	if !ok || id <= 0 {
		return models.Identity{}, false
	}
	name, _ := s.Get(keyName).(string)
	email, _ := s.Get(keyEmail).(string)
	role, _ := s.Get(keyRole).(string)
	identity := models.Identity{ID: id, Name: name, Email: email, Role: models.RoleType(role)}
	if !identity.Role.Valid() {
		return models.Identity{}, false
	}
	return identity, true
}

// Clear drops the identity. Pending flashes survive so a logout notice can be shown.
func Clear(c *gin.Context) error {
	s := sessions.Default(c)
	pending := pendingFlashes(s)
	s.Clear()
	if len(pending) > 0 {
		s.Set(keyFlash, pending)
	}
	return s.Save()
}

// SetFlash queues a message. A later message of the same type replaces the earlier one.
func SetFlash(c *gin.Context, typ FlashType, message string) error {
	s := sessions.Default(c)
	pending := pendingFlashes(s)
	pending[string(typ)] = message
	s.Set(keyFlash, pending)
	return s.Save()
}

// PopFlashes returns the queued messages and removes them from the session.
func PopFlashes(c *gin.Context) ([]Flash, error) {
	s := sessions.Default(c)
	pending := pendingFlashes(s)
	if len(pending) == 0 {
		return []Flash{}, nil
	}
	s.Delete(keyFlash)
	if err := s.Save(); err != nil {
		return nil, err
	}

	out := make([]Flash, 0, len(pending))
	for _, typ := range []FlashType{FlashDanger, FlashWarning, FlashSuccess, FlashInfo} {
		if msg, ok := pending[string(typ)]; ok {
			out = append(out, Flash{Type: typ, Message: msg})
		}
	}
	return out, nil
}

func pendingFlashes(s sessions.Session) map[string]string {
	out := map[string]string{}
	if m, ok := s.Get(keyFlash).(map[string]string); ok {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
