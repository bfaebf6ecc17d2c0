package httpapi

import (
	"hash/fnv"
	"net/http"

	"github.com/google/uuid"
)

const sessionCookie = "chat_session"

// sessionID returns the browser's chat session, minting a cookie on the
// first visit.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// webUserID derives a stable synthetic user ID from the session UUID.
// Negative values keep web sessions disjoint from real Telegram IDs.
func webUserID(session string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(session))
	id := int64(h.Sum64() & 0x7fffffffffffffff)
	if id == 0 {
		id = 1
	}
	return -id
}
