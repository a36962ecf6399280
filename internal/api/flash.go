package api

import (
	"net/http"

	"github.com/gorilla/securecookie"
)

const flashCookie = "page_analyzer_flash"

// Flash categories map onto alert styles in the layout.
const (
	flashSuccess = "success"
	flashInfo    = "info"
	flashDanger  = "danger"
)

type flash struct {
	Category string
	Message  string
}

// flashStore keeps one-shot messages in a signed cookie until the next render.
type flashStore struct {
	codec *securecookie.SecureCookie
}

func newFlashStore(secret string) *flashStore {
	key := []byte(secret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}
	return &flashStore{codec: securecookie.New(key, nil)}
}

// add appends msg to any flashes already queued on the request.
func (f *flashStore) add(w http.ResponseWriter, r *http.Request, category, msg string) error {
	queued := f.peek(r)
	queued = append(queued, flash{Category: category, Message: msg})
	encoded, err := f.codec.Encode(flashCookie, queued)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// pop returns the queued flashes and clears the cookie.
func (f *flashStore) pop(w http.ResponseWriter, r *http.Request) []flash {
	queued := f.peek(r)
	if queued == nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return queued
}

func (f *flashStore) peek(r *http.Request) []flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	var queued []flash
	// Tampered or stale cookies are dropped.
	if err := f.codec.Decode(flashCookie, cookie.Value, &queued); err != nil {
		return nil
	}
	return queued
}
