package security

import (
	"net/http"
	"time"

	"cookie-auth-server/config"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// CookieJar : имена, атрибуты и время жизни auth cookie
type CookieJar struct {
	cookies    config.CookieConfig
	accessTTL  time.Duration
	refreshTTL time.Duration
	csrfCookie string
}

func NewCookieJar(cookies config.CookieConfig, jwtCfg config.JWTConfig, csrfCfg config.CSRFConfig) *CookieJar {
	return &CookieJar{
		cookies:    cookies,
		accessTTL:  jwtCfg.AccessTokenTTL,
		refreshTTL: jwtCfg.RefreshTokenTTL,
		csrfCookie: csrfCfg.CookieName,
	}
}

func (j *CookieJar) build(name, value string, maxAge int, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     j.cookies.Path,
		Domain:   j.cookies.Domain,
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   j.cookies.Secure(),
		SameSite: j.cookies.SameSite(),
	}
}

func (j *CookieJar) WriteAuthCookies(w http.ResponseWriter, access, refresh string) {
	j.WriteAccessCookie(w, access)
	http.SetCookie(w, j.build(RefreshTokenCookie, refresh, int(j.refreshTTL.Seconds()), true))
}

func (j *CookieJar) WriteAccessCookie(w http.ResponseWriter, access string) {
	http.SetCookie(w, j.build(AccessTokenCookie, access, int(j.accessTTL.Seconds()), true))
}

// WriteCSRFCookie : cookie читается из JS, поэтому без HttpOnly и живет до конца сессии браузера
func (j *CookieJar) WriteCSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, j.build(j.csrfCookie, token, 0, false))
}

// ClearAuthCookies удаляет оба auth cookie. Атрибуты совпадают с выданными,
// иначе браузер не сопоставит cookie
func (j *CookieJar) ClearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, j.build(AccessTokenCookie, "", -1, true))
	http.SetCookie(w, j.build(RefreshTokenCookie, "", -1, true))
}

// Read возвращает значение cookie и false, если его нет или оно пустое
func (j *CookieJar) Read(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// ResponseSets : true, если ответ уже содержит Set-Cookie с этим именем
func ResponseSets(header http.Header, name string) bool {
	for _, line := range header.Values("Set-Cookie") {
		cookie, err := http.ParseSetCookie(line)
		if err == nil && cookie.Name == name {
			return true
		}
	}
	return false
}
