package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"cookie-auth-server/config"
)

const csrfNonceSize = 32

// CSRFGuard реализует double-submit cookie: значение cookie подписано секретом сервера,
// клиент возвращает его же в заголовке
type CSRFGuard struct {
	secret     []byte
	cookieName string
	headerName string
	jar        *CookieJar
}

func NewCSRFGuard(cfg config.CSRFConfig, jar *CookieJar) *CSRFGuard {
	return &CSRFGuard{
		secret:     []byte(cfg.SecretKey),
		cookieName: cfg.CookieName,
		headerName: cfg.HeaderName,
		jar:        jar,
	}
}

func (g *CSRFGuard) HeaderName() string {
	return g.headerName
}

func (g *CSRFGuard) sign(nonce string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte("csrf:" + nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (g *CSRFGuard) mint() (string, error) {
	raw := make([]byte, csrfNonceSize)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("ошибка генерации CSRF токена: %w", err)
	}
	nonce := base64.RawURLEncoding.EncodeToString(raw)
	return nonce + "." + g.sign(nonce), nil
}

// wellFormed : токен выпущен этим сервером
func (g *CSRFGuard) wellFormed(token string) bool {
	nonce, signature, ok := strings.Cut(token, ".")
	if !ok || nonce == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(g.sign(nonce)))
}

func (g *CSRFGuard) requestToken(r *http.Request) (string, bool) {
	token, ok := g.jar.Read(r, g.cookieName)
	if !ok || !g.wellFormed(token) {
		return "", false
	}
	return token, true
}

// EnsureIssued возвращает действующий токен запроса или выпускает новый
// Валидный токен никогда не перевыпускается, иначе открытые формы перестанут работать
func (g *CSRFGuard) EnsureIssued(r *http.Request) (token string, fresh bool, err error) {
	if token, ok := g.requestToken(r); ok {
		return token, false, nil
	}
	token, err = g.mint()
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

// Rotate выпускает новый токен и ставит cookie. Вызывается при входе
func (g *CSRFGuard) Rotate(w http.ResponseWriter) (string, error) {
	token, err := g.mint()
	if err != nil {
		return "", err
	}
	g.jar.WriteCSRFCookie(w, token)
	return token, nil
}

// Validate сравнивает заголовок с подписанным значением cookie
func (g *CSRFGuard) Validate(r *http.Request) error {
	token, ok := g.requestToken(r)
	if !ok {
		return fmt.Errorf("%w: cookie %s отсутствует или не подписан", ErrCSRFMismatch, g.cookieName)
	}

	header := r.Header.Get(g.headerName)
	if header == "" {
		return fmt.Errorf("%w: заголовок %s отсутствует", ErrCSRFMismatch, g.headerName)
	}
	if !hmac.Equal([]byte(header), []byte(token)) {
		return fmt.Errorf("%w: значение заголовка не совпадает с cookie", ErrCSRFMismatch)
	}

	return nil
}

// InjectCookie : шаг пост-обработки каждого ответа
// Ставит csrftoken, если в запросе не было валидного токена и обработчик сам его не выставил
func (g *CSRFGuard) InjectCookie(w http.ResponseWriter, r *http.Request) error {
	if ResponseSets(w.Header(), g.cookieName) {
		return nil
	}

	token, fresh, err := g.EnsureIssued(r)
	if err != nil {
		return err
	}
	if fresh {
		g.jar.WriteCSRFCookie(w, token)
	}
	return nil
}
