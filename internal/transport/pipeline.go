package transport

import (
	"errors"
	"log"
	"net/http"

	"cookie-auth-server/internal/security"
	"cookie-auth-server/internal/util"
)

// Pipeline : шаги, которые транспорт явно выполняет вокруг обработчиков
//
//	Resolve         - один раз на запрос определяет личность по access токену
//	RequireIdentity - 401 для анонимных запросов и отказов резолвера
//	RequireCSRF     - 403, если заголовок CSRF не совпадает с cookie
//	PostProcess     - перед отправкой заголовков выставляет csrftoken
type Pipeline struct {
	authenticator security.Authenticator
	csrf          *security.CSRFGuard
}

func NewPipeline(authenticator security.Authenticator, csrf *security.CSRFGuard) *Pipeline {
	return &Pipeline{authenticator: authenticator, csrf: csrf}
}

// Resolve сохраняет в контексте личность или причину отказа
// Публичные маршруты продолжают работу анонимно, решение принимает RequireIdentity
func (p *Pipeline) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := p.authenticator.Resolve(r)
		ctx := r.Context()
		switch {
		case err != nil:
			log.Printf("отказ аутентификации %s %s: %v", r.Method, r.URL.Path, err)
			ctx = security.WithAuthError(ctx, err)
		case identity != nil:
			ctx = security.WithIdentity(ctx, identity)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireIdentity : 401 для анонимных запросов и отказов по токену, 500 для сбоя хранилища
func (p *Pipeline) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := security.GetIdentityFromContext(r.Context())
		if err != nil {
			var authErr *security.AuthenticationError
			if errors.Is(err, security.ErrAnonymous) || errors.As(err, &authErr) {
				util.HandleError(w, "не авторизован", http.StatusUnauthorized)
				return
			}
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCSRF проверяет double-submit токен
// Запросы с Authorization заголовком не подвержены CSRF и проверку пропускают
func (p *Pipeline) RequireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, err := security.GetIdentityFromContext(r.Context()); err == nil && identity.Source == security.SourceBearer {
			next.ServeHTTP(w, r)
			return
		}

		if err := p.csrf.Validate(r); err != nil {
			log.Printf("CSRF отклонен %s %s: %v", r.Method, r.URL.Path, err)
			util.HandleError(w, "CSRF проверка не пройдена", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PostProcess оборачивает ResponseWriter: CSRFGuard.InjectCookie вызывается ровно один раз
// до отправки заголовков, даже если обработчик ничего не записал
func (p *Pipeline) PostProcess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooked := NewHookedWriter(w, func(rw http.ResponseWriter) {
			if err := p.csrf.InjectCookie(rw, r); err != nil {
				log.Printf("не удалось выставить CSRF cookie: %v", err)
			}
		})
		next.ServeHTTP(hooked, r)
		hooked.Finish()
	})
}
