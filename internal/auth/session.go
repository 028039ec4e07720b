package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/asquebay/simple-storefront/internal/config"
	"github.com/asquebay/simple-storefront/internal/model"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrInvalidSession = errors.New("invalid session token")

const emailClaim = "email"

// Sessions выпускает и проверяет подписанные HS256 сессионные токены
type Sessions struct {
	secret     []byte
	issuer     string
	cookieName string
	now        func() time.Time
}

// NewSessions создаёт провайдера сессий
func NewSessions(cfg config.Session) *Sessions {
	return &Sessions{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		cookieName: cfg.CookieName,
		now:        time.Now,
	}
}

// Issue выпускает токен для пользователя
func (s *Sessions) Issue(id model.Identity, ttl time.Duration) (string, error) {
	const op = "auth.Sessions.Issue"

	now := s.now()
	tok, err := jwt.NewBuilder().
		Issuer(s.issuer).
		Subject(id.ID).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Claim(emailClaim, id.Email).
		Build()
	if err != nil {
		return "", fmt.Errorf("%s: failed to build token: %w", op, err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", fmt.Errorf("%s: failed to sign token: %w", op, err)
	}
	return string(signed), nil
}

// Parse проверяет подпись, издателя и срок действия токена
func (s *Sessions) Parse(raw string) (model.Identity, error) {
	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, s.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuer),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if tok.Subject() == "" {
		return model.Identity{}, fmt.Errorf("%w: empty subject", ErrInvalidSession)
	}

	id := model.Identity{ID: tok.Subject()}
	if v, ok := tok.Get(emailClaim); ok {
		id.Email, _ = v.(string)
	}
	return id, nil
}

// tokenFromRequest ищет токен в заголовке Authorization, затем в cookie
func (s *Sessions) tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(s.cookieName); err == nil {
		return c.Value
	}
	return ""
}

// Middleware определяет пользователя запроса
// запрос без токена или с негодным токеном продолжается как анонимный,
// защищённые операции сами отвечают UNAUTHORIZED
func (s *Sessions) Middleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := s.tokenFromRequest(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := s.Parse(raw)
		if err != nil {
			log.Debug("rejected session token", slog.String("error", err.Error()))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}
