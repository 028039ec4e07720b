package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/asquebay/simple-storefront/internal/auth"
	"github.com/asquebay/simple-storefront/internal/lib/apperr"
)

// RPCPrefix — общий префикс процедур
const RPCPrefix = "/api/rpc/"

// предел тела мутации; изображения сюда не попадают, их грузят напрямую в хранилище
const maxBodyBytes = 1 << 20

// Handler обрабатывает HTTP-запросы
type Handler struct {
	procs    map[string]procedure
	sessions *auth.Sessions
	webDir   string
	log      *slog.Logger
	mux      *http.ServeMux
}

// NewHandler создает новый экземпляр Handler
func NewHandler(services Services, sessions *auth.Sessions, webDir string, log *slog.Logger) *Handler {
	h := &Handler{
		procs:    procedures(services),
		sessions: sessions,
		webDir:   webDir,
		log:      log,
		mux:      http.NewServeMux(),
	}
	h.registerRoutes()
	return h
}

// ServeHTTP делает Handler совместимым с http.Handler
// пользователь запроса определяется до маршрутизации
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		h.mux.ServeHTTP(w, r)
		return
	}
	h.sessions.Middleware(h.log, h.mux).ServeHTTP(w, r)
}

// registerRoutes регистрирует все эндпоинты
func (h *Handler) registerRoutes() {
	// роутинг для процедур: чтение через GET, запись через POST
	h.mux.HandleFunc("GET "+RPCPrefix+"{procedure}", h.serveQuery)
	h.mux.HandleFunc("POST "+RPCPrefix+"{procedure}", h.serveMutation)

	// роутинг для страниц и статики
	for _, p := range pages() {
		h.mux.Handle(p.pattern, auth.Guarded(h.page(p.file), p.guards...))
	}
	fileServer := http.FileServer(http.Dir(h.webDir))
	h.mux.Handle("GET /static/", fileServer)
}

func (h *Handler) serveQuery(w http.ResponseWriter, r *http.Request) {
	h.call(w, r, Query, []byte(r.URL.Query().Get("input")))
}

func (h *Handler) serveMutation(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.respondError(w, apperr.Wrap(apperr.BadRequest, "failed to read request body", err))
		return
	}
	h.call(w, r, Mutation, body)
}

func (h *Handler) call(w http.ResponseWriter, r *http.Request, kind Kind, input []byte) {
	name := r.PathValue("procedure")
	log := h.log.With(slog.String("procedure", name), slog.String("kind", kind.String()))

	proc, ok := h.procs[name]
	if !ok {
		h.respondError(w, apperr.NotFoundf("unknown procedure %q", name))
		return
	}
	if proc.kind != kind {
		w.Header().Set("Allow", allowedMethod(proc.kind))
		h.respondJSON(w, http.StatusMethodNotAllowed, errorBody(apperr.BadRequest, name+" is a "+proc.kind.String()))
		return
	}

	result, err := proc.call(r.Context(), input)
	if err != nil {
		if apperr.CodeOf(err) == apperr.Internal {
			log.Error("internal server error", slog.String("error", err.Error()))
		}
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

func allowedMethod(k Kind) string {
	if k == Mutation {
		return http.MethodPost
	}
	return http.MethodGet
}

type errorPayload struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

func errorBody(code apperr.Code, message string) errorPayload {
	return errorPayload{Error: errorDetail{Code: code, Message: message}}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to marshal JSON response", slog.String("error", err.Error()))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"INTERNAL","message":"internal server error"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(response)
}

// respondError отдаёт код и сообщение; причина INTERNAL клиенту не показывается
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	h.respondJSON(w, apperr.HTTPStatus(code), errorBody(code, apperr.MessageOf(err)))
}
