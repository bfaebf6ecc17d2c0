// Package httpapi exposes the web-chat surface: a small chat page, a
// JSON chat endpoint and the Telegram webhook routes. Every inbound
// message, web or webhook, goes through the same dispatcher.
package httpapi

import (
	"context"
	"embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Ariyan3323/my-ai-bot/dispatch"
	"github.com/Ariyan3323/my-ai-bot/store"
)

//go:embed static/index.html
var static embed.FS

// TelegramBridge is the slice of the Telegram runtime the webhook
// routes need. Nil when running web-only.
type TelegramBridge interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
	RegisterWebhook(publicURL string) error
}

type Config struct {
	Addr      string
	PublicURL string
	Name      string
	Version   string
	Model     string

	// WebTier is granted to new web sessions so browser users pass the
	// access gate without a Telegram subscription flow.
	WebTier store.Tier
}

type Server struct {
	log        *slog.Logger
	dispatcher *dispatch.Dispatcher
	users      store.Store
	bridge     TelegramBridge
	cfg        Config
}

func NewServer(cfg Config, dispatcher *dispatch.Dispatcher, users store.Store, bridge TelegramBridge, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if !cfg.WebTier.Valid() {
		cfg.WebTier = store.TierBronze
	}
	return &Server{log: log, dispatcher: dispatcher, users: users, bridge: bridge, cfg: cfg}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Success bool   `json:"success"`
	Reply   string `json:"reply,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/info", s.handleInfo)
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/setwebhook", s.handleSetWebhook)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("server_start", "addr", s.cfg.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, chatResponse{Error: "invalid json"})
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, chatResponse{Error: "empty message"})
		return
	}

	session := sessionID(w, r)
	userID := webUserID(session)
	if err := s.provisionWebUser(r.Context(), userID); err != nil {
		s.log.Error("provision_error", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, chatResponse{Error: "internal error"})
		return
	}

	reply := s.dispatcher.Handle(r.Context(), dispatch.Inbound{
		UserID:  userID,
		ChatID:  userID,
		Text:    req.Message,
		Channel: dispatch.ChannelWeb,
	})
	writeJSON(w, http.StatusOK, chatResponse{Success: true, Reply: reply.Text})
}

// provisionWebUser grants the configured tier to a fresh web session so
// the gate lets browser traffic through. Existing records keep their
// level.
func (s *Server) provisionWebUser(ctx context.Context, userID int64) error {
	_, ok, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	_, err = s.users.Update(ctx, userID, func(u *store.User) {
		store.SetLevel(u, s.cfg.WebTier)
	})
	return err
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    s.cfg.Name,
		"version": s.cfg.Version,
		"model":   s.cfg.Model,
		"endpoints": []string{
			"GET /", "GET /health", "POST /api/chat", "GET /api/info",
			"POST /webhook", "GET /setwebhook",
		},
	})
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.bridge == nil {
		http.Error(w, "telegram disabled", http.StatusNotFound)
		return
	}
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	s.bridge.HandleUpdate(r.Context(), update)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSetWebhook(w http.ResponseWriter, r *http.Request) {
	if s.bridge == nil {
		http.Error(w, "telegram disabled", http.StatusNotFound)
		return
	}
	if strings.TrimSpace(s.cfg.PublicURL) == "" {
		http.Error(w, "missing public url", http.StatusBadRequest)
		return
	}
	if err := s.bridge.RegisterWebhook(s.cfg.PublicURL); err != nil {
		s.log.Error("set_webhook_error", "error", err.Error())
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "url": s.cfg.PublicURL + "/webhook"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
