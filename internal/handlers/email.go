package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/diewo77/clientsync/httpx"
	"github.com/diewo77/clientsync/internal/emailgen"
	"github.com/diewo77/clientsync/internal/mailer"
	"github.com/diewo77/clientsync/internal/services"
)

// EmailHandler drafts client emails with the AI provider and sends them
// on behalf of the signed-in user.
type EmailHandler struct {
	svc    *services.DashboardService
	gen    *emailgen.Generator
	sender mailer.Sender
	from   string
	log    *zap.Logger
}

// NewEmailHandler wires the drafting and delivery providers. A nil sender
// makes every send fail as unconfigured.
func NewEmailHandler(svc *services.DashboardService, gen *emailgen.Generator, sender mailer.Sender, from string, log *zap.Logger) *EmailHandler {
	return &EmailHandler{svc: svc, gen: gen, sender: sender, from: from, log: log.Named("email")}
}

func (h *EmailHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req emailgen.Request
	if !decodeOrReject(w, r, &req) {
		return
	}
	res, err := h.gen.Generate(r.Context(), req)
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "email": res.Email, "usage": res.Usage})
	case errors.Is(err, emailgen.ErrMissingFields):
		httpx.JSONError(w, http.StatusBadRequest, "Missing required fields: clientName, clientEmail, emailType", nil)
	case errors.Is(err, emailgen.ErrNotConfigured):
		httpx.JSONError(w, http.StatusInternalServerError, "AI provider not configured", nil)
	case errors.Is(err, emailgen.ErrNoContent):
		httpx.JSONError(w, http.StatusInternalServerError, "No email content generated", nil)
	case errors.Is(err, emailgen.ErrProvider):
		httpx.JSONError(w, http.StatusInternalServerError, "Failed to generate email with AI", nil)
	default:
		h.log.Error("generate email", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

type sendEmailRequest struct {
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Content    string `json:"content"`
	ClientName string `json:"clientName"`
}

// Send checks fields, then provider configuration, then the caller, in
// that order.
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Content) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "Missing required fields: to, subject, content", nil)
		return
	}
	if h.sender == nil {
		httpx.JSONError(w, http.StatusInternalServerError, "Email provider not configured", nil)
		return
	}
	uid := currentUser(r)
	if uid == "" {
		httpx.JSONError(w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	from, err := h.svc.ResolveSender(r.Context(), uid)
	if errors.Is(err, services.ErrNotFound) {
		httpx.JSONError(w, http.StatusBadRequest, "User email not found", nil)
		return
	}
	if err != nil {
		h.log.Error("resolve sender", zap.String("user_id", uid), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	msg := mailer.Message{
		From:     h.from,
		FromName: from.Name,
		To:       req.To,
		ReplyTo:  from.Email,
		Subject:  req.Subject,
		Text:     req.Content,
		HTML:     mailer.FormatHTML(req.Content, from.Email),
	}
	id, err := h.sender.Send(r.Context(), msg)
	switch {
	case err == nil:
	case errors.Is(err, mailer.ErrDomainNotVerified):
		httpx.JSONError(w, http.StatusForbidden, "Sending domain is not verified. Verify a domain with the email provider or send to your own address.", nil)
		return
	case errors.Is(err, mailer.ErrTestingMode):
		httpx.JSONError(w, http.StatusForbidden, "Email provider is in testing mode: emails can only be sent to your own address.", nil)
		return
	default:
		h.log.Error("send email", zap.String("provider", h.sender.Name()), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "Failed to send email", nil)
		return
	}

	h.log.Info("email sent", zap.String("user_id", uid), zap.String("message_id", id))
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"messageId": id,
		"message":   fmt.Sprintf("Email sent successfully to %s from %s", req.ClientName, from.Email),
	})
}
