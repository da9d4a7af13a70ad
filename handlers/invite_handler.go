package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Madiyar04/fantasy-league/middleware"
	"github.com/Madiyar04/fantasy-league/services"
	"github.com/go-chi/chi/v5"
)

type InviteHandler struct {
	inviteService services.InviteService
	emailService  *services.EmailService
	publicURL     string
}

func NewInviteHandler(inviteService services.InviteService, emailService *services.EmailService, publicURL string) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
		emailService:  emailService,
		publicURL:     publicURL,
	}
}

// GetOrCreate возвращает живое приглашение лиги, создавая токен при
// первом обращении. Повторные вызовы отдают тот же токен.
func (h *InviteHandler) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "invalid authentication token")
		return
	}

	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	invite, err := h.inviteService.GetOrCreateInvite(r.Context(), leagueID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"invite":      invite,
		"invite_link": h.inviteLink(invite.Token),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Preview — публичная карточка лиги по токену, без аутентификации.
func (h *InviteHandler) Preview(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		badRequestResponse(w, r, errors.New("invite token is required"))
		return
	}

	preview, err := h.inviteService.PreviewInvite(r.Context(), token)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"league": preview}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *InviteHandler) Join(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "invalid authentication token")
		return
	}

	token := chi.URLParam(r, "token")
	if token == "" {
		badRequestResponse(w, r, errors.New("invite token is required"))
		return
	}

	league, err := h.inviteService.JoinViaInvite(r.Context(), token, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SendByEmail отправляет ссылку-приглашение на указанный email.
func (h *InviteHandler) SendByEmail(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "invalid authentication token")
		return
	}

	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Email      string `json:"email"`
		LeagueName string `json:"league_name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Email == "" {
		badRequestResponse(w, r, errors.New("email is required"))
		return
	}

	invite, err := h.inviteService.GetOrCreateInvite(r.Context(), leagueID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := h.emailService.SendLeagueInviteEmail(input.Email, input.LeagueName, h.inviteLink(invite.Token)); err != nil {
		slog.Error("failed to send invite email", "league_id", leagueID, "error", err)
		serverErrorResponse(w, r, err)
		return
	}

	response := jsonResponse{"message": "Приглашение отправлено"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *InviteHandler) inviteLink(token string) string {
	return fmt.Sprintf("%s/invites/%s", h.publicURL, token)
}
