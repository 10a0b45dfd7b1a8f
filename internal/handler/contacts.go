package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/birthday-board/internal/auth"
	"github.com/sakif/birthday-board/internal/model"
	"github.com/sakif/birthday-board/internal/service"
)

// ContactsHandler serves the dashboard's data endpoints: the birthday-sorted
// contact list and the on-demand sync trigger. Both routes sit behind the
// RequireSession middleware, so by the time a request lands here the session
// has been validated and decoded into the context.
type ContactsHandler struct {
	svc    *service.ContactService
	logger *slog.Logger
}

// NewContactsHandler creates a ContactsHandler.
func NewContactsHandler(svc *service.ContactService, logger *slog.Logger) *ContactsHandler {
	return &ContactsHandler{svc: svc, logger: logger}
}

// listResponse wraps the contact list. An object (not a bare array) leaves
// room to add fields without breaking clients.
type listResponse struct {
	Contacts []model.ContactWithBirthday `json:"contacts"`
}

type syncResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// HandleList returns the user's stored contacts, each annotated with the
// days until its next birthday, soonest first.
//
// HTTP: GET /contacts/list
// Auth: required — 401 comes from the middleware before this runs.
func (h *ContactsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireSession, but don't serve data without
		// an identity if the route is ever rewired.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthenticated",
			Message: "not authenticated",
		})
		return
	}

	contacts, err := h.svc.ListWithBirthdays(r.Context(), sess.UserID, time.Now())
	if err != nil {
		h.logger.Error("listing contacts failed",
			slog.String("userID", sess.UserID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Contacts: contacts})
}

// HandleSync fetches the user's Google contacts, stores the birthday-bearing
// ones, and reports how many were written.
//
// HTTP: POST /contacts/sync
// Auth: required.
//
// A 404 here means the session's user no longer exists in the store — the
// cookie outlived the account.
func (h *ContactsHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthenticated",
			Message: "not authenticated",
		})
		return
	}

	count, err := h.svc.Sync(r.Context(), sess.UserID)
	if err != nil {
		h.logger.Error("contact sync failed",
			slog.String("userID", sess.UserID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{
		Message: "contacts synced successfully",
		Count:   count,
	})
}
