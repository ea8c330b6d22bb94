package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/Kedareswar13/Privacy-Protector/internal/store"
	"go.uber.org/zap"
)

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func (d *Dependencies) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req CredentialsReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if !validEmail(req.Email) {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "A valid email is required"})
		return
	}
	if req.Password == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "password is required"})
		return
	}

	hash, err := d.Auth.HashPassword(req.Password)
	if err != nil {
		d.Logger.Error("failed to hash password", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to register"})
		return
	}
	user, err := d.Store.CreateUser(r.Context(), req.Email, hash)
	if errors.Is(err, store.ErrEmailTaken) {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Email already registered"})
		return
	}
	if err != nil {
		d.Logger.Error("failed to create user", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to register"})
		return
	}
	writeJSON(w, http.StatusOK, RegisterResp{UserID: user.ID, Email: user.Email})
}

func (d *Dependencies) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req CredentialsReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}

	user, err := d.Store.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		d.Logger.Error("failed to look up user", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to log in"})
		return
	}
	if user == nil || d.Auth.VerifyPassword(req.Password, user.PasswordHash) != nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResp{Detail: "Invalid credentials"})
		return
	}

	token, err := d.Auth.IssueToken(user.ID)
	if err != nil {
		d.Logger.Error("failed to issue token", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to log in"})
		return
	}
	writeJSON(w, http.StatusOK, LoginResp{AccessToken: token, TokenType: "bearer"})
}

func (d *Dependencies) handleCreateConsent(w http.ResponseWriter, r *http.Request) {
	userID := userFromContext(r.Context())

	var req ConsentReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if req.Scopes == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "scopes is required"})
		return
	}
	scopes, err := json.Marshal(req.Scopes)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid scopes"})
		return
	}

	consent, err := d.Store.CreateConsent(r.Context(), userID, string(scopes))
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusUnauthorized, ErrorResp{Detail: "Invalid token"})
		return
	}
	if err != nil {
		d.Logger.Error("failed to record consent", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to record consent"})
		return
	}
	writeJSON(w, http.StatusOK, ConsentResp{ConsentID: consent.ID, UserID: consent.UserID})
}

func (d *Dependencies) handleListConsents(w http.ResponseWriter, r *http.Request) {
	consents, err := d.Store.ListConsents(r.Context(), userFromContext(r.Context()))
	if err != nil {
		d.Logger.Error("failed to list consents", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to list consents"})
		return
	}
	resp := make([]ConsentResp, 0, len(consents))
	for _, c := range consents {
		resp = append(resp, ConsentResp{
			ConsentID: c.ID,
			UserID:    c.UserID,
			Scopes:    json.RawMessage(c.ScopesJSON),
			CreatedAt: c.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
