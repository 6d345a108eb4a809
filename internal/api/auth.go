package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/auth"
)

const roleAdmin = domain.RoleAdmin

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		sess, err := h.tokens.Parse(tokenString)
		if errors.Is(err, auth.ErrTokenRevoked) {
			respondError(w, http.StatusUnauthorized, "token revoked")
			return
		}
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
	})
}

func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, allowed ...string) bool {
	sess, ok := auth.FromContext(r.Context())
	if !ok || sess.Role == "" {
		respondError(w, http.StatusUnauthorized, "missing role")
		return false
	}
	if sess.HasRole(allowed...) {
		return true
	}
	respondError(w, http.StatusForbidden, "insufficient permissions")
	return false
}

func currentSession(r *http.Request) auth.Session {
	sess, _ := auth.FromContext(r.Context())
	return sess
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token   string       `json:"token"`
	Session auth.Session `json:"session"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.respondFailure(w, r, err, "unable to sign in")
		return
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, sess, err := h.tokens.Issue(*user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	h.logger.Printf("auth: login user=%d role=%s", user.ID, user.Role)
	respondJSON(w, http.StatusOK, tokenResponse{Token: token, Session: sess})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	h.tokens.Revoke(sess)
	h.logger.Printf("auth: logout user=%d", sess.UserID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, currentSession(r))
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, roleAdmin) {
		return
	}
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.FullName) == "" {
		respondError(w, http.StatusBadRequest, "email, password and full_name are required")
		return
	}
	if req.Role == "" {
		req.Role = domain.RolePharmacist
	}
	if req.Role != domain.RoleAdmin && req.Role != domain.RolePharmacist {
		respondError(w, http.StatusBadRequest, "role must be admin or pharmacist")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}
	user, err := h.store.CreateUser(r.Context(), domain.User{
		Email:    req.Email,
		Password: hashed,
		FullName: strings.TrimSpace(req.FullName),
		Role:     req.Role,
		Phone:    strings.TrimSpace(req.Phone),
		Address:  strings.TrimSpace(req.Address),
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		respondError(w, http.StatusConflict, "email already exists")
		return
	}
	if err != nil {
		h.respondFailure(w, r, err, "unable to create user")
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *Handler) paymentMethods(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, domain.PaymentMethods)
}
