package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"citytwin/internal/model"
	"citytwin/internal/store"
)

// handleRegister godoc
// @Title Register account
// @Description Creates a new user account and returns an access token.
// @Resource Auth
// @Accept json
// @Produce json
// @Param payload body RegisterRequest true "Registration payload"
// @Success 201 {object} TokenResponse
// @Route /api/auth/register [post]
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("password hashing failed")
		s.writeError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}

	user := model.User{
		ID:           uuid.New().String(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			s.writeError(w, http.StatusConflict, "username or email already taken", nil)
			return
		}
		s.writeStoreError(w, r, err, "user not found")
		return
	}

	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	s.respondWithToken(w, http.StatusCreated, user)
}

// handleLogin godoc
// @Title Login
// @Description Exchanges username/email and password for an access token.
// @Resource Auth
// @Accept json
// @Produce json
// @Param payload body LoginRequest true "Login payload"
// @Success 200 {object} TokenResponse
// @Route /api/auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}

	user, err := s.store.FindUserByLogin(r.Context(), strings.TrimSpace(req.Login))
	if err != nil || !verifyPassword(req.Password, user.PasswordHash) {
		// A uniform message keeps account enumeration off the table.
		s.writeError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	s.respondWithToken(w, http.StatusOK, user)
}

// handleMe godoc
// @Title Current user
// @Description Returns the account behind the presented token.
// @Resource Auth
// @Produce json
// @Success 200 {object} model.User
// @Route /api/auth/me [get]
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) respondWithToken(w http.ResponseWriter, status int, user model.User) {
	token, err := s.issueToken(user.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("token signing failed")
		s.writeError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}
	s.writeJSON(w, status, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.cfg.Auth.TokenTTL.Seconds()),
		User:        user,
	})
}
