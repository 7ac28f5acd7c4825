package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/andriandrian/lifeline-admin/internal/auth"
	"github.com/andriandrian/lifeline-admin/internal/models"
	"github.com/andriandrian/lifeline-admin/internal/session"
	"github.com/andriandrian/lifeline-admin/internal/validation"
)

type LoginRequest struct {
	Email    string `json:"email" example:"admin@lifeline.id"`
	Password string `json:"password" example:"password123"`
}

type LoginResponse struct {
	User         models.Identity `json:"user"`
	AccessToken  string          `json:"Authorization" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string          `json:"RefreshToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type RefreshResponse struct {
	AccessToken string `json:"Authorization" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// @Summary      Logs an operator in
// @Description  Authenticates an operator, sets the session cookies and returns both tokens.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest   body      LoginRequest  true  "Login Credentials"
// @Success      200            {object}  Envelope{data=LoginResponse}
// @Failure      400            {object}  Envelope "Invalid request body"
// @Failure      401            {object}  Envelope "Invalid email or password"
// @Failure      403            {object}  Envelope "Account is not an operator"
// @Failure      500            {object}  Envelope "Internal Server Error"
// @Router       /login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	creds := auth.Credentials{Email: req.Email, Password: req.Password}
	if err := validation.Struct(&creds); err != nil {
		s.metrics.Login("invalid_request")
		s.writeStoreError(w, r, err, "user")
		return
	}

	sess, err := s.auth.Login(r.Context(), creds)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.metrics.Login("invalid_credentials")
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	case errors.Is(err, auth.ErrNotOperator):
		s.metrics.Login("not_operator")
		writeError(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		s.metrics.Login("error")
		s.log.WithError(err).Error("login failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.metrics.Login("success")
	s.auth.SetSessionCookies(w, sess, s.cookieOptions())
	s.log.WithField("user_id", sess.User.ID).Info("operator logged in")

	writeJSON(w, http.StatusOK, LoginResponse{
		User:         sess.User,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
	})
}

// refreshTokenFrom prefers the Refresh-Token header and falls back to the cookie.
func refreshTokenFrom(r *http.Request) string {
	if token := r.Header.Get(session.RefreshHeader); token != "" {
		return token
	}
	if c, err := r.Cookie(session.RefreshCookie); err == nil {
		return c.Value
	}
	return ""
}

// @Summary      Refresh access token
// @Description  Issues a new access token for a valid refresh token. The refresh token itself is not rotated.
// @Tags         auth
// @Produce      json
// @Param        Refresh-Token  header    string  false  "Refresh token; the RefreshToken cookie is used when absent"
// @Success      200            {object}  Envelope{data=RefreshResponse}
// @Failure      401            {object}  Envelope "Invalid or expired refresh token"
// @Failure      500            {object}  Envelope "Internal Server Error"
// @Router       /refreshToken [get]
func (s *Server) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	refreshToken := refreshTokenFrom(r)
	if refreshToken == "" {
		s.metrics.Refresh("missing")
		writeError(w, http.StatusUnauthorized, "Refresh token is required")
		return
	}

	accessToken, claims, err := s.auth.Refresh(refreshToken)
	if err != nil {
		outcome := "invalid"
		if errors.Is(err, auth.ErrTokenExpired) {
			outcome = "expired"
		}
		s.metrics.Refresh(outcome)
		auth.ClearSessionCookies(w, s.cookieOptions())
		writeError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	s.metrics.Refresh("success")
	s.auth.SetAccessCookie(w, accessToken, s.cookieOptions())
	s.log.WithFields(logrus.Fields{"user_id": claims.UserID, "jti": claims.ID}).Debug("access token refreshed")

	writeJSON(w, http.StatusOK, RefreshResponse{AccessToken: accessToken})
}

// @Summary      Log out
// @Description  Clears every session cookie. Safe to call without a session.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  Envelope
// @Router       /logout [post]
func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookies(w, s.cookieOptions())
	writeJSON(w, http.StatusOK, nil)
}

// @Summary      Get current operator
// @Description  Returns the identity carried by the access token.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=models.Identity}
// @Failure      401  {object}  Envelope "Unauthorized"
// @Router       /me [get]
func (s *Server) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}
	writeJSON(w, http.StatusOK, claims.Identity())
}
