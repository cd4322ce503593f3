package http

import (
	"fmt"
	"net/http"

	"spendwise/internal/log"
)

// parseBody reads and decodes the request body.
func parseBody(r *http.Request) (*RequestBodyParser, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return p, nil
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(r)
	if err != nil {
		writeError(w, r, log.OpRegister, err)
		return
	}
	// passwords are not trimmed
	user, err := s.deps.Auth.Register(r.Context(), p.Get("username"), p.raw("password"), p.raw("confirmPassword"))
	if err != nil {
		writeError(w, r, log.OpRegister, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(userResponse{ID: user.ID, Username: user.Username}).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(r)
	if err != nil {
		writeError(w, r, log.OpLogin, err)
		return
	}
	sess, err := s.deps.Auth.Login(r.Context(), p.Get("username"), p.raw("password"))
	if err != nil {
		writeError(w, r, log.OpLogin, err)
		return
	}
	s.setSessionCookie(w, sess)
	NewResponse().JSON(sess).Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.deps.Auth.Logout(r.Context(), sessionFrom(r.Context()).Token)
	clearSessionCookie(w)
	NewResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(sessionFrom(r.Context())).Write(w)
}
