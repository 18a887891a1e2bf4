package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tracknfresh/tracknfresh-web/internal/identity"
	"github.com/tracknfresh/tracknfresh-web/internal/session"
	"github.com/tracknfresh/tracknfresh-web/internal/web/validate"
)

const (
	loginSucceeded       = "Login successful!"
	loginFailed          = "Login failed. Please check your credentials and try again."
	federatedLoginFailed = "Login failed. Please try again."
)

// SafeNext returns next if it is a same-site relative path, otherwise "/".
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

type loginData struct {
	Email     string
	Next      string
	Federated bool
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	next := SafeNext(r.URL.Query().Get("next"))
	if session.IdentityFrom(r.Context()) != nil {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, viewLogin, "Log in", loginData{Next: next, Federated: s.federated})
}

func (s *Server) loginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	next := SafeNext(r.PostFormValue("next"))
	data := loginData{Email: email, Next: next, Federated: s.federated}

	if err := validate.Credentials(email, password); err != nil {
		s.render(w, r, http.StatusBadRequest, viewLogin, "Log in", data, errorNotice(loginFailed))
		return
	}
	if _, err := s.sessions.LoginWithEmail(r.Context(), w, r, email, password); err != nil {
		ev := zerolog.Ctx(r.Context()).Warn()
		if !errors.Is(err, identity.ErrInvalidCredentials) {
			ev = zerolog.Ctx(r.Context()).Error().Stack()
		}
		ev.Err(err).Str("email", email).Msg("login failed")
		s.render(w, r, http.StatusUnauthorized, viewLogin, "Log in", data, errorNotice(loginFailed))
		return
	}
	s.sessions.AddNotice(w, r, session.NoticeSuccess, loginSucceeded)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) googleStart(w http.ResponseWriter, r *http.Request) {
	next := SafeNext(r.URL.Query().Get("next"))
	target, err := s.sessions.BeginFederated(w, r, next)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("federated login unavailable")
		s.sessions.AddNotice(w, r, session.NoticeError, federatedLoginFailed)
		http.Redirect(w, r, "/login?next="+url.QueryEscape(next), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) googleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		zerolog.Ctx(r.Context()).Warn().Str("reason", reason).Msg("federated login declined")
		s.sessions.AddNotice(w, r, session.NoticeError, federatedLoginFailed)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	_, next, err := s.sessions.CompleteFederated(r.Context(), w, r, q.Get("state"), q.Get("code"))
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("federated login failed")
		s.sessions.AddNotice(w, r, session.NoticeError, federatedLoginFailed)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	s.sessions.AddNotice(w, r, session.NoticeSuccess, loginSucceeded)
	http.Redirect(w, r, SafeNext(next), http.StatusSeeOther)
}

type registerData struct {
	Name     string
	Email    string
	PhotoURL string
}

func (s *Server) registerForm(w http.ResponseWriter, r *http.Request) {
	if session.IdentityFrom(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, viewRegister, "Register", registerData{})
}

func (s *Server) registerSubmit(w http.ResponseWriter, r *http.Request) {
	data := registerData{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		PhotoURL: strings.TrimSpace(r.PostFormValue("photoUrl")),
	}
	password := r.PostFormValue("password")

	if err := validate.Registration(data.Name, data.Email, data.PhotoURL, password); err != nil {
		s.render(w, r, http.StatusBadRequest, viewRegister, "Register", data, errorNotice(capitalize(err.Error())+"."))
		return
	}
	_, err := s.sessions.Register(r.Context(), w, r, identity.SignUpRequest{
		Email:       data.Email,
		Password:    password,
		DisplayName: data.Name,
		PhotoURL:    data.PhotoURL,
	})
	switch {
	case err == nil:
		s.sessions.AddNotice(w, r, session.NoticeSuccess, "Registration successful!")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, identity.ErrEmailTaken):
		s.render(w, r, http.StatusConflict, viewRegister, "Register", data,
			errorNotice("An account with that email already exists."))
	default:
		zerolog.Ctx(r.Context()).Error().Stack().Err(err).Msg("registration failed")
		s.render(w, r, http.StatusBadGateway, viewRegister, "Register", data,
			errorNotice("Registration failed. Please try again."))
	}
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(w, r); err != nil {
		zerolog.Ctx(r.Context()).Error().Stack().Err(err).Msg("logout failed")
	}
	s.sessions.AddNotice(w, r, session.NoticeInfo, "You have been logged out.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
