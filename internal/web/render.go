package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tracknfresh/tracknfresh-web/internal/model"
	"github.com/tracknfresh/tracknfresh-web/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	viewHome       = "home"
	viewFridge     = "fridge"
	viewDetail     = "detail"
	viewNoteDelete = "note_delete"
	viewLogin      = "login"
	viewRegister   = "register"
	viewAddFood    = "add_food"
	viewMyItems    = "my_items"
	viewItemDelete = "item_delete"
	viewNotFound   = "not_found"
	viewError      = "error"
)

var viewNames = []string{
	viewHome, viewFridge, viewDetail, viewNoteDelete, viewLogin, viewRegister,
	viewAddFood, viewMyItems, viewItemDelete, viewNotFound, viewError,
}

// page is the root value every template executes against.
type page struct {
	Title   string
	User    *model.UserIdentity
	Notices []session.Notice
	Data    interface{}
}

type errorData struct {
	Heading string
	Message string
}

func parseViews() (map[string]*template.Template, error) {
	views := make(map[string]*template.Template, len(viewNames))
	for _, name := range viewNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s view: %w", name, err)
		}
		views[name] = t
	}
	return views, nil
}

// render executes a view into a buffer first so a template failure never
// leaves a half-written page. Queued notices are consumed here; extra notices
// belong to this response only.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, view, title string, data interface{}, extra ...session.Notice) {
	log := zerolog.Ctx(r.Context())
	t, ok := s.views[view]
	if !ok {
		log.Error().Str("view", view).Msg("unknown view")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	p := page{
		Title: title,
		User:  session.IdentityFrom(r.Context()),
		Data:  data,
	}
	p.Notices = append(s.sessions.Notices(w, r), extra...)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		log.Error().Stack().Err(err).Str("view", view).Msg("render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, viewNotFound, "Not found", nil)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, heading, message string) {
	s.render(w, r, status, viewError, heading, errorData{Heading: heading, Message: message})
}

func errorNotice(text string) session.Notice {
	return session.Notice{Kind: session.NoticeError, Text: text}
}

func successNotice(text string) session.Notice {
	return session.Notice{Kind: session.NoticeSuccess, Text: text}
}
