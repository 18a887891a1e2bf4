package session

import (
	"net/http"
)

// Notice kinds map onto alert styles in the layout.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
	NoticeInfo    = "info"
)

// Notice is a one-shot message shown on the next rendered page.
type Notice struct {
	Kind string
	Text string
}

// AddNotice queues a notice for the next page the browser renders.
func (m *Manager) AddNotice(w http.ResponseWriter, r *http.Request, kind, text string) {
	s := m.get(r)
	s.AddFlash(Notice{Kind: kind, Text: text})
	if err := s.Save(r, w); err != nil {
		m.log.Error().Stack().Err(err).Msg("failed to queue notice")
	}
}

// Notices drains queued notices. A notice is therefore rendered at most once,
// however often the page is reloaded afterwards.
func (m *Manager) Notices(w http.ResponseWriter, r *http.Request) []Notice {
	s := m.get(r)
	flashes := s.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := s.Save(r, w); err != nil {
		m.log.Error().Stack().Err(err).Msg("failed to consume notices")
	}
	out := make([]Notice, 0, len(flashes))
	seen := make(map[Notice]bool, len(flashes))
	for _, f := range flashes {
		n, ok := f.(Notice)
		if !ok || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
