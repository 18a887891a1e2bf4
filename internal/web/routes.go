package web

import "net/http"

// Route binds a path to its view handler, optional loader and guard.
type Route struct {
	Name    string
	Path    string
	Methods []string
	Guarded bool
	Load    Loader
	Handle  http.HandlerFunc
}

func (s *Server) routes() []Route {
	get := []string{http.MethodGet}
	post := []string{http.MethodPost}
	return []Route{
		{Name: "home", Path: "/", Methods: get, Load: s.loadNearest, Handle: s.home},
		{Name: "login", Path: "/login", Methods: get, Handle: s.loginForm},
		{Name: "login_submit", Path: "/login", Methods: post, Handle: s.loginSubmit},
		{Name: "login_google", Path: "/login/google", Methods: get, Handle: s.googleStart},
		{Name: "login_google_callback", Path: "/login/google/callback", Methods: get, Handle: s.googleCallback},
		{Name: "register", Path: "/register", Methods: get, Handle: s.registerForm},
		{Name: "register_submit", Path: "/register", Methods: post, Handle: s.registerSubmit},
		{Name: "logout", Path: "/logout", Methods: post, Handle: s.logout},
		{Name: "fridge", Path: "/fridge", Methods: get, Load: s.loadAll, Handle: s.fridge},
		{Name: "add_food", Path: "/add-food", Methods: get, Guarded: true, Handle: s.addFoodForm},
		{Name: "add_food_submit", Path: "/add-food", Methods: post, Guarded: true, Handle: s.addFoodSubmit},
		{Name: "my_items", Path: "/my-items", Methods: get, Guarded: true, Load: s.loadMine, Handle: s.myItems},
		{Name: "item_delete_confirm", Path: "/my-items/{id}/delete", Methods: get, Guarded: true, Load: s.loadItem, Handle: s.itemDeleteConfirm},
		{Name: "item_delete", Path: "/my-items/{id}/delete", Methods: post, Guarded: true, Load: s.loadItem, Handle: s.itemDelete},
		{Name: "food_detail", Path: "/food/{id}", Methods: get, Load: s.loadItem, Handle: s.foodDetail},
		{Name: "note_add", Path: "/food/{id}/notes", Methods: post, Load: s.loadItem, Handle: s.addNote},
		{Name: "note_delete_confirm", Path: "/food/{id}/notes/delete", Methods: get, Load: s.loadItem, Handle: s.noteDeleteConfirm},
		{Name: "note_delete", Path: "/food/{id}/notes/delete", Methods: post, Load: s.loadItem, Handle: s.noteDelete},
		{Name: "healthz", Path: "/healthz", Methods: get, Handle: s.healthz},
		{Name: "metrics", Path: "/metrics", Methods: get, Handle: s.metricsHandler},
	}
}
