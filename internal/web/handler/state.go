package handler

import (
	"github.com/PropDesk/PropDesk-Console/internal/models"
	"github.com/PropDesk/PropDesk-Console/internal/session"
)

// State is the session summary the shell renders its header and menu from.
type State struct {
	Authenticated bool         `json:"isAuthenticated"`
	Admin         bool         `json:"isAdmin"`
	TokenState    string       `json:"tokenState"`
	User          *models.User `json:"user"`
	Routes        []string     `json:"routes"`
	Redirect      string       `json:"redirect,omitempty"`
}

// NewState reads the current state of sess.
func NewState(sess *session.Session) State {
	st := State{
		Authenticated: sess.IsAuthenticated(),
		Admin:         sess.IsAdmin(),
		TokenState:    sess.TokenState().String(),
		User:          sess.CurrentUser(),
		Routes:        sess.AccessibleRoutes(),
	}

	if st.Routes == nil {
		st.Routes = []string{}
	}

	return st
}
