package config

import (
	"time"

	"github.com/PropDesk/PropDesk-Console/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode     bool // enable dev mode for development
	Title       string
	Log         logger.Log
	Backend     Backend
	Token       Token
	Store       Store
	DB          DB
	Permissions Permissions
	Auth        Auth
	Webserver   Webserver
}

// Backend holds the settings of the property-management API the console talks to.
type Backend struct {
	URL       string        // base url, e.g. https://api.propdesk.io/v1/
	Timeout   time.Duration // per request timeout
	Endpoints Endpoints     // relative endpoint paths
}

// Endpoints are resolved against Backend.URL.
type Endpoints struct {
	Login       string
	Refresh     string
	TokenInfo   string
	CurrentUser string
	Users       string
	Screens     string
	Permissions string
}

// Token settings for the token lifecycle manager.
type Token struct {
	CheckInterval time.Duration // how often the validity check runs while logged in
	RefreshLeeway time.Duration // refresh this long before the access token expires
}

// Store settings for the credential store.
type Store struct {
	Driver        string        // sqlite, mysql, postgres (gorm), fiber-mysql, fiber-postgres or memory
	Table         string        // table for the gofiber storage drivers
	DefaultTTL    time.Duration // expiry of non-persistent values
	EncryptionKey string        // seal values at rest when set
	Persistent    bool          // keep credentials until logout instead of DefaultTTL
}

// Permissions settings for the permission repository.
type Permissions struct {
	PruneOnBulkAssign bool // bulk assign also removes screens missing from the submitted set
}

// Auth settings for role resolution.
type Auth struct {
	AdminEmailHeuristic bool // treat users whose email contains "admin" as admins
}

// Webserver implement the local shell webserver settings.
type Webserver struct {
	Port         int    // listening port for the webserver
	URL          string // base url for the webserver
	ShutDownTime int    // wait time for shutdown in seconds
	HomeRoute    string // navigation target after login
	LoginRoute   string // navigation target after logout
}
