package config

// DB holds the database configuration settings used by the gorm and gofiber
// credential store drivers.
type DB struct {
	GormEngine string // sqlite, mysql or postgres
	Path       string // sqlite database file
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string // postgres only
}
