package postgres

import (
	"net/url"
	"strconv"
)

type Config struct {
	// DSN wins over the separate connection fields when set.
	DSN      string `toml:"dsn"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	DBName   string `toml:"db_name"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	SSLMode  string `toml:"ssl_mode"`
}

func (c Config) ConnectionString() string {
	if c.DSN != "" {
		return c.DSN
	}
	host := c.Host
	if c.Port != 0 {
		host += ":" + strconv.Itoa(c.Port)
	}
	return NewURLConnectionString("postgres", host, c.DBName, c.Username, c.Password, c.SSLMode)
}

func NewURLConnectionString(protocol, host, dbName, username, password, sslMode string) string {
	v := make(url.Values)
	if sslMode != "" {
		v.Set("sslmode", sslMode)
	}
	u := url.URL{
		Scheme:   protocol,
		Host:     host,
		Path:     dbName,
		User:     url.UserPassword(username, password),
		RawQuery: v.Encode(),
	}
	return u.String()
}
