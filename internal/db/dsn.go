package db

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	kvPairRegex  = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)
	kvPassword   = regexp.MustCompile(`(password=)(\S+)`)
	sqlitePrefix = "sqlite://"
)

// NormalizeDSN accepts a URL style DSN (postgres://...), a key=value list,
// or a sqlite:// DSN. Quotes and extra whitespace are stripped and key=value
// lists get sslmode=disable when it is missing.
func NormalizeDSN(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "\"'")
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") || strings.HasPrefix(lower, sqlitePrefix) {
		return s
	}
	if !kvPairRegex.MatchString(s) {
		return s
	}
	cleaned := strings.Join(strings.Fields(s), " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}

// SQLitePath returns the file (or ":memory:") part of a sqlite:// DSN.
func SQLitePath(dsn string) (string, bool) {
	if !strings.HasPrefix(strings.ToLower(dsn), sqlitePrefix) {
		return "", false
	}
	return dsn[len(sqlitePrefix):], true
}

// MaskDSN hides the password in either DSN form.
func MaskDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "***")
			return u.String()
		}
	}
	return kvPassword.ReplaceAllString(dsn, `${1}***`)
}

// ToURLDSN converts a key=value DSN to URL form, which golang-migrate requires.
func ToURLDSN(kvDSN string) string {
	if kvDSN == "" {
		return kvDSN
	}
	lower := strings.ToLower(kvDSN)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return kvDSN
	}
	m := map[string]string{}
	for _, part := range strings.Fields(kvDSN) {
		k, v, ok := strings.Cut(part, "=")
		if ok {
			m[strings.ToLower(k)] = v
		}
	}
	host, user, dbname := m["host"], m["user"], m["dbname"]
	if host == "" || user == "" || dbname == "" {
		return kvDSN
	}
	u := &url.URL{Scheme: "postgres", Host: host, Path: "/" + dbname}
	if port := m["port"]; port != "" {
		u.Host = host + ":" + port
	}
	if pass := m["password"]; pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	if sslm, ok := m["sslmode"]; ok {
		u.RawQuery = url.Values{"sslmode": {sslm}}.Encode()
	}
	return u.String()
}
