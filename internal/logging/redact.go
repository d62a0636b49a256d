// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package logging

import (
	"net/url"
	"strings"
)

// RedactDSN masks the password in a keyword/value connection string so the
// target can be logged at startup without leaking credentials.
// Example: "host=db user=app password=hunter2" -> "host=db user=app password=***"
func RedactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	if strings.Contains(dsn, "://") {
		return RedactURL(dsn)
	}

	fields := strings.Fields(dsn)
	for i, field := range fields {
		key, _, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		if strings.EqualFold(key, "password") {
			fields[i] = key + "=***"
		}
	}
	return strings.Join(fields, " ")
}

// RedactURL masks the userinfo password in a URL.
// Example: "postgres://app:hunter2@db:5432/content" -> "postgres://app:***@db:5432/content"
func RedactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
