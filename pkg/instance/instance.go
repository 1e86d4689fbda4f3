package instance

import (
	"os"

	"github.com/angelmondragon/estimates-backend/pkg/env"
)

// GetID names the running process in logs: the dyno, then the hostname,
// then "local".
func GetID() string {
	if id := env.Get("DYNO", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
