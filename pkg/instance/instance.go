package instance

import (
	"os"

	"github.com/breezepoint/breezepoint-backend/pkg/env"
)

// GetID returns the process instance identifier used in logs and lock ownership.
// BREEZEPOINT_INSTANCE_ID wins, then the platform's DYNO, then the hostname.
func GetID() string {
	if id := env.Get("BREEZEPOINT_INSTANCE_ID", env.Get("DYNO", "")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
