package instance

import "github.com/angelmondragon/listingz-backend/pkg/env"

// GetID returns the process instance identifier used in boot logs.
func GetID() string {
	return env.FirstOf("local", "LISTINGZ_INSTANCE_ID", "DYNO", "HOSTNAME")
}

// Addr resolves the listen address, letting a platform-provided PORT win.
func Addr(configured string) string {
	return ":" + env.FirstOf(configured, "PORT")
}
