package shared

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override credentials from config.toml.
const (
	EnvGoogleClientID     = "TVTRACK_GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret = "TVTRACK_GOOGLE_CLIENT_SECRET"
	EnvRemoteProjectID    = "TVTRACK_REMOTE_PROJECT_ID"
	EnvDatabasePath       = "TVTRACK_DATABASE_PATH"
)

// LoadEnv loads variables from the given dotenv files into the process environment.
//
// Missing files are ignored; existing variables are never overwritten.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// ApplyEnv copies non-empty TVTRACK_* variables over the matching config fields.
func ApplyEnv(config *Config) {
	for env, target := range map[string]*string{
		EnvGoogleClientID:     &config.Credentials.Google.ClientID,
		EnvGoogleClientSecret: &config.Credentials.Google.ClientSecret,
		EnvRemoteProjectID:    &config.Remote.ProjectID,
		EnvDatabasePath:       &config.Database.Path,
	} {
		if v := os.Getenv(env); v != "" {
			*target = v
		}
	}
}
