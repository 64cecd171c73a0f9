//go:build integration

package testdb

import "os"

// Environment variables consulted for the test database, in order.
const (
	EnvTestDatabaseURL = "PICTUREBOOK_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

// GetTestDatabaseURL returns the first non-empty test database URL.
func GetTestDatabaseURL() string {
	for _, name := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		if url := os.Getenv(name); url != "" {
			return url
		}
	}
	return ""
}

// ShouldSkipDatabaseTest reports whether no test database is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

// isCIEnvironment returns true if running in any type of CI environment.
func isCIEnvironment() bool {
	for _, name := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}
