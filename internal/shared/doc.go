// Package shared holds helpers used across packages. Its testutil
// subpackage provides a buffered slog handler for asserting on log output
// and the score fixtures shared by the service, transport and app tests.
package shared
