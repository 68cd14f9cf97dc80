// Package services composes the backend client, the session and the
// collection caches into the operations the terminal UI calls.
package services
