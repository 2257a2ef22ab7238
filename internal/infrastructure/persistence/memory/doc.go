// Package memory provides in-process repositories. They back the API in
// development when no database is configured, and the application tests.
// Every method copies values in and out so callers never share state with
// the store.
package memory
