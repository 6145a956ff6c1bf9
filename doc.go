// Package main is the entry point of nexus, a self-hosted home dashboard.
// The server keeps a single settings document (widgets and display
// preferences) in a file, SQL database or key-value store, serves it through
// a JSON API and renders a read-only dashboard page. The remaining commands
// edit the document locally, through a running server, or keep a local JSON
// file in sync with it.
package main
