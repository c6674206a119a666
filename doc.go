// Package main provides the entry point of the PropDesk Console.
// The console signs operators in against the PropDesk property management
// backend, keeps their access token fresh, loads the screens they were
// granted and guards every route of its local web shell with those
// permissions. The same session core backs the login, whoami, can-access
// and permissions commands of the CLI.
package main
