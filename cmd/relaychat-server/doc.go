// Package main provides the entry point for relaychat-server.
//
// relaychat-server is a multi-client TCP chat relay with token
// authentication, per-session rate limiting, and temporary bans for
// abusive origins.
package main
