// Package tui implements the interactive terminal client for relaychat.
//
// The client is a single bubbletea program: a scrollback viewport over
// the chat history and a one-line input field. A background goroutine
// pumps lines from the server connection into the program as messages,
// so the model itself never touches the socket read path.
package tui
