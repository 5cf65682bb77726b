// Package cli is the interactive terminal front end of the workspace client.
//
// It reads one command per line, dispatches it to the workspace and prints
// the outcome. Every workspace action returns a Result, so failures are
// turned into a message here and never abort the loop.
package cli
