package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestReadLine(t *testing.T) {
	var out bytes.Buffer
	got, err := ReadLine(rdr("  hello world \n"), "Name", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name: ", out.String())
}

func TestReadLine_EOF(t *testing.T) {
	var out bytes.Buffer
	got, err := ReadLine(rdr("lastline"), "Name", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = ReadLine(rdr(""), "Name", &out)
	assert.Error(t, err)
}

func TestReadMultiline(t *testing.T) {
	var out bytes.Buffer
	got, err := ReadMultiline(rdr("first\n  indented\n\nlast\n.\nafter\n"), "Content", &out)
	require.NoError(t, err)
	assert.Equal(t, "first\n  indented\n\nlast", got)
}

func TestReadMultiline_EOFEndsInput(t *testing.T) {
	var out bytes.Buffer
	got, err := ReadMultiline(rdr("a\nb"), "Content", &out)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)
}

func TestReadPassword_FallsBackWithoutTerminal(t *testing.T) {
	noTerminal(t)
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) {
		t.Fatal("terminal read used without a terminal")
		return nil, nil
	}

	var out bytes.Buffer
	got, err := ReadPassword(rdr("s3cret\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
}

func TestReadPassword_Terminal(t *testing.T) {
	oldTerm, oldRead := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = oldTerm, oldRead })
	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte("hidden"), nil }

	var out bytes.Buffer
	got, err := ReadPassword(rdr(""), &out)
	require.NoError(t, err)
	assert.Equal(t, "hidden", got)
	assert.Equal(t, "Password: \n", out.String())
}

func TestReadPassword_TerminalError(t *testing.T) {
	oldTerm, oldRead := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = oldTerm, oldRead })
	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }

	var out bytes.Buffer
	_, err := ReadPassword(rdr(""), &out)
	assert.Error(t, err)
}

// noTerminal makes ReadPassword read from its reader.
func noTerminal(t *testing.T) {
	t.Helper()
	old := isTerminal
	t.Cleanup(func() { isTerminal = old })
	isTerminal = func(int) bool { return false }
}
