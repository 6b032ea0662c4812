package useradd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/config"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistrar struct {
	email, password string
	err             error
}

func (f *fakeRegistrar) Register(_ context.Context, email, password string) (*models.User, error) {
	f.email, f.password = email, password
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: "u-1", Email: strings.ToLower(email)}, nil
}

// withTerminal fakes stdin being a terminal that answers with passwords.
func withTerminal(t *testing.T, passwords ...string) {
	t.Helper()
	oldTerm, oldRead := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = oldTerm, oldRead })

	isTerminal = func() bool { return true }
	readPassword = func(int) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, errors.New("no more input")
		}
		pw := passwords[0]
		passwords = passwords[1:]
		return []byte(pw), nil
	}
}

func withPipe(t *testing.T) {
	t.Helper()
	old := isTerminal
	t.Cleanup(func() { isTerminal = old })
	isTerminal = func() bool { return false }
}

func TestRun_Terminal(t *testing.T) {
	withTerminal(t, "s3cret", "s3cret")
	r := &fakeRegistrar{}
	var out bytes.Buffer

	err := Run(context.Background(), r, "", strings.NewReader("A@x.com\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "A@x.com", r.email)
	assert.Equal(t, "s3cret", r.password)
	assert.Contains(t, out.String(), "Enter password: ")
	assert.Contains(t, out.String(), "Repeat password: ")
	assert.Contains(t, out.String(), "Registered a@x.com (id=u-1)")
}

func TestRun_TerminalMismatch(t *testing.T) {
	withTerminal(t, "one", "two")
	r := &fakeRegistrar{}

	err := Run(context.Background(), r, "a@x.com", strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Empty(t, r.email, "nothing registered")
}

func TestRun_TerminalReadError(t *testing.T) {
	withTerminal(t)
	err := Run(context.Background(), &fakeRegistrar{}, "a@x.com", strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorContains(t, err, "read password")
}

func TestRun_Piped(t *testing.T) {
	withPipe(t)
	r := &fakeRegistrar{}

	err := Run(context.Background(), r, "", strings.NewReader("a@x.com\npiped pw"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", r.email)
	assert.Equal(t, "piped pw", r.password)
}

func TestRun_PipedEmptyInput(t *testing.T) {
	withPipe(t)
	err := Run(context.Background(), &fakeRegistrar{}, "a@x.com", strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorContains(t, err, "read password")
}

func TestRun_AlreadyRegistered(t *testing.T) {
	withPipe(t)
	r := &fakeRegistrar{err: common.ErrorAlreadyRegistered}

	err := Run(context.Background(), r, "a@x.com", strings.NewReader("pw\n"), &bytes.Buffer{})
	assert.EqualError(t, err, "a@x.com is already registered")
}

func TestRun_ValidationErrorPassesThrough(t *testing.T) {
	withPipe(t)
	r := &fakeRegistrar{err: common.ErrorValidation}

	err := Run(context.Background(), r, "a@x.com", strings.NewReader("\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(bufioReader("hello world\n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())

	got, err = GetSimpleText(bufioReader("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(bufioReader(""), "Name?", &out)
	assert.Error(t, err)
}

func TestOpenRegistrar_RejectsMemory(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseDSN = config.MemoryDSN

	_, _, err := OpenRegistrar(context.Background(), cfg, logging.NewNop())
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func bufioReader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}
