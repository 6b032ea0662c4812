// Package useradd implements the operator command that registers password
// users directly against the database.
package useradd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/auth"
	"github.com/dmitrijs2005/todolist/internal/server/config"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todolist/internal/server/services"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrNoDatabase       = errors.New("useradd needs a database, the in-memory store is per process")
)

// Registrar creates password users.
type Registrar interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
}

// Run asks for whatever is missing and registers the user. On a terminal
// the password is read twice without echo; otherwise it is the next line
// of in, so the command can be scripted.
func Run(ctx context.Context, r Registrar, email string, in io.Reader, w io.Writer) error {
	reader := bufio.NewReader(in)

	var err error
	if strings.TrimSpace(email) == "" {
		if email, err = GetSimpleText(reader, "Email", w); err != nil {
			return fmt.Errorf("read email: %w", err)
		}
	}

	password, err := readNewPassword(reader, w)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := r.Register(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyRegistered) {
			return fmt.Errorf("%s is already registered", email)
		}
		return err
	}

	_, err = fmt.Fprintf(w, "Registered %s (id=%s)\n", user.Email, user.ID)
	return err
}

func readNewPassword(reader *bufio.Reader, w io.Writer) ([]byte, error) {
	if !isTerminal() {
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return nil, fmt.Errorf("read password: %w", err)
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}

	pw, err := GetPassword("Enter password: ", w)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	again, err := GetPassword("Repeat password: ", w)
	if err != nil {
		common.WipeByteArray(pw)
		return nil, fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(again)

	if !bytes.Equal(pw, again) {
		common.WipeByteArray(pw)
		return nil, ErrPasswordMismatch
	}
	return pw, nil
}

// OpenRegistrar connects to the configured database, applies migrations
// and returns a registrar with its close function.
func OpenRegistrar(ctx context.Context, cfg *config.Config, logger logging.Logger) (Registrar, func() error, error) {
	if cfg.InMemory() {
		return nil, nil, ErrNoDatabase
	}

	db, err := repomanager.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	identity := services.NewIdentityService(db, rm, auth.NewBcryptHasher(bcrypt.DefaultCost), logger)
	return identity, db.Close, nil
}
