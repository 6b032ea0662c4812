// Command useradd registers a password user in the to-do list database.
//
//	useradd -email alice@example.com -d postgres://...
//
// The password is prompted for on a terminal, or read from stdin when piped.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/dmitrijs2005/todolist/internal/flagx"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/config"
	"github.com/dmitrijs2005/todolist/internal/useradd"
)

func main() {
	args := os.Args[1:]

	fs := flag.NewFlagSet("useradd", flag.ExitOnError)
	email := fs.String("email", "", "email of the new user")
	_ = fs.Parse(flagx.FilterArgs(args, []string{"-email", "--email"}))

	cfg, err := config.LoadConfig(args)
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Production)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	registrar, closeDB, err := useradd.OpenRegistrar(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = closeDB() }()

	if err := useradd.Run(ctx, registrar, *email, os.Stdin, os.Stdout); err != nil {
		log.Printf("%v", err)
		_ = closeDB()
		os.Exit(1)
	}
}
