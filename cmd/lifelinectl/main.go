package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/andriandrian/lifeline-admin/internal/cli"
	"github.com/andriandrian/lifeline-admin/internal/config"
	"github.com/andriandrian/lifeline-admin/internal/logging"
	"github.com/andriandrian/lifeline-admin/internal/session"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		logrus.WithError(err).Fatal("could not load configuration")
	}
	log := logging.New(cfg.Log)

	store, err := session.OpenFileStore(cfg.Session.File)
	if err != nil {
		log.WithError(err).Fatal("could not open the session file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cli.New(cfg, store, os.Stdin, os.Stdout, log)
	code := cli.Execute(ctx, cli.NewRootCmd(app), os.Stderr)
	stop()
	os.Exit(code)
}
