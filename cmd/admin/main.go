package main

import (
	"log"
	"os"

	"github.com/studyhive/studyhive/internal/config"
	"github.com/studyhive/studyhive/internal/database"
	"github.com/studyhive/studyhive/internal/user"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds)

	cfg := config.Load()

	// set up DB
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	errAndDie(err)
	defer db.Close()

	// start CLI
	cli := commandLine{
		db:    db,
		users: user.NewService(user.NewRepository(db)),
		out:   os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("error: %s", err)
		}
		db.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
