// Command useradd provisions site accounts. There is no registration over
// HTTP; the operator creates users here.
//
//	useradd -email me@julo.ch -first Julian -last Ott
//	useradd -email me@julo.ch -passwd      # reset the password
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/julo-ch/www/internal/auth"
	"github.com/julo-ch/www/internal/config"
	"github.com/julo-ch/www/internal/database"
	"github.com/julo-ch/www/internal/logging"
	"github.com/julo-ch/www/internal/model"
	"github.com/julo-ch/www/internal/repository"
	"github.com/julo-ch/www/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "useradd:", err)
		os.Exit(1)
	}
}

func run() error {
	email := flag.String("email", "", "e-mail address (login name)")
	first := flag.String("first", "", "first name")
	last := flag.String("last", "", "last name")
	passwd := flag.Bool("passwd", false, "change the password of an existing user")
	flag.Parse()
	if strings.TrimSpace(*email) == "" {
		flag.Usage()
		return errors.New("-email is required")
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	users := repository.NewUserRepo(db)

	pw, err := readPassword()
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(pw, cfg.BcryptCost)
	if err != nil {
		return err
	}

	if *passwd {
		u, err := users.GetByEmail(ctx, *email)
		if err != nil {
			return err
		}
		sessions := session.NewManager(db, cfg.Session, logging.New(os.Stderr, cfg.Env, cfg.Debug))
		if err := sessions.ResetPassword(ctx, u.ID, hash); err != nil {
			return err
		}
		fmt.Printf("password changed for %s, all sessions ended\n", u.Email)
		return nil
	}

	u := &model.User{Email: *email, PasswordHash: hash, FirstName: *first, LastName: *last, Active: true}
	id, err := users.Create(ctx, u)
	if err != nil {
		return err
	}
	fmt.Printf("created user %d <%s>\n", id, u.Email)
	return nil
}

// readPassword prompts twice on a terminal, or reads one line from a pipe.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password: %w", err)
		}
		return validPassword(strings.TrimRight(line, "\r\n"))
	}
	fmt.Fprint(os.Stderr, "Password: ")
	a, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "Repeat: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(a) != string(b) {
		return "", errors.New("passwords do not match")
	}
	return validPassword(string(a))
}

func validPassword(pw string) (string, error) {
	if pw == "" {
		return "", errors.New("empty password")
	}
	if len(pw) > 72 {
		return "", errors.New("password longer than 72 bytes")
	}
	return pw, nil
}
