package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"warden/cmd/internal/auth/credential"
	"warden/cmd/security/password"
)

var errNoPassword = errors.New("missing password from stdin")

func hashPasswordCmd() *cli.Command {
	return &cli.Command{
		Name:  "hash-password",
		Usage: "Hash a password read from stdin for use in a users file",
		Action: func(c *cli.Context) error {
			cfg, err := password.FromEnv()
			if err != nil {
				return err
			}
			return hashPassword(cfg, c.App.Reader, c.App.Writer)
		},
	}
}

func basicHeaderCmd() *cli.Command {
	var email string
	return &cli.Command{
		Name:  "basic-header",
		Usage: "Print an Authorization header value; the password is read from stdin",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "Email of the user",
				Destination: &email,
				Required:    true,
			},
		},
		Action: func(c *cli.Context) error {
			return basicHeader(email, c.App.Reader, c.App.Writer)
		},
	}
}

func hashPassword(cfg password.Config, in io.Reader, out io.Writer) error {
	pw, err := readPassword(in)
	if err != nil {
		return err
	}
	hash, err := cfg.Hash(pw)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}

func basicHeader(email string, in io.Reader, out io.Writer) error {
	pw, err := readPassword(in)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, credential.EncodeBasic(email, pw))
	return err
}

func readPassword(in io.Reader) (string, error) {
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errNoPassword
	}
	pw := strings.TrimRight(sc.Text(), "\r")
	if pw == "" {
		return "", errNoPassword
	}
	return pw, nil
}
