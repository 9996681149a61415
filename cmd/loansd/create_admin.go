package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/AntonStoeckl/library-loans-go/accessgate"
	"github.com/AntonStoeckl/library-loans-go/loanengine"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

var (
	errMissingAdminFlags = errors.New("--name and --email are required")
	errPasswordsDiffer   = errors.New("passwords do not match")
)

func newCreateAdminCommand() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Register an admin user, reading the password from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
				return errMissingAdminFlags
			}

			env, err := prepareCommand(cmd)
			if err != nil {
				return err
			}

			password, err := promptPassword(os.Stdin, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			hash, err := accessgate.HashPassword(password)
			if err != nil {
				return err
			}

			opened, err := openStore(cmd.Context(), env.store, env.logger)
			if err != nil {
				return err
			}
			defer opened.close()

			if err = opened.migrate(cmd.Context()); err != nil {
				return err
			}

			engine, err := loanengine.New(opened.store, loanengine.WithLogger(env.logger))
			if err != nil {
				return err
			}

			result, err := engine.RegisterUser(cmd.Context(), loanengine.UserDetails{
				Name:         name,
				Email:        email,
				PasswordHash: hash,
				Role:         recordstore.RoleAdmin,
			})
			if err != nil {
				return err
			}

			if result.IsRejected() {
				return rejected("register admin "+email, result.HandlerResult)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), result.User.ID)

			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name of the admin")
	cmd.Flags().StringVar(&email, "email", "", "login email of the admin")

	return cmd
}

// promptPassword asks twice on a terminal. Piped input is read as a single line without confirmation.
func promptPassword(stdin *os.File, prompts io.Writer) (string, error) {
	fd := int(stdin.Fd())
	if !term.IsTerminal(fd) {
		return readPasswordLine(stdin)
	}

	readOnce := func(prompt string) (string, error) {
		_, _ = fmt.Fprint(prompts, prompt)
		raw, err := term.ReadPassword(fd)
		_, _ = fmt.Fprintln(prompts)

		return string(raw), err
	}

	password, err := readOnce("Password: ")
	if err != nil {
		return "", err
	}

	confirmation, err := readOnce("Repeat password: ")
	if err != nil {
		return "", err
	}

	if password != confirmation {
		return "", errPasswordsDiffer
	}

	return password, nil
}

func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}
