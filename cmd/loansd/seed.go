package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/accessgate"
	"github.com/AntonStoeckl/library-loans-go/loanengine"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

const seedPassword = "123456"

var errSeedRejected = errors.New("seed data was rejected")

type seedUser struct {
	name, email string
	role        recordstore.Role
	deactivate  bool
}

var seedUsers = []seedUser{
	{name: "Admin User", email: "admin@example.com", role: recordstore.RoleAdmin},
	{name: "John Doe", email: "john@example.com", role: recordstore.RoleMember},
	{name: "Jane Doe", email: "jane@example.com", role: recordstore.RoleMember},
	{name: "Inactive User", email: "inactive@example.com", role: recordstore.RoleMember, deactivate: true},
}

var seedBooks = []loanengine.BookDetails{
	{Title: "El Quijote", Author: "Miguel de Cervantes", ISBN: "9788420412146", PublishedYear: 1605, Genre: "Novela", Copies: 5},
	{Title: "Cien años de soledad", Author: "Gabriel García Márquez", ISBN: "9788420471839", PublishedYear: 1967, Genre: "Realismo mágico", Copies: 3},
	{Title: "Harry Potter y la piedra filosofal", Author: "J.K. Rowling", ISBN: "9788478884459", PublishedYear: 1997, Genre: "Fantasía", Copies: 10},
	{Title: "1984", Author: "George Orwell", ISBN: "9788499890944", PublishedYear: 1949, Genre: "Distopía", Copies: 7},
	{Title: "El principito", Author: "Antoine de Saint-Exupéry", ISBN: "9788478887194", PublishedYear: 1943, Genre: "Fábula", Copies: 4},
	{Title: "Libro descatalogado", Author: "Autor Ejemplo", ISBN: "9788412345678", PublishedYear: 2010, Genre: "Ejemplo", Copies: 1},
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty record store with demo users, books and loans",
		Long: "Fill an empty record store with demo users, books and loans.\n" +
			"All demo users share the password " + seedPassword + ". Seeding a store that already has the admin user does nothing.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := prepareCommand(cmd)
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

			return seed(cmd.Context(), engine, env.logger, time.Now())
		},
	}
}

// seed writes the demo data through the engine, so every record passes the same rules as live traffic.
func seed(ctx context.Context, engine *loanengine.Engine, logger *slog.Logger, now time.Time) error {
	hash, err := accessgate.HashPassword(seedPassword)
	if err != nil {
		return err
	}

	users := make(map[string]uuid.UUID, len(seedUsers))

	for _, u := range seedUsers {
		result, registerErr := engine.RegisterUser(ctx, loanengine.UserDetails{
			Name:         u.name,
			Email:        u.email,
			PasswordHash: hash,
			Role:         u.role,
		})
		if registerErr != nil {
			return registerErr
		}

		if result.IsRejected() {
			if u.role.IsAdmin() && result.Rejection.Kind == core.RejectionConflict {
				logger.Info("store is already seeded, nothing to do")

				return nil
			}

			return rejected("register user "+u.email, result.HandlerResult)
		}

		users[u.email] = result.User.ID

		if u.deactivate {
			if _, err = engine.DeactivateUser(ctx, result.User.ID); err != nil {
				return err
			}
		}
	}

	books := make(map[string]uuid.UUID, len(seedBooks))

	for _, b := range seedBooks {
		result, addErr := engine.AddBook(ctx, b)
		if addErr != nil {
			return addErr
		}

		if result.IsRejected() {
			return rejected("add book "+b.ISBN, result.HandlerResult)
		}

		books[b.Title] = result.Book.ID
	}

	john := users["john@example.com"]
	jane := users["jane@example.com"]

	if _, err = seedLoan(ctx, engine, john, books["El Quijote"], now); err != nil {
		return err
	}

	janesLoan, err := seedLoan(ctx, engine, jane, books["Cien años de soledad"], now.AddDate(0, 0, -7))
	if err != nil {
		return err
	}

	returned, err := engine.ReturnLoan(ctx, janesLoan, core.Caller{ID: jane, Role: recordstore.RoleMember})
	if err != nil {
		return err
	}

	if returned.IsRejected() {
		return rejected("return loan", returned.HandlerResult)
	}

	// The copy of the withdrawn book stays on loan, so it ends inactive with nothing on the shelf.
	if _, err = seedLoan(ctx, engine, john, books["Libro descatalogado"], now.AddDate(0, 0, -14)); err != nil {
		return err
	}

	if _, err = engine.DeactivateBook(ctx, books["Libro descatalogado"]); err != nil {
		return err
	}

	logger.Info("seeded demo data", "users", len(users), "books", len(books), "loans", 3)

	return nil
}

func seedLoan(ctx context.Context, engine *loanengine.Engine, userID, bookID uuid.UUID, borrowDate time.Time) (uuid.UUID, error) {
	result, err := engine.CreateLoan(ctx, userID, bookID, &borrowDate)
	if err != nil {
		return uuid.Nil, err
	}

	if result.IsRejected() {
		return uuid.Nil, rejected("create loan", result.HandlerResult)
	}

	return result.Loan.ID, nil
}

func rejected(step string, result shell.HandlerResult) error {
	return fmt.Errorf("%w: %s: %s", errSeedRejected, step, result.Rejection)
}
