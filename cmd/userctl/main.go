// Command userctl provisions user accounts, roles and role assignments in
// the credential store. It writes through the same store the service reads,
// so seeded data is immediately visible to login flows.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"bank-identity/internal/config"
	"bank-identity/internal/domain"
	"bank-identity/internal/password"
	"bank-identity/internal/repository"
	"bank-identity/internal/repository/sqlite"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	store := sqlite.NewCredentialStore(db)
	if err := store.Init(ctx); err != nil {
		logger.Fatalf("init credential store: %v", err)
	}

	switch os.Args[1] {
	case "add-user":
		err = addUser(ctx, store, cfg, os.Args[2:])
	case "add-role":
		err = addRole(ctx, store, os.Args[2:])
	case "assign-role":
		err = assignRole(ctx, store, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatalf("%s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: userctl <command> [flags]

commands:
  add-user     create a user account (prompts for a password)
  add-role     create a role
  assign-role  link a user to a role`)
}

func addUser(ctx context.Context, store repository.CredentialStore, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("add-user", flag.ExitOnError)
	username := fs.String("username", "", "unique login name")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	email := fs.String("email", "", "email address")
	ssn := fs.String("ssn", "", "social security number (XXX-XX-XXXX, optional)")
	dob := fs.String("dob", "", "date of birth (2006-01-02)")
	schemeName := fs.String("scheme", cfg.Auth.PasswordScheme, "password hash scheme")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dateOfBirth, err := time.Parse("2006-01-02", *dob)
	if err != nil {
		return fmt.Errorf("parse -dob: %w", err)
	}

	scheme, err := password.ByName(*schemeName)
	if err != nil {
		return err
	}

	plaintext, err := promptPassword()
	if err != nil {
		return err
	}
	if violations := domain.ValidateLoginInput(*username, plaintext); len(violations) > 0 {
		return fmt.Errorf("invalid input: %v", violations)
	}

	hash, err := scheme.Generate(plaintext)
	if err != nil {
		return err
	}

	user := &domain.UserAccount{
		Person: domain.Person{
			FirstName:            *first,
			LastName:             *last,
			EmailAddress:         *email,
			SocialSecurityNumber: *ssn,
			DateOfBirth:          dateOfBirth,
		},
		Username:     *username,
		PasswordHash: hash,
	}
	if violations := domain.ValidateUserAccount(user); len(violations) > 0 {
		return fmt.Errorf("invalid account: %v", violations)
	}

	id, err := store.CreateUser(ctx, user)
	if err != nil {
		return err
	}
	fmt.Printf("created user %q with subject id %d (%s scheme)\n", user.Username, id, scheme.Name())
	return nil
}

func addRole(ctx context.Context, store repository.CredentialStore, args []string) error {
	fs := flag.NewFlagSet("add-role", flag.ExitOnError)
	name := fs.String("name", "", "role name")
	inactive := fs.Bool("inactive", false, "create the role deactivated")
	if err := fs.Parse(args); err != nil {
		return err
	}

	role := &domain.Role{Name: *name, Active: !*inactive}
	if violations := domain.ValidateRole(role); len(violations) > 0 {
		return fmt.Errorf("invalid role: %v", violations)
	}

	id, err := store.CreateRole(ctx, role)
	if err != nil {
		return err
	}
	fmt.Printf("created role %q with id %d\n", role.Name, id)
	return nil
}

func assignRole(ctx context.Context, store repository.CredentialStore, args []string) error {
	fs := flag.NewFlagSet("assign-role", flag.ExitOnError)
	username := fs.String("username", "", "login name of the user")
	roleName := fs.String("role", "", "role name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := store.FindByUsername(ctx, *username)
	if err != nil {
		return fmt.Errorf("find user %q: %w", *username, err)
	}
	role, err := store.FindRoleByName(ctx, *roleName)
	if err != nil {
		return fmt.Errorf("find role %q: %w", *roleName, err)
	}

	if err := store.AssignRole(ctx, user.ID, role.ID); err != nil {
		return err
	}
	fmt.Printf("assigned role %q to %q\n", role.Name, user.Username)
	return nil
}

// promptPassword reads the password without echo when stdin is a terminal,
// falling back to a plain line read so the command stays scriptable.
func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, "password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(os.Stderr, "confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
