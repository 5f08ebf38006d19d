package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/validation"
)

// RegisterUserCommand creates an account from the command line, applying
// the same validation as the register endpoint.
type RegisterUserCommand struct {
	Email        string
	Username     string
	Password     string
	DatabasePath string
	BcryptCost   int

	out io.Writer
}

func NewRegisterUserCommand() *RegisterUserCommand {
	return &RegisterUserCommand{out: os.Stdout}
}

func (cmd *RegisterUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("register-user", flag.ContinueOnError)

	fs.StringVar(&cmd.Email, "email", "", "Email address of the new account (required)")
	fs.StringVar(&cmd.Username, "username", "", "Username of the new account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password of the new account (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.IntVar(&cmd.BcryptCost, "bcrypt-cost", auth.DefaultBcryptCost, "bcrypt cost used to hash the password")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s register-user -email <email> -username <name> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an account without going through the HTTP API.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	for name, value := range map[string]string{"email": cmd.Email, "username": cmd.Username, "password": cmd.Password} {
		if value == "" {
			return fmt.Errorf("required flag -%s not provided", name)
		}
	}
	return nil
}

func (cmd *RegisterUserCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.Open(absDBPath, logger.Silent)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	service := auth.NewService(users.NewRepository(db.DB), nil, nil, nil, nil, config.Auth{BcryptCost: cmd.BcryptCost})
	user, err := service.Register(auth.RegisterInput{
		Email:           cmd.Email,
		Username:        cmd.Username,
		Password:        cmd.Password,
		ConfirmPassword: cmd.Password,
	})
	if err != nil {
		var fe validation.FieldErrors
		if errors.As(err, &fe) {
			cmd.printFieldErrors(fe)
			return fmt.Errorf("validation failed")
		}
		return err
	}

	fmt.Fprintf(cmd.out, "Created user %s <%s> (id %d) in %s\n", user.Username, user.Email, user.ID, absDBPath)
	return nil
}

func (cmd *RegisterUserCommand) printFieldErrors(fe validation.FieldErrors) {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		for _, msg := range fe[field] {
			fmt.Fprintf(cmd.out, "  %s: %s\n", field, msg)
		}
	}
}
