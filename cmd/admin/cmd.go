package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/app/services"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	users         repositories.IUserRepository
	userService   services.UserService
	migrate       func(ctx context.Context, dir string) error
	migrationsDir string
	out           io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate [-dir DIR]                                    - apply pending SQL migrations")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL -name NAME -studentid ID [-admin] - create or update a user")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL                            - reset a user's password")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	migrateCmd := flag.NewFlagSet("migrate", flag.ContinueOnError)
	migrateDir := migrateCmd.String("dir", cli.migrationsDir, "Directory holding the *.sql migrations.")

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The user's display name.")
	addUserStudentID := addUserCmd.String("studentid", "", "Student number; required for new users.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant the admin role.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	for _, fs := range []*flag.FlagSet{migrateCmd, addUserCmd, resetPasswordCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if err := migrateCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if err := cli.migrate(ctx, *migrateDir); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Migrations applied.")
		return nil

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserEmail == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(ctx, *addUserEmail, *addUserName, *addUserStudentID, pwd, *addUserAdmin)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordEmail, pwd)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// addUser creates the user, or updates name, role and password when the email is taken.
func (cli *commandLine) addUser(ctx context.Context, email, name, studentID, pwd string, isAdmin bool) error {
	role := "student"
	if isAdmin {
		role = "admin"
	}

	existing, err := cli.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil && !apperrors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}

	if existing == nil {
		user, err := cli.userService.CreateUser(ctx, dto.CreateUserRequest{
			StudentID: studentID,
			Name:      name,
			Email:     email,
			Password:  pwd,
			Role:      role,
		})
		if err != nil {
			return describe(err)
		}
		fmt.Fprintf(cli.out, "User %s created (id %d, role %s).\n", user.Email, user.ID, user.Role)
		return nil
	}

	update := dto.UpdateUserRequest{Name: &name, Role: &role, Password: &pwd}
	if studentID != "" {
		update.StudentID = &studentID
	}
	user, err := cli.userService.UpdateUser(ctx, existing.ID, update)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(cli.out, "User %s updated (id %d, role %s).\n", user.Email, user.ID, user.Role)
	return nil
}

func (cli *commandLine) resetPassword(ctx context.Context, email, pwd string) error {
	user, err := cli.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return describe(err)
	}
	if err := cli.userService.ResetPassword(ctx, user.ID, pwd); err != nil {
		return describe(err)
	}
	fmt.Fprintf(cli.out, "Password of %s reset.\n", user.Email)
	return nil
}

// describe prefers the user-facing message of service errors.
func describe(err error) error {
	if msg, ok := apperrors.Message(err); ok {
		return errors.New(msg)
	}
	return err
}
