package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/repositories/memory"
	"github.com/yigit/coursehub/internal/app/services"
	"github.com/yigit/coursehub/internal/pkg/auth"
)

var hasher = auth.BcryptHasher{Cost: bcrypt.MinCost}

func setup(t *testing.T, password string) (*commandLine, *bytes.Buffer, *[]string) {
	t.Helper()
	users := memory.NewStore().Repositories().Users
	out := &bytes.Buffer{}
	migrated := &[]string{}

	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() { readPasswordFunc = orig })

	return &commandLine{
		users:       users,
		userService: services.NewUserService(users, hasher),
		migrate: func(_ context.Context, dir string) error {
			if dir == "broken" {
				return errors.New("syntax error at or near \"CREAT\"")
			}
			*migrated = append(*migrated, dir)
			return nil
		},
		migrationsDir: "migrations",
		out:           out,
	}, out, migrated
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(context.Background(), append([]string{"admin"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				assert.EqualError(t, err, tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_help(t *testing.T) {
	cli, out, _ := setup(t, "password123")

	runCLITests(t, cli, []cliTest{
		{name: "no command", args: nil, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"adduser", "-lol"}, wantErr: errHelp},
	})
	assert.Contains(t, out.String(), "Usage:")
}

func Test_commandLine_migrate(t *testing.T) {
	cli, out, migrated := setup(t, "")

	runCLITests(t, cli, []cliTest{
		{name: "default dir", args: []string{"migrate"}},
		{name: "custom dir", args: []string{"migrate", "-dir", "db/sql"}},
		{name: "failing migration", args: []string{"migrate", "-dir", "broken"}, wantErrStr: "syntax error at or near \"CREAT\""},
	})
	assert.Equal(t, []string{"migrations", "db/sql"}, *migrated)
	assert.Contains(t, out.String(), "Migrations applied.")
}

func Test_commandLine_adduser(t *testing.T) {
	cli, out, _ := setup(t, "password123")
	ctx := context.Background()

	runCLITests(t, cli, []cliTest{
		{name: "no email", args: []string{"adduser", "-name", "Ada"}, wantErr: errHelp},
		{name: "no name", args: []string{"adduser", "-email", "ada@example.com"}, wantErr: errHelp},
		{name: "invalid email", args: []string{"adduser", "-email", "ada", "-name", "Ada", "-studentid", "S1"}, wantErrStr: "Invalid email format"},
		{name: "new user without student id", args: []string{"adduser", "-email", "ada@example.com", "-name", "Ada"}, wantErrStr: "Missing required field: student_id"},
		{name: "create admin", args: []string{"adduser", "-email", "ada@example.com", "-name", "Ada", "-studentid", "S1", "-admin"}},
	})

	user, err := cli.users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.True(t, hasher.Check(user.Password, "password123"))
	assert.Contains(t, out.String(), "User ada@example.com created")

	readPasswordFunc = func(int) ([]byte, error) { return []byte("another-secret"), nil }
	runCLITests(t, cli, []cliTest{
		{name: "update existing", args: []string{"adduser", "-email", "ADA@example.com", "-name", "Ada L."}},
	})

	user, err = cli.users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", user.Name)
	assert.Equal(t, models.RoleStudent, user.Role)
	require.NotNil(t, user.StudentID)
	assert.Equal(t, "S1", *user.StudentID)
	assert.True(t, hasher.Check(user.Password, "another-secret"))

	readPasswordFunc = func(int) ([]byte, error) { return nil, nil }
	runCLITests(t, cli, []cliTest{
		{name: "empty password", args: []string{"adduser", "-email", "bob@example.com", "-name", "Bob", "-studentid", "S2"}, wantErr: errHelp},
	})
}

func Test_commandLine_resetpassword(t *testing.T) {
	cli, _, _ := setup(t, "password123")
	ctx := context.Background()

	require.NoError(t, cli.run(ctx, []string{"admin", "adduser", "-email", "ada@example.com", "-name", "Ada", "-studentid", "S1"}))

	readPasswordFunc = func(int) ([]byte, error) { return []byte("short"), nil }
	runCLITests(t, cli, []cliTest{
		{name: "no email", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "unknown user", args: []string{"resetpassword", "-email", "nobody@example.com"}, wantErrStr: "user not found"},
		{name: "too short", args: []string{"resetpassword", "-email", "ada@example.com"}, wantErrStr: "Password must be at least 8 characters"},
	})

	readPasswordFunc = func(int) ([]byte, error) { return bytes.Repeat([]byte("x"), 73), nil }
	runCLITests(t, cli, []cliTest{
		{name: "over bcrypt limit", args: []string{"resetpassword", "-email", "ada@example.com"}, wantErrStr: "Password must be at most 72 bytes"},
	})

	readPasswordFunc = func(int) ([]byte, error) { return []byte("brand-new-pass"), nil }
	runCLITests(t, cli, []cliTest{
		{name: "reset", args: []string{"resetpassword", "-email", "ada@example.com"}},
	})

	user, err := cli.users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, hasher.Check(user.Password, "brand-new-pass"))
}
