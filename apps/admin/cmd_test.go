package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/user"
	sheetsvc "github.com/JoanAquinoVasquez/SISCON-sub000/services/sheets"
	inmemdb "github.com/JoanAquinoVasquez/SISCON-sub000/storage/database/inmem"
	testutil "github.com/JoanAquinoVasquez/SISCON-sub000/tests"
)

type fakeSyncer struct {
	calls int
	err   error
}

func (s *fakeSyncer) Sync(context.Context) (sheetsvc.SyncResult, error) {
	s.calls++
	if s.err != nil {
		return sheetsvc.SyncResult{}, s.err
	}
	return sheetsvc.SyncResult{Sheets: []sheetsvc.SheetResult{{Sheet: "Pagos", Rows: 3}}}, nil
}

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()
	out := new(bytes.Buffer)
	return &commandLine{
		usrRepo: inmemdb.NewUserRepository(inmemdb.Open()),
		sheets:  &fakeSyncer{},
		out:     out,
	}, out
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		assert.EqualError(t, err, tt.wantErrStr)
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	var gotCmd string
	var gotArgs []string
	orig := migrateFunc
	migrateFunc = func(db *sql.DB, command string, args ...string) error {
		gotCmd, gotArgs = command, args
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}
	t.Cleanup(func() { migrateFunc = orig })

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	require.NoError(t, cli.run([]string{"admin", "migrate", "up-to", "3"}))
	assert.Equal(t, "up-to", gotCmd)
	assert.Equal(t, []string{"3"}, gotArgs)
}

func Test_commandLine_addUser(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		mockPassword(t, "")
		for _, tt := range []cliTest{
			{name: "no command", wantErr: errHelp},
			{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
			{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
			{name: "no email", args: []string{"adduser", "-username", "jperez"}, wantErr: errHelp},
			{name: "no password", args: []string{"adduser", "-username", "jperez", "-email", "jperez@unprg.edu.pe"}, wantErr: errHelp},
		} {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
			})
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		mockPassword(t, "Clave.Segura1")
		err := cli.run([]string{"admin", "adduser", "-username", "jperez", "-email", "jperez@unprg.edu.pe", "-role", "jefe:"})
		assert.EqualError(t, err, "\"jefe:\": no such role")
	})

	t.Run("create", func(t *testing.T) {
		mockPassword(t, "Clave.Segura1")
		err := cli.run([]string{"admin", "adduser", "-username", " JPerez ", "-email", "JPerez@unprg.edu.pe", "-name", "Juan  Pérez"})
		require.NoError(t, err)
		assert.Contains(t, out.String(), `user "jperez" saved`)

		usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Username: "jperez"})
		require.NoError(t, err)
		assert.Equal(t, "jperez@unprg.edu.pe", usr.Email)
		assert.Equal(t, []string{user.RoleAdmin}, usr.Roles)
		assert.True(t, usr.IsActive)
		assert.NoError(t, usr.CheckPassword("Clave.Segura1"))
	})

	t.Run("update existing", func(t *testing.T) {
		mockPassword(t, "Otra.Clave2")
		err := cli.run([]string{"admin", "adduser", "-username", "jperez", "-email", "jperez@unprg.edu.pe", "-role", user.RoleConsulta})
		require.NoError(t, err)

		usrs, _, err := cli.usrRepo.QueryUsers(ctx, nil, core.All, nil)
		require.NoError(t, err)
		require.Len(t, usrs, 1)
		assert.Equal(t, []string{user.RoleConsulta}, usrs[0].Roles)
		assert.NoError(t, usrs[0].CheckPassword("Otra.Clave2"))
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, _ := setup(t)
	usr := testutil.CreateUser(t, cli.usrRepo, "User", "awe", "awe@unprg.edu.pe", "mdr", nil, true)

	tests := []struct {
		cliTest
		pwd string
	}{
		{cliTest: cliTest{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp}},
		{cliTest: cliTest{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp}},
		{cliTest: cliTest{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, wantErr: user.ErrNotFound}, pwd: "lol"},
		{cliTest: cliTest{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}}, pwd: "lol"},
		{cliTest: cliTest{name: "reset with email", args: []string{"resetpassword", "-username", "AWE@unprg.edu.pe"}}, pwd: "lmao"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			mockPassword(t, tt.pwd)
			err := cli.run(append([]string{"admin"}, tt.args...))
			tt.check(t, err)
			if err == nil {
				refreshed, err := cli.usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				require.NoError(t, err)
				assert.NoError(t, refreshed.CheckPassword(tt.pwd))
			}
		})
	}
}

func Test_commandLine_syncSheets(t *testing.T) {
	cli, out := setup(t)

	require.NoError(t, cli.run([]string{"admin", "syncsheets"}))
	assert.Equal(t, 1, cli.sheets.(*fakeSyncer).calls)
	assert.Contains(t, out.String(), "Pagos: 3 rows")

	cli.sheets = &fakeSyncer{err: sheetsvc.ErrDisabled}
	err := cli.run([]string{"admin", "syncsheets"})
	assert.True(t, errors.Is(err, sheetsvc.ErrDisabled))
}
