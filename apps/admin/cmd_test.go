package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
	"github.com/trezcool/kazi/storage/database/inmem"
	"github.com/trezcool/kazi/tests"
)

const pwd = "Kaz!-2025pwd"

var memberRepo member.Repository

func setup(t *testing.T) *commandLine {
	logger = &testutil.Logger{}
	memberRepo = inmemdb.NewMemberRepository(inmemdb.Open())

	// start CLI
	validate, translator := testutil.NewValidator()
	return &commandLine{
		memberSvc:  member.NewService(memberRepo, logger),
		validate:   validate,
		translator: translator,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func mockPassword(t *testing.T, pwd string) {
	prev := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) {
		if pwd == "" {
			return nil, nil
		}
		return []byte(pwd), nil
	}
	t.Cleanup(func() { readPasswordFunc = prev })
}

func checkErr(t *testing.T, tt cliTest, err error) {
	switch {
	case tt.wantErr != nil:
		assert.True(t, errors.Is(err, tt.wantErr), "cli.run() error = %v, wantErr %v", err, tt.wantErr)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate: no subcommand", args: []string{"migrate"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var calls []string
	prev := gooseRunFunc
	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		if _, err := fs.Stat(fsys, dir+"/00001_create_members.sql"); err != nil {
			return err
		}
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		calls = append(calls, command)
		return nil
	}
	t.Cleanup(func() { gooseRunFunc = prev })

	tests := []cliTest{
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "badges", "sql"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
	assert.Equal(t, []string{"up", "up-to", "down-to", "status", "create"}, calls)
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	testutil.CreateMember(t, memberRepo, "Amani", "amani@kazi.test", "IT", member.RoleMember, pwd)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "missing committee", args: []string{"adduser", "-name", "Baraka", "-email", "baraka@kazi.test"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-name", "Baraka", "-email", "baraka@kazi.test", "-committee", "IT"}, wantErr: errHelp},
		{
			name: "invalid email", args: []string{"adduser", "-name", "Baraka", "-email", "baraka", "-committee", "IT"},
			extra: extra{pwd: pwd}, wantErrStr: "email: email must be a valid email address",
		},
		{
			name: "weak password", args: []string{"adduser", "-name", "Baraka", "-email", "baraka@kazi.test", "-committee", "IT"},
			extra: extra{pwd: "short"}, wantErrStr: "password: password must contain at least 8 characters",
		},
		{
			name: "existing email", args: []string{"adduser", "-name", "Amani", "-email", "amani@kazi.test", "-committee", "IT"},
			extra: extra{pwd: pwd}, wantErrStr: member.ErrEmailExists.Error(),
		},
		{name: "head", args: []string{"adduser", "-name", "Baraka", "-email", "Baraka@Kazi.test", "-committee", "IT", "-head"}, extra: extra{pwd: pwd}},
		{name: "member", args: []string{"adduser", "-name", "Neo", "-email", "neo@kazi.test", "-committee", "Media"}, extra: extra{pwd: pwd}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p string
			if e, ok := tt.extra.(extra); ok {
				p = e.pwd
			}
			mockPassword(t, p)
			checkErr(t, tt, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	members, err := memberRepo.QueryMembers(context.Background(), member.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, "baraka@kazi.test", members[1].Email)
	assert.Equal(t, member.RoleHead, members[1].Role)
	assert.Equal(t, member.RoleMember, members[2].Role)
	assert.NoError(t, members[1].CheckPassword(pwd))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	m := testutil.CreateMember(t, memberRepo, "Amani", "amani@kazi.test", "IT", member.RoleMember, pwd)
	newPwd := "N3w!passphrase"

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "ghost@kazi.test"}, wantErr: errHelp},
		{name: "member not found", args: []string{"resetpassword", "-email", "ghost@kazi.test"}, extra: extra{pwd: newPwd}, wantErr: core.ErrNotFound},
		{
			name: "weak password", args: []string{"resetpassword", "-email", m.Email}, extra: extra{pwd: "12345678"},
			wantErrStr: "password: password cannot be entirely numeric",
		},
		{name: "reset", args: []string{"resetpassword", "-email", "AMANI@kazi.test"}, extra: extra{pwd: newPwd}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p string
			if e, ok := tt.extra.(extra); ok {
				p = e.pwd
			}
			mockPassword(t, p)
			checkErr(t, tt, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	refreshed := testutil.GetMember(t, memberRepo, m.ID)
	assert.False(t, bytes.Equal(refreshed.PasswordHash, m.PasswordHash), "failed to update new password")
	assert.NoError(t, refreshed.CheckPassword(newPwd))
}
