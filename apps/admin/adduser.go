package main

import (
	"context"

	"github.com/trezcool/kazi/core/member"
)

// addUser registers an already accepted member, head of their committee when isHead.
func (cli *commandLine) addUser(name, email, committee, pwd string, isHead bool) error {
	nm := member.NewMember{
		Name:            name,
		Email:           email,
		Committee:       committee,
		Password:        pwd,
		PasswordConfirm: pwd,
		Role:            member.RoleMember,
	}
	if isHead {
		nm.Role = member.RoleHead
	}
	if err := nm.Validate(cli.validate); err != nil {
		return cli.prettyErr(err)
	}
	m, err := cli.memberSvc.Register(context.Background(), nm)
	if err != nil {
		return err
	}
	logger.Info("member created: " + m.Email + " (" + m.Role + ")")
	return nil
}
