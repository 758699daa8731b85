package main

import (
	"context"

	"github.com/trezcool/kazi/core/member"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	pr := member.PasswordReset{Email: email, Password: pwd}
	if err := pr.Validate(cli.validate); err != nil {
		return cli.prettyErr(err)
	}
	return cli.memberSvc.SetPassword(context.Background(), pr)
}
