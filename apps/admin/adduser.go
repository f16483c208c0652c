package main

import (
	"context"
	"fmt"
	"time"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/user"
)

// addUser updates or creates an active user.User holding a single role.
func (cli *commandLine) addUser(name, uname, email, pwd, role string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	if user.RolePriority(role) == 0 {
		return fmt.Errorf("%q: no such role", role)
	}

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: []string{uname, email}})
	isNew := err == user.ErrNotFound
	if err != nil && !isNew {
		return err
	}
	if isNew {
		now := time.Now().UTC()
		usr = user.User{Username: uname, Email: email, CreatedAt: now}
	}
	if name != "" {
		usr.Name = core.CleanString(name)
	}
	usr.Roles = []string{role}
	usr.IsActive = true
	usr.UpdatedAt = time.Now().UTC()
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if isNew {
		usr, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		usr, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "user %q saved\n", usr.Username)
	return nil
}
