package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joinify/joinify-go/internal/domain/auth"
	"github.com/joinify/joinify-go/internal/domain/model"
	"github.com/joinify/joinify-go/internal/service"
	"github.com/joinify/joinify-go/internal/util"
	"github.com/joinify/joinify-go/internal/validation"
)

// errInvalidInput marks form validation failures already printed.
var errInvalidInput = errors.New("invalid input")

func prompt(cmdCtx *commandContext, label string) (string, error) {
	if err := writef(cmdCtx.Out, "%s: ", label); err != nil {
		return "", err
	}
	line, err := cmdCtx.In.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptIfEmpty fills *v from stdin when the flag was not given.
func promptIfEmpty(cmdCtx *commandContext, v *string, label string) error {
	if *v != "" {
		return nil
	}
	line, err := prompt(cmdCtx, label)
	if err != nil {
		return err
	}
	*v = line
	return nil
}

func printInvalid(cmdCtx *commandContext, msgs []string) error {
	for _, m := range msgs {
		if err := writef(cmdCtx.Out, "  - %s\n", m); err != nil {
			return err
		}
	}
	return errInvalidInput
}

func runLogin(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "login")
	var creds auth.Credentials
	fs.StringVar(&creds.Username, "username", "", "Account username")
	fs.StringVar(&creds.Password, "password", "", "Account password (prompted when omitted)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := promptIfEmpty(cmdCtx, &creds.Username, "Username"); err != nil {
		return err
	}
	if err := promptIfEmpty(cmdCtx, &creds.Password, "Password"); err != nil {
		return err
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if msgs := validation.ValidateLogin(creds); len(msgs) > 0 {
		return printInvalid(cmdCtx, msgs)
	}

	user, err := cmdCtx.App.Sessions.Login(cmdCtx.Ctx, creds)
	if err != nil {
		return err
	}
	return writef(cmdCtx.Out, "Logged in as %s (%s). Next: joinify dashboard [%s]\n",
		user.Username, util.CapitalizeFirst(string(user.Role)), service.DashboardLabel(user.Role))
}

func runLogout(cmdCtx *commandContext, _ []string) error {
	if err := cmdCtx.App.Sessions.Logout(cmdCtx.Ctx); err != nil {
		return err
	}
	return writeln(cmdCtx.Out, "Logged out.")
}

func runRegister(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "register")
	var (
		reg  auth.Registration
		role string
	)
	fs.StringVar(&reg.Username, "username", "", "Account username")
	fs.StringVar(&reg.Email, "email", "", "Account email")
	fs.StringVar(&reg.Password, "password", "", "Account password (prompted when omitted)")
	fs.StringVar(&role, "role", "", "ORGANIZER or ATTENDEE")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := promptIfEmpty(cmdCtx, &reg.Password, "Password"); err != nil {
		return err
	}
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Role = auth.ParseRole(role)

	msgs := validation.ValidateRegistration(reg)
	if reg.Role != auth.RoleNone && !reg.Role.IsKnown() {
		msgs = append(msgs, "Role must be ORGANIZER or ATTENDEE")
	}
	if len(msgs) > 0 {
		return printInvalid(cmdCtx, msgs)
	}

	api := cmdCtx.App.API
	if taken, err := api.CheckUsername(cmdCtx.Ctx, reg.Username); err == nil && taken {
		msgs = append(msgs, "Username is already taken")
	}
	if taken, err := api.CheckEmail(cmdCtx.Ctx, reg.Email); err == nil && taken {
		msgs = append(msgs, "Email is already registered")
	}
	if len(msgs) > 0 {
		return printInvalid(cmdCtx, msgs)
	}

	resp, err := cmdCtx.App.Sessions.Register(cmdCtx.Ctx, reg)
	if err != nil {
		return err
	}
	msg := resp.Message
	if msg == "" {
		msg = "Registration successful"
	}
	return writef(cmdCtx.Out, "%s. Run `joinify login --username %s` to continue.\n", msg, reg.Username)
}

func runWhoami(cmdCtx *commandContext, _ []string) error {
	sessions := cmdCtx.App.Sessions
	ok, err := sessions.CheckAuthStatus(cmdCtx.Ctx)
	if err != nil {
		return err
	}
	if !ok {
		return writeln(cmdCtx.Out, "Not logged in.")
	}
	user := sessions.CurrentUser()
	role := sessions.CurrentRole(cmdCtx.Ctx)
	tw := newTable(cmdCtx.Out)
	rows := [][2]string{
		{"Username", user.Username},
		{"Email", user.Email},
		{"Role", util.CapitalizeFirst(string(role))},
		{"Dashboard", service.DashboardLabel(role) + " (" + service.DestinationFor(role) + ")"},
		{"Storage", cmdCtx.App.Store.Location},
	}
	for _, r := range rows {
		if err := writef(tw, "%s\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runProfile(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "profile")
	var in model.ProfileUpdate
	fs.StringVar(&in.Username, "username", "", "New username")
	fs.StringVar(&in.Email, "email", "", "New email")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	var msgs []string
	if in.Username == "" && in.Email == "" {
		msgs = append(msgs, "Nothing to update: pass --username or --email")
	}
	if in.Username != "" && len(in.Username) < 3 {
		msgs = append(msgs, validation.MsgUsernameTooShort)
	}
	if in.Email != "" && !validation.IsValidEmail(in.Email) {
		msgs = append(msgs, validation.MsgInvalidEmail)
	}
	if len(msgs) > 0 {
		return printInvalid(cmdCtx, msgs)
	}

	user, err := cmdCtx.App.API.UpdateProfile(cmdCtx.Ctx, in)
	if err != nil {
		return err
	}
	return writef(cmdCtx.Out, "Profile updated: %s <%s>\n", user.Username, user.Email)
}

func runChangePassword(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "change-password")
	var password string
	fs.StringVar(&password, "password", "", "New password (prompted when omitted)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := promptIfEmpty(cmdCtx, &password, "New password"); err != nil {
		return err
	}
	var msgs []string
	if len(password) < 8 {
		msgs = append(msgs, validation.MsgPasswordTooShort)
	} else if !validation.IsStrongPassword(password) {
		msgs = append(msgs, validation.MsgWeakPassword)
	}
	if len(msgs) > 0 {
		return printInvalid(cmdCtx, msgs)
	}

	msg, err := cmdCtx.App.API.ChangePassword(cmdCtx.Ctx, password)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Password changed"
	}
	return writeln(cmdCtx.Out, msg)
}
