package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/manifoldco/promptui"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/printers"
)

// Prompter reads a missing value. mask is the echo rune, or 0 for none.
type Prompter func(label string, mask rune, validate func(string) error) (string, error)

// Login authenticates, or registers first when Register is set.
type Login struct {
	Register bool
	Email    string
	Password string
	Service  *app.Service
	Output   *options.OutputOptions

	// Prompt defaults to a promptui prompt.
	Prompt Prompter
}

func (n *Login) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not log in, no service")
	}
	prompt := n.Prompt
	if prompt == nil {
		prompt = PromptString
	}

	email := strings.TrimSpace(n.Email)
	if email == "" {
		v, err := prompt("Email", 0, validateEmail)
		if err != nil {
			return err
		}
		email = v
	}
	password := n.Password
	if password == "" {
		v, err := prompt("Password", '*', validatePassword)
		if err != nil {
			return err
		}
		password = v
	}

	creds := note.Credentials{Email: email, Password: password}
	var (
		p   *note.Principal
		err error
	)
	if n.Register {
		p, err = n.Service.Register(ctx, creds)
	} else {
		p, err = n.Service.Login(ctx, creds)
	}
	if err != nil {
		return err
	}
	return renderPrincipal(p, n.Output, "Logged in as "+p.Email+".")
}

// Logout forgets the session.
type Logout struct {
	Service *app.Service
	Output  *options.OutputOptions
}

func (n *Logout) Do(_ context.Context) error {
	if n.Service == nil {
		return errors.New("can not log out, no service")
	}
	if err := n.Service.Logout(); err != nil {
		return err
	}
	out := n.Output
	if out == nil {
		out = &options.OutputOptions{}
	}
	return out.Print(map[string]bool{"loggedOut": true}, func() {
		_, _ = fmt.Fprintln(out.Writer(), "Logged out.")
	})
}

// WhoAmI prints the principal restored at startup.
type WhoAmI struct {
	Service *app.Service
	Output  *options.OutputOptions
}

func (n *WhoAmI) Do(_ context.Context) error {
	if n.Service == nil {
		return errors.New("can not check session, no service")
	}
	p, err := n.Service.RequireSession()
	if err != nil {
		return err
	}
	return renderPrincipal(p, n.Output, "")
}

func renderPrincipal(p *note.Principal, out *options.OutputOptions, headline string) error {
	if out == nil {
		out = &options.OutputOptions{}
	}
	return out.Print(p, func() {
		pp := printers.PrettyPrint{Out: out.Writer()}
		if headline != "" {
			_, _ = fmt.Fprintln(out.Writer(), headline)
		}
		pp.Principal(p)
	})
}

// PromptString asks for a single value on the terminal.
func PromptString(label string, mask rune, validate func(string) error) (string, error) {
	templates := &promptui.PromptTemplates{
		Prompt:  "{{ . }}: ",
		Valid:   "{{ . | green }}: ",
		Invalid: "{{ . | red }}: ",
		Success: "{{ . | bold }}: ",
	}
	prompt := promptui.Prompt{
		Label:     label,
		Mask:      mask,
		Templates: templates,
		Validate:  promptui.ValidateFunc(validate),
	}
	v, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt %s: %w", strings.ToLower(label), err)
	}
	if mask != 0 {
		return v, nil
	}
	return strings.TrimSpace(v), nil
}

func validateEmail(v string) error {
	if _, err := mail.ParseAddress(strings.TrimSpace(v)); err != nil {
		return errors.New("not an email address")
	}
	return nil
}

func validatePassword(v string) error {
	if v == "" {
		return errors.New("empty")
	}
	return nil
}
