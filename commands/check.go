package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/stephane-martin/sshauth/auth"
	"github.com/stephane-martin/sshauth/crypto"
	"github.com/stephane-martin/sshauth/params"
	"github.com/stephane-martin/sshauth/sys"
	"github.com/urfave/cli"
)

func CheckCommand() cli.Command {
	return cli.Command{
		Name:      "check",
		Usage:     "authenticate to a SSH server, then run the optional command",
		ArgsUsage: "[user@]host[:port] [command...]",
		Action:    checkAction,
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "color",
				Usage: "colorize the output",
			},
		},
	}
}

func checkAction(clictx *cli.Context) (e error) {
	defer exitOnError(&e)

	c := params.NewCliContext(clictx)
	logger, err := params.Logger(params.GetParams(c).LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sys.CancelOnSignal(cancel)()

	sshParams, err := params.GetSSHParams(c)
	if err != nil {
		return err
	}
	vaultClient, err := getVaultClient(ctx, c, logger)
	if err != nil {
		return err
	}
	prompt, err := crypto.GetPrompter(clictx.GlobalString("prompt"))
	if err != nil {
		return err
	}
	typ, err := crypto.SelectAuthentication(ctx, c, vaultClient, prompt, logger)
	if err != nil {
		return err
	}

	session, err := connect(ctx, sshParams, logger)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	err = auth.Authenticate(session, sshParams.LoginName, typ, logger)
	var authErr *auth.AuthenticationError
	if errors.As(err, &authErr) && authErr.PasswordNotOffered() {
		return fmt.Errorf("%s (server methods: %s)", authErr.Error(), strings.Join(authErr.Offered, ","))
	}
	if err != nil {
		return err
	}
	aur := aurora.NewAurora(clictx.Bool("color"))
	fmt.Fprintln(os.Stderr, aur.Green("authenticated"), sshParams.Target(), "using", typ.String())

	if len(sshParams.Commands) == 0 {
		return nil
	}
	s, err := session.Client().NewSession()
	if err != nil {
		return fmt.Errorf("failed to open SSH session: %s", err)
	}
	defer func() { _ = s.Close() }()
	output, err := s.CombinedOutput(strings.Join(sshParams.Commands, " "))
	_, _ = os.Stdout.Write(output)
	if err != nil {
		return fmt.Errorf("failed to execute command: %s", err)
	}
	return nil
}
