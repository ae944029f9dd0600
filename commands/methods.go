package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/stephane-martin/sshauth/params"
	"github.com/stephane-martin/sshauth/sys"
	"github.com/urfave/cli"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func MethodsCommand() cli.Command {
	return cli.Command{
		Name:      "methods",
		Usage:     "list the authentication methods SSH servers accept",
		ArgsUsage: "[user@]host[:port]...",
		Action:    methodsAction,
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "json",
				Usage: "print the results as JSON",
			},
			cli.BoolFlag{
				Name:  "color",
				Usage: "colorize the output",
			},
			cli.IntFlag{
				Name:  "parallel",
				Usage: "maximum number of concurrent probes",
				Value: 8,
			},
		},
	}
}

type probeResult struct {
	Target  string
	Methods []string
	// None is set when the server accepted the none method.
	None bool
	Err  error
}

func methodsAction(clictx *cli.Context) (e error) {
	defer exitOnError(&e)

	targets := []string(clictx.Args())
	if len(targets) == 0 {
		return errors.New("no host provided")
	}
	c := params.NewCliContext(clictx)
	logger, err := params.Logger(params.GetParams(c).LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sys.CancelOnSignal(cancel)()

	results, err := probeAll(ctx, c, targets, clictx.Int("parallel"), logger)
	if err != nil {
		return err
	}
	if clictx.Bool("json") {
		return renderJSON(os.Stdout, results)
	}
	renderText(os.Stdout, results, clictx.Bool("color"))
	return nil
}

func probeAll(ctx context.Context, c params.CLIContext, targets []string, parallel int, l *zap.SugaredLogger) ([]probeResult, error) {
	if parallel <= 0 {
		parallel = 1
	}
	results := make([]probeResult, len(targets))
	sem := make(chan struct{}, parallel)
	g, lctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-lctx.Done():
				return lctx.Err()
			}
			defer func() { <-sem }()
			results[i] = probe(lctx, c, target, l)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, ctx.Err()
}

func probe(ctx context.Context, c params.CLIContext, target string, l *zap.SugaredLogger) (res probeResult) {
	res.Target = target
	sshParams, err := params.GetSSHParamsFor(c, target)
	if err != nil {
		res.Err = err
		return res
	}
	res.Target = sshParams.Target()
	session, err := connect(ctx, sshParams, l)
	if err != nil {
		res.Err = err
		return res
	}
	defer func() { _ = session.Close() }()
	res.Methods, res.Err = session.AuthMethods(sshParams.LoginName)
	res.None = res.Err == nil && session.Authenticated()
	if res.Err != nil {
		l.Debugw("probe failed", "target", res.Target, "error", res.Err)
	}
	return res
}

func renderText(w io.Writer, results []probeResult, color bool) {
	aur := aurora.NewAurora(color)
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintln(w, aur.Bold(r.Target), aur.Red(r.Err.Error()))
		case r.None:
			fmt.Fprintln(w, aur.Bold(r.Target), aur.Yellow("none"))
		default:
			fmt.Fprintln(w, aur.Bold(r.Target), aur.Green(strings.Join(r.Methods, ",")))
		}
	}
}

func renderJSON(w io.Writer, results []probeResult) error {
	var a fastjson.Arena
	arr := a.NewArray()
	for i, r := range results {
		o := a.NewObject()
		o.Set("target", a.NewString(r.Target))
		methods := a.NewArray()
		for j, m := range r.Methods {
			methods.SetArrayItem(j, a.NewString(m))
		}
		o.Set("methods", methods)
		if r.None {
			o.Set("none", a.NewTrue())
		} else {
			o.Set("none", a.NewFalse())
		}
		if r.Err != nil {
			o.Set("error", a.NewString(r.Err.Error()))
		}
		arr.SetArrayItem(i, o)
	}
	_, err := w.Write(append(arr.MarshalTo(nil), '\n'))
	return err
}
