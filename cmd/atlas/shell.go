package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
)

func shellCmd(rt *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Long: `Start an interactive session. Each line is parsed like an atlas command
line, e.g. generate -p HIIT -e Rower. The generated workout stays available
to save for the whole session. Type "exit" or press Ctrl-D to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd.Context(), rt, os.Stdin, cmd.ErrOrStderr())
		},
	}
}

func runShell(ctx context.Context, rt *cli, in io.Reader, prompt io.Writer) error {
	reader := bufio.NewReader(in)
	// Confirmations read from the same buffered input as the prompt.
	rt.confirm.reader = reader

	rt.app.Init(ctx)

	for {
		fmt.Fprint(prompt, "atlas> ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		if done := runShellLine(ctx, rt, line, prompt); done || eof {
			if eof {
				fmt.Fprintln(prompt)
			}
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// runShellLine executes one line and reports whether the session should end.
func runShellLine(ctx context.Context, rt *cli, line string, out io.Writer) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	args, err := shellquote.Split(line)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return false
	}
	switch args[0] {
	case "exit", "quit":
		return true
	case "shell", "mcp":
		fmt.Fprintf(out, "Error: %q is not available inside the shell\n", args[0])
		return false
	}

	// A fresh tree per line so flag values never leak between commands.
	root := newRootCmd(rt)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	if err := root.ExecuteContext(ctx); err != nil {
		var shown *shownError
		if !errors.As(err, &shown) {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
	return false
}
