package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fwojciec/sawchat"
	"github.com/fwojciec/sawchat/agent"
	"github.com/fwojciec/sawchat/fs"
)

// errTurnFailed marks a one-shot turn whose user-facing message has already
// been printed.
var errTurnFailed = errors.New("turn failed")

// askFunc runs one turn; it is satisfied by agent.Loop's Run and Ask.
type askFunc func(ctx context.Context, session *sawchat.Session, prompt string, opts ...agent.RunOption) (sawchat.Answer, error)

// runOnce asks a single question without the TUI. Progress and file notices
// go to stderr so stdout carries only the answer and its SQL.
func runOnce(ctx context.Context, ask askFunc, prompt, downloadDir string, stdout, stderr io.Writer) error {
	onEffect := func(eff sawchat.Effect) {
		switch e := eff.(type) {
		case sawchat.EffectProgress:
			fmt.Fprintf(stderr, "· %s\n", sawchat.Sanitize(e.Label))
		case sawchat.EffectArtifact:
			path, err := fs.SaveArtifact(downloadDir, e.Artifact)
			if err != nil {
				fmt.Fprintf(stderr, "Could not save the file: %v\n", err)
				return
			}
			fmt.Fprintf(stderr, "Saved to %s\n", path)
		case sawchat.EffectArtifactError:
			fmt.Fprintf(stderr, "Could not download the file: %v\n", e.Err)
		}
	}

	answer, err := ask(ctx, sawchat.NewSession(), prompt, agent.WithEffectHandler(onEffect))
	if err != nil {
		fmt.Fprintln(stderr, sawchat.Sanitize(sawchat.ErrorMessage(err)))
		return fmt.Errorf("%w: %w", errTurnFailed, err)
	}

	fmt.Fprintln(stdout, sawchat.Sanitize(answer.Text))
	if answer.SQL != "" {
		fmt.Fprintf(stdout, "\n-- SQL\n%s\n", sawchat.Sanitize(answer.SQL))
	}
	return nil
}
