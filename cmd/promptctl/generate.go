package main

import (
	"fmt"

	"github.com/meghashyamc/toolshelf/config"
	"github.com/meghashyamc/toolshelf/llm"
	"github.com/meghashyamc/toolshelf/logger"
	"github.com/meghashyamc/toolshelf/retry"
	"github.com/meghashyamc/toolshelf/services/prompt"
	"github.com/meghashyamc/toolshelf/validation"
	"github.com/urfave/cli/v2"
)

// newCompleter is replaced in tests.
var newCompleter = llm.New

func generateCommand(c *cli.Context) error {
	lang, err := prompt.ParseLanguage(c.String("lang"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	req := prompt.Request{
		Purpose:                c.String("purpose"),
		SceneDescription:       c.String("scene"),
		Style:                  c.String("style"),
		Duration:               c.String("duration"),
		AdditionalRequirements: c.String("extra"),
		OutputLanguage:         lang,
	}

	if c.Bool("dry-run") {
		fmt.Fprintf(c.App.Writer, "%s\n\n---\n\n%s\n", prompt.BuildSystemPrompt(lang), prompt.BuildUserPrompt(req))
		return nil
	}

	cfg, err := config.Load(c.String("env"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(c.String("log-level"))

	completer, err := newCompleter(c.Context, log, cfg)
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}

	validator, err := validation.New(log)
	if err != nil {
		return err
	}

	client := prompt.NewClient(log, completer, validator, retry.Policy{
		MaxRetries:   cfg.GetRetryMaxRetries(),
		InitialDelay: cfg.GetRetryInitialDelay(),
	})

	generated, err := client.GenerateVideoPrompt(c.Context, req)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, generated)
	return nil
}
