package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// promptCredentials asks for the connection settings when no API key is
// configured. It edits cfg in place.
func promptCredentials(cfg *config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Value(&cfg.BaseURL).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("base URL is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("X-API-Key").
				Description("Leave empty to browse without asking questions.").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.APIKey),
			huh.NewInput().
				Title("X-User-Id").
				Value(&cfg.UserID),
		).Title("Session settings"),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("settings form: %w", err)
	}
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	return nil
}
