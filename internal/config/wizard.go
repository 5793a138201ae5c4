package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to circles! Let's configure your conversion pages.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Landing page.
	pagePrompt := promptui.Select{
		Label: "Select the page served at /",
		Items: []string{
			"prefix: metric prefixes (피코 … 테라)",
			"unit:   measurement units (미터, 피트, 섭씨 …)",
		},
	}
	pageIdx, _, err := pagePrompt.Run()
	if err != nil {
		return nil, errors.Wrap(err, "page selection")
	}
	cfg.DefaultPage = []string{"prefix", "unit"}[pageIdx]

	// 2. Backends.
	for i := range cfg.Pages {
		p := &cfg.Pages[i]
		backendPrompt := promptui.Prompt{
			Label:    fmt.Sprintf("Backend base URL for the %s page", p.ID),
			Default:  p.BaseURL,
			Validate: validateBaseURL,
		}
		baseURL, err := backendPrompt.Run()
		if err != nil {
			return nil, errors.Wrapf(err, "%s backend", p.ID)
		}
		p.BaseURL = strings.TrimRight(baseURL, "/")
	}

	// 3. Port.
	portPrompt := promptui.Prompt{
		Label:   "Port to listen on",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return errors.New("port must be a number between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, errors.Wrap(err, "port")
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 4. CORS origins.
	originsPrompt := promptui.Prompt{
		Label:   "Allowed CORS origins (comma-separated, leave blank for localhost only)",
		Default: "",
	}
	origins, err := originsPrompt.Run()
	if err != nil {
		return nil, errors.Wrap(err, "allowed origins")
	}
	cfg.Server.AllowedOrigins = splitAndTrim(origins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, errors.Wrap(err, "saving config")
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validateBaseURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("enter an http(s) URL such as http://localhost:3000")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
