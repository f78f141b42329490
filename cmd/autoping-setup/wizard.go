package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pdu-tools/powerswitch-mcp/pkg/powerswitch"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// promptConnection builds the device connection config from the environment,
// prompting for the host and password when they are not set.
func promptConnection() (powerswitch.Config, error) {
	cfg := powerswitch.Config{
		Host:     os.Getenv(powerswitch.EnvHost),
		Username: os.Getenv(powerswitch.EnvUsername),
		Password: os.Getenv(powerswitch.EnvPassword),
		UseHTTPS: strings.EqualFold(os.Getenv(powerswitch.EnvUseHTTPS), "true"),
	}
	if cfg.Username == "" {
		cfg.Username = powerswitch.DefaultUsername
	}
	if cfg.Host != "" && cfg.Password != "" {
		return cfg, nil
	}

	var fields []huh.Field

	if cfg.Host == "" {
		fields = append(fields, huh.NewInput().
			Title("Device host").
			Description("IP address or hostname of the Power Switch Pro").
			Value(&cfg.Host).
			Validate(validateNonEmpty))
	}
	if cfg.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Device password").
			Description(fmt.Sprintf("Password for user %q", cfg.Username)).
			EchoMode(huh.EchoModePassword).
			Value(&cfg.Password).
			Validate(validateNonEmpty))
	}

	form := huh.NewForm(huh.NewGroup(fields...))
	if err := form.Run(); err != nil {
		return powerswitch.Config{}, err
	}

	return cfg, nil
}

// promptEntry asks for the watchdog parameters of the entry to create.
func promptEntry() (powerswitch.AutoPingParams, error) {
	host := ""
	outlet := ""
	interval := "60"
	retries := "3"

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Host to monitor").
			Description("IP address or hostname the device will ping").
			Value(&host).
			Validate(validateNonEmpty),
		huh.NewInput().
			Title("Outlet index").
			Description("Outlet to power cycle when the host stops responding (0-7)").
			Value(&outlet).
			Validate(validateOutletIndex),
		huh.NewInput().
			Title("Ping interval (seconds)").
			Value(&interval).
			Validate(validatePositiveInt),
		huh.NewInput().
			Title("Failures before cycling").
			Value(&retries).
			Validate(validatePositiveInt),
	))
	if err := form.Run(); err != nil {
		return powerswitch.AutoPingParams{}, err
	}

	return buildParams(host, outlet, interval, retries)
}

// confirmEntry shows the entry about to be created and asks for confirmation.
func confirmEntry(params powerswitch.AutoPingParams) (bool, error) {
	fmt.Println(renderParams(params))

	ok := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Add this AutoPing entry?").
			Value(&ok),
	))
	if err := form.Run(); err != nil {
		return false, err
	}

	return ok, nil
}

// buildParams converts validated form strings into AutoPing parameters.
func buildParams(host, outlet, interval, retries string) (powerswitch.AutoPingParams, error) {
	outletID, err := strconv.Atoi(strings.TrimSpace(outlet))
	if err != nil {
		return powerswitch.AutoPingParams{}, fmt.Errorf("invalid outlet index: %w", err)
	}

	intervalSec, err := strconv.Atoi(strings.TrimSpace(interval))
	if err != nil {
		return powerswitch.AutoPingParams{}, fmt.Errorf("invalid interval: %w", err)
	}

	retryCount, err := strconv.Atoi(strings.TrimSpace(retries))
	if err != nil {
		return powerswitch.AutoPingParams{}, fmt.Errorf("invalid retry count: %w", err)
	}

	return powerswitch.AutoPingParams{
		Host:     host,
		Outlet:   outletID,
		Enabled:  true,
		Interval: intervalSec,
		Retries:  retryCount,
	}, nil
}

func renderParams(params powerswitch.AutoPingParams) string {
	var b strings.Builder

	b.WriteString(headingStyle.Render("New AutoPing entry"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Host:     %s\n", params.Host)
	fmt.Fprintf(&b, "  Outlet:   %d\n", params.Outlet)
	fmt.Fprintf(&b, "  Interval: %ds\n", params.Interval)
	fmt.Fprintf(&b, "  Retries:  %d", params.Retries)

	return b.String()
}

// renderEntries formats the existing AutoPing entries for review before a new
// one is added.
func renderEntries(entries []powerswitch.AutoPingEntry) string {
	var b strings.Builder

	b.WriteString(headingStyle.Render("Existing AutoPing entries"))
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString(dimStyle.Render("  (none)"))
		return b.String()
	}

	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		state := "disabled"
		if e.Enabled {
			state = "enabled"
		}
		fmt.Fprintf(&b, "  [%d] %s -> outlet %d (%s, every %ds, %d retries)",
			e.ID, e.Host(), e.Outlet(), state, e.Interval, e.Retries)
	}

	return b.String()
}

func renderCreated(e powerswitch.AutoPingEntry) string {
	var b strings.Builder

	b.WriteString(headingStyle.Render("AutoPing entry created"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  ID:     %d\n", e.ID)
	fmt.Fprintf(&b, "  Host:   %s\n", e.Host())
	fmt.Fprintf(&b, "  Outlet: %d", e.Outlet())

	return b.String()
}

func validateNonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("value is required")
	}
	return nil
}

func validateOutletIndex(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n < 0 || n > 7 {
		return fmt.Errorf("must be between 0 and 7")
	}
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}
