package main

import (
	"fmt"

	"gamemode/internal/autostart"

	"github.com/rs/zerolog"
)

// AutostartCmd manages the login registration.
type AutostartCmd struct {
	Enable  AutostartEnableCmd  `cmd:"" help:"Start the service on login."`
	Disable AutostartDisableCmd `cmd:"" help:"Stop starting the service on login."`
	Status  AutostartStatusCmd  `cmd:"" default:"1" help:"Show whether the service starts on login."`
}

type AutostartEnableCmd struct {
	Args []string `arg:"" optional:"" help:"Arguments for the registered command." default:"run"`
}

func (c *AutostartEnableCmd) Run(logger *zerolog.Logger) error {
	if err := autostart.Enable(c.Args...); err != nil {
		return err
	}
	logger.Info().Strs("args", c.Args).Msg("autostart enabled")
	return nil
}

type AutostartDisableCmd struct{}

func (c *AutostartDisableCmd) Run(logger *zerolog.Logger) error {
	if err := autostart.Disable(); err != nil {
		return err
	}
	logger.Info().Msg("autostart disabled")
	return nil
}

type AutostartStatusCmd struct{}

func (c *AutostartStatusCmd) Run() error {
	cmd, err := autostart.Status()
	if err != nil {
		return err
	}
	if cmd == "" {
		fmt.Println("autostart: disabled")
		return nil
	}
	fmt.Printf("autostart: enabled (%s)\n", cmd)
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("gamemode version %s\n", version)
	return nil
}
