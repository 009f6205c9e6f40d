package discord

import (
	"errors"
	"fmt"
	"log"

	"github.com/Redini/DiscordBot/pkg/cmd"
)

// errorMessage turns a command failure into the reply shown to the user.
func errorMessage(prefix string, err error) string {
	switch {
	case errors.Is(err, cmd.ErrUnknownCommand):
		return fmt.Sprintf("Invalid command. Use %shelp to see available commands.", prefix)
	case errors.Is(err, cmd.ErrMissingArgument):
		return fmt.Sprintf("You are missing a required argument.  Check %shelp for command usage.", prefix)
	case errors.Is(err, cmd.ErrBadArgument):
		return fmt.Sprintf("Invalid argument. Check %shelp for command usage.", prefix)
	default:
		log.Printf("[ERR] Error running command: %v", err)
		return fmt.Sprintf("An error occurred: %v", err)
	}
}
