package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/vsinha/rebalance/pkg/domain/entities"
	"github.com/vsinha/rebalance/pkg/interfaces/cli/commands"
)

var version = ""

func main() {
	commands.SetVersion(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := commands.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates bad input from a plan the engine cannot act on
func exitCode(err error) int {
	switch {
	case errors.Is(err, entities.ErrInvalidConfig), errors.Is(err, entities.ErrMalformedLocation):
		return 2
	case errors.Is(err, entities.ErrDataUnavailable), errors.Is(err, entities.ErrUnknownLine), errors.Is(err, entities.ErrInsufficientData):
		return 3
	default:
		return 1
	}
}
