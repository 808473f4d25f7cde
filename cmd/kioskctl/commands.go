package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"seniorkiosk/internal/models"
)

// Command kinds typed at the prompt. Plain text is spoken to the kiosk.
const (
	cmdSay      = "say"
	cmdSelect   = "select"
	cmdHot      = "hot"
	cmdIce      = "ice"
	cmdAdd      = "add"
	cmdBack     = "back"
	cmdCart     = "cart"
	cmdRemove   = "remove"
	cmdCheckout = "checkout"
	cmdHome     = "home"
	cmdRefresh  = "refresh"
)

type command struct {
	kind  string
	text  string
	index int
}

var errEmptyInput = errors.New("type something to say, or /help")

const helpText = "/select <id>  /hot  /ice  /add  /back  /cart  /remove <n>  /checkout  /home  /refresh"

// parseInput turns a prompt line into a command. Cart positions are 1-based
// on screen and 0-based on the wire.
func parseInput(input string) (command, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return command{}, errEmptyInput
	}
	if !strings.HasPrefix(input, "/") {
		return command{kind: cmdSay, text: input}, nil
	}

	fields := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(fields) == 0 {
		return command{}, errors.New(helpText)
	}
	kind := strings.ToLower(fields[0])
	switch kind {
	case cmdHot, cmdIce, cmdAdd, cmdBack, cmdCart, cmdCheckout, cmdHome, cmdRefresh:
		return command{kind: kind}, nil
	case cmdSelect:
		if len(fields) != 2 {
			return command{}, errors.New("usage: /select <menu id>")
		}
		return command{kind: kind, text: fields[1]}, nil
	case cmdRemove:
		if len(fields) != 2 {
			return command{}, errors.New("usage: /remove <cart position>")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			return command{}, fmt.Errorf("invalid cart position: %s", fields[1])
		}
		return command{kind: kind, index: n - 1}, nil
	}
	return command{}, fmt.Errorf("unknown command /%s (%s)", kind, helpText)
}

// execute runs cmd against the API. refresh returns a nil response.
func execute(ctx context.Context, client *ApiClient, cmd command) (*ActionResponse, error) {
	switch cmd.kind {
	case cmdSay:
		return client.Say(ctx, cmd.text)
	case cmdSelect:
		return client.Select(ctx, cmd.text)
	case cmdHot:
		return client.Temperature(ctx, models.Hot)
	case cmdIce:
		return client.Temperature(ctx, models.Ice)
	case cmdAdd:
		return client.AddToCart(ctx)
	case cmdBack:
		return client.Back(ctx)
	case cmdCart:
		return client.OpenCart(ctx)
	case cmdRemove:
		return client.Remove(ctx, cmd.index)
	case cmdCheckout:
		return client.Checkout(ctx)
	case cmdHome:
		return client.Home(ctx)
	case cmdRefresh:
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported command: %s", cmd.kind)
}
