package console

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ehrlich-b/drvsh/internal/client"
	"github.com/ehrlich-b/drvsh/internal/registry"
	"github.com/ehrlich-b/drvsh/internal/wire"
)

// invalidCommand is the fixed diagnostic text for every malformed or
// unresolvable command (spec §4.E/§4.F/§7: "user-visible, non-fatal").
const invalidCommand = "Invalid command"

// Outcome is what dispatching one input line produces. Lines are printed
// immediately, each followed by a newline. PromptNow is false only for a
// successfully dispatched "cmd" — the prompt is deferred until the
// eventual DRV_RESPONSE arrives (or, after a disconnect, until the
// reconnect attempt is over), per spec §4.F's output discipline.
type Outcome struct {
	Lines     []string
	PromptNow bool
	// Driver is set only when PromptNow is false, so the reactor knows
	// which driver's eventual response or disconnect should release the
	// deferred prompt.
	Driver *registry.Driver
}

// Dispatcher resolves verbs against a driver registry whose records'
// State field holds a *client.Client (set by the reactor on discovery).
type Dispatcher struct {
	Registry *registry.Registry
}

// Dispatch parses and executes one input line.
func (d *Dispatcher) Dispatch(line string) Outcome {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return Outcome{Lines: []string{invalidCommand}, PromptNow: true}
	}

	switch tokens[0] {
	case "list":
		return Outcome{Lines: d.list(), PromptNow: true}
	case "help":
		return Outcome{Lines: []string{helpText}, PromptNow: true}
	case "cmd":
		return d.cmd(tokens[1:])
	default:
		return Outcome{Lines: []string{invalidCommand}, PromptNow: true}
	}
}

func (d *Dispatcher) list() []string {
	drivers := d.Registry.All()
	sort.Slice(drivers, func(i, j int) bool {
		if drivers[i].Name != drivers[j].Name {
			return drivers[i].Name < drivers[j].Name
		}
		return drivers[i].Slot < drivers[j].Slot
	})

	lines := []string{""}
	for _, drv := range drivers {
		lines = append(lines, fmt.Sprintf("Driver: %s", drv.Name))
		lines = append(lines, fmt.Sprintf("Slot: %d", drv.Slot))
		for _, c := range catalogOf(drv) {
			lines = append(lines, fmt.Sprintf("%s <arity: %d> --- %s", c.Name, c.Arity, c.Descr))
		}
	}
	return lines
}

func (d *Dispatcher) cmd(args []string) Outcome {
	if len(args) < 3 {
		return Outcome{Lines: []string{invalidCommand}, PromptNow: true}
	}
	driverName, slotStr, cmdName := args[0], args[1], args[2]
	cmdArgs := args[3:]

	slot, err := strconv.ParseUint(slotStr, 10, 64)
	if err != nil {
		return Outcome{Lines: []string{invalidCommand}, PromptNow: true}
	}
	for _, a := range cmdArgs {
		if len(a) > wire.MaxArgLen {
			return Outcome{Lines: []string{invalidCommand}, PromptNow: true}
		}
	}

	drv := d.Registry.Lookup(driverName, slot)
	if drv == nil {
		return Outcome{Lines: []string{invalidCommand}, PromptNow: true}
	}
	catalog := catalogOf(drv)

	idx := -1
	for i, c := range catalog {
		if c.Name == cmdName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Outcome{Lines: []string{invalidCommand}, PromptNow: true}
	}
	if len(cmdArgs) > int(catalog[idx].Arity) {
		return Outcome{Lines: []string{invalidCommand}, PromptNow: true}
	}

	c, ok := drv.State.(*client.Client)
	if !ok {
		return Outcome{Lines: []string{invalidCommand}, PromptNow: true}
	}

	frame := wire.CommandFrame{CmdIdx: uint16(idx), Args: make([][]byte, len(cmdArgs))}
	for i, a := range cmdArgs {
		frame.Args[i] = []byte(a)
	}
	if err := c.Send(frame); err != nil {
		return Outcome{Lines: []string{invalidCommand}, PromptNow: true}
	}
	return Outcome{PromptNow: false, Driver: drv}
}

func catalogOf(drv *registry.Driver) []wire.CommandInfo {
	c, ok := drv.State.(*client.Client)
	if !ok {
		return nil
	}
	return c.Catalog
}
