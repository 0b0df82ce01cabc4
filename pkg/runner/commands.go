package runner

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/boardwalk"
	"github.com/aretw0/boardwalk/pkg/domain"
)

const helpText = `commands:
  show                      print the position
  set <notation|preset>     transition to a position
  load <name>               transition to a stored position
  move <from> <to> [label]  move a token
  query <square>            list the tokens on a square
  rotate <degrees>          animated rotation
  angle <degrees>           set the rotation directly
  scale <factor>            set the base scale
  wait                      block until the board is idle
  quit`

// Exec runs one command line and returns its output.
func (c *Console) Exec(ctx context.Context, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "help", "?":
		return helpText, nil
	case "quit", "exit":
		return "", ErrQuit
	case "show":
		return c.show(ctx)
	case "wait":
		if err := c.driver.Settle(ctx); err != nil {
			return "", err
		}
		return c.show(ctx)
	case "set":
		if len(args) != 1 {
			return "", usage("set <notation|preset>")
		}
		return c.resolve(ctx, args[0])
	case "load":
		if len(args) != 1 {
			return "", usage("load <name>")
		}
		if c.book == nil {
			return "", fmt.Errorf("%w: no position book configured", domain.ErrPositionNotFound)
		}
		p, err := c.book.Get(ctx, args[0])
		if err != nil {
			return "", err
		}
		return c.resolve(ctx, p.Notation)
	case "move":
		if len(args) < 2 || len(args) > 3 {
			return "", usage("move <from> <to> [label]")
		}
		req := boardwalk.MoveRequest{From: args[0], To: args[1]}
		if len(args) == 3 {
			req.Label = args[2]
		}
		var moved int
		err := c.driver.Do(ctx, func(b *boardwalk.Board) error {
			var err error
			moved, err = b.MoveBatch(ctx, []boardwalk.MoveRequest{req})
			return err
		})
		if err != nil {
			return "", err
		}
		if moved == 0 {
			return fmt.Sprintf("%s is empty", strings.ToUpper(req.From)), nil
		}
		return fmt.Sprintf("moving %s -> %s", strings.ToUpper(req.From), strings.ToUpper(req.To)), nil
	case "query":
		if len(args) != 1 {
			return "", usage("query <square>")
		}
		var labels []string
		err := c.driver.Do(ctx, func(b *boardwalk.Board) error {
			tokens, err := b.TokensAt(args[0])
			for _, t := range tokens {
				labels = append(labels, t.Label)
			}
			return err
		})
		if err != nil {
			return "", err
		}
		if len(labels) == 0 {
			return "empty", nil
		}
		return strings.Join(labels, " "), nil
	case "rotate":
		if len(args) != 1 {
			return "", usage("rotate <degrees>")
		}
		delta, err := strconv.Atoi(args[0])
		if err != nil {
			return "", &domain.ConfigError{Field: "degrees", Reason: "must be a whole number", Value: args[0]}
		}
		return "", c.driver.Do(ctx, func(b *boardwalk.Board) error {
			return b.Rotate(ctx, delta)
		})
	case "angle", "scale":
		if len(args) != 1 {
			return "", usage(name + " <value>")
		}
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return "", &domain.ConfigError{Field: name, Reason: "must be a number", Value: args[0]}
		}
		return "", c.driver.Do(ctx, func(b *boardwalk.Board) error {
			if name == "angle" {
				return b.SetRotation(ctx, v)
			}
			return b.Scale(ctx, v)
		})
	default:
		return "", fmt.Errorf("unknown command %q, try help", name)
	}
}

func (c *Console) show(ctx context.Context) (string, error) {
	var sb strings.Builder
	err := c.driver.Do(ctx, func(b *boardwalk.Board) error {
		text, err := b.Notation()
		if err != nil {
			return err
		}
		sb.WriteString(text)
		sb.WriteString("\n")
		if c.draw != nil {
			sb.WriteString(c.draw(b.Geometry(), b.Snapshot()))
		}
		if r := b.Rotation(); !b.Idle() || r.Angle != 0 {
			fmt.Fprintf(&sb, "angle=%g phase=%s idle=%t\n", r.Angle, r.Phase, b.Idle())
		}
		return nil
	})
	return sb.String(), err
}

func (c *Console) resolve(ctx context.Context, position string) (string, error) {
	var out string
	err := c.driver.Do(ctx, func(b *boardwalk.Board) error {
		res, err := b.ResolvePosition(ctx, position)
		if err != nil {
			return err
		}
		p := res.Plan
		out = fmt.Sprintf("stay=%d moves=%d creates=%d discards=%d",
			len(p.Stay), len(p.Moves), len(p.Creates), len(p.Discards))
		return nil
	})
	return out, err
}

func usage(s string) error {
	return fmt.Errorf("usage: %s", s)
}
