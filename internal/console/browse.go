package console

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/Renal37/fuel-orders/internal/models"
	"github.com/Renal37/fuel-orders/internal/services"
)

const browseHelp = `Commands:
  n          next page
  p          previous page
  f [CODE]   filter by airport ICAO code, empty clears
  s SIZE     change page size
  a ROW      advance the order in row ROW
  r          refresh
  q          quit
`

type browser struct {
	console *Console
	query   *services.OrderQuery
	current *models.Page[models.Order]
}

// Browse runs an interactive pager over the order list until the user quits or
// input ends. Failed commands are reported and the pager keeps its state.
func (c *Console) Browse(ctx context.Context, pageSize int) error {
	if _, err := c.session(); err != nil {
		return err
	}

	b := &browser{console: c, query: services.NewOrderQuery(pageSize)}
	b.fetch(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.printf("[n]ext [p]rev [f]ilter [s]ize [a]dvance [r]efresh [q]uit > ")

		line, err := c.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		if quit := b.handle(ctx, strings.TrimSpace(line)); quit {
			return nil
		}

		if errors.Is(err, io.EOF) {
			c.printf("\n")
			return nil
		}
	}
}

func (b *browser) handle(ctx context.Context, line string) bool {
	c := b.console

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "":
	case "q", "quit":
		return true
	case "n":
		if !b.query.Next() {
			c.printf("Already on the last page.\n")
			return false
		}
		b.fetch(ctx)
	case "p":
		if !b.query.Prev() {
			c.printf("Already on the first page.\n")
			return false
		}
		b.fetch(ctx)
	case "f":
		filter := b.query.Filter()
		filter.AirportIcao = arg
		if err := services.ValidateFilter(filter); err != nil {
			c.printf("%s\n", Describe(err))
			return false
		}
		b.query.SetFilter(filter)
		b.fetch(ctx)
	case "s":
		size, err := strconv.Atoi(arg)
		if err != nil {
			c.printf("Page size must be a number.\n")
			return false
		}
		if err := b.query.SetSize(size); err != nil {
			c.printf("%s\n", Describe(err))
			return false
		}
		b.fetch(ctx)
	case "a":
		b.advance(ctx, arg)
	case "r":
		b.fetch(ctx)
	default:
		c.printf("%s", browseHelp)
	}

	return false
}

func (b *browser) advance(ctx context.Context, arg string) {
	c := b.console

	row, err := strconv.Atoi(arg)
	if err != nil || b.current == nil || row < 1 || row > len(b.current.Content) {
		c.printf("Pick a row number from the current page.\n")
		return
	}

	order := b.current.Content[row-1]
	if order.Status.IsTerminal() {
		c.printf("Order %s is %s and cannot change.\n", order.ID, order.Status)
		return
	}

	session, err := c.session()
	if err != nil {
		c.printf("%s\n", Describe(err))
		return
	}

	if err := c.advance(ctx, session, order.ID, order.Status, false); err != nil {
		c.printf("%s\n", Describe(err))
	}

	// the list is re-read after every attempt, nothing is patched locally
	b.fetch(ctx)
}

func (b *browser) fetch(ctx context.Context) {
	c := b.console

	session, err := c.session()
	if err != nil {
		c.printf("%s\n", Describe(err))
		return
	}

	page, err := c.orders.ListOrders(ctx, session, b.query.Filter(), b.query.Request())
	if err != nil {
		c.printf("%s\n", Describe(err))
		return
	}

	b.current = page
	b.query.Apply(page)

	if err := renderPage(c.out, page); err != nil {
		c.printf("%s\n", Describe(err))
	}

	if airport := b.query.Filter().AirportIcao; airport != "" && b.query.TotalElements() == 0 {
		c.printf("Nothing at %s. Use f without a code to clear the filter.\n", airport)
	}
}
