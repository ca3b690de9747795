package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Renal37/fuel-orders/internal/logger"
	"github.com/Renal37/fuel-orders/internal/models"
	"github.com/Renal37/fuel-orders/internal/services"
	"github.com/Renal37/fuel-orders/internal/tokenstore"
	"go.uber.org/zap"
)

// Console is the terminal front end of the fuel order API.
type Console struct {
	auth   models.AuthService
	jwt    models.JWTService
	orders models.OrderService
	tokens tokenstore.Store

	in  *bufio.Reader
	out io.Writer
	now func() time.Time
}

func New(
	auth models.AuthService,
	jwt models.JWTService,
	orders models.OrderService,
	tokens tokenstore.Store,
	in io.Reader,
	out io.Writer,
) *Console {
	return &Console{
		auth:   auth,
		jwt:    jwt,
		orders: orders,
		tokens: tokens,
		in:     bufio.NewReader(in),
		out:    out,
		now:    time.Now,
	}
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) Register(ctx context.Context, registration models.Registration) error {
	if err := c.auth.Register(ctx, registration); err != nil {
		return err
	}

	c.printf("Registered %s as %s. Log in to continue.\n", strings.TrimSpace(registration.Email), registration.Role)
	return nil
}

// Login stores the token of a successful login.
func (c *Console) Login(ctx context.Context, credentials models.Credentials) error {
	session, err := c.auth.Login(ctx, credentials)
	if err != nil {
		return err
	}

	if err := c.tokens.Save(session.Token); err != nil {
		return err
	}

	c.printf("Logged in as %s.\n", displaySubject(session))

	switch session.LandingPage() {
	case models.LandingManager:
		c.printf("Use `fuelctl orders browse` to manage orders.\n")
	case models.LandingOperator:
		c.printf("Use `fuelctl order create` to request fuel.\n")
	default:
		c.printf("Your account has no console role.\n")
	}

	return nil
}

func (c *Console) Logout() error {
	if err := c.tokens.Clear(); err != nil {
		return err
	}

	c.printf("Logged out.\n")
	return nil
}

func (c *Console) WhoAmI() error {
	session, err := c.session()
	if err != nil {
		return err
	}

	roles := make([]string, 0, len(session.Roles))
	for _, role := range session.Roles {
		roles = append(roles, string(role))
	}
	if len(roles) == 0 {
		roles = append(roles, "none")
	}

	c.printf("Subject: %s\nRoles:   %s\n", displaySubject(session), strings.Join(roles, ", "))
	if session.Expiry != nil {
		c.printf("Expires: %s\n", session.Expiry.Local().Format(time.RFC1123))
	}

	return nil
}

// session loads the stored token. A missing or expired token is cleared and
// reported as ErrUnauthorized.
func (c *Console) session() (*models.Session, error) {
	token, err := c.tokens.Load()
	if err != nil {
		return nil, err
	}

	session := c.jwt.Decode(token)
	if !session.IsValid(c.now()) {
		if err := c.tokens.Clear(); err != nil {
			logger.Log.Warn("failed to clear stale token", zap.Error(err))
		}
		return nil, services.ErrUnauthorized
	}

	return session, nil
}

func (c *Console) CreateOrder(ctx context.Context, order models.NewOrder) error {
	session, err := c.session()
	if err != nil {
		return err
	}

	// The terminal and its user share a zone, so a zone-less start can be
	// checked here.
	if !order.DeliveryWindowStart.HasZone() {
		if err := services.ValidateWindowStart(order.DeliveryWindowStart, c.now()); err != nil {
			return err
		}
	}

	created, err := c.orders.CreateOrder(ctx, session, order)
	if err != nil {
		return err
	}

	c.printf("Order %s created for %s at %s, status %s.\n", created.ID, created.TailNumber, created.AirportIcao, created.Status)
	return nil
}

func (c *Console) ListOrders(ctx context.Context, filter models.OrderFilter, page models.PageRequest) error {
	session, err := c.session()
	if err != nil {
		return err
	}

	result, err := c.orders.ListOrders(ctx, session, filter, page)
	if err != nil {
		return err
	}

	return renderPage(c.out, result)
}

// Advance moves an order from current to its next status. Unless assumeYes is
// set the user is asked first; a declined prompt sends nothing.
func (c *Console) Advance(ctx context.Context, orderID string, current models.OrderStatus, assumeYes bool) error {
	session, err := c.session()
	if err != nil {
		return err
	}

	return c.advance(ctx, session, orderID, current, assumeYes)
}

func (c *Console) advance(ctx context.Context, session *models.Session, orderID string, current models.OrderStatus, assumeYes bool) error {
	intent, err := services.ProposeAdvance(orderID, current)
	if err != nil {
		return err
	}

	var confirmer models.Confirmer = NewPromptConfirmer(c.in, c.out)
	if assumeYes {
		confirmer = models.ConfirmFunc(func(context.Context, models.AdvanceIntent) (bool, error) {
			return true, nil
		})
	}

	updated, err := c.orders.AdvanceStatus(ctx, session, intent, confirmer)
	if err != nil {
		if errors.Is(err, services.ErrAdvanceCancelled) {
			c.printf("Cancelled, order %s stays %s.\n", intent.OrderID, intent.From)
			return nil
		}
		return err
	}

	c.printf("Order %s is now %s.\n", updated.ID, updated.Status)
	return nil
}

func displaySubject(session *models.Session) string {
	if session.Subject == "" {
		return "unknown user"
	}
	return session.Subject
}
