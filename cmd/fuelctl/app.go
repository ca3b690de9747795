package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Renal37/fuel-orders/internal/backend"
	"github.com/Renal37/fuel-orders/internal/console"
	"github.com/Renal37/fuel-orders/internal/logger"
	"github.com/Renal37/fuel-orders/internal/models"
	"github.com/Renal37/fuel-orders/internal/services"
	"github.com/Renal37/fuel-orders/internal/tokenstore"
	"github.com/Renal37/fuel-orders/internal/utils"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const consoleKey = "console"

func newApp(in io.Reader, out io.Writer) *cli.App {
	return &cli.App{
		Name:      "fuelctl",
		Usage:     "request and manage aircraft fuel orders",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Value: backend.DefaultBaseURL, Usage: "base url of the fuel order API", EnvVars: []string{"FUEL_API_BASE"}},
			&cli.StringFlag{Name: "path-style", Value: string(backend.PathStyleSingular), Usage: "singular or plural API paths", EnvVars: []string{"FUEL_API_PATH_STYLE"}},
			&cli.IntFlag{Name: "timeout", Value: 10, Usage: "API timeout in seconds", EnvVars: []string{"UPSTREAM_TIMEOUT_SECONDS"}},
			&cli.StringFlag{Name: "token-file", Usage: "where the session token is kept", EnvVars: []string{"FUELCTL_TOKEN_FILE"}},
			&cli.StringFlag{Name: "log-level", Value: "error", EnvVars: []string{"LOG_LEVEL"}},
		},
		Before: func(c *cli.Context) error {
			if err := logger.Initialize(c.String("log-level"), "production"); err != nil {
				return fmt.Errorf("logger wasn't initialized: %w", err)
			}

			client, err := backend.New(backend.Config{
				BaseURL:   c.String("api"),
				PathStyle: backend.PathStyle(c.String("path-style")),
				Timeout:   time.Duration(c.Int("timeout")) * time.Second,
			})
			if err != nil {
				return err
			}

			tokenFile := c.String("token-file")
			if tokenFile == "" {
				if tokenFile, err = tokenstore.DefaultPath(); err != nil {
					return err
				}
			}

			store := tokenstore.NewFileStore(tokenFile)
			logger.Log.Debug("token file", zap.String("path", store.Path()))

			jwtService := services.NewJWTService()

			c.App.Metadata[consoleKey] = console.New(
				services.NewAuthService(client, jwtService),
				jwtService,
				services.NewOrderService(client, nil),
				store,
				in,
				out,
			)

			return nil
		},
		Metadata: map[string]interface{}{},
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "create an account",
				Flags: []cli.Flag{
					emailFlag(),
					passwordFlag(),
					&cli.StringFlag{Name: "role", Required: true, Usage: "AIRCRAFT_OPERATOR or OPERATIONS_MANAGER"},
				},
				Action: run(func(c *cli.Context, con *console.Console) error {
					role, ok := models.ParseRole(c.String("role"))
					if !ok {
						role = models.Role(c.String("role"))
					}

					return con.Register(c.Context, models.Registration{
						Email:    c.String("email"),
						Password: c.String("password"),
						Role:     role,
					})
				}),
			},
			{
				Name:  "login",
				Usage: "log in and remember the session",
				Flags: []cli.Flag{emailFlag(), passwordFlag()},
				Action: run(func(c *cli.Context, con *console.Console) error {
					return con.Login(c.Context, models.Credentials{
						Email:    c.String("email"),
						Password: c.String("password"),
					})
				}),
			},
			{
				Name:  "logout",
				Usage: "forget the session",
				Action: run(func(c *cli.Context, con *console.Console) error {
					return con.Logout()
				}),
			},
			{
				Name:  "whoami",
				Usage: "show the current session",
				Action: run(func(c *cli.Context, con *console.Console) error {
					return con.WhoAmI()
				}),
			},
			{
				Name:  "order",
				Usage: "aircraft operator commands",
				Subcommands: []*cli.Command{
					{
						Name:  "create",
						Usage: "request a fuel delivery",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "tail", Required: true, Usage: "aircraft tail number"},
							&cli.StringFlag{Name: "airport", Required: true, Usage: "ICAO code of the airport"},
							&cli.Float64Flag{Name: "volume", Required: true, Usage: "requested fuel volume in gallons, more than 1000"},
							&cli.StringFlag{Name: "start", Required: true, Usage: "delivery window start, 2006-01-02T15:04 or RFC 3339"},
							&cli.StringFlag{Name: "end", Required: true, Usage: "delivery window end, 2006-01-02T15:04 or RFC 3339"},
						},
						Action: run(func(c *cli.Context, con *console.Console) error {
							order, err := newOrderFromFlags(c.String("tail"), c.String("airport"), c.Float64("volume"), c.String("start"), c.String("end"))
							if err != nil {
								return err
							}
							return con.CreateOrder(c.Context, order)
						}),
					},
				},
			},
			{
				Name:  "orders",
				Usage: "operations manager commands",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "print one page of orders",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "airport", Usage: "ICAO code filter"},
							&cli.StringFlag{Name: "tail", Usage: "tail number filter"},
							&cli.StringFlag{Name: "status", Usage: "status filter"},
							&cli.IntFlag{Name: "page", Value: 0, Usage: "zero-based page"},
							&cli.IntFlag{Name: "size", Value: models.DefaultPageSize, Usage: "page size"},
						},
						Action: run(func(c *cli.Context, con *console.Console) error {
							filter := models.OrderFilter{AirportIcao: c.String("airport"), TailNumber: c.String("tail")}

							if raw := c.String("status"); raw != "" {
								status, err := models.ParseOrderStatus(raw)
								if err != nil {
									return err
								}
								filter.Status = &status
							}

							return con.ListOrders(c.Context, filter, models.PageRequest{Page: c.Int("page"), Size: c.Int("size")})
						}),
					},
					{
						Name:  "advance",
						Usage: "move an order to its next status",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "id", Required: true},
							&cli.StringFlag{Name: "status", Required: true, Usage: "current status of the order"},
							&cli.BoolFlag{Name: "yes", Usage: "do not ask for confirmation"},
						},
						Action: run(func(c *cli.Context, con *console.Console) error {
							status, err := models.ParseOrderStatus(c.String("status"))
							if err != nil {
								return err
							}
							return con.Advance(c.Context, c.String("id"), status, c.Bool("yes"))
						}),
					},
					{
						Name:  "browse",
						Usage: "page through orders interactively",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "size", Value: models.DefaultPageSize, Usage: "page size"},
						},
						Action: run(func(c *cli.Context, con *console.Console) error {
							return con.Browse(c.Context, c.Int("size"))
						}),
					},
				},
			},
		},
	}
}

func emailFlag() cli.Flag {
	return &cli.StringFlag{Name: "email", Required: true, EnvVars: []string{"FUELCTL_EMAIL"}}
}

func passwordFlag() cli.Flag {
	return &cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"FUELCTL_PASSWORD"}}
}

// run adapts a console action and turns its error into the user-facing message.
func run(action func(c *cli.Context, con *console.Console) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		con, ok := c.App.Metadata[consoleKey].(*console.Console)
		if !ok {
			return errors.New("console is not initialized")
		}

		if err := action(c, con); err != nil {
			return errors.New(console.Describe(err))
		}
		return nil
	}
}

func newOrderFromFlags(tail, airport string, volume float64, start, end string) (models.NewOrder, error) {
	windowStart, err := utils.ParseTimestamp(start)
	if err != nil {
		return models.NewOrder{}, fmt.Errorf("--start: %w", err)
	}

	windowEnd, err := utils.ParseTimestamp(end)
	if err != nil {
		return models.NewOrder{}, fmt.Errorf("--end: %w", err)
	}

	return models.NewOrder{
		TailNumber:          tail,
		AirportIcao:         airport,
		RequestedFuelVolume: volume,
		DeliveryWindowStart: windowStart,
		DeliveryWindowEnd:   windowEnd,
	}, nil
}
