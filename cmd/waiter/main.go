// Command waiter is a terminal view of a waiter's order feed.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/yeremiapane/tableorder/client"
	"github.com/yeremiapane/tableorder/models"
	"github.com/yeremiapane/tableorder/utils"
)

var (
	version = "dev"
	cli     struct {
		Server   string `help:"API base URL." default:"http://localhost:8080" env:"TABLEORDER_SERVER"`
		Tenant   string `help:"Restaurant slug." required:"" env:"TABLEORDER_TENANT"`
		StateDir string `help:"Where the session is kept." env:"TABLEORDER_STATE_DIR"`

		Login   LoginCmd   `cmd:"" help:"Log in with your PIN"`
		Logout  LogoutCmd  `cmd:"" help:"Forget the saved session"`
		Tables  TablesCmd  `cmd:"" help:"List tables and who has them"`
		Claim   ClaimCmd   `cmd:"" help:"Take a table"`
		Release ReleaseCmd `cmd:"" help:"Give a table back"`
		Watch   WatchCmd   `cmd:"" help:"Follow orders on your tables"`
		Advance AdvanceCmd `cmd:"" help:"Move an order forward"`

		Version kong.VersionFlag
	}
)

type Globals struct {
	Server   string
	Tenant   string
	StateDir string
}

type session struct {
	Token    string `json:"token"`
	WaiterID uint   `json:"waiter_id"`
	Name     string `json:"name"`
}

func main() {
	utils.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("waiter"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&Globals{Server: cli.Server, Tenant: cli.Tenant, StateDir: cli.StateDir})
	cmd.FatalIfErrorf(err)
}

func (g *Globals) sessionKey() string {
	return "waiter-" + g.Tenant
}

// api returns a client carrying the saved session.
func (g *Globals) api() (*client.Client, error) {
	st, err := client.NewStateDir(g.StateDir)
	if err != nil {
		return nil, err
	}
	var s session
	if err := st.Load(g.sessionKey(), &s); err != nil {
		if errors.Is(err, client.ErrNoState) {
			return nil, errors.New("not logged in, run: waiter login")
		}
		return nil, err
	}
	c := client.New(g.Server, g.Tenant)
	c.Session = s.Token
	return c, nil
}

// explain maps failure codes to what a waiter should do about them.
func explain(err error) error {
	switch {
	case client.HasCode(err, utils.CodeLoginFailed), client.HasCode(err, utils.CodeUnauthorized):
		return errors.New("login failed")
	case client.HasCode(err, utils.CodeUnauthorizedTable):
		return errors.New("that table is not yours, claim it first")
	}
	return err
}

type LoginCmd struct {
	PIN string `arg:"" help:"Four digit PIN."`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	c := client.New(globals.Server, globals.Tenant)
	who, err := c.WaiterLogin(ctx, l.PIN)
	if err != nil {
		return explain(err)
	}

	st, err := client.NewStateDir(globals.StateDir)
	if err != nil {
		return err
	}
	if err := st.Save(globals.sessionKey(), session{Token: c.Session, WaiterID: who.ID, Name: who.Name}); err != nil {
		return err
	}
	fmt.Printf("Hello %s\n", who.Name)
	return nil
}

type LogoutCmd struct{}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	st, err := client.NewStateDir(globals.StateDir)
	if err != nil {
		return err
	}
	return st.Remove(globals.sessionKey())
}

type TablesCmd struct {
	Mine bool `help:"Only the tables you have claimed."`
}

func (t *TablesCmd) Run(ctx context.Context, globals *Globals) error {
	c, err := globals.api()
	if err != nil {
		return err
	}
	tables, err := c.WaiterTables(ctx, t.Mine)
	if err != nil {
		return explain(err)
	}
	for _, tb := range tables {
		owner := "-"
		if tb.Waiter != nil {
			owner = tb.Waiter.Name
		}
		fmt.Printf("%4d  %-10s %s\n", tb.ID, tb.Label, owner)
	}
	return nil
}

type ClaimCmd struct {
	Table uint `arg:"" help:"Table id."`
}

func (cl *ClaimCmd) Run(ctx context.Context, globals *Globals) error {
	c, err := globals.api()
	if err != nil {
		return err
	}
	table, err := c.Claim(ctx, cl.Table)
	if err != nil {
		return explain(err)
	}
	fmt.Printf("Table %s is yours\n", table.Label)
	return nil
}

type ReleaseCmd struct {
	Table uint `arg:"" help:"Table id."`
}

func (r *ReleaseCmd) Run(ctx context.Context, globals *Globals) error {
	c, err := globals.api()
	if err != nil {
		return err
	}
	table, err := c.Release(ctx, r.Table)
	if err != nil {
		return explain(err)
	}
	fmt.Printf("Table %s released\n", table.Label)
	return nil
}

type AdvanceCmd struct {
	Order  uint   `arg:"" help:"Order id."`
	Status string `arg:"" enum:"in_progress,fulfilled" help:"New status (in_progress or fulfilled)."`
}

func (a *AdvanceCmd) Run(ctx context.Context, globals *Globals) error {
	c, err := globals.api()
	if err != nil {
		return err
	}
	order, err := c.Advance(ctx, a.Order, models.OrderStatus(a.Status))
	if client.HasCode(err, utils.CodeStateConflict) {
		return fmt.Errorf("order %d is already %s", order.ID, order.Status)
	}
	if err != nil {
		return explain(err)
	}
	fmt.Printf("Order %d is now %s\n", order.ID, order.Status)
	return nil
}

type WatchCmd struct {
	Interval   time.Duration `help:"Time between polls." default:"10s"`
	StaleAfter int           `help:"Failed polls before the view is marked stale." default:"3"`
}

// Run prints the feed after every poll. Pressing Enter polls right away.
func (w *WatchCmd) Run(ctx context.Context, globals *Globals) error {
	c, err := globals.api()
	if err != nil {
		return err
	}

	poller := client.NewPoller(func(ctx context.Context) ([]models.Order, error) {
		feed, err := c.WaiterOrders(ctx)
		return feed.Orders, err
	})
	poller.Interval = w.Interval
	poller.StaleAfter = w.StaleAfter
	poller.OnUpdate = render

	poller.Start(ctx)
	defer poller.Stop()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			poller.Refresh()
		}
	}()

	<-ctx.Done()
	return nil
}

func render(s client.Snapshot) {
	fmt.Print("\033[H\033[2J")
	switch {
	case s.LastSuccess.IsZero():
		fmt.Println("Waiting for first update...")
	case s.Stale():
		fmt.Printf("!! Offline, showing orders from %s\n", s.LastSuccess.Format("15:04:05"))
	default:
		fmt.Printf("Updated %s\n", s.LastSuccess.Format("15:04:05"))
	}
	if client.HasCode(s.LastError, utils.CodeUnauthorized) || client.HasCode(s.LastError, utils.CodeLoginFailed) {
		fmt.Println("!! Session no longer valid, log in again")
	}
	if len(s.Orders) == 0 {
		fmt.Println("No open orders on your tables")
		return
	}
	for _, o := range s.Orders {
		fmt.Printf("#%d  table %-6s %-12s %s\n", o.ID, o.TableLabel, o.Status, o.CreatedAt.Local().Format("15:04"))
		for _, it := range o.Items {
			fmt.Printf("      %dx %s\n", it.Quantity, it.Name)
		}
	}
}
