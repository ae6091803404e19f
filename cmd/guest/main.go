// Command guest is a terminal stand-in for the table-side ordering page: it
// scans a table token, keeps the cart on this device and submits it.
package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/yeremiapane/tableorder/cart"
	"github.com/yeremiapane/tableorder/client"
	"github.com/yeremiapane/tableorder/utils"
)

var (
	version = "dev"
	cli     struct {
		Server   string `help:"API base URL." default:"http://localhost:8080" env:"TABLEORDER_SERVER"`
		Tenant   string `help:"Restaurant slug." required:"" env:"TABLEORDER_TENANT"`
		StateDir string `help:"Where the cart is kept." env:"TABLEORDER_STATE_DIR"`

		Scan   ScanCmd   `cmd:"" help:"Bind the cart to a scanned table token"`
		Menu   MenuCmd   `cmd:"" help:"List what can be ordered"`
		Add    AddCmd    `cmd:"" help:"Add one of an item to the cart"`
		Qty    QtyCmd    `cmd:"" help:"Change an item's quantity by a delta"`
		Remove RemoveCmd `cmd:"" help:"Remove an item from the cart"`
		Show   ShowCmd   `cmd:"" help:"Show the cart"`
		Clear  ClearCmd  `cmd:"" help:"Empty the cart"`
		Submit SubmitCmd `cmd:"" help:"Send the cart as an order"`
		Status StatusCmd `cmd:"" help:"Show an order's status"`

		Version kong.VersionFlag
	}
)

type Globals struct {
	Server   string
	Tenant   string
	StateDir string
}

// scanned is the table the cart is bound to.
type scanned struct {
	Token   string `json:"token"`
	TableID uint   `json:"table_id"`
	Label   string `json:"label"`
}

func main() {
	utils.InitLogger()
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("guest"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&Globals{Server: cli.Server, Tenant: cli.Tenant, StateDir: cli.StateDir})
	cmd.FatalIfErrorf(err)
}

func (g *Globals) api() *client.Client {
	return client.New(g.Server, g.Tenant)
}

func (g *Globals) state() (*client.StateDir, error) {
	return client.NewStateDir(g.StateDir)
}

func (g *Globals) cart() (*cart.Aggregator, error) {
	st, err := g.state()
	if err != nil {
		return nil, err
	}
	agg, err := cart.Open(g.Tenant, cart.NewFileStorage(st.Dir))
	if err != nil {
		utils.InfoLogger.Warnf("Cart could not be restored, starting empty: %v", err)
	}
	return agg, nil
}

func (g *Globals) scanKey() string {
	return "scan-" + g.Tenant
}

type ScanCmd struct {
	Token  string `arg:"" help:"Token from the table's QR code."`
	Switch bool   `help:"Move a non-empty cart to this table."`
}

func (s *ScanCmd) Run(ctx context.Context, globals *Globals) error {
	table, err := globals.api().Scan(ctx, s.Token)
	if err != nil {
		return explain(err)
	}

	agg, err := globals.cart()
	if err != nil {
		return err
	}
	if err := agg.SetTable(strconv.FormatUint(uint64(table.TableID), 10), s.Switch); err != nil {
		if errors.Is(err, cart.ErrTableChanged) {
			return fmt.Errorf("your cart holds items for another table; rerun with --switch to move them to table %s", table.Label)
		}
		return err
	}

	st, err := globals.state()
	if err != nil {
		return err
	}
	if err := st.Save(globals.scanKey(), scanned{Token: s.Token, TableID: table.TableID, Label: table.Label}); err != nil {
		return err
	}
	fmt.Printf("Ordering for table %s\n", table.Label)
	return nil
}

type MenuCmd struct{}

func (m *MenuCmd) Run(ctx context.Context, globals *Globals) error {
	items, err := globals.api().Menu(ctx)
	if err != nil {
		return explain(err)
	}
	for _, it := range items {
		fmt.Printf("%-10s %-30s %8.2f\n", it.SKU, it.Name, it.Price)
	}
	return nil
}

type AddCmd struct {
	SKU string `arg:"" help:"Menu item id."`
}

func (a *AddCmd) Run(ctx context.Context, globals *Globals) error {
	items, err := globals.api().Menu(ctx)
	if err != nil {
		return explain(err)
	}
	var found *client.MenuItem
	for i := range items {
		if items[i].SKU == a.SKU {
			found = &items[i]
			break
		}
	}
	if found == nil {
		return fmt.Errorf("%s is not on the menu", a.SKU)
	}

	agg, err := globals.cart()
	if err != nil {
		return err
	}
	if err := agg.AddItem(cart.Item{ItemID: found.SKU, Name: found.Name, UnitPrice: found.Price}); err != nil {
		return err
	}
	return printCart(agg)
}

type QtyCmd struct {
	SKU   string `arg:"" help:"Menu item id."`
	Delta int    `arg:"" help:"Amount to add, negative to take away."`
}

func (q *QtyCmd) Run(ctx context.Context, globals *Globals) error {
	agg, err := globals.cart()
	if err != nil {
		return err
	}
	if err := agg.UpdateQuantity(q.SKU, q.Delta); err != nil {
		return err
	}
	return printCart(agg)
}

type RemoveCmd struct {
	SKU string `arg:"" help:"Menu item id."`
}

func (r *RemoveCmd) Run(ctx context.Context, globals *Globals) error {
	agg, err := globals.cart()
	if err != nil {
		return err
	}
	if err := agg.RemoveItem(r.SKU); err != nil {
		return err
	}
	return printCart(agg)
}

type ShowCmd struct{}

func (s *ShowCmd) Run(ctx context.Context, globals *Globals) error {
	agg, err := globals.cart()
	if err != nil {
		return err
	}
	return printCart(agg)
}

type ClearCmd struct{}

func (c *ClearCmd) Run(ctx context.Context, globals *Globals) error {
	agg, err := globals.cart()
	if err != nil {
		return err
	}
	return agg.Clear()
}

type SubmitCmd struct{}

func (s *SubmitCmd) Run(ctx context.Context, globals *Globals) error {
	st, err := globals.state()
	if err != nil {
		return err
	}
	var table scanned
	if err := st.Load(globals.scanKey(), &table); err != nil {
		return errors.New("scan your table's QR code first")
	}

	agg, err := globals.cart()
	if err != nil {
		return err
	}
	if agg.TableID() != strconv.FormatUint(uint64(table.TableID), 10) {
		return errors.New("cart and scanned table disagree; scan again")
	}
	lines := agg.Lines()
	if len(lines) == 0 {
		return errors.New("the cart is empty")
	}

	req := make([]client.OrderLine, 0, len(lines))
	for _, l := range lines {
		req = append(req, client.OrderLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	order, err := globals.api().SubmitOrder(ctx, table.Token, req)
	if err != nil {
		return explain(err)
	}
	if err := agg.MarkSubmitted(order.Reference); err != nil {
		return err
	}
	fmt.Printf("Order %s sent for table %s, total %.2f\n", order.Reference, order.TableLabel, order.TotalAmount)
	return nil
}

type StatusCmd struct {
	Ref string `arg:"" optional:"" help:"Order reference, defaults to the last one sent."`
}

func (s *StatusCmd) Run(ctx context.Context, globals *Globals) error {
	ref := s.Ref
	if ref == "" {
		agg, err := globals.cart()
		if err != nil {
			return err
		}
		ref = agg.LastOrderRef()
	}
	if ref == "" {
		return errors.New("no order sent from this device yet")
	}
	order, err := globals.api().GetOrder(ctx, ref)
	if err != nil {
		return explain(err)
	}
	fmt.Printf("Order %s (table %s): %s\n", order.Reference, order.TableLabel, order.Status)
	for _, it := range order.Items {
		fmt.Printf("  %dx %s\n", it.Quantity, it.Name)
	}
	return nil
}

func printCart(agg *cart.Aggregator) error {
	if agg.State() == cart.StateSubmitted {
		fmt.Printf("Cart is empty, last order %s\n", agg.LastOrderRef())
		return nil
	}
	for _, l := range agg.Lines() {
		fmt.Printf("%-10s %-30s %3d x %8.2f\n", l.ItemID, l.Name, l.Quantity, l.UnitPrice)
	}
	fmt.Printf("%d items, total %.2f\n", agg.TotalItems(), agg.TotalPrice())
	return nil
}

// explain turns integrity failures into what the guest should do next.
func explain(err error) error {
	switch {
	case client.HasCode(err, utils.CodeInvalidToken), client.HasCode(err, utils.CodeUnauthorizedTable):
		return fmt.Errorf("this table code could not be verified, scan again or ask staff to choose your table (%w)", err)
	}
	return err
}
