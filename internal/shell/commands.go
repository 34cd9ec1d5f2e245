package shell

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/storefront/internal/client"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/store"
	"github.com/example/storefront/internal/verification"
)

type command struct {
	usage string
	help  string
	run   func(s *Shell, ctx context.Context, args []string) error
}

var errUsage = errors.New("wrong arguments")

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":          {"help", "list commands", (*Shell).cmdHelp},
		"refresh":       {"refresh", "reload the catalog", (*Shell).cmdRefresh},
		"products":      {"products", "list products matching the filters", (*Shell).cmdProducts},
		"categories":    {"categories", "list categories", (*Shell).cmdCategories},
		"show":          {"show <id>", "select a product and show its details", (*Shell).cmdShow},
		"add":           {"add <id> [qty]", "add a product to the cart", (*Shell).cmdAdd},
		"remove":        {"remove <id>", "remove a product from the cart", (*Shell).cmdRemove},
		"qty":           {"qty <id> <n>", "set the quantity of a cart item", (*Shell).cmdQty},
		"clear":         {"clear", "empty the cart", (*Shell).cmdClear},
		"cart":          {"cart", "open the cart and list it", (*Shell).cmdCart},
		"close":         {"close", "close the cart", (*Shell).cmdClose},
		"fav":           {"fav <id>", "add a product to favorites", (*Shell).cmdFav},
		"unfav":         {"unfav <id>", "remove a product from favorites", (*Shell).cmdUnfav},
		"favs":          {"favs", "list favorites", (*Shell).cmdFavs},
		"category":      {"category [name]", "filter by category, no name clears", (*Shell).cmdCategory},
		"subcategory":   {"subcategory [name]", "filter by subcategory, no name clears", (*Shell).cmdSubcategory},
		"search":        {"search [text]", "filter by text, no text clears", (*Shell).cmdSearch},
		"login":         {"login <phone>", "send a verification code", (*Shell).cmdLogin},
		"code":          {"code <digits>", "type code digits", (*Shell).cmdCode},
		"paste":         {"paste <text>", "paste a code", (*Shell).cmdPaste},
		"back":          {"back", "erase the last code digit", (*Shell).cmdBack},
		"resend":        {"resend", "send a new code once the countdown is over", (*Shell).cmdResend},
		"status":        {"status", "show the verification form", (*Shell).cmdStatus},
		"logout":        {"logout", "forget the stored session", (*Shell).cmdLogout},
		"whoami":        {"whoami", "show the current session", (*Shell).cmdWhoami},
		"session":       {"session", "ask the server whether the session token is accepted", (*Shell).cmdSession},
		"conversations": {"conversations", "list conversations kept in storage", (*Shell).cmdConversations},
	}
}

func (s *Shell) cmdHelp(_ context.Context, _ []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.printf("  %-20s %s\n", commands[name].usage, commands[name].help)
	}
	s.printf("  %-20s %s\n", "quit", "leave the shell")
	return nil
}

func (s *Shell) cmdRefresh(ctx context.Context, _ []string) error {
	products, err := s.backend.Products(ctx, models.ProductFilter{})
	if err != nil {
		return err
	}
	s.store.Dispatch(store.SetProducts{Products: products})
	s.printf("%d products loaded\n", len(products))
	return nil
}

func (s *Shell) cmdProducts(ctx context.Context, args []string) error {
	if len(s.store.State().Products) == 0 {
		if err := s.cmdRefresh(ctx, args); err != nil {
			return err
		}
	}

	st := s.store.State()
	visible := st.VisibleProducts()
	if len(visible) == 0 {
		s.printf("no products\n")
		return nil
	}
	for _, p := range visible {
		s.printf("%s\n", productLine(st, p))
	}
	return nil
}

func (s *Shell) cmdCategories(ctx context.Context, _ []string) error {
	categories, err := s.backend.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		if len(c.Subcategories) > 0 {
			s.printf("%s: %s\n", c.Name, strings.Join(c.Subcategories, ", "))
			continue
		}
		s.printf("%s\n", c.Name)
	}
	return nil
}

func (s *Shell) cmdShow(_ context.Context, args []string) error {
	p, err := s.product(args)
	if err != nil {
		return err
	}
	st := s.store.Dispatch(store.SelectProduct{ProductID: p.ID})

	s.printf("%s\n", productLine(st, p))
	if p.Description != "" {
		s.printf("  %s\n", p.Description)
	}
	if p.Category != "" {
		s.printf("  %s / %s\n", p.Category, p.Subcategory)
	}
	if p.HasDiscount() {
		s.printf("  antes %.2f\n", *p.OriginalPrice)
	}
	return nil
}

func (s *Shell) cmdAdd(_ context.Context, args []string) error {
	p, err := s.product(args)
	if err != nil {
		return err
	}
	qty := 1
	if len(args) > 1 {
		if qty, err = strconv.Atoi(args[1]); err != nil || qty < 1 {
			return errUsage
		}
	}
	if !p.Stock {
		return fmt.Errorf("%s is out of stock", p.Name)
	}

	actions := []store.Action{store.AddToCart{Product: p}}
	if qty > 1 {
		current, _ := s.store.State().CartItem(p.ID)
		actions = append(actions, store.UpdateCartQuantity{ProductID: p.ID, Quantity: current.Quantity + qty})
	}
	st := s.store.Dispatch(actions...)
	s.printf("cart: %d items, total %.2f\n", st.CartCount(), st.CartTotal())
	return nil
}

func (s *Shell) cmdRemove(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	st := s.store.Dispatch(store.RemoveFromCart{ProductID: models.ID(args[0])})
	s.printf("cart: %d items, total %.2f\n", st.CartCount(), st.CartTotal())
	return nil
}

func (s *Shell) cmdQty(_ context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return errUsage
	}
	st := s.store.Dispatch(store.UpdateCartQuantity{ProductID: models.ID(args[0]), Quantity: n})
	s.printf("cart: %d items, total %.2f\n", st.CartCount(), st.CartTotal())
	return nil
}

func (s *Shell) cmdClear(_ context.Context, _ []string) error {
	s.store.Dispatch(store.ClearCart{})
	s.printf("cart: empty\n")
	return nil
}

func (s *Shell) cmdCart(_ context.Context, _ []string) error {
	st := s.store.Dispatch(store.SetCartOpen{Open: true})
	if len(st.Cart) == 0 {
		s.printf("cart: empty\n")
		return nil
	}
	for _, item := range st.Cart {
		s.printf("%-6s %-24s %3d x %8.2f = %9.2f\n", item.ID, item.Name, item.Quantity, item.Price, item.Subtotal())
	}
	s.printf("%d items, total %.2f\n", st.CartCount(), st.CartTotal())
	return nil
}

func (s *Shell) cmdClose(_ context.Context, _ []string) error {
	s.store.Dispatch(store.SetCartOpen{Open: false})
	return nil
}

func (s *Shell) cmdFav(_ context.Context, args []string) error {
	p, err := s.product(args)
	if err != nil {
		return err
	}
	s.store.Dispatch(store.AddToFavorites{Product: p})
	return nil
}

func (s *Shell) cmdUnfav(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	s.store.Dispatch(store.RemoveFromFavorites{ProductID: models.ID(args[0])})
	return nil
}

func (s *Shell) cmdFavs(_ context.Context, _ []string) error {
	st := s.store.State()
	if len(st.Favorites) == 0 {
		s.printf("no favorites\n")
		return nil
	}
	for _, p := range st.Favorites {
		s.printf("%s\n", productLine(st, p))
	}
	return nil
}

func (s *Shell) cmdCategory(_ context.Context, args []string) error {
	s.store.Dispatch(store.SetCategory{Category: strings.Join(args, " ")})
	return nil
}

func (s *Shell) cmdSubcategory(_ context.Context, args []string) error {
	s.store.Dispatch(store.SetSubcategory{Subcategory: strings.Join(args, " ")})
	return nil
}

func (s *Shell) cmdSearch(_ context.Context, args []string) error {
	s.store.Dispatch(store.SetSearchQuery{Query: strings.Join(args, " ")})
	return nil
}

func (s *Shell) cmdLogin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	res, err := s.flow.SendCode(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	s.printf("%s: code sent to %s, valid for %d minutes\n", res.Message, res.PhoneNumber, res.ExpiresInMinutes)
	return nil
}

func (s *Shell) cmdCode(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	for _, ch := range args[0] {
		slot := s.flow.Snapshot().Focus
		res, err := s.flow.TypeDigit(ctx, slot, string(ch))
		if res != nil || err != nil {
			return s.verified(res, err)
		}
	}
	s.printf("code: %s\n", codeLine(s.flow.Snapshot()))
	return nil
}

func (s *Shell) cmdPaste(ctx context.Context, args []string) error {
	res, err := s.flow.Paste(ctx, strings.Join(args, " "))
	if res != nil || err != nil {
		return s.verified(res, err)
	}
	s.printf("code: %s\n", codeLine(s.flow.Snapshot()))
	return nil
}

func (s *Shell) cmdBack(_ context.Context, _ []string) error {
	snap := s.flow.Snapshot()
	slot := snap.Focus
	if snap.Digits[slot] == "" && slot > 0 {
		slot--
	}
	s.flow.Backspace(slot)
	s.printf("code: %s\n", codeLine(s.flow.Snapshot()))
	return nil
}

func (s *Shell) cmdResend(ctx context.Context, _ []string) error {
	res, err := s.flow.Resend(ctx)
	if errors.Is(err, verification.ErrResendLocked) {
		return fmt.Errorf("resend available in %s", s.flow.Snapshot().Countdown)
	}
	if err != nil {
		return err
	}
	s.printf("%s: new code sent to %s\n", res.Message, res.PhoneNumber)
	return nil
}

func (s *Shell) cmdStatus(_ context.Context, _ []string) error {
	snap := s.flow.Snapshot()
	if !snap.Sent {
		s.printf("no code sent\n")
		return nil
	}
	warn := ""
	if snap.Warning {
		warn = " (!)"
	}
	s.printf("phone %s, code %s, expires in %s%s\n", snap.Phone, codeLine(snap), snap.Countdown, warn)
	if snap.Error != "" {
		s.printf("error: %s\n", snap.Error)
	}
	return nil
}

func (s *Shell) cmdLogout(ctx context.Context, _ []string) error {
	if err := store.ClearStoredSession(ctx, s.storage); err != nil {
		return err
	}
	if err := s.reconciler.Reconcile(ctx); err != nil {
		return err
	}
	s.printf("logged out\n")
	return nil
}

func (s *Shell) cmdWhoami(_ context.Context, _ []string) error {
	st := s.store.State()
	if st.Session == nil {
		s.printf("not logged in\n")
		return nil
	}
	name := st.Session.Name
	if name == "" {
		name = "-"
	}
	s.printf("user %s (%s), plan %s, landing %s\n", st.Session.UserID, name, st.Session.PlanID, st.Landing)
	return nil
}

func (s *Shell) cmdSession(ctx context.Context, _ []string) error {
	st := s.store.State()
	if st.Session == nil {
		s.printf("not logged in\n")
		return nil
	}
	info, err := s.backend.Session(ctx, st.Session.Token)
	if errors.Is(err, client.ErrUnauthorized) {
		s.printf("token not accepted by the server\n")
		return nil
	}
	if err != nil {
		return err
	}
	s.printf("token accepted: user %s, plan %s, expires %s\n", info.UserID, info.PlanID, info.ExpiresAt.Format("2006-01-02 15:04"))
	return nil
}

func (s *Shell) cmdConversations(ctx context.Context, _ []string) error {
	list := store.ReadConversations(ctx, s.storage)
	if len(list) == 0 {
		s.printf("no conversations\n")
		return nil
	}
	for _, c := range list {
		title := c.Title
		if title == "" {
			title = "-"
		}
		s.printf("  %s  %s  %s\n", c.ID, title, c.UpdatedAt)
	}
	return nil
}

func (s *Shell) verified(res *verification.VerifyCodeResult, err error) error {
	if errors.Is(err, verification.ErrNotVerified) {
		return errors.New(s.flow.Snapshot().Error)
	}
	if err != nil {
		return err
	}
	s.printf("%s\n", res.Message)
	return nil
}

// product resolves args[0] against the loaded catalog.
func (s *Shell) product(args []string) (models.Product, error) {
	if len(args) == 0 {
		return models.Product{}, errUsage
	}
	p, ok := s.store.State().Product(models.ID(args[0]))
	if !ok {
		return models.Product{}, fmt.Errorf("unknown product %q, try \"refresh\"", args[0])
	}
	return p, nil
}

func productLine(st store.State, p models.Product) string {
	marks := ""
	if item, ok := st.CartItem(p.ID); ok {
		marks += fmt.Sprintf(" [cart x%d]", item.Quantity)
	}
	if st.IsFavorite(p.ID) {
		marks += " [fav]"
	}
	if !p.Stock {
		marks += " [sin stock]"
	}
	return fmt.Sprintf("%-6s %-24s %8.2f%s", p.ID, p.Name, p.Price, marks)
}

func codeLine(snap verification.Snapshot) string {
	var b strings.Builder
	for _, d := range snap.Digits {
		if d == "" {
			d = "_"
		}
		b.WriteString(d)
	}
	return b.String()
}
