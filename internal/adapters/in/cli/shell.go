// internal/adapters/in/cli/shell.go
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"primepicks/internal/application/query"
	"primepicks/internal/application/usecase"
	cartdom "primepicks/internal/domain/cart"
)

const helpText = `commands:
  use <identity>                          select the cart owner
  add <productId> <qty> [size=..] [color=..]
  update <itemId> <qty>
  remove <itemId>
  clear
  view                                    cart with live catalog data
  summary
  metrics                                 prometheus text exposition
  help
  quit
`

// Shell is a line-oriented operator console over a CartStore.
// One command per line, one JSON document per reply.
type Shell struct {
	store    *usecase.CartStore
	views    *query.CartQuery
	gatherer prometheus.Gatherer
	out      io.Writer
	identity string
}

func NewShell(store *usecase.CartStore, views *query.CartQuery, gatherer prometheus.Gatherer, out io.Writer, identity string) *Shell {
	if views == nil && store != nil {
		views = query.NewCartQuery(store, nil)
	}
	return &Shell{
		store:    store,
		views:    views,
		gatherer: gatherer,
		out:      out,
		identity: strings.TrimSpace(identity),
	}
}

// Identity returns the currently selected cart owner.
func (s *Shell) Identity() string { return s.identity }

// Run reads commands from in until EOF, quit or ctx cancellation.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if quit := s.Exec(ctx, sc.Text()); quit {
			return nil
		}
	}
	return sc.Err()
}

// Exec runs one command line. It reports true when the shell should stop.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	defer s.recoverCommand(cmd)

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		_, _ = io.WriteString(s.out, helpText)
		return false
	case "use":
		s.handleUse(args)
		return false
	case "metrics":
		s.handleMetrics()
		return false
	}

	if s.store == nil {
		s.writeErr(errors.New("cart store is not configured"))
		return false
	}
	if s.identity == "" {
		s.writeErr(fmt.Errorf("%w: no identity selected (use <identity>)", cartdom.ErrInvalidInput))
		return false
	}

	switch cmd {
	case "add":
		s.handleAdd(ctx, args)
	case "update", "set":
		s.handleUpdate(args)
	case "remove", "rm":
		s.handleRemove(args)
	case "clear":
		s.writeJSON(s.store.Clear(s.identity))
	case "view", "get":
		s.writeJSON(s.views.GetCartView(ctx, s.identity))
	case "summary":
		s.writeJSON(s.store.Summary(s.identity))
	default:
		s.writeErr(fmt.Errorf("%w: unknown command %q (try help)", cartdom.ErrInvalidInput, cmd))
	}
	return false
}

// -------------------------
// handlers
// -------------------------

func (s *Shell) handleUse(args []string) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		s.writeErr(fmt.Errorf("%w: usage: use <identity>", cartdom.ErrInvalidInput))
		return
	}
	s.identity = strings.TrimSpace(args[0])
	log.Printf("[cli] identity switched")
	s.writeJSON(map[string]string{"identity": s.identity})
}

func (s *Shell) handleAdd(ctx context.Context, args []string) {
	if len(args) < 2 {
		s.writeErr(fmt.Errorf("%w: usage: add <productId> <qty> [size=..] [color=..]", cartdom.ErrInvalidInput))
		return
	}
	qty, err := parseQty(args[1])
	if err != nil {
		s.writeErr(err)
		return
	}

	in := usecase.AddItemInput{
		Identity:  s.identity,
		ProductID: args[0],
		Quantity:  qty,
	}
	for _, kv := range args[2:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			s.writeErr(fmt.Errorf("%w: expected key=value, got %q", cartdom.ErrInvalidInput, kv))
			return
		}
		switch strings.ToLower(k) {
		case "size":
			in.Size = v
		case "color", "colour":
			in.Color = v
		default:
			s.writeErr(fmt.Errorf("%w: unknown option %q", cartdom.ErrInvalidInput, k))
			return
		}
	}

	c, err := s.store.Add(ctx, in)
	if err != nil {
		s.writeErr(err)
		return
	}
	s.writeJSON(c)
}

func (s *Shell) handleUpdate(args []string) {
	if len(args) != 2 {
		s.writeErr(fmt.Errorf("%w: usage: update <itemId> <qty>", cartdom.ErrInvalidInput))
		return
	}
	qty, err := parseQty(args[1])
	if err != nil {
		s.writeErr(err)
		return
	}
	c, err := s.store.UpdateQuantity(s.identity, args[0], qty)
	if err != nil {
		s.writeErr(err)
		return
	}
	s.writeJSON(c)
}

func (s *Shell) handleRemove(args []string) {
	if len(args) != 1 {
		s.writeErr(fmt.Errorf("%w: usage: remove <itemId>", cartdom.ErrInvalidInput))
		return
	}
	c, err := s.store.Remove(s.identity, args[0])
	if err != nil {
		s.writeErr(err)
		return
	}
	s.writeJSON(c)
}

func (s *Shell) handleMetrics() {
	if s.gatherer == nil {
		s.writeErr(errors.New("metrics are not configured"))
		return
	}
	mfs, err := s.gatherer.Gather()
	if err != nil {
		s.writeErr(fmt.Errorf("gather metrics: %w", err))
		return
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(s.out, mf); err != nil {
			log.Printf("[cli] metrics write failed family=%q err=%v", mf.GetName(), err)
			return
		}
	}
}

// -------------------------
// helpers
// -------------------------

func parseQty(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: quantity must be an integer (got %q)", cartdom.ErrInvalidInput, raw)
	}
	return n, nil
}

type errorReply struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Shell) writeJSON(v any) {
	if err := json.NewEncoder(s.out).Encode(v); err != nil {
		log.Printf("[cli] encode failed err=%v", err)
	}
}

func (s *Shell) writeErr(err error) {
	s.writeJSON(errorReply{Error: strings.TrimSpace(err.Error()), Kind: cartdom.ErrorKind(err)})
}
