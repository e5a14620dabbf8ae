package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/regenrek/panestore/internal/layout"
	"github.com/regenrek/panestore/internal/logging"
	"github.com/regenrek/panestore/internal/store"
)

// Toolkit is the window system the coordinator drives.
type Toolkit interface {
	// Windows returns the live toplevel windows in creation order.
	Windows() []layout.LiveNode
	// Realize creates real windows, containers and terminals for forest,
	// roots first and children in order.
	Realize(ctx context.Context, forest layout.Forest) error
	// NewDefaultWindow opens one window holding one terminal.
	NewDefaultWindow(ctx context.Context, term layout.TerminalAttrs) error
}

// Options configure a Coordinator.
type Options struct {
	Store   *store.Store
	Toolkit Toolkit
	// Layout is the layout saved to. Empty uses the store's active layout.
	Layout string
	Namer  layout.Namer
	Logger *slog.Logger
}

// Coordinator saves the live window tree into the store and rebuilds it on
// startup.
type Coordinator struct {
	store   *store.Store
	toolkit Toolkit
	namer   layout.Namer
	logger  *slog.Logger

	mu            sync.Mutex
	layoutName    string
	restoring     bool
	quitting      bool
	changed       bool
	savedSuppress bool
}

// New returns a coordinator bound to st and tk.
func New(opts Options) (*Coordinator, error) {
	if opts.Store == nil {
		return nil, errors.New("session: store is required")
	}
	if opts.Toolkit == nil {
		return nil, errors.New("session: toolkit is required")
	}
	name := strings.TrimSpace(opts.Layout)
	if name == "" {
		name = opts.Store.ActiveLayout()
	}
	namer := opts.Namer
	if namer == nil {
		namer = layout.NewCounterNamer()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:      opts.Store,
		toolkit:    opts.Toolkit,
		namer:      namer,
		logger:     logger.With(slog.String("component", "session")),
		layoutName: name,
	}, nil
}

// LayoutName returns the layout the coordinator saves to.
func (c *Coordinator) LayoutName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layoutName
}

// Restoring reports whether a restore has started and RestoreDone has not
// been called yet.
func (c *Coordinator) Restoring() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restoring
}

// Snapshot flattens the live tree. The new terminal stub of the stored
// layout is carried into the result.
func (c *Coordinator) Snapshot() (layout.Flat, error) {
	c.mu.Lock()
	name := c.layoutName
	c.mu.Unlock()
	return c.snapshot(name)
}

func (c *Coordinator) snapshot(name string) (layout.Flat, error) {
	flat, err := layout.Flatten(c.toolkit.Windows(), c.namer)
	if err != nil {
		return nil, err
	}
	if rec, err := c.store.LayoutRecord(name, layout.NewTerminalID); err == nil && rec.Kind == layout.KindStub {
		flat[layout.NewTerminalID] = rec
	}
	return flat, nil
}

// LayoutChanged records that the live tree no longer matches the stored
// layout. It is ignored while restoring or quitting.
func (c *Coordinator) LayoutChanged() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.restoring || c.quitting {
		return
	}
	c.changed = true
}

// Changed reports whether LayoutChanged was called since the last commit.
func (c *Coordinator) Changed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

// Commit re-describes the live tree into the store without persisting. A
// tree with a split child being torn down is skipped; the stored layout is
// kept and the change stays pending.
func (c *Coordinator) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commitLocked()
}

func (c *Coordinator) commitLocked() error {
	if c.restoring || c.quitting {
		c.logger.Debug("discarding commit during restore or quit")
		return nil
	}
	flat, err := c.snapshot(c.layoutName)
	if errors.Is(err, layout.ErrTeardown) {
		c.logger.Debug("keeping stored layout; tree is being torn down", slog.String("layout", c.layoutName))
		return nil
	}
	if err != nil {
		return fmt.Errorf("session: describe layout: %w", err)
	}
	if err := c.store.SetLayout(c.layoutName, flat); err != nil {
		return err
	}
	c.changed = false
	return nil
}

// SaveState persists the session. A changed layout is re-described and
// written; otherwise the store decides whether anything needs writing.
func (c *Coordinator) SaveState() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.restoring || c.quitting {
		c.logger.Debug("discarding save during restore or quit")
		return nil
	}
	if c.changed {
		if err := c.commitLocked(); err != nil {
			return err
		}
	}
	return c.store.Persist(false)
}

// SaveAs describes the live tree into a new or existing layout and makes it
// the save target.
func (c *Coordinator) SaveAs(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty layout name", store.ErrInvalidValue)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	flat, err := c.snapshot(name)
	if err != nil {
		return fmt.Errorf("session: describe layout: %w", err)
	}
	if err := c.store.SetLayout(name, flat); err != nil {
		return err
	}
	c.layoutName = name
	c.changed = false
	return c.store.SetActiveLayout(name)
}

// RestoreResult reports how a restore went.
type RestoreResult struct {
	Layout string
	// Fallback is set when a single default window was opened instead.
	Fallback   bool
	Unresolved []layout.NodeID
	Windows    int
}

// Restore rebuilds the named layout through the toolkit. A missing or
// corrupt layout falls back to one default window. Persistence stays
// suppressed until RestoreDone.
func (c *Coordinator) Restore(ctx context.Context, name string) (RestoreResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = c.store.ActiveLayout()
	}
	c.mu.Lock()
	if !c.restoring {
		c.savedSuppress = c.store.SuppressWrite()
		c.store.SetSuppressWrite(true)
	}
	c.restoring = true
	c.changed = false
	c.mu.Unlock()

	res := RestoreResult{Layout: name}
	forest, err := c.load(name)
	if err != nil {
		var corrupt *layout.CorruptError
		if errors.As(err, &corrupt) {
			res.Unresolved = corrupt.Unresolved
		}
		c.logger.Warn("restoring default window", slog.String("layout", name), slog.Any("err", err))
		res.Fallback = true
		if err := c.toolkit.NewDefaultWindow(ctx, c.store.DefaultTerminal()); err != nil {
			return res, fmt.Errorf("session: open default window: %w", err)
		}
		res.Windows = 1
		return res, nil
	}
	if err := c.toolkit.Realize(ctx, forest); err != nil {
		return res, fmt.Errorf("session: realize %s: %w", name, err)
	}
	res.Windows = len(forest)
	c.mu.Lock()
	c.layoutName = name
	c.mu.Unlock()
	if err := c.store.SetActiveLayout(name); err != nil {
		return res, err
	}
	c.logger.Info("layout restored", slog.String("layout", name), slog.Int("windows", res.Windows))
	return res, nil
}

// load fetches and reconciles name. A layout without windows counts as
// missing.
func (c *Coordinator) load(name string) (layout.Forest, error) {
	flat, err := c.store.Layout(name)
	if err != nil {
		return nil, err
	}
	forest, err := layout.Reconcile(flat)
	if err != nil {
		return nil, err
	}
	if len(forest) == 0 {
		return nil, fmt.Errorf("%w: %s has no windows", store.ErrLayoutNotFound, name)
	}
	return forest, nil
}

// RestoreDone ends a restore and restores the previous write setting.
func (c *Coordinator) RestoreDone() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.restoring {
		return
	}
	c.restoring = false
	c.changed = false
	c.store.SetSuppressWrite(c.savedSuppress)
}

// BeginQuit stops commits and saves triggered by windows closing during
// shutdown.
func (c *Coordinator) BeginQuit() {
	c.mu.Lock()
	c.quitting = true
	c.mu.Unlock()
}

// TerminalPreset returns the attributes for a terminal split off source.
// With always_split_with_profile the source is cloned and its title and
// command are marked pending; otherwise the new terminal stub is used.
func (c *Coordinator) TerminalPreset(source layout.LiveNode) layout.TerminalAttrs {
	def := c.store.DefaultTerminal()
	if source == nil || source.Kind() != layout.KindTerminal {
		return def
	}
	clone, err := c.store.Get(store.KeyAlwaysSplitWithProfile)
	if err != nil || !clone.Bool() {
		return def
	}
	attrs, ok := source.Attributes().(layout.TerminalAttrs)
	if !ok {
		return def
	}
	out := layout.TerminalAttrs{
		Title:       layout.MarkPending(attrs.Title),
		Profile:     attrs.Profile,
		Directory:   attrs.Directory,
		Command:     layout.MarkPending(attrs.Command),
		Environment: append([]string(nil), attrs.Environment...),
		Group:       attrs.Group,
	}
	c.logger.Debug("cloning terminal preset",
		slog.String("source", source.Identity()),
		slog.String("command", logging.SanitizeCommand(attrs.Command)))
	return out
}
