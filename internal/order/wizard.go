package order

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/orderdesk/internal/logging"
)

// Screen is the active screen of the wizard
type Screen string

const (
	ScreenSearching Screen = "searching"
	ScreenReviewing Screen = "reviewing"
)

var (
	// ErrBusy is returned when the same kind of remote call is already in flight
	ErrBusy = errors.New("a request of this kind is already in progress")
	// ErrWrongScreen is returned when an action is not valid on the active screen
	ErrWrongScreen = errors.New("action not available on this screen")
	// ErrEmptySelection is returned when proceeding or submitting with nothing selected
	ErrEmptySelection = errors.New("no products selected")
	// ErrClosed is returned by every action after the wizard was closed
	ErrClosed = errors.New("wizard is closed")
)

// action identifies a kind of remote call for busy tracking
type action int

const (
	actionCategories action = iota
	actionCount
	actionLoad
	actionCreate
)

// Row is a product on the current page as the grid displays it
type Row struct {
	Product
	Quantity int    // Selection Set quantity if selected, else DefaultQuantity
	Draft    string // unsaved in-grid quantity edit, if any
	Selected bool
}

// DisplayQuantity returns what the quantity cell shows
func (r Row) DisplayQuantity() string {
	if r.Draft != "" {
		return r.Draft
	}
	return fmt.Sprintf("%d", r.Quantity)
}

// Options configure a Wizard
type Options struct {
	ParentID string   // record the order is created for
	PageSize int      // products per page, DefaultPageSize if zero
	Notifier Notifier // receives every notification
	OnClose  func(*Result)
}

// State is an immutable snapshot of everything a view renders
type State struct {
	Screen   Screen
	Closed   bool
	Loading  bool
	ParentID string

	Term       string
	Category   string
	Categories []CategoryOption

	Rows    []Row
	Checked []string
	Review  []Entry

	Page         int
	PageSize     int
	TotalPages   int
	TotalRecords int
	IsFirstPage  bool
	IsLastPage   bool

	SelectedCount    int
	LastNotification *Notification
	Result           *Result
}

// Wizard drives the search/select and review/submit flow of an order.
//
// All methods are safe for concurrent use. State is guarded by a single mutex
// which is never held across a remote call; responses that arrive after a
// newer request of the same kind was issued are discarded.
type Wizard struct {
	mu sync.Mutex

	catalog  Catalog
	parentID string
	notifier Notifier
	onClose  func(*Result)

	screen     Screen
	closed     bool
	pager      Pager
	term       string
	category   string
	categories []CategoryOption

	rows      []Row
	checked   []string
	drafts    map[string]string
	selection *SelectionSet
	review    []Entry

	busy       map[action]bool
	generation map[action]uint64

	last   *Notification
	result *Result
}

// NewWizard creates a wizard on the search screen with an empty selection
func NewWizard(catalog Catalog, opts Options) *Wizard {
	return &Wizard{
		catalog:    catalog,
		parentID:   opts.ParentID,
		notifier:   opts.Notifier,
		onClose:    opts.OnClose,
		screen:     ScreenSearching,
		pager:      NewPager(opts.PageSize),
		categories: []CategoryOption{AllCategories},
		drafts:     make(map[string]string),
		selection:  NewSelectionSet(),
		busy:       make(map[action]bool),
		generation: make(map[action]uint64),
	}
}

// start marks an action as in flight and returns its generation
func (w *Wizard) start(a action) uint64 {
	w.generation[a]++
	w.busy[a] = true
	return w.generation[a]
}

// finish reports whether gen is still the current request for a.
// Stale completions leave the busy flag to the newer request.
func (w *Wizard) finish(a action, gen uint64) bool {
	if w.generation[a] != gen {
		return false
	}
	w.busy[a] = false
	return true
}

func (w *Wizard) loading() bool {
	for _, b := range w.busy {
		if b {
			return true
		}
	}
	return false
}

// Open initializes the wizard for a new session and loads the category list
func (w *Wizard) Open(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.resetLocked()
		w.closed = false
	}
	if w.busy[actionCategories] {
		w.mu.Unlock()
		return ErrBusy
	}
	gen := w.start(actionCategories)
	w.mu.Unlock()

	categories, err := w.catalog.ListCategories(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.finish(actionCategories, gen) {
		return nil
	}
	if err != nil {
		w.categories = []CategoryOption{AllCategories}
		w.notify(VariantError, "Error", "Error loading categories: "+describe(err))
		return err
	}
	w.categories = categoryOptions(categories)
	return nil
}

// Search counts the matches for a new filter and then loads its first page.
// The filter and page state are only replaced once both calls succeed.
func (w *Wizard) Search(ctx context.Context, term, category string) error {
	w.mu.Lock()
	if err := w.checkLocked(ScreenSearching); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.busy[actionCount] {
		w.mu.Unlock()
		return ErrBusy
	}
	gen := w.start(actionCount)
	w.mu.Unlock()

	logging.Debug("Counting products", zap.String("term", term), zap.String("category", category))
	total, err := w.catalog.CountProducts(ctx, term, category)

	w.mu.Lock()
	if !w.finish(actionCount, gen) {
		w.mu.Unlock()
		return nil
	}
	if err != nil {
		w.notify(VariantError, "Error", "Error searching products: "+describe(err))
		w.mu.Unlock()
		return err
	}
	req := w.beginLoadLocked(1)
	req.term, req.category, req.total = term, category, total
	w.mu.Unlock()

	return w.runLoad(ctx, req)
}

// NextPage loads the following page. It is a no-op on the last page.
func (w *Wizard) NextPage(ctx context.Context) error {
	return w.turnPage(ctx, 1)
}

// PreviousPage loads the preceding page. It is a no-op on the first page.
func (w *Wizard) PreviousPage(ctx context.Context) error {
	return w.turnPage(ctx, -1)
}

func (w *Wizard) turnPage(ctx context.Context, delta int) error {
	w.mu.Lock()
	if err := w.checkLocked(ScreenSearching); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.busy[actionLoad] {
		w.mu.Unlock()
		return ErrBusy
	}
	if (delta > 0 && w.pager.IsLastPage()) || (delta < 0 && w.pager.IsFirstPage()) {
		w.mu.Unlock()
		return nil
	}
	req := w.beginLoadLocked(w.pager.Page + delta)
	w.mu.Unlock()

	return w.runLoad(ctx, req)
}

// LoadPage reloads the current page
func (w *Wizard) LoadPage(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	req := w.beginLoadLocked(w.pager.Page)
	w.mu.Unlock()

	return w.runLoad(ctx, req)
}

type loadRequest struct {
	gen      uint64
	page     int
	term     string
	category string
	total    int
	offset   int
	limit    int
}

func (w *Wizard) beginLoadLocked(page int) loadRequest {
	return loadRequest{
		gen:      w.start(actionLoad),
		page:     page,
		term:     w.term,
		category: w.category,
		total:    w.pager.TotalRecords,
		offset:   w.pager.Offset(page),
		limit:    w.pager.PageSize,
	}
}

// runLoad fetches a page and commits it together with the filter and total it
// was requested for. Nothing is committed when the fetch fails.
func (w *Wizard) runLoad(ctx context.Context, req loadRequest) error {
	products, err := w.catalog.SearchProducts(ctx, req.term, req.category, req.offset, req.limit)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.finish(actionLoad, req.gen) {
		logging.Debug("Discarding stale page load",
			zap.Int("page", req.page),
			zap.Uint64("generation", req.gen),
		)
		return nil
	}
	if err != nil {
		w.notify(VariantError, "Error", "Error searching products: "+describe(err))
		return err
	}

	w.term, w.category = req.term, req.category
	w.pager.TotalRecords = req.total
	w.pager.Page = req.page
	w.rows = make([]Row, 0, len(products))
	for _, p := range products {
		w.rows = append(w.rows, Row{Product: p})
	}
	w.pageLoadedLocked()

	if len(products) == 0 {
		w.notify(VariantInfo, "Search Info", "No products found matching the criteria.")
	}
	return nil
}

// pageLoadedLocked reapplies the Selection Set to the visible rows and the
// grid's checked ids
func (w *Wizard) pageLoadedLocked() {
	w.checked = w.checked[:0]
	for i := range w.rows {
		r := &w.rows[i]
		r.Selected = w.selection.Has(r.ID)
		r.Quantity = w.selection.Quantity(r.ID)
		r.Draft = w.drafts[r.ID]
		if r.Selected {
			w.checked = append(w.checked, r.ID)
		}
	}
}

// SelectRows applies the grid's new checked set for the current page.
// Only rows visible on this page are considered: visible rows missing from
// ids are deselected, ids not yet selected are added with their displayed
// quantity, and selections made on other pages are left alone.
func (w *Wizard) SelectRows(ids []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkLocked(ScreenSearching); err != nil {
		return err
	}
	w.selectRowsLocked(ids)
	return nil
}

// ToggleRow flips the checked state of one visible row
func (w *Wizard) ToggleRow(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkLocked(ScreenSearching); err != nil {
		return err
	}
	next := make([]string, 0, len(w.checked)+1)
	found := false
	for _, c := range w.checked {
		if c == id {
			found = true
			continue
		}
		next = append(next, c)
	}
	if !found {
		next = append(next, id)
	}
	w.selectRowsLocked(next)
	return nil
}

func (w *Wizard) selectRowsLocked(ids []string) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	for _, r := range w.rows {
		inSet := w.selection.Has(r.ID)
		switch {
		case inSet && !want[r.ID]:
			w.selection.Remove(r.ID)
		case !inSet && want[r.ID]:
			qty := r.Quantity
			if raw, ok := w.drafts[r.ID]; ok {
				qty, _ = ParseQuantity(raw)
			}
			w.selection.Add(Entry{ID: r.ID, Name: r.Name, Code: r.Code, Quantity: qty})
		}
	}

	w.pageLoadedLocked()
	w.projectLocked()
}

// EditDraft records an in-grid quantity edit on the search screen. The raw
// value is kept as a draft until the wizard proceeds to review; if the row is
// already selected its quantity is updated immediately.
func (w *Wizard) EditDraft(id, raw string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkLocked(ScreenSearching); err != nil {
		return err
	}
	visible := false
	for _, r := range w.rows {
		if r.ID == id {
			visible = true
			break
		}
	}
	if !visible {
		return nil
	}
	w.drafts[id] = raw
	w.editQuantityLocked(id, raw)
	w.pageLoadedLocked()
	return nil
}

// EditQuantity sets the quantity of a selected product to
// max(1, parsed raw value). It reports false when id is not selected.
func (w *Wizard) EditQuantity(id, raw string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false, ErrClosed
	}
	return w.editQuantityLocked(id, raw), nil
}

func (w *Wizard) editQuantityLocked(id, raw string) bool {
	q, _ := ParseQuantity(raw)
	if !w.selection.SetQuantity(id, q) {
		return false
	}
	w.projectLocked()
	return true
}

// Remove drops a product from the review list. Removing the last product
// returns to the search screen and reloads the current page.
func (w *Wizard) Remove(ctx context.Context, id string) error {
	w.mu.Lock()
	if err := w.checkLocked(ScreenReviewing); err != nil {
		w.mu.Unlock()
		return err
	}
	if !w.selection.Remove(id) {
		w.mu.Unlock()
		return nil
	}
	delete(w.drafts, id)
	w.projectLocked()
	w.pageLoadedLocked()

	if w.selection.Len() > 0 {
		w.mu.Unlock()
		return nil
	}

	logging.Debug("Selection emptied, returning to search")
	w.screen = ScreenSearching
	req := w.beginLoadLocked(w.pager.Page)
	w.mu.Unlock()

	return w.runLoad(ctx, req)
}

// Proceed moves from search to review. Drafts of selected rows are flushed
// into the Selection Set first; invalid drafts become 1 with one warning per
// corrected row.
func (w *Wizard) Proceed() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkLocked(ScreenSearching); err != nil {
		return err
	}
	if w.selection.Len() == 0 {
		w.notify(VariantWarning, "Warning", "Please select at least one product.")
		return ErrEmptySelection
	}

	for _, id := range w.selection.IDs() {
		raw, ok := w.drafts[id]
		if !ok {
			continue
		}
		q, valid := ParseQuantity(raw)
		if !valid {
			e, _ := w.selection.Get(id)
			w.notify(VariantWarning, "Invalid Quantity",
				fmt.Sprintf("Quantity for %s must be a positive whole number and was set to %d.", e.Name, q))
		}
		w.selection.SetQuantity(id, q)
	}
	w.drafts = make(map[string]string)

	w.pageLoadedLocked()
	w.projectLocked()
	w.screen = ScreenReviewing
	logging.Debug("Proceeding to review", zap.Int("selected", w.selection.Len()))
	return nil
}

// Back returns from review to search and reloads the current page
func (w *Wizard) Back(ctx context.Context) error {
	w.mu.Lock()
	if err := w.checkLocked(ScreenReviewing); err != nil {
		w.mu.Unlock()
		return err
	}
	w.screen = ScreenSearching
	w.pageLoadedLocked()
	req := w.beginLoadLocked(w.pager.Page)
	w.mu.Unlock()

	return w.runLoad(ctx, req)
}

// Submit creates the order from the review list. On success the wizard
// closes and all state is discarded.
func (w *Wizard) Submit(ctx context.Context) (*Result, error) {
	w.mu.Lock()
	if err := w.checkLocked(ScreenReviewing); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	if w.selection.Len() == 0 {
		w.notify(VariantWarning, "Warning", "Please select at least one product.")
		w.mu.Unlock()
		return nil, ErrEmptySelection
	}
	if w.busy[actionCreate] {
		w.mu.Unlock()
		return nil, ErrBusy
	}
	lines := w.selection.Lines()
	parentID := w.parentID
	gen := w.start(actionCreate)
	w.mu.Unlock()

	logging.Info("Creating order", zap.String("parent_id", parentID), zap.Int("lines", len(lines)))
	res, err := w.catalog.CreateOrder(ctx, parentID, lines)

	w.mu.Lock()
	if !w.finish(actionCreate, gen) {
		w.mu.Unlock()
		return nil, ErrClosed
	}
	if err != nil {
		w.notify(VariantError, "Error", "Error creating order: "+describe(err))
		w.mu.Unlock()
		return nil, err
	}
	if res == nil {
		res = &Result{}
	}
	w.notify(VariantSuccess, "Success", fmt.Sprintf("Order %s created.", res.OrderNumber))
	w.closeLocked(res)
	onClose := w.onClose
	w.mu.Unlock()

	if onClose != nil {
		onClose(res)
	}
	return res, nil
}

// Cancel closes the wizard without creating an order
func (w *Wizard) Cancel() {
	w.mu.Lock()
	w.closeLocked(nil)
	onClose := w.onClose
	w.mu.Unlock()

	if onClose != nil {
		onClose(nil)
	}
}

func (w *Wizard) closeLocked(res *Result) {
	w.resetLocked()
	w.result = res
	w.closed = true
}

// resetLocked discards all session state. Generations are bumped so that
// responses still in flight are ignored.
func (w *Wizard) resetLocked() {
	w.screen = ScreenSearching
	w.pager.Reset()
	w.term, w.category = "", ""
	w.rows = nil
	w.checked = nil
	w.drafts = make(map[string]string)
	w.selection.Clear()
	w.review = nil
	w.result = nil
	for a := actionCategories; a <= actionCreate; a++ {
		w.generation[a]++
		w.busy[a] = false
	}
}

func (w *Wizard) checkLocked(screen Screen) error {
	if w.closed {
		return ErrClosed
	}
	if w.screen != screen {
		return ErrWrongScreen
	}
	return nil
}

// projectLocked rebuilds the visible selection list from the Selection Set
func (w *Wizard) projectLocked() {
	w.review = w.selection.Entries()
}

// Selection returns the current Selection Set contents
func (w *Wizard) Selection() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection.Entries()
}

// Snapshot returns a copy of the wizard state for rendering
func (w *Wizard) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := State{
		Screen:        w.screen,
		Closed:        w.closed,
		Loading:       w.loading(),
		ParentID:      w.parentID,
		Term:          w.term,
		Category:      w.category,
		Categories:    append([]CategoryOption(nil), w.categories...),
		Rows:          append([]Row(nil), w.rows...),
		Checked:       append([]string(nil), w.checked...),
		Review:        append([]Entry(nil), w.review...),
		Page:          w.pager.Page,
		PageSize:      w.pager.PageSize,
		TotalPages:    w.pager.TotalPages(),
		TotalRecords:  w.pager.TotalRecords,
		IsFirstPage:   w.pager.IsFirstPage(),
		IsLastPage:    w.pager.IsLastPage(),
		SelectedCount: w.selection.Len(),
		Result:        w.result,
	}
	if w.last != nil {
		n := *w.last
		s.LastNotification = &n
	}
	return s
}

// describe extracts a user-facing message from err
func describe(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return err.Error()
}
