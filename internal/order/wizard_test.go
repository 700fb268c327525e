package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type createCall struct {
	parentID string
	lines    []Line
}

// fakeCatalog serves a fixed product list from memory
type fakeCatalog struct {
	mu       sync.Mutex
	products []Product

	countErr    error
	searchErr   error
	categoryErr error
	createErr   error

	// when block is set the next SearchProducts call signals entered and
	// waits for block to be closed
	block   chan struct{}
	entered chan struct{}

	// same hook for the next CreateOrder call
	createBlock   chan struct{}
	createEntered chan struct{}

	searches int
	orders   []createCall
}

func newFakeCatalog(n int) *fakeCatalog {
	f := &fakeCatalog{}
	for i := 1; i <= n; i++ {
		family := "Hardware"
		if i%2 == 0 {
			family = "Software"
		}
		f.products = append(f.products, Product{
			ID:       fmt.Sprint(i),
			Name:     fmt.Sprintf("Product %d", i),
			Code:     fmt.Sprintf("P-%03d", i),
			Category: family,
		})
	}
	return f
}

func (f *fakeCatalog) match(term, category string) []Product {
	var out []Product
	for _, p := range f.products {
		if term != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (f *fakeCatalog) SearchProducts(ctx context.Context, term, category string, offset, limit int) ([]Product, error) {
	f.mu.Lock()
	f.searches++
	block, entered := f.block, f.entered
	f.block = nil
	err := f.searchErr
	matched := f.match(term, category)
	f.mu.Unlock()

	if block != nil {
		entered <- struct{}{}
		<-block
	}
	if err != nil {
		return nil, err
	}
	if offset >= len(matched) {
		return []Product{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return append([]Product(nil), matched[offset:end]...), nil
}

func (f *fakeCatalog) CountProducts(ctx context.Context, term, category string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.match(term, category)), nil
}

func (f *fakeCatalog) ListCategories(ctx context.Context) ([]string, error) {
	if f.categoryErr != nil {
		return nil, f.categoryErr
	}
	return []string{"Hardware", "Software"}, nil
}

func (f *fakeCatalog) CreateOrder(ctx context.Context, parentID string, lines []Line) (*Result, error) {
	f.mu.Lock()
	block, entered := f.createBlock, f.createEntered
	f.createBlock = nil
	f.mu.Unlock()

	if block != nil {
		entered <- struct{}{}
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.orders = append(f.orders, createCall{parentID: parentID, lines: lines})
	return &Result{OrderNumber: fmt.Sprintf("ORD-%06d", len(f.orders))}, nil
}

// userErr mimics a platform error carrying a short user message
type userErr struct{ msg string }

func (e *userErr) Error() string       { return "platform: " + e.msg }
func (e *userErr) UserMessage() string { return e.msg }

type recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recorder) notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) byVariant(v Variant) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.notes {
		if n.Variant == v {
			out = append(out, n)
		}
	}
	return out
}

func newTestWizard(t *testing.T, n int) (*Wizard, *fakeCatalog, *recorder) {
	t.Helper()
	cat := newFakeCatalog(n)
	rec := &recorder{}
	w := NewWizard(cat, Options{ParentID: "lead-1", PageSize: 10, Notifier: rec.notify})
	require.NoError(t, w.Open(context.Background()))
	return w, cat, rec
}

func rowIDs(rows []Row) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestWizard_OrderAcrossPages(t *testing.T) {
	ctx := context.Background()
	var closedWith *Result
	cat := newFakeCatalog(23)
	rec := &recorder{}
	w := NewWizard(cat, Options{
		ParentID: "lead-1",
		PageSize: 10,
		Notifier: rec.notify,
		OnClose:  func(r *Result) { closedWith = r },
	})
	require.NoError(t, w.Open(ctx))

	require.NoError(t, w.Search(ctx, "", ""))
	s := w.Snapshot()
	assert.Equal(t, 23, s.TotalRecords)
	assert.Equal(t, 3, s.TotalPages)
	assert.Equal(t, 1, s.Page)
	assert.True(t, s.IsFirstPage)
	assert.False(t, s.IsLastPage)
	assert.Len(t, s.Rows, 10)

	require.NoError(t, w.SelectRows([]string{"1", "2"}))

	require.NoError(t, w.NextPage(ctx))
	s = w.Snapshot()
	assert.Equal(t, 2, s.Page)
	assert.Equal(t, "11", s.Rows[0].ID)
	assert.Empty(t, s.Checked)

	require.NoError(t, w.SelectRows([]string{"15"}))

	require.NoError(t, w.PreviousPage(ctx))
	s = w.Snapshot()
	if diff := cmp.Diff([]string{"1", "2"}, s.Checked); diff != "" {
		t.Errorf("checked ids after returning to page 1 (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, s.SelectedCount)

	require.NoError(t, w.Proceed())
	s = w.Snapshot()
	assert.Equal(t, ScreenReviewing, s.Screen)
	wantReview := []Entry{
		{ID: "1", Name: "Product 1", Code: "P-001", Quantity: 1},
		{ID: "2", Name: "Product 2", Code: "P-002", Quantity: 1},
		{ID: "15", Name: "Product 15", Code: "P-015", Quantity: 1},
	}
	if diff := cmp.Diff(wantReview, s.Review); diff != "" {
		t.Errorf("review list mismatch (-want +got):\n%s", diff)
	}

	ok, err := w.EditQuantity("1", "5")
	require.NoError(t, err)
	assert.True(t, ok)

	res, err := w.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ORD-000001", res.OrderNumber)

	require.Len(t, cat.orders, 1)
	assert.Equal(t, "lead-1", cat.orders[0].parentID)
	wantLines := []Line{
		{ProductID: "1", Quantity: 5},
		{ProductID: "2", Quantity: 1},
		{ProductID: "15", Quantity: 1},
	}
	if diff := cmp.Diff(wantLines, cat.orders[0].lines); diff != "" {
		t.Errorf("submitted lines mismatch (-want +got):\n%s", diff)
	}

	s = w.Snapshot()
	assert.True(t, s.Closed)
	assert.Zero(t, s.SelectedCount)
	assert.Empty(t, s.Rows)
	assert.Equal(t, res, closedWith)

	success := rec.byVariant(VariantSuccess)
	require.Len(t, success, 1)
	assert.Contains(t, success[0].Message, "ORD-000001")
}

func TestWizard_OpenLoadsCategories(t *testing.T) {
	w, _, _ := newTestWizard(t, 3)

	want := []CategoryOption{
		{Label: "All Categories", Value: ""},
		{Label: "Hardware", Value: "Hardware"},
		{Label: "Software", Value: "Software"},
	}
	if diff := cmp.Diff(want, w.Snapshot().Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestWizard_OpenCategoryFailure(t *testing.T) {
	cat := newFakeCatalog(3)
	cat.categoryErr = &userErr{msg: "Insufficient privileges"}
	rec := &recorder{}
	w := NewWizard(cat, Options{Notifier: rec.notify})

	err := w.Open(context.Background())
	require.Error(t, err)

	assert.Equal(t, []CategoryOption{AllCategories}, w.Snapshot().Categories)
	errs := rec.byVariant(VariantError)
	require.Len(t, errs, 1)
	assert.Equal(t, "Error loading categories: Insufficient privileges", errs[0].Message)
}

func TestWizard_SearchFiltersAndResetsPage(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newTestWizard(t, 23)

	require.NoError(t, w.Search(ctx, "", ""))
	require.NoError(t, w.NextPage(ctx))
	assert.Equal(t, 2, w.Snapshot().Page)

	require.NoError(t, w.Search(ctx, "", "Software"))
	s := w.Snapshot()
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 11, s.TotalRecords)
	assert.Equal(t, "Software", s.Category)
	for _, r := range s.Rows {
		assert.Equal(t, "Software", r.Category)
	}
}

func TestWizard_SearchNoResults(t *testing.T) {
	w, _, rec := newTestWizard(t, 5)

	require.NoError(t, w.Search(context.Background(), "nothing-matches", ""))

	s := w.Snapshot()
	assert.Empty(t, s.Rows)
	assert.True(t, s.IsLastPage)
	info := rec.byVariant(VariantInfo)
	require.Len(t, info, 1)
	assert.Equal(t, "No products found matching the criteria.", info[0].Message)
}

func TestWizard_SearchCountFailure(t *testing.T) {
	w, cat, rec := newTestWizard(t, 5)
	cat.countErr = errors.New("connection refused")

	err := w.Search(context.Background(), "", "")
	require.Error(t, err)

	assert.Zero(t, cat.searches)
	errs := rec.byVariant(VariantError)
	require.Len(t, errs, 1)
	assert.Equal(t, "Error searching products: connection refused", errs[0].Message)
	assert.False(t, w.Snapshot().Loading)
}

func TestWizard_FailedSearchKeepsFilterAndPage(t *testing.T) {
	ctx := context.Background()
	w, cat, rec := newTestWizard(t, 23)
	require.NoError(t, w.Search(ctx, "", ""))
	require.NoError(t, w.NextPage(ctx))

	cat.countErr = errors.New("connection refused")
	require.Error(t, w.Search(ctx, "Product 1", "Hardware"))
	require.Len(t, rec.byVariant(VariantError), 1)

	s := w.Snapshot()
	assert.Equal(t, 2, s.Page)
	assert.Equal(t, 23, s.TotalRecords)
	assert.False(t, s.IsLastPage)
	assert.Equal(t, "", s.Term)
	assert.Equal(t, "", s.Category)
	assert.Equal(t, "11", s.Rows[0].ID)

	// paging continues on the filter that was last loaded
	cat.countErr = nil
	require.NoError(t, w.NextPage(ctx))
	s = w.Snapshot()
	assert.Equal(t, 3, s.Page)
	assert.Equal(t, "21", s.Rows[0].ID)
}

func TestWizard_FailedSearchLoadKeepsFilter(t *testing.T) {
	ctx := context.Background()
	w, cat, _ := newTestWizard(t, 23)
	require.NoError(t, w.Search(ctx, "", ""))

	cat.searchErr = errors.New("timeout")
	require.Error(t, w.Search(ctx, "", "Software"))

	s := w.Snapshot()
	assert.Equal(t, "", s.Category)
	assert.Equal(t, 23, s.TotalRecords)
	assert.Equal(t, "1", s.Rows[0].ID)
}

func TestWizard_PagingBounds(t *testing.T) {
	ctx := context.Background()
	w, cat, _ := newTestWizard(t, 23)
	require.NoError(t, w.Search(ctx, "", ""))
	before := cat.searches

	require.NoError(t, w.PreviousPage(ctx))
	assert.Equal(t, before, cat.searches, "previous on first page must not fetch")

	require.NoError(t, w.NextPage(ctx))
	require.NoError(t, w.NextPage(ctx))
	s := w.Snapshot()
	assert.Equal(t, 3, s.Page)
	assert.True(t, s.IsLastPage)
	assert.Len(t, s.Rows, 3)

	before = cat.searches
	require.NoError(t, w.NextPage(ctx))
	assert.Equal(t, before, cat.searches, "next on last page must not fetch")
}

func TestWizard_FailedPageLoadKeepsPage(t *testing.T) {
	ctx := context.Background()
	w, cat, rec := newTestWizard(t, 23)
	require.NoError(t, w.Search(ctx, "", ""))

	cat.searchErr = &userErr{msg: "Request timed out"}
	require.Error(t, w.NextPage(ctx))

	s := w.Snapshot()
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, "1", s.Rows[0].ID)
	require.Len(t, rec.byVariant(VariantError), 1)
}

func TestWizard_DeselectOnlyAffectsVisibleRows(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newTestWizard(t, 23)
	require.NoError(t, w.Search(ctx, "", ""))

	require.NoError(t, w.SelectRows([]string{"1", "2", "3"}))
	require.NoError(t, w.NextPage(ctx))
	require.NoError(t, w.SelectRows([]string{"12"}))
	require.NoError(t, w.PreviousPage(ctx))

	require.NoError(t, w.SelectRows([]string{"2"}))

	ids := make([]string, 0)
	for _, e := range w.Selection() {
		ids = append(ids, e.ID)
	}
	if diff := cmp.Diff([]string{"2", "12"}, ids); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestWizard_SelectionSurvivesNewSearch(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newTestWizard(t, 23)
	require.NoError(t, w.Search(ctx, "", ""))
	require.NoError(t, w.SelectRows([]string{"4"}))

	require.NoError(t, w.Search(ctx, "Product 4", ""))
	s := w.Snapshot()
	assert.Equal(t, []string{"4"}, rowIDs(s.Rows))
	assert.Equal(t, []string{"4"}, s.Checked)
	assert.True(t, s.Rows[0].Selected)
}

func TestWizard_ToggleRow(t *testing.T) {
	w, _, _ := newTestWizard(t, 5)
	require.NoError(t, w.Search(context.Background(), "", ""))

	require.NoError(t, w.ToggleRow("3"))
	assert.Equal(t, []string{"3"}, w.Snapshot().Checked)

	require.NoError(t, w.ToggleRow("3"))
	assert.Empty(t, w.Snapshot().Checked)
}

func TestWizard_DraftQuantities(t *testing.T) {
	ctx := context.Background()
	w, _, rec := newTestWizard(t, 5)
	require.NoError(t, w.Search(ctx, "", ""))

	// a draft on an unselected row is used when the row is selected
	require.NoError(t, w.EditDraft("2", "4"))
	assert.Equal(t, "4", w.Snapshot().Rows[1].DisplayQuantity())
	require.NoError(t, w.SelectRows([]string{"1", "2"}))

	// an invalid draft on a selected row is corrected on proceed
	require.NoError(t, w.EditDraft("1", "abc"))
	require.NoError(t, w.Proceed())

	want := []Entry{
		{ID: "1", Name: "Product 1", Code: "P-001", Quantity: 1},
		{ID: "2", Name: "Product 2", Code: "P-002", Quantity: 4},
	}
	if diff := cmp.Diff(want, w.Snapshot().Review); diff != "" {
		t.Errorf("review mismatch (-want +got):\n%s", diff)
	}

	warnings := rec.byVariant(VariantWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Invalid Quantity", warnings[0].Title)
	assert.Contains(t, warnings[0].Message, "Product 1")
}

func TestWizard_ProceedRequiresSelection(t *testing.T) {
	w, _, rec := newTestWizard(t, 5)
	require.NoError(t, w.Search(context.Background(), "", ""))

	err := w.Proceed()
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Equal(t, ScreenSearching, w.Snapshot().Screen)

	warnings := rec.byVariant(VariantWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Please select at least one product.", warnings[0].Message)
}

func TestWizard_EditQuantityNormalizes(t *testing.T) {
	w, _, _ := newTestWizard(t, 5)
	require.NoError(t, w.Search(context.Background(), "", ""))
	require.NoError(t, w.SelectRows([]string{"1"}))
	require.NoError(t, w.Proceed())

	tests := []struct {
		raw  string
		want int
	}{
		{"7", 7},
		{"0", 1},
		{"-2", 1},
		{"x", 1},
	}
	for _, tt := range tests {
		ok, err := w.EditQuantity("1", tt.raw)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, tt.want, w.Snapshot().Review[0].Quantity, "raw %q", tt.raw)
	}

	ok, err := w.EditQuantity("missing", "3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWizard_RemoveLastReturnsToSearch(t *testing.T) {
	ctx := context.Background()
	w, cat, _ := newTestWizard(t, 5)
	require.NoError(t, w.Search(ctx, "", ""))
	require.NoError(t, w.SelectRows([]string{"1", "2"}))
	require.NoError(t, w.Proceed())

	require.NoError(t, w.Remove(ctx, "1"))
	s := w.Snapshot()
	assert.Equal(t, ScreenReviewing, s.Screen)
	assert.Len(t, s.Review, 1)

	before := cat.searches
	require.NoError(t, w.Remove(ctx, "2"))
	s = w.Snapshot()
	assert.Equal(t, ScreenSearching, s.Screen)
	assert.Empty(t, s.Checked)
	assert.Equal(t, before+1, cat.searches)
}

func TestWizard_BackKeepsSelection(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newTestWizard(t, 23)
	require.NoError(t, w.Search(ctx, "", ""))
	require.NoError(t, w.NextPage(ctx))
	require.NoError(t, w.SelectRows([]string{"11"}))
	require.NoError(t, w.Proceed())
	_, err := w.EditQuantity("11", "3")
	require.NoError(t, err)

	require.NoError(t, w.Back(ctx))
	s := w.Snapshot()
	assert.Equal(t, ScreenSearching, s.Screen)
	assert.Equal(t, 2, s.Page)
	assert.Equal(t, []string{"11"}, s.Checked)
	assert.Equal(t, 3, s.Rows[0].Quantity)
}

func TestWizard_WrongScreen(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newTestWizard(t, 5)
	require.NoError(t, w.Search(ctx, "", ""))

	_, err := w.Submit(ctx)
	assert.ErrorIs(t, err, ErrWrongScreen)
	assert.ErrorIs(t, w.Back(ctx), ErrWrongScreen)
	assert.ErrorIs(t, w.Remove(ctx, "1"), ErrWrongScreen)

	require.NoError(t, w.SelectRows([]string{"1"}))
	require.NoError(t, w.Proceed())
	assert.ErrorIs(t, w.Search(ctx, "x", ""), ErrWrongScreen)
	assert.ErrorIs(t, w.NextPage(ctx), ErrWrongScreen)
	assert.ErrorIs(t, w.SelectRows(nil), ErrWrongScreen)
}

func TestWizard_SubmitFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	w, cat, rec := newTestWizard(t, 5)
	require.NoError(t, w.Search(ctx, "", ""))
	require.NoError(t, w.SelectRows([]string{"1"}))
	require.NoError(t, w.Proceed())

	cat.createErr = &userErr{msg: "Quantity must be positive"}
	_, err := w.Submit(ctx)
	require.Error(t, err)

	s := w.Snapshot()
	assert.False(t, s.Closed)
	assert.Equal(t, ScreenReviewing, s.Screen)
	assert.Equal(t, 1, s.SelectedCount)
	errs := rec.byVariant(VariantError)
	require.Len(t, errs, 1)
	assert.Equal(t, "Error creating order: Quantity must be positive", errs[0].Message)

	cat.createErr = nil
	res, err := w.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ORD-000001", res.OrderNumber)
}

func TestWizard_Cancel(t *testing.T) {
	ctx := context.Background()
	closed := false
	cat := newFakeCatalog(5)
	w := NewWizard(cat, Options{OnClose: func(r *Result) {
		closed = true
		assert.Nil(t, r)
	}})
	require.NoError(t, w.Open(ctx))
	require.NoError(t, w.Search(ctx, "", ""))
	require.NoError(t, w.SelectRows([]string{"1"}))

	w.Cancel()
	assert.True(t, closed)
	assert.Empty(t, cat.orders)

	s := w.Snapshot()
	assert.True(t, s.Closed)
	assert.Zero(t, s.SelectedCount)
	assert.ErrorIs(t, w.Search(ctx, "", ""), ErrClosed)

	// reopening starts from an empty selection
	require.NoError(t, w.Open(ctx))
	require.NoError(t, w.Search(ctx, "", ""))
	assert.Empty(t, w.Snapshot().Checked)
}

func TestWizard_StalePageDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	w, cat, _ := newTestWizard(t, 23)
	require.NoError(t, w.Search(ctx, "", ""))

	release := make(chan struct{})
	cat.mu.Lock()
	cat.block = release
	cat.entered = make(chan struct{})
	entered := cat.entered
	cat.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- w.NextPage(ctx) }()
	<-entered

	assert.True(t, w.Snapshot().Loading)
	assert.ErrorIs(t, w.NextPage(ctx), ErrBusy)

	// a reload issued later supersedes the pending next page
	require.NoError(t, w.LoadPage(ctx))
	close(release)
	require.NoError(t, <-done)

	s := w.Snapshot()
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, "1", s.Rows[0].ID)
	assert.False(t, s.Loading)
}

func TestWizard_SecondSubmitWhileCreating(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	w, cat, _ := newTestWizard(t, 5)
	require.NoError(t, w.Search(ctx, "", ""))
	require.NoError(t, w.SelectRows([]string{"1", "2"}))
	require.NoError(t, w.Proceed())

	release := make(chan struct{})
	cat.mu.Lock()
	cat.createBlock = release
	cat.createEntered = make(chan struct{})
	entered := cat.createEntered
	cat.mu.Unlock()

	type submitted struct {
		res *Result
		err error
	}
	done := make(chan submitted, 1)
	go func() {
		res, err := w.Submit(ctx)
		done <- submitted{res, err}
	}()
	<-entered

	assert.True(t, w.Snapshot().Loading)
	_, err := w.Submit(ctx)
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	first := <-done
	require.NoError(t, first.err)
	assert.Equal(t, "ORD-000001", first.res.OrderNumber)
	assert.Len(t, cat.orders, 1)
	assert.True(t, w.Snapshot().Closed)
}
