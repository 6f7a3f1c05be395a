package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

func issueSchema() domain.Schema {
	return domain.Schema{
		Name:   "issues",
		RowKey: "id",
		Fields: []domain.FieldSpec{
			{Name: "id", Sort: domain.SortNumeric, Sortable: true, Filter: domain.FilterNumeric, Filterable: true},
			{Name: "title", Sort: domain.SortString, Sortable: true, Filter: domain.FilterContains, Filterable: true},
			{Name: "clause", Sort: domain.SortClause, Sortable: true, Filter: domain.FilterClause, Filterable: true},
			{Name: "state", Filter: domain.FilterExact, Filterable: true, Options: []domain.FieldOption{
				{Value: "open", Label: "Open"},
				{Value: "closed", Label: "Closed"},
			}},
			{Name: "opened", Sort: domain.SortDate, Sortable: true},
			{Name: "owner", Sort: domain.SortString, Sortable: true, Filter: domain.FilterExact, Filterable: true},
		},
	}
}

func issueRecords() []domain.Record {
	return []domain.Record{
		{"id": 1, "title": "Crash on start", "clause": "1.2", "state": "open", "opened": "2024-01-03", "owner": "ann"},
		{"id": 2, "title": "Typo", "clause": "1.10", "state": "closed", "opened": "2024-01-01", "owner": "bob"},
		{"id": 3, "title": "Slow start", "clause": "1.2.1", "state": "open", "opened": "2024-01-02", "owner": nil},
		{"id": 4, "title": "Docs", "clause": "2", "state": "open", "opened": "2023-12-30", "owner": "bob"},
	}
}

func newIssueService(t *testing.T) *DatasetService {
	t.Helper()
	svc := NewDatasetService(nil)
	svc.now = func() time.Time { return time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, svc.Register(issueSchema()))
	require.NoError(t, svc.Load("issues", "issues.json", issueRecords()))
	return svc
}

func TestDatasetService_RegisterAndLoad(t *testing.T) {
	svc := newIssueService(t)

	infos := svc.Datasets()
	require.Len(t, infos, 1)
	assert.Equal(t, "issues", infos[0].Name)
	assert.Equal(t, "issues.json", infos[0].Location)
	assert.Equal(t, 4, infos[0].Rows)
	assert.Equal(t, 2024, infos[0].LoadedAt.Year())

	view, err := svc.View("issues")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, view)

	rec, err := svc.Record("issues", "1")
	require.NoError(t, err)
	assert.Equal(t, float64(1), rec["id"], "numbers are normalized to float64")
	_, isDate := rec["opened"].(float64)
	assert.True(t, isDate, "date fields are normalized to unix ms")
}

func TestDatasetService_Errors(t *testing.T) {
	svc := newIssueService(t)

	assert.ErrorIs(t, svc.SortClick("nope", "id", domain.Modifiers{}), domain.ErrNotFound)
	assert.ErrorIs(t, svc.SortClick("issues", "nope", domain.Modifiers{}), domain.ErrUnknownField)
	assert.ErrorIs(t, svc.SortClick("issues", "state", domain.Modifiers{}), domain.ErrNotSortable)
	assert.ErrorIs(t, svc.AddFilterValue("issues", "opened", "x", domain.FilterExact), domain.ErrNotFilterable)
	assert.ErrorIs(t, svc.AddFilterValue("issues", "title", "x", domain.FilterKind(42)), domain.ErrInvalidFilterSpec)
	assert.ErrorIs(t, svc.Register(domain.Schema{Name: "bad"}), domain.ErrInvalidInput)

	_, err := svc.Record("issues", "99")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.FieldOptions("issues", "nope", domain.OptionsAll)
	assert.ErrorIs(t, err, domain.ErrUnknownField)

	err = svc.Load("issues", "", []domain.Record{{"id": 1}, {"id": 1.0}})
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
	err = svc.Load("issues", "", []domain.Record{{"title": "no id"}})
	assert.ErrorIs(t, err, domain.ErrMissingRowKey)

	view, err := svc.View("issues")
	require.NoError(t, err)
	assert.Len(t, view, 4, "failed loads keep the previous store")
}

func TestDatasetService_SortScenarios(t *testing.T) {
	svc := newIssueService(t)

	require.NoError(t, svc.SortClick("issues", "clause", domain.Modifiers{}))
	view, _ := svc.View("issues")
	assert.Equal(t, []string{"1", "3", "2", "4"}, view)

	require.NoError(t, svc.SortClick("issues", "clause", domain.Modifiers{}))
	view, _ = svc.View("issues")
	assert.Equal(t, []string{"4", "2", "3", "1"}, view)

	require.NoError(t, svc.SortClick("issues", "clause", domain.Modifiers{}))
	state, _ := svc.SortState("issues")
	assert.Empty(t, state.By)
	view, _ = svc.View("issues")
	assert.Equal(t, []string{"1", "2", "3", "4"}, view)

	require.NoError(t, svc.SortClick("issues", "owner", domain.Modifiers{}))
	require.NoError(t, svc.SortClick("issues", "opened", domain.Modifiers{Shift: true}))
	view, _ = svc.View("issues")
	assert.Equal(t, []string{"3", "1", "4", "2"}, view)

	require.NoError(t, svc.SetSort("issues", "owner", domain.SortNone))
	state, _ = svc.SortState("issues")
	assert.Equal(t, []string{"opened"}, state.By)
}

func TestDatasetService_Filters(t *testing.T) {
	svc := newIssueService(t)

	require.NoError(t, svc.AddFilterValue("issues", "title", "start", domain.FilterContains))
	view, _ := svc.View("issues")
	assert.Equal(t, []string{"1", "3"}, view)

	require.NoError(t, svc.AddFilterValue("issues", "clause", "1.2", domain.FilterClause))
	require.NoError(t, svc.SetFilter("issues", "owner", []any{""}))
	view, _ = svc.View("issues")
	assert.Equal(t, []string{"3"}, view)

	require.NoError(t, svc.ClearFilter("issues", "owner"))
	require.NoError(t, svc.RemoveFilterValue("issues", "title", "start", domain.FilterContains))
	view, _ = svc.View("issues")
	assert.Equal(t, []string{"1", "3"}, view)

	require.NoError(t, svc.ClearAllFilters("issues"))
	filters, _ := svc.FilterState("issues")
	assert.False(t, filters.Active())
	assert.Len(t, filters.Field("state").Options, 2)
}

func TestDatasetService_SelectionAndExpansion(t *testing.T) {
	svc := newIssueService(t)

	require.NoError(t, svc.ToggleSelection("issues", []string{"1", "2"}))
	require.NoError(t, svc.ToggleSelection("issues", []string{"2", "3"}))
	sel, _ := svc.Selection("issues")
	assert.Equal(t, []string{"1", "3"}, sel)

	require.NoError(t, svc.AddFilterValue("issues", "owner", "bob", domain.FilterExact))
	require.NoError(t, svc.SelectAll("issues"))
	sel, _ = svc.Selection("issues")
	assert.Equal(t, []string{"2", "4"}, sel, "select all covers the derived view only")

	require.NoError(t, svc.ClearSelection("issues"))
	sel, _ = svc.Selection("issues")
	assert.Empty(t, sel)

	require.NoError(t, svc.ToggleExpansion("issues", []string{"4"}))
	exp, _ := svc.Expansion("issues")
	assert.Equal(t, []string{"4"}, exp)
	require.NoError(t, svc.SetExpansion("issues", nil))
	exp, _ = svc.Expansion("issues")
	assert.Empty(t, exp)
}

func TestDatasetService_SelectClickAndStep(t *testing.T) {
	svc := newIssueService(t)

	require.NoError(t, svc.SelectClick("issues", "1", domain.Modifiers{}))
	require.NoError(t, svc.SelectClick("issues", "3", domain.Modifiers{Shift: true}))
	sel, _ := svc.Selection("issues")
	assert.Equal(t, []string{"1", "2", "3"}, sel)

	assert.ErrorIs(t, svc.SelectClick("issues", "99", domain.Modifiers{}), domain.ErrNotFound)

	require.NoError(t, svc.SetSelection("issues", []string{"4"}))
	require.NoError(t, svc.SelectStep("issues", 1))
	sel, _ = svc.Selection("issues")
	assert.Equal(t, []string{"1"}, sel)
}

func TestDatasetService_ReloadPrunesSelection(t *testing.T) {
	svc := newIssueService(t)
	require.NoError(t, svc.SetSelection("issues", []string{"1", "4"}))
	require.NoError(t, svc.SetExpansion("issues", []string{"4"}))

	require.NoError(t, svc.Load("issues", "issues.json", issueRecords()[:2]))

	sel, _ := svc.Selection("issues")
	assert.Equal(t, []string{"1"}, sel)
	exp, _ := svc.Expansion("issues")
	assert.Empty(t, exp)
}

func TestDatasetService_PickerOptions(t *testing.T) {
	svc := newIssueService(t)

	opts, err := svc.PickerOptions("issues", "state")
	require.NoError(t, err)
	assert.Equal(t, []any{"closed", "open"}, optionValues(opts), "fixed options, sorted")

	require.NoError(t, svc.AddFilterValue("issues", "title", "start", domain.FilterContains))
	opts, err = svc.PickerOptions("issues", "owner")
	require.NoError(t, err)
	assert.Equal(t, []any{"", "ann"}, optionValues(opts), "available options follow the view")

	require.NoError(t, svc.AddFilterValue("issues", "owner", "ann", domain.FilterExact))
	opts, err = svc.PickerOptions("issues", "owner")
	require.NoError(t, err)
	assert.Equal(t, []any{"", "ann", "bob"}, optionValues(opts), "a filtered field offers all options")
}

func TestDatasetService_CacheCoherence(t *testing.T) {
	svc := newIssueService(t)

	_, _ = svc.View("issues")
	_, _ = svc.View("issues")
	stats := svc.CacheStats()
	assert.Equal(t, int64(1), stats.ViewComputes)
	assert.Equal(t, int64(1), stats.Hits)

	// selection intents do not touch view inputs
	require.NoError(t, svc.ToggleSelection("issues", []string{"1"}))
	_, _ = svc.View("issues")
	assert.Equal(t, int64(1), svc.CacheStats().ViewComputes)

	require.NoError(t, svc.SortClick("issues", "id", domain.Modifiers{}))
	_, _ = svc.View("issues")
	assert.Equal(t, int64(2), svc.CacheStats().ViewComputes)

	require.NoError(t, svc.Load("issues", "issues.json", issueRecords()))
	_, _ = svc.View("issues")
	assert.Equal(t, int64(3), svc.CacheStats().ViewComputes)
}

func TestDatasetService_RegisterKeepsRecords(t *testing.T) {
	svc := newIssueService(t)
	require.NoError(t, svc.SortClick("issues", "id", domain.Modifiers{}))

	schema := issueSchema().WithField(domain.FieldSpec{Name: "title", Sort: domain.SortString})
	require.NoError(t, svc.Register(schema))

	view, err := svc.View("issues")
	require.NoError(t, err)
	assert.Len(t, view, 4)
	state, _ := svc.SortState("issues")
	assert.Empty(t, state.By, "view state resets on re-register")
	assert.ErrorIs(t, svc.SortClick("issues", "title", domain.Modifiers{}), domain.ErrNotSortable)
}

func TestDatasetService_Remove(t *testing.T) {
	svc := newIssueService(t)
	require.NoError(t, svc.Remove("issues"))
	assert.Empty(t, svc.Datasets())
	assert.ErrorIs(t, svc.Remove("issues"), domain.ErrNotFound)
}

func TestDatasetService_Snapshot(t *testing.T) {
	svc := newIssueService(t)
	require.NoError(t, svc.SetSort("issues", "id", domain.SortDesc))
	require.NoError(t, svc.AddFilterValue("issues", "state", "open", domain.FilterExact))
	require.NoError(t, svc.SetSelection("issues", []string{"3"}))

	snap, err := svc.Snapshot("issues")
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Info.Rows)
	assert.Equal(t, "issues", snap.Schema.Name)
	require.Len(t, snap.Records, 3)
	assert.Equal(t, float64(4), snap.Records[0]["id"])
	assert.Equal(t, []string{"id"}, snap.Sort.By)
	assert.True(t, snap.Filters.Field("state").Active())
	assert.Equal(t, []string{"3"}, snap.Selection)
	assert.Empty(t, snap.Expansion)

	_, err = svc.Snapshot("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDatasetService_SnapshotUnderConcurrentSorts(t *testing.T) {
	svc := newIssueService(t)
	require.NoError(t, svc.SetSort("issues", "id", domain.SortAsc))

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		dirs := []domain.SortDirection{domain.SortAsc, domain.SortDesc}
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			_ = svc.SetSort("issues", "id", dirs[i%2])
		}
	}()

	for range 200 {
		snap, err := svc.Snapshot("issues")
		require.NoError(t, err)
		want := float64(1)
		if snap.Sort.Direction("id") == domain.SortDesc {
			want = float64(4)
		}
		assert.Equal(t, want, snap.Records[0]["id"])
	}
	close(stop)
	<-done
}
