// Package grid provides the dataset grid view for the TUI. Every gesture is
// sent to the DatasetService as an intent; the grid then re-reads the derived
// view and renders it.
package grid

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driving"
)

const (
	maxColumnWidth = 30
	minColumnWidth = 3
	columnGap      = 2
	markerWidth    = 4
)

var errNoService = errors.New("grid: no dataset service")

// View renders one dataset as a scrollable grid.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	service driving.DatasetService
	loader  driving.Loader
	ctx     context.Context

	statusBar *status.Bar
	input     *input.FilterInput
	filtering bool

	dataset   string
	schema    domain.Schema
	records   []domain.Record
	ids       []string
	total     int
	selected  map[string]bool
	expanded  map[string]bool
	sortState *domain.SortState
	filters   *domain.FilterState

	cursor    int
	column    int
	offset    int
	colOffset int

	err    error
	width  int
	height int
}

// NewView creates a grid view. The loader may be nil, in which case reload
// is unavailable.
func NewView(s *styles.Styles, service driving.DatasetService, loader driving.Loader) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()
	return &View{
		styles:    s,
		keymap:    km,
		service:   service,
		loader:    loader,
		ctx:       context.Background(),
		statusBar: status.NewBar(s, km),
		input:     input.NewFilterInput(s),
		selected:  make(map[string]bool),
		expanded:  make(map[string]bool),
		width:     80,
		height:    24,
	}
}

// SetContext sets the context used for reloads.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetDataset opens a dataset, resetting the cursor.
func (v *View) SetDataset(name string) error {
	if v.service == nil {
		return errNoService
	}
	schema, err := v.service.Schema(name)
	if err != nil {
		return err
	}
	v.dataset = name
	v.schema = schema
	v.cursor, v.column, v.offset, v.colOffset = 0, 0, 0, 0
	v.filtering = false
	v.err = nil
	v.statusBar.Clear()
	return v.Refresh()
}

// Refresh re-reads the derived view and view state of the dataset.
func (v *View) Refresh() error {
	if v.dataset == "" {
		return nil
	}
	records, err := v.service.Records(v.dataset)
	if err != nil {
		return err
	}
	v.records = records
	v.ids = make([]string, len(records))
	for i, rec := range records {
		v.ids[i], _ = rec.ID(v.schema.RowKey)
	}

	v.total = len(records)
	for _, info := range v.service.Datasets() {
		if info.Name == v.dataset {
			v.total = info.Rows
		}
	}

	selection, err := v.service.Selection(v.dataset)
	if err != nil {
		return err
	}
	v.selected = toSet(selection)

	expansion, err := v.service.Expansion(v.dataset)
	if err != nil {
		return err
	}
	v.expanded = toSet(expansion)

	if v.sortState, err = v.service.SortState(v.dataset); err != nil {
		return err
	}
	if v.filters, err = v.service.FilterState(v.dataset); err != nil {
		return err
	}

	v.clampCursor()
	v.updateStatus()
	return nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func (v *View) updateStatus() {
	v.statusBar.SetDataset(v.dataset, len(v.records), v.total)
	v.statusBar.SetSelected(len(v.selected))
	v.statusBar.SetSort(v.SortSummary())

	filtered := 0
	if v.filters != nil {
		for _, f := range v.filters.Fields {
			if f.Active() {
				filtered++
			}
		}
	}
	v.statusBar.SetFilters(filtered)

	switch {
	case v.err != nil:
		v.statusBar.SetState(status.StateError)
		v.statusBar.SetMessage(v.err.Error())
	case v.filtering:
		v.statusBar.SetState(status.StateFiltering)
	default:
		v.statusBar.SetState(status.StateReady)
	}
}

// SortSummary describes the active sort keys, e.g. "name asc, age desc".
func (v *View) SortSummary() string {
	if v.sortState == nil {
		return ""
	}
	parts := make([]string, 0, len(v.sortState.By))
	for _, field := range v.sortState.By {
		parts = append(parts, field+" "+strings.ToLower(string(v.sortState.Direction(field))))
	}
	return strings.Join(parts, ", ")
}

func (v *View) clampCursor() {
	if v.cursor >= len(v.records) {
		v.cursor = len(v.records) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	if n := len(v.schema.Fields); v.column >= n {
		v.column = max(n-1, 0)
	}
	page := v.pageSize()
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+page {
		v.offset = v.cursor - page + 1
	}
	if v.colOffset > v.column {
		v.colOffset = v.column
	}
}

// pageSize is the number of record lines that fit above the status bar.
func (v *View) pageSize() int {
	rows := v.height - 3 // title, header and status bar
	if v.filtering {
		rows -= 2
	}
	return max(rows, 1)
}

// Update handles messages for the grid view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.DatasetReloaded:
		v.err = msg.Err
		if msg.Err == nil && msg.Info.Name == v.dataset {
			if err := v.Refresh(); err != nil {
				v.err = err
			}
			v.statusBar.SetMessage(fmt.Sprintf("reloaded %d rows", msg.Info.Rows))
		}
		v.updateStatus()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.updateStatus()
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.statusBar, cmd = v.statusBar.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		if v.filtering {
			return v.handleFilterInput(msg)
		}
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleFilterInput(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.filtering = false
		v.input.Blur()
		v.updateStatus()
		return v, nil

	case tea.KeyEnter:
		v.filtering = false
		v.input.Blur()
		text := v.input.Value()
		if text == "" {
			v.updateStatus()
			return v, nil
		}
		field := v.input.Field()
		value, kind := v.filterValue(field, text)
		return v, v.apply(v.service.AddFilterValue(v.dataset, field, value, kind))
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) filterValue(field, text string) (any, domain.FilterKind) {
	spec, _ := v.schema.Field(field)
	return spec.FilterInput(text)
}

//nolint:gocyclo // one case per binding
func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	km := v.keymap
	v.err = nil
	v.statusBar.SetMessage("")

	switch {
	case keymap.Matches(k, km.Quit):
		return v, tea.Quit
	case keymap.Matches(k, km.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewDatasets} }
	case keymap.Matches(k, km.Help):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }

	case keymap.Matches(k, km.Up):
		v.cursor--
	case keymap.Matches(k, km.Down):
		v.cursor++
	case keymap.Matches(k, km.PageUp):
		v.cursor -= v.pageSize()
	case keymap.Matches(k, km.PageDown):
		v.cursor += v.pageSize()
	case keymap.Matches(k, km.Left):
		if v.column > 0 {
			v.column--
		}
	case keymap.Matches(k, km.Right):
		if v.column < len(v.schema.Fields)-1 {
			v.column++
		}

	case keymap.Matches(k, km.Select):
		if id, ok := v.CurrentID(); ok {
			return v, v.apply(v.service.SelectClick(v.dataset, id, domain.Modifiers{}))
		}
	case keymap.Matches(k, km.Extend):
		if id, ok := v.CurrentID(); ok {
			return v, v.apply(v.service.SelectClick(v.dataset, id, domain.Modifiers{Shift: true}))
		}
	case keymap.Matches(k, km.Toggle):
		if id, ok := v.CurrentID(); ok {
			return v, v.apply(v.service.ToggleSelection(v.dataset, []string{id}))
		}
	case keymap.Matches(k, km.StepUp), keymap.Matches(k, km.StepDown):
		delta := 1
		if keymap.Matches(k, km.StepUp) {
			delta = -1
		}
		cmd := v.apply(v.service.SelectStep(v.dataset, delta))
		v.followSelection()
		return v, cmd
	case keymap.Matches(k, km.SelectAll):
		return v, v.apply(v.service.SelectAll(v.dataset))
	case keymap.Matches(k, km.ClearSelection):
		return v, v.apply(v.service.ClearSelection(v.dataset))

	case keymap.Matches(k, km.Sort):
		return v, v.sortClick(domain.Modifiers{})
	case keymap.Matches(k, km.SortAdd):
		return v, v.sortClick(domain.Modifiers{Shift: true})
	case keymap.Matches(k, km.SortRemove):
		return v, v.sortClick(domain.Modifiers{CtrlOrMeta: true})

	case keymap.Matches(k, km.Filter):
		if field, ok := v.CurrentField(); ok {
			v.filtering = true
			v.input.SetWidth(v.width)
			cmd := v.input.Open(field.Name)
			v.updateStatus()
			return v, cmd
		}
	case keymap.Matches(k, km.Picker):
		if field, ok := v.CurrentField(); ok {
			dataset, name := v.dataset, field.Name
			return v, func() tea.Msg {
				return messages.PickerRequested{Dataset: dataset, Field: name}
			}
		}
	case keymap.Matches(k, km.ClearFilter):
		if field, ok := v.CurrentField(); ok {
			return v, v.apply(v.service.ClearFilter(v.dataset, field.Name))
		}
	case keymap.Matches(k, km.ClearAllFilters):
		return v, v.apply(v.service.ClearAllFilters(v.dataset))

	case keymap.Matches(k, km.Expand):
		if id, ok := v.CurrentID(); ok {
			return v, v.apply(v.service.ToggleExpansion(v.dataset, []string{id}))
		}
	case keymap.Matches(k, km.Reload):
		return v, v.reload()
	}

	v.clampCursor()
	v.updateStatus()
	return v, nil
}

func (v *View) sortClick(mods domain.Modifiers) tea.Cmd {
	field, ok := v.CurrentField()
	if !ok {
		return nil
	}
	return v.apply(v.service.SortClick(v.dataset, field.Name, mods))
}

// apply refreshes after an intent, or reports its error.
func (v *View) apply(err error) tea.Cmd {
	if err == nil {
		err = v.Refresh()
	}
	if err != nil {
		v.err = err
		v.updateStatus()
		return func() tea.Msg { return messages.ErrorOccurred{Err: err} }
	}
	return nil
}

// followSelection moves the cursor onto a single selected row.
func (v *View) followSelection() {
	if len(v.selected) != 1 {
		return
	}
	for i, id := range v.ids {
		if v.selected[id] {
			v.cursor = i
			v.clampCursor()
			return
		}
	}
}

func (v *View) reload() tea.Cmd {
	if v.loader == nil || v.dataset == "" {
		return nil
	}
	loader, ctx, name := v.loader, v.ctx, v.dataset
	spin := v.statusBar.StartLoading("Reloading " + name + "...")
	return tea.Batch(spin, func() tea.Msg {
		info, err := loader.Reload(ctx, name)
		return messages.DatasetReloaded{Info: info, Err: err}
	})
}

// View renders the grid.
func (v *View) View() string {
	if v.dataset == "" {
		return v.styles.Muted.Render("No dataset open.")
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render(v.dataset))
	if v.schema.RowKey != "" {
		b.WriteString(v.styles.Muted.Render("  keyed by " + v.schema.RowKey))
	}
	b.WriteString("\n")

	columns, widths := v.visibleColumns()
	b.WriteString(v.renderHeader(columns, widths))
	b.WriteString("\n")

	lines := 0
	page := v.pageSize()
	for i := v.offset; i < len(v.records) && lines < page; i++ {
		b.WriteString(v.renderRow(i, columns, widths))
		b.WriteString("\n")
		lines++
		if v.expanded[v.ids[i]] {
			for _, detail := range v.renderDetail(v.records[i]) {
				if lines >= page {
					break
				}
				b.WriteString(detail)
				b.WriteString("\n")
				lines++
			}
		}
	}
	if len(v.records) == 0 {
		b.WriteString(v.styles.Muted.Render("  No rows match."))
		b.WriteString("\n")
		lines++
	}
	for ; lines < page; lines++ {
		b.WriteString("\n")
	}

	if v.filtering {
		b.WriteString(v.input.View())
		b.WriteString("\n")
	}
	v.statusBar.SetWidth(v.width)
	b.WriteString(v.statusBar.View())
	return b.String()
}

// visibleColumns picks the columns that fit the width, scrolled so the
// column cursor is visible.
func (v *View) visibleColumns() ([]int, []int) {
	fields := v.schema.Fields
	widths := make([]int, len(fields))
	for c, f := range fields {
		w := runewidth.StringWidth(v.headerLabel(f)) + 2
		for i := v.offset; i < len(v.records) && i < v.offset+v.pageSize(); i++ {
			w = max(w, runewidth.StringWidth(f.Format(v.records[i][f.Name])))
		}
		widths[c] = min(max(w, minColumnWidth), maxColumnWidth)
	}

	fits := func(from int) []int {
		used := markerWidth
		var cols []int
		for c := from; c < len(fields); c++ {
			if used+widths[c] > v.width && len(cols) > 0 {
				break
			}
			cols = append(cols, c)
			used += widths[c] + columnGap
		}
		return cols
	}

	cols := fits(v.colOffset)
	for len(cols) > 0 && v.column > cols[len(cols)-1] {
		v.colOffset++
		cols = fits(v.colOffset)
	}
	out := make([]int, len(cols))
	for i, c := range cols {
		out[i] = widths[c]
	}
	return cols, out
}

func (v *View) headerLabel(f domain.FieldSpec) string {
	label := f.Title()
	if v.sortState != nil {
		switch v.sortState.Direction(f.Name) {
		case domain.SortAsc:
			label += " ▲"
		case domain.SortDesc:
			label += " ▼"
		}
		if len(v.sortState.By) > 1 {
			if p := slices.Index(v.sortState.By, f.Name); p >= 0 {
				label += fmt.Sprint(p + 1)
			}
		}
	}
	if v.filters.Field(f.Name).Active() {
		label += " *"
	}
	return label
}

func (v *View) renderHeader(columns, widths []int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", markerWidth))
	for i, c := range columns {
		f := v.schema.Fields[c]
		cell := fit(v.headerLabel(f), widths[i])
		style := v.styles.Header
		switch {
		case c == v.column:
			style = v.styles.HeaderActive
		case v.filters.Field(f.Name).Active():
			style = v.styles.Filtered
		}
		if i > 0 {
			b.WriteString(strings.Repeat(" ", columnGap))
		}
		b.WriteString(style.Render(cell))
	}
	return b.String()
}

func (v *View) renderRow(i int, columns, widths []int) string {
	rec := v.records[i]
	id := v.ids[i]

	marker := "  "
	if v.selected[id] {
		marker = "● "
	}
	if v.expanded[id] {
		marker += "▾ "
	} else {
		marker += "  "
	}

	cells := make([]string, len(columns))
	for j, c := range columns {
		f := v.schema.Fields[c]
		cells[j] = fit(f.Format(rec[f.Name]), widths[j])
	}
	line := marker + strings.Join(cells, strings.Repeat(" ", columnGap))

	switch {
	case i == v.cursor:
		return v.styles.Cursor.Render(line)
	case v.selected[id]:
		return v.styles.Marked.Render(line)
	default:
		return v.styles.Normal.Render(line)
	}
}

// renderDetail lists every field of an expanded record.
func (v *View) renderDetail(rec domain.Record) []string {
	labelWidth := 0
	for _, f := range v.schema.Fields {
		labelWidth = max(labelWidth, runewidth.StringWidth(f.Title()))
	}
	out := make([]string, 0, len(v.schema.Fields))
	for _, f := range v.schema.Fields {
		line := runewidth.FillRight(f.Title(), labelWidth) + "  " + f.Format(rec[f.Name])
		out = append(out, v.styles.Detail.Render(runewidth.Truncate(line, max(v.width-4, 10), "…")))
	}
	return out
}

func fit(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.statusBar.SetWidth(width)
	v.input.SetWidth(width)
	v.clampCursor()
}

// Dataset returns the open dataset name.
func (v *View) Dataset() string {
	return v.dataset
}

// Cursor returns the row cursor.
func (v *View) Cursor() int {
	return v.cursor
}

// Column returns the column cursor.
func (v *View) Column() int {
	return v.column
}

// IDs returns the ids of the rows shown, in display order.
func (v *View) IDs() []string {
	return v.ids
}

// Filtering reports whether the filter input is open.
func (v *View) Filtering() bool {
	return v.filtering
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// CurrentID returns the id of the row under the cursor.
func (v *View) CurrentID() (string, bool) {
	if v.cursor < 0 || v.cursor >= len(v.ids) {
		return "", false
	}
	return v.ids[v.cursor], true
}

// CurrentField returns the field under the column cursor.
func (v *View) CurrentField() (domain.FieldSpec, bool) {
	if v.column < 0 || v.column >= len(v.schema.Fields) {
		return domain.FieldSpec{}, false
	}
	return v.schema.Fields[v.column], true
}

// StatusBar returns the status bar for inspection.
func (v *View) StatusBar() *status.Bar {
	return v.statusBar
}
