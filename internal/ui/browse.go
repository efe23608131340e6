package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/snipgen/internal/config"
	"github.com/gubarz/snipgen/internal/emitter"
	"github.com/gubarz/snipgen/internal/snippet"
)

// ============================================================================
// Snippet Item
// ============================================================================

// snippetItem wraps an Entry with its unescaped display text
type snippetItem struct {
	entry  *snippet.Entry
	key    string
	prefix string
	desc   string
	body   []string
}

func newSnippetItem(entry *snippet.Entry) snippetItem {
	body := make([]string, len(entry.Body))
	for i, line := range entry.Body {
		body[i] = unescape(line)
	}
	return snippetItem{
		entry:  entry,
		key:    unescape(entry.Key),
		prefix: unescape(entry.Prefix),
		desc:   unescape(entry.Description),
		body:   body,
	}
}

// unescape undoes quote escaping for display
func unescape(s string) string {
	return strings.ReplaceAll(s, `\"`, `"`)
}

// matchesQuery checks if the item matches all search words
func (item *snippetItem) matchesQuery(words []string) bool {
	for _, word := range words {
		if !item.containsWord(word) {
			return false
		}
	}
	return true
}

// containsWord checks if any field contains the word (case-insensitive)
func (item *snippetItem) containsWord(word string) bool {
	if containsIgnoreCase(item.prefix, word) || containsIgnoreCase(item.key, word) {
		return true
	}
	for _, line := range item.body {
		if containsIgnoreCase(line, word) {
			return true
		}
	}
	return false
}

// containsIgnoreCase expects substr to be lowercased already
func containsIgnoreCase(s, substr string) bool {
	if len(substr) > len(s) {
		return false
	}
	return strings.Contains(strings.ToLower(s), substr)
}

// ============================================================================
// Column Config
// ============================================================================

type columnConfig struct {
	prefixWidth int
	keyWidth    int
	gap         int
	maxBody     int
}

func loadColumnConfig() columnConfig {
	return columnConfig{
		prefixWidth: config.GetColumnPrefix(),
		keyWidth:    config.GetColumnKey(),
		gap:         config.GetColumnGap(),
		maxBody:     max(config.GetPreviewMaxBody(), 1),
	}
}

// ============================================================================
// Debounce
// ============================================================================

// filterMsg triggers filtering after debounce
type filterMsg struct{}

func debounceFilter() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return filterMsg{}
	})
}

// ============================================================================
// Browse Model
// ============================================================================

// browseModel lists snippets with a live filter and a body preview
type browseModel struct {
	width     int
	height    int
	textInput textinput.Model
	quitting  bool

	items    []snippetItem
	filtered []snippetItem
	cursor   int
	offset   int
	selected *snippet.Entry
	columns  columnConfig
}

func newBrowseModel(c *snippet.Collection) browseModel {
	ti := textinput.New()
	ti.Placeholder = "Type to search..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	items := make([]snippetItem, len(c.Entries))
	for i, entry := range c.Entries {
		items[i] = newSnippetItem(entry)
	}

	return browseModel{
		items:     items,
		filtered:  items,
		textInput: ti,
		columns:   loadColumnConfig(),
	}
}

// Init implements tea.Model
func (m browseModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 4
	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
	case filterMsg:
		m.filter()
		return m, nil
	}

	prevQuery := m.textInput.Value()
	var tiCmd tea.Cmd
	m.textInput, tiCmd = m.textInput.Update(msg)
	cmds = append(cmds, tiCmd)

	if m.textInput.Value() != prevQuery {
		cmds = append(cmds, debounceFilter())
	}

	return m, tea.Batch(cmds...)
}

func (m *browseModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return tea.Quit
	case "enter":
		if m.cursor < len(m.filtered) {
			m.selected = m.filtered[m.cursor].entry
			return tea.Quit
		}
	case "up", "ctrl+p":
		m.moveCursor(-1)
	case "down", "ctrl+n":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-10)
	case "pgdown":
		m.moveCursor(10)
	case "home", "ctrl+a":
		m.cursor = 0
		m.adjustOffset()
	case "end", "ctrl+e":
		m.cursor = max(0, len(m.filtered)-1)
		m.adjustOffset()
	}
	return nil
}

func (m *browseModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(0, len(m.filtered)-1))
	m.adjustOffset()
}

// adjustOffset keeps the cursor inside the approximate list viewport
func (m *browseModel) adjustOffset() {
	viewHeight := max(m.height-m.columns.maxBody-8, 3)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+viewHeight {
		m.offset = m.cursor - viewHeight + 1
	}
	m.offset = clamp(m.offset, 0, max(0, len(m.filtered)-viewHeight))
}

func (m *browseModel) filter() {
	query := strings.TrimSpace(m.textInput.Value())

	if query == "" {
		m.filtered = m.items
	} else {
		words := strings.Fields(strings.ToLower(query))
		m.filtered = make([]snippetItem, 0, len(m.items))
		for i := range m.items {
			if m.items[i].matchesQuery(words) {
				m.filtered = append(m.filtered, m.items[i])
			}
		}
	}

	m.cursor = clamp(m.cursor, 0, max(0, len(m.filtered)-1))
	m.adjustOffset()
}

// View implements tea.Model
func (m browseModel) View() string {
	if m.quitting {
		return ""
	}

	width := max(m.width, 80)
	height := max(m.height, 24)

	preview := m.renderPreview(width)
	previewLines := countLines(preview)

	inputLines := 3 // divider + info + input
	listHeight := max(height-previewLines-inputLines, 3)
	list := m.renderList(listHeight)

	padding := max(height-previewLines-countLines(list)-inputLines, 0)

	var b strings.Builder
	b.WriteString(preview)
	b.WriteString(list)
	b.WriteString(strings.Repeat("\n", padding))
	b.WriteString(m.renderInput(width))
	return b.String()
}

// renderPreview shows the key, prefix and body of the entry under the cursor
func (m browseModel) renderPreview(width int) string {
	var b strings.Builder
	lines := 0
	maxLines := m.columns.maxBody + 3

	if m.cursor < len(m.filtered) {
		item := m.filtered[m.cursor]
		b.WriteString(styles.PreviewKey.Render(truncateString(item.key, width)))
		b.WriteString("\n")
		b.WriteString(styles.PreviewPrefix.Render(item.prefix))
		b.WriteString(styles.Dim.Render(fmt.Sprintf("  line %d", item.entry.Line)))
		b.WriteString("\n\n")
		lines += 3

		body := item.body
		if len(body) > m.columns.maxBody {
			body = append(body[:m.columns.maxBody:m.columns.maxBody], "...")
		}
		for _, line := range body {
			b.WriteString(styles.PreviewBody.Render(truncateString(line, width)))
			b.WriteString("\n")
			lines++
		}
	}

	for lines < maxLines {
		b.WriteString("\n")
		lines++
	}

	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	return b.String()
}

func (m *browseModel) renderList(maxHeight int) string {
	if len(m.filtered) == 0 {
		return ""
	}

	start, end := scrollWindow(m.cursor, len(m.filtered), maxHeight, &m.offset)
	gap := strings.Repeat(" ", m.columns.gap)

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(m.renderListItem(m.filtered[i], i == m.cursor, gap))
		b.WriteString("\n")
	}
	return b.String()
}

func (m browseModel) renderListItem(item snippetItem, selected bool, gap string) string {
	pStyle, kStyle, dStyle := styles.Prefix, styles.Key, styles.Desc
	marker := "  "
	if selected {
		pStyle = styles.WithSelection(pStyle)
		kStyle = styles.WithSelection(kStyle)
		dStyle = styles.WithSelection(dStyle)
		marker = styles.Cursor.Render("▶ ")
	}

	prefix := fmt.Sprintf("%-*s", m.columns.prefixWidth, truncateString(item.prefix, m.columns.prefixWidth))
	key := fmt.Sprintf("%-*s", m.columns.keyWidth, truncateString(item.key, m.columns.keyWidth))

	row := pStyle.Render(prefix) + dStyle.Render(gap) + kStyle.Render(key)
	if item.desc != item.key {
		row += dStyle.Render(gap + item.desc)
	}
	return marker + row
}

func (m browseModel) renderInput(width int) string {
	var b strings.Builder
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render(fmt.Sprintf("  %d/%d", len(m.filtered), len(m.items))))
	b.WriteString(" • ")
	b.WriteString(styles.Dim.Render("Enter emit"))
	b.WriteString(" • ")
	b.WriteString(styles.Dim.Render("ESC exit"))
	b.WriteString("\n")
	b.WriteString(m.textInput.View())
	return b.String()
}

// ============================================================================
// Run
// ============================================================================

// getTTY returns file handles for TUI input/output
// Uses /dev/tty so `snipgen browse --print > file` still draws on the terminal
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	var closers []func()

	if !isTerminal(os.Stdout) {
		out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			out = os.Stderr
		} else {
			closers = append(closers, func() { out.Close() })
		}

		in, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			in = os.Stdin
		} else {
			closers = append(closers, func() { in.Close() })
		}

		// Tell lipgloss to use the TTY for color detection
		lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(out))

		return in, out, func() {
			for _, c := range closers {
				c()
			}
		}
	}

	return os.Stdin, os.Stdout, func() {}
}

// isTerminal reports whether f is a character device.
// A handle that cannot be stat'ed is treated as redirected.
func isTerminal(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return fileInfo.Mode()&os.ModeCharDevice != 0
}

// applyQuery fills the search box and filters.
// A query naming a prefix exactly puts the cursor on that entry.
func (m *browseModel) applyQuery(c *snippet.Collection, query string) {
	if query == "" {
		return
	}
	m.textInput.SetValue(query)
	m.filter()
	entry, ok := c.Find(query)
	if !ok {
		return
	}
	for i := range m.filtered {
		if m.filtered[i].entry == entry {
			m.cursor = i
			m.adjustOffset()
			return
		}
	}
}

// Browse opens the snippet browser and emits the chosen entry
func Browse(c *snippet.Collection, em *emitter.Emitter, initialQuery string) error {
	if err := c.Err(); err != nil {
		return err
	}
	if len(c.Entries) == 0 {
		return fmt.Errorf("no snippets found")
	}

	m := newBrowseModel(c)
	m.applyQuery(c, initialQuery)

	ttyIn, ttyOut, cleanup := getTTY()
	RefreshStyles() // Refresh after getTTY sets up the renderer
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(ttyOut), tea.WithInput(ttyIn))
	finalModel, err := p.Run()
	cleanup()
	if err != nil {
		return err
	}

	result := finalModel.(browseModel)
	if result.selected == nil {
		return nil
	}
	return em.EmitEntry(result.selected)
}

// ============================================================================
// Helpers
// ============================================================================

// clamp restricts v to the range [minV, maxV]
func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// countLines counts the number of lines in a string
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// scrollWindow calculates the visible range for a scrollable list
func scrollWindow(cursor, total, height int, offset *int) (start, end int) {
	if cursor < *offset {
		*offset = cursor
	}
	if cursor >= *offset+height {
		*offset = cursor - height + 1
	}
	*offset = clamp(*offset, 0, max(0, total-height))

	start = *offset
	end = min(start+height, total)
	return
}

// truncateString truncates a string to maxLen runes with ellipsis
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 3 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
