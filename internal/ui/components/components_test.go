package components

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/apitrack/internal/listview"
	"github.com/sadopc/apitrack/internal/ui/msgs"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

func testStyles() theme.Styles {
	return theme.NewStyles(theme.Default())
}

func keyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func specialKeyMsg(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func typeText(kv KVTable, s string) KVTable {
	for _, r := range s {
		kv, _ = kv.Update(keyMsg(string(r)))
	}
	return kv
}

// KVTable

func TestKVTable_NewDefault(t *testing.T) {
	kv := NewKVTable(testStyles())
	pairs := kv.GetPairs()
	if len(pairs) != 1 || pairs[0] != (KVPair{}) {
		t.Fatalf("expected one empty row, got %+v", pairs)
	}
	if kv.Editing() {
		t.Fatal("should not start in editing mode")
	}
	if len(kv.Map()) != 0 {
		t.Fatal("empty table should map to nothing")
	}
}

func TestKVTable_SetMapSortsAndMapDropsBlankKeys(t *testing.T) {
	kv := NewKVTable(testStyles())
	kv.SetMap(map[string]string{"b": "2", "a": "1"})

	pairs := kv.GetPairs()
	if len(pairs) != 2 || pairs[0].Key != "a" || pairs[1].Key != "b" {
		t.Fatalf("SetMap order = %+v", pairs)
	}

	kv.SetPairs([]KVPair{{Key: " x ", Value: "1"}, {Key: "", Value: "orphan"}, {Key: "x", Value: "2"}})
	got := kv.Map()
	if len(got) != 1 || got["x"] != "2" {
		t.Fatalf("Map = %v", got)
	}
}

func TestKVTable_SetPairs_CursorClamp(t *testing.T) {
	kv := NewKVTable(testStyles())
	kv.SetPairs([]KVPair{{Key: "a"}, {Key: "b"}, {Key: "c"}})
	kv, _ = kv.Update(keyMsg("j"))
	kv, _ = kv.Update(keyMsg("j"))
	if kv.cursor != 2 {
		t.Fatalf("cursor = %d", kv.cursor)
	}
	kv.SetPairs([]KVPair{{Key: "only"}})
	if kv.cursor != 0 {
		t.Fatalf("cursor not clamped: %d", kv.cursor)
	}
	kv.SetPairs(nil)
	if len(kv.GetPairs()) != 1 {
		t.Fatal("empty SetPairs should keep one row")
	}
}

func TestKVTable_GetPairs_ReturnsCopy(t *testing.T) {
	kv := NewKVTable(testStyles())
	kv.SetPairs([]KVPair{{Key: "a", Value: "1"}})
	pairs := kv.GetPairs()
	pairs[0].Key = "mutated"
	if kv.GetPairs()[0].Key != "a" {
		t.Fatal("GetPairs must return a copy")
	}
}

func TestKVTable_Navigation(t *testing.T) {
	kv := NewKVTable(testStyles())
	kv.SetPairs([]KVPair{{Key: "a"}, {Key: "b"}})

	kv, _ = kv.Update(keyMsg("k"))
	if kv.cursor != 0 {
		t.Fatal("k at top should stay at 0")
	}
	kv, _ = kv.Update(specialKeyMsg(tea.KeyDown))
	kv, _ = kv.Update(keyMsg("j"))
	if kv.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", kv.cursor)
	}
	kv, _ = kv.Update(keyMsg("l"))
	if kv.column != ColValue {
		t.Fatal("l should focus the value column")
	}
	kv, _ = kv.Update(specialKeyMsg(tea.KeyLeft))
	if kv.column != ColKey {
		t.Fatal("left should focus the key column")
	}
}

func TestKVTable_AddRowEditKeyThenValue(t *testing.T) {
	kv := NewKVTable(testStyles())
	kv, _ = kv.Update(keyMsg("a"))
	if !kv.Editing() || kv.cursor != 1 || kv.column != ColKey {
		t.Fatalf("a should add and edit a new row: cursor=%d editing=%v", kv.cursor, kv.Editing())
	}
	kv = typeText(kv, "Accept")
	kv, _ = kv.Update(specialKeyMsg(tea.KeyTab))
	if !kv.Editing() || kv.column != ColValue {
		t.Fatal("tab from key should keep editing the value")
	}
	kv = typeText(kv, "*/*")
	kv, _ = kv.Update(specialKeyMsg(tea.KeyTab))
	if kv.Editing() {
		t.Fatal("tab from value should stop editing")
	}
	if got := kv.Map(); got["Accept"] != "*/*" || len(got) != 1 {
		t.Fatalf("Map = %v", got)
	}
}

func TestKVTable_EscCommits(t *testing.T) {
	kv := NewKVTable(testStyles())
	kv, _ = kv.Update(specialKeyMsg(tea.KeyEnter))
	kv = typeText(kv, "k")
	kv, _ = kv.Update(specialKeyMsg(tea.KeyEsc))
	if kv.Editing() || kv.GetPairs()[0].Key != "k" {
		t.Fatalf("esc should commit: %+v", kv.GetPairs())
	}
}

func TestKVTable_BlurCommitsEdit(t *testing.T) {
	kv := NewKVTable(testStyles())
	kv.Focus()
	kv, _ = kv.Update(specialKeyMsg(tea.KeyEnter))
	kv = typeText(kv, "pending")
	kv.Blur()
	if kv.Editing() || kv.GetPairs()[0].Key != "pending" {
		t.Fatalf("Blur should commit: %+v", kv.GetPairs())
	}
}

func TestKVTable_Delete(t *testing.T) {
	kv := NewKVTable(testStyles())
	kv.SetPairs([]KVPair{{Key: "a"}, {Key: "b"}})
	kv, _ = kv.Update(keyMsg("j"))
	kv, _ = kv.Update(keyMsg("d"))
	if p := kv.GetPairs(); len(p) != 1 || p[0].Key != "a" || kv.cursor != 0 {
		t.Fatalf("after delete: %+v cursor=%d", p, kv.cursor)
	}
	kv, _ = kv.Update(keyMsg("d"))
	if p := kv.GetPairs(); len(p) != 1 || p[0] != (KVPair{}) {
		t.Fatalf("deleting the last row should blank it: %+v", p)
	}
}

func TestKVTable_View(t *testing.T) {
	kv := NewKVTable(testStyles())
	kv.SetPairs([]KVPair{{Key: "Content-Type", Value: "application/json"}})
	kv.SetSize(80)
	view := kv.View()
	if !strings.Contains(view, "Content-Type") || !strings.Contains(view, "application/json") {
		t.Fatalf("view = %q", view)
	}

	empty := NewKVTable(testStyles())
	if !strings.Contains(empty.View(), "key") {
		t.Fatal("empty row should show placeholders")
	}
}

// Toast

func TestToast_ShowAndDismiss(t *testing.T) {
	toast := NewToast(testStyles())
	if toast.Visible || toast.View() != "" {
		t.Fatal("new toast should be hidden")
	}

	cmd := toast.Show("Saved", false, time.Second)
	if cmd == nil || !toast.Visible || toast.Text() != "Saved" || toast.IsError() {
		t.Fatalf("Show state: %+v", toast)
	}
	if !strings.Contains(toast.View(), "Saved") {
		t.Fatal("view should contain the text")
	}

	toast, _ = toast.Update(toastDismissMsg{id: toast.id})
	if toast.Visible || toast.Text() != "" {
		t.Fatal("dismiss should hide the toast")
	}
}

func TestToast_StaleDismissIgnored(t *testing.T) {
	toast := NewToast(testStyles())
	toast.Show("first", false, time.Second)
	first := toast.id
	toast.Show("second", true, time.Second)

	toast, _ = toast.Update(toastDismissMsg{id: first})
	if !toast.Visible || toast.Text() != "second" || !toast.IsError() {
		t.Fatal("an older timer must not dismiss a newer toast")
	}
}

// Modal

func TestModal_ShowDefaultsToCancel(t *testing.T) {
	m := NewModal(testStyles())
	m.Show("Delete API", "Really?", "Delete", "confirmed")
	if !m.Visible || m.focusOK || m.ConfirmText != "Delete" {
		t.Fatalf("modal state: %+v", m)
	}

	m, cmd := m.Update(specialKeyMsg(tea.KeyEnter))
	if m.Visible {
		t.Fatal("enter should close")
	}
	for _, msg := range collect(cmd) {
		if msg == "confirmed" {
			t.Fatal("enter on Cancel must not confirm")
		}
	}
}

func TestModal_ConfirmPaths(t *testing.T) {
	for _, keys := range [][]tea.KeyMsg{
		{keyMsg("y")},
		{specialKeyMsg(tea.KeyTab), specialKeyMsg(tea.KeyEnter)},
	} {
		m := NewModal(testStyles())
		m.Show("t", "m", "", "confirmed")
		if m.ConfirmText != "OK" {
			t.Fatalf("default confirm text = %q", m.ConfirmText)
		}
		var cmd tea.Cmd
		for _, k := range keys {
			m, cmd = m.Update(k)
		}
		var confirmed, normal bool
		for _, msg := range collect(cmd) {
			switch msg := msg.(type) {
			case string:
				confirmed = msg == "confirmed"
			case msgs.SetModeMsg:
				normal = msg.Mode == msgs.ModeNormal
			}
		}
		if !confirmed || !normal || m.Visible {
			t.Fatalf("keys %v: confirmed=%v normal=%v visible=%v", keys, confirmed, normal, m.Visible)
		}
	}
}

func TestModal_EscCancels(t *testing.T) {
	m := NewModal(testStyles())
	m.Show("t", "m", "Delete", "confirmed")
	m, cmd := m.Update(specialKeyMsg(tea.KeyEsc))
	if m.Visible {
		t.Fatal("esc should close")
	}
	got := collect(cmd)
	if len(got) != 1 || got[0] != (msgs.SetModeMsg{Mode: msgs.ModeNormal}) {
		t.Fatalf("esc msgs = %v", got)
	}
}

func TestModal_HiddenIgnoresInputAndRendersNothing(t *testing.T) {
	m := NewModal(testStyles())
	m, cmd := m.Update(specialKeyMsg(tea.KeyEnter))
	if cmd != nil || m.View() != "" {
		t.Fatal("hidden modal should do nothing")
	}
	m.Show("Delete API", "Gone for good", "Delete", nil)
	view := m.View()
	for _, want := range []string{"Delete API", "Gone for good", "Cancel", "Delete"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

// StatusBar

func TestStatusBar_View(t *testing.T) {
	sb := NewStatusBar(testStyles())
	sb.SetWidth(120)
	sb.SetSession("admin", "http://localhost:8000")
	sb.SetMode(msgs.ModeSearch)

	view := sb.View()
	for _, want := range []string{"SEARCH", "admin", "http://localhost:8000", "?:help"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q: %q", want, view)
		}
	}
	if sb.Mode() != msgs.ModeSearch {
		t.Error("Mode not kept")
	}
}

func TestStatusBar_MessageLoadingRefreshed(t *testing.T) {
	sb := NewStatusBar(testStyles())
	sb.SetWidth(120)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sb.now = func() time.Time { return now }

	sb.MarkRefreshed(now.Add(-2 * time.Minute))
	if !strings.Contains(sb.View(), "refreshed 2 minutes ago") {
		t.Errorf("view = %q", sb.View())
	}

	sb.SetLoading(true)
	if !strings.Contains(sb.View(), "loading") {
		t.Error("loading indicator missing")
	}

	sb.SetMessage("Copied as cURL")
	if !strings.Contains(sb.View(), "Copied as cURL") {
		t.Error("message missing")
	}
	sb, _ = sb.Update(clearStatusMsg{})
	if sb.Message() != "" {
		t.Error("clearStatusMsg should clear the message")
	}
	if sb.ClearAfter(time.Second) == nil {
		t.Error("ClearAfter should return a cmd")
	}
}

// Header

func TestHeader_ShowsTrail(t *testing.T) {
	h := NewHeader(testStyles())
	h.SetWidth(80)
	h.SetTrail([]msgs.Screen{msgs.ScreenList, msgs.ScreenDetail})
	view := h.View()
	for _, want := range []string{"apitrack", "APIs", "Details"} {
		if !strings.Contains(view, want) {
			t.Errorf("header missing %q: %q", want, view)
		}
	}
}

// CommandPalette

func testCommands() []Command {
	return []Command{
		{Name: "Add API", Shortcut: "a", Msg: "add"},
		{Name: "Refresh", Shortcut: "r", Msg: "refresh"},
		{Name: "Switch Theme", Msg: msgs.SwitchThemeMsg{}},
	}
}

func TestCommandPalette_OpenAndSelect(t *testing.T) {
	cp := NewCommandPalette(testStyles())
	cp.Open(testCommands())
	if !cp.Visible || len(cp.Filtered()) != 3 {
		t.Fatal("Open should show all commands")
	}

	cp, _ = cp.Update(specialKeyMsg(tea.KeyDown))
	cp, cmd := cp.Update(specialKeyMsg(tea.KeyEnter))
	if cp.Visible {
		t.Fatal("palette should close after selection")
	}
	var got []tea.Msg
	for _, m := range collect(cmd) {
		if _, ok := m.(msgs.SetModeMsg); !ok {
			got = append(got, m)
		}
	}
	if len(got) != 1 || got[0] != "refresh" {
		t.Fatalf("selected = %v", got)
	}
}

func TestCommandPalette_FuzzyFilter(t *testing.T) {
	cp := NewCommandPalette(testStyles())
	cp.Open(testCommands())
	for _, r := range "thm" {
		cp, _ = cp.Update(keyMsg(string(r)))
	}
	f := cp.Filtered()
	if len(f) != 1 || f[0].Name != "Switch Theme" {
		t.Fatalf("filtered = %+v", f)
	}

	for _, r := range "zzz" {
		cp, _ = cp.Update(keyMsg(string(r)))
	}
	if len(cp.Filtered()) != 0 || cp.cursor != 0 {
		t.Fatalf("no-match state: %d items, cursor %d", len(cp.Filtered()), cp.cursor)
	}
	if !strings.Contains(cp.View(), "No matches") {
		t.Error("view should say no matches")
	}
	cp, cmd := cp.Update(specialKeyMsg(tea.KeyEnter))
	if cmd != nil || !cp.Visible {
		t.Fatal("enter with no matches should do nothing")
	}
}

func TestCommandPalette_CursorBounds(t *testing.T) {
	cp := NewCommandPalette(testStyles())
	cp.Open(testCommands())
	cp, _ = cp.Update(specialKeyMsg(tea.KeyUp))
	if cp.cursor != 0 {
		t.Fatal("cursor went above 0")
	}
	for range 10 {
		cp, _ = cp.Update(specialKeyMsg(tea.KeyDown))
	}
	if cp.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", cp.cursor)
	}
}

func TestCommandPalette_Picker(t *testing.T) {
	cp := NewCommandPalette(testStyles())
	cp.OpenPicker("Rows per page...", []string{"5", "10", "25"}, func(s string) tea.Msg { return "size:" + s })
	cp, _ = cp.Update(specialKeyMsg(tea.KeyDown))
	cp, _ = cp.Update(specialKeyMsg(tea.KeyDown))
	_, cmd := cp.Update(specialKeyMsg(tea.KeyEnter))

	found := false
	for _, m := range collect(cmd) {
		if m == "size:25" {
			found = true
		}
	}
	if !found {
		t.Fatal("picker should emit the chosen value")
	}
}

func TestCommandPalette_EscCloses(t *testing.T) {
	cp := NewCommandPalette(testStyles())
	cp.Open(testCommands())
	cp, cmd := cp.Update(specialKeyMsg(tea.KeyEsc))
	if cp.Visible || cmd == nil {
		t.Fatal("esc should close and reset the mode")
	}
	if cp.View() != "" {
		t.Fatal("closed palette should render nothing")
	}
}

// Help

func TestHelp_ToggleAndClose(t *testing.T) {
	h := NewHelp(testStyles())
	h.SetSize(100, 40)
	h.Toggle()
	if !h.Visible || !strings.Contains(h.View(), "Keyboard Shortcuts") {
		t.Fatal("help should be visible with a title")
	}
	h, cmd := h.Update(keyMsg("?"))
	if h.Visible || cmd == nil {
		t.Fatal("? should close help")
	}
}

// JumpOverlay

func TestGenerateLabel(t *testing.T) {
	tests := map[int]string{0: "a", 25: "z", 26: "aa", 27: "ab", 52: "ba"}
	for idx, want := range tests {
		if got := generateLabel(idx); got != want {
			t.Errorf("generateLabel(%d) = %q, want %q", idx, got, want)
		}
	}
}

func TestJumpOverlay_UniqueMatchEmitsAction(t *testing.T) {
	j := NewJumpOverlay(testStyles())
	j.Open([]JumpTarget{{Name: "GET /a", Action: "a"}, {Name: "GET /b", Action: "b"}})
	if !j.Visible || !strings.Contains(j.View(), "GET /b") {
		t.Fatal("overlay should list targets")
	}

	j, cmd := j.Update(keyMsg("b"))
	if j.Visible {
		t.Fatal("unique match should close the overlay")
	}
	found := false
	for _, m := range collect(cmd) {
		if m == "b" {
			found = true
		}
	}
	if !found {
		t.Fatal("action not emitted")
	}
}

func TestJumpOverlay_NoMatchOrOtherKeyCloses(t *testing.T) {
	for _, k := range []tea.KeyMsg{keyMsg("q"), specialKeyMsg(tea.KeyEsc), keyMsg("1")} {
		j := NewJumpOverlay(testStyles())
		j.Open([]JumpTarget{{Name: "x", Action: "x"}, {Name: "y", Action: "y"}})
		j, _ = j.Update(k)
		if j.Visible {
			t.Errorf("key %q should close the overlay", k.String())
		}
	}
}

func TestJumpOverlay_TwoLetterLabels(t *testing.T) {
	targets := make([]JumpTarget, 30)
	for i := range targets {
		targets[i] = JumpTarget{Name: "row", Action: i}
	}
	j := NewJumpOverlay(testStyles())
	j.Open(targets)

	j, cmd := j.Update(keyMsg("a"))
	if !j.Visible || cmd != nil {
		t.Fatal("'a' is ambiguous with 'aa'..'ad'")
	}
	j, cmd = j.Update(keyMsg("c"))
	found := false
	for _, m := range collect(cmd) {
		if m == 28 {
			found = true
		}
	}
	if j.Visible || !found {
		t.Fatal("'ac' should select target 28")
	}
}

// Pager

func TestPager(t *testing.T) {
	s := testStyles()
	if got := Pager(s, nil, 1, 0, 0); !strings.Contains(got, "No results") {
		t.Errorf("empty pager = %q", got)
	}

	buttons := listview.PageWindow(5, 100, 10, 5)
	got := Pager(s, buttons, 5, 10, 100)
	for _, want := range []string{"‹", "›", "…", "5", "10", "Page 5 of 10 (100 total)"} {
		if !strings.Contains(got, want) {
			t.Errorf("pager missing %q: %q", want, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		w    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 4, "hel…"},
		{"hello", 1, "…"},
		{"hello", 0, ""},
		{"héllo wörld", 6, "héllo…"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.w); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.w, got, tt.want)
		}
	}
}
