package picker

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/jpx/internal/exportjar"
)

var testColors = Colors{Dim: "#666", SelFg: "#fff", SelBg: "#444", Border: "#555", Accent: "#0af"}

func classes() []Item {
	return []Item{
		{Label: "App", Desc: "com.example.App", Value: "com.example.App"},
		{Label: "Tool", Desc: "com.example.tools.Tool", Value: "com.example.tools.Tool"},
		{Label: "No main class"},
	}
}

func keyPress(ch rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: ch, Text: string(ch)}
}

func special(name string) tea.KeyPressMsg {
	switch name {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	default:
		return tea.KeyPressMsg{}
	}
}

func TestEscapeCloses(t *testing.T) {
	m := New(classes(), Options{Colors: testColors})
	a, _ := m.HandleMsg(special("esc"))
	if _, ok := a.(ActionClose); !ok {
		t.Fatalf("expected ActionClose, got %T", a)
	}
}

func TestEnterSelectsFirst(t *testing.T) {
	m := New(classes(), Options{Back: true, Colors: testColors})
	a, _ := m.HandleMsg(special("enter"))
	acc, ok := a.(ActionAccept)
	if !ok {
		t.Fatalf("expected ActionAccept, got %T", a)
	}
	if len(acc.Items) != 1 || acc.Items[0].Label != "App" {
		t.Fatalf("accepted %+v", acc.Items)
	}
}

func TestBackRow(t *testing.T) {
	m := New(classes(), Options{Back: true, Colors: testColors})
	m.HandleMsg(special("down")) // into list, on App
	m.HandleMsg(special("up"))   // Back row
	a, _ := m.HandleMsg(special("enter"))
	if _, ok := a.(ActionBack); !ok {
		t.Fatalf("expected ActionBack, got %T", a)
	}
}

func TestDownThenEnterSelectsHighlighted(t *testing.T) {
	m := New(classes(), Options{Colors: testColors})
	m.HandleMsg(special("down")) // enter list on App
	m.HandleMsg(special("down")) // Tool
	a, _ := m.HandleMsg(special("enter"))
	acc, ok := a.(ActionAccept)
	if !ok {
		t.Fatalf("expected ActionAccept, got %T", a)
	}
	if acc.Items[0].Value != "com.example.tools.Tool" {
		t.Fatalf("expected Tool, got %+v", acc.Items[0])
	}
}

func TestMultiStartsWithPicked(t *testing.T) {
	items := []Item{
		{Label: "bin", Value: "/w/bin", Picked: true},
		{Label: "junit.jar", Value: "/m2/junit.jar"},
		{Label: "guava.jar", Value: "/m2/guava.jar", Picked: true},
	}
	m := New(items, Options{Multi: true, Colors: testColors})

	m.HandleMsg(special("down"))  // bin
	m.HandleMsg(special("space")) // uncheck bin
	m.HandleMsg(special("down"))  // junit
	m.HandleMsg(special("space")) // check junit
	a, _ := m.HandleMsg(special("enter"))
	acc, ok := a.(ActionAccept)
	if !ok {
		t.Fatalf("expected ActionAccept, got %T", a)
	}
	var got []string
	for _, it := range acc.Items {
		got = append(got, it.Value)
	}
	if strings.Join(got, ",") != "/m2/junit.jar,/m2/guava.jar" {
		t.Errorf("accepted %v", got)
	}
}

func TestSpaceTypesInInput(t *testing.T) {
	m := New(classes(), Options{Multi: true, Colors: testColors})
	m.HandleMsg(special("space"))
	if string(m.input) != " " {
		t.Errorf("input = %q", string(m.input))
	}
}

func TestTypingFiltersAfterDebounce(t *testing.T) {
	m := New(classes(), Options{Back: true, Colors: testColors})
	_, cmd := m.HandleMsg(keyPress('t'))
	if cmd == nil {
		t.Fatal("expected debounce cmd")
	}
	m.HandleMsg(keyPress('o'))
	m.HandleMsg(keyPress('o'))

	m.HandleMsg(debounceMsg{seq: m.seq - 1}) // stale
	if len(m.rows) != 4 {
		t.Fatalf("stale debounce filtered: %v", m.rows)
	}
	m.HandleMsg(debounceMsg{seq: m.seq})
	if len(m.rows) != 2 || m.rows[0] != backRow || m.items[m.rows[1]].Label != "Tool" {
		t.Fatalf("rows = %v", m.rows)
	}
	a, _ := m.HandleMsg(special("enter"))
	if acc, ok := a.(ActionAccept); !ok || acc.Items[0].Label != "Tool" {
		t.Errorf("enter after filter = %#v", a)
	}
}

func TestEmptyListEnterDoesNothing(t *testing.T) {
	m := New(nil, Options{Colors: testColors})
	if a, _ := m.HandleMsg(special("enter")); a != nil {
		t.Errorf("got %T on empty list", a)
	}
}

func TestViewShowsRows(t *testing.T) {
	m := New(classes(), Options{Title: "Export Jar - Determine main class", Back: true, Colors: testColors})
	out := m.View(60, 14)
	for _, want := range []string{"Determine main class", backLabel, "App", "com.example.tools.Tool", "esc dismiss"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestToResult(t *testing.T) {
	if r := toResult(ActionBack{}); r.Action != exportjar.PickBack {
		t.Errorf("back -> %v", r.Action)
	}
	if r := toResult(ActionClose{}); r.Action != exportjar.PickDismissed {
		t.Errorf("close -> %v", r.Action)
	}
	r := toResult(ActionAccept{Items: []Item{{Label: "App", Desc: "com.example.App", Value: "com.example.App"}}})
	if r.Action != exportjar.PickAccepted || r.Items[0].Description != "com.example.App" {
		t.Errorf("accept -> %+v", r)
	}
}
