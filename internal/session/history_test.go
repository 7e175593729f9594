package session_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/labelr/labelr/internal/session"
)

func TestHistory_PushAndNavigate(t *testing.T) {
	var h session.History

	if _, ok := h.Current(); ok {
		t.Fatal("empty history has a current entry")
	}

	h.Push("a")
	h.Push("b")
	h.Push("c")

	if diff := cmp.Diff([]string{"c", "b", "a"}, h.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	h.StepBack()
	h.StepBack()

	if id, _ := h.Current(); id != "a" || h.CanGoBack() {
		t.Errorf("current = %q canGoBack = %v, want a at the oldest entry", id, h.CanGoBack())
	}

	h.StepBack()
	if h.Cursor() != 2 {
		t.Errorf("cursor moved past the oldest entry: %d", h.Cursor())
	}

	h.Push("ignored")
	if h.Len() != 3 {
		t.Errorf("push away from the live edge changed history: %v", h.Entries())
	}

	if id, _ := h.Newer(); id != "b" {
		t.Errorf("newer = %q, want b", id)
	}

	h.StepForward()
	h.StepForward()
	h.StepForward()

	if !h.AtLiveEdge() {
		t.Errorf("cursor = %d, want live edge", h.Cursor())
	}

	if _, ok := h.Newer(); ok {
		t.Error("newer entry reported at the live edge")
	}

	h.Reset()
	if h.Len() != 0 || h.Cursor() != 0 {
		t.Errorf("reset left len=%d cursor=%d", h.Len(), h.Cursor())
	}
}

func TestHistory_EntriesIsACopy(t *testing.T) {
	var h session.History
	h.Push("a")

	entries := h.Entries()
	entries[0] = "mutated"

	if id, _ := h.Current(); id != "a" {
		t.Errorf("current = %q, want a", id)
	}
}

func TestBindingForKey(t *testing.T) {
	tests := []struct {
		key  string
		want session.Binding
	}{
		{"1", session.Binding{Action: session.ActionToggle, Position: 1}},
		{"9", session.Binding{Action: session.ActionToggle, Position: 9}},
		{"0", session.Binding{Action: session.ActionToggle, Position: 10}},
		{"a", session.Binding{Action: session.ActionPrev}},
		{"d", session.Binding{Action: session.ActionNext}},
		{" ", session.Binding{Action: session.ActionSave}},
		{"space", session.Binding{Action: session.ActionSave}},
		{"x", session.Binding{}},
		{"10", session.Binding{}},
		{"", session.Binding{}},
	}

	for _, tc := range tests {
		if got := session.BindingForKey(tc.key); got != tc.want {
			t.Errorf("BindingForKey(%q) = %+v, want %+v", tc.key, got, tc.want)
		}
	}
}
