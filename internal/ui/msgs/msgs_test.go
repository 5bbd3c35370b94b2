package msgs

import (
	"testing"

	"github.com/sadopc/apitrack/internal/mutation"
)

func TestAppModeString(t *testing.T) {
	tests := []struct {
		name string
		mode AppMode
		want string
	}{
		{name: "normal", mode: ModeNormal, want: "NORMAL"},
		{name: "insert", mode: ModeInsert, want: "INSERT"},
		{name: "command", mode: ModeCommandPalette, want: "COMMAND"},
		{name: "modal", mode: ModeModal, want: "MODAL"},
		{name: "search", mode: ModeSearch, want: "SEARCH"},
		{name: "unknown", mode: AppMode(999), want: "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.mode.String()
			if got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScreenString(t *testing.T) {
	if ScreenLoadTest.String() != "Load Test" || Screen(42).String() != "Unknown" {
		t.Fatal("unexpected screen names")
	}
}

func TestNoticeToast(t *testing.T) {
	got := NoticeToast(mutation.Notice{Text: "boom", IsError: true})
	if got.Text != "boom" || !got.IsError || got.Duration != 0 {
		t.Fatalf("NoticeToast = %+v", got)
	}
}
