package formatting_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/pashuvision/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1024", 1024, false},
		{"10MB", 10 << 20, false},
		{"512 kb", 512 << 10, false},
		{"1.5KB", 1536, false},
		{"  2GB ", 2 << 30, false},
		{"", 0, true},
		{"MB", 0, true},
		{"5XB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		prec int
		want string
	}{
		{0, 1, "0 B"},
		{512, 0, "512 B"},
		{1536, 1, "1.5 KB"},
		{10 << 20, 0, "10 MB"},
	}
	for _, tt := range tests {
		if got := formatting.FormatBytes(tt.n, tt.prec); got != tt.want {
			t.Errorf("FormatBytes(%d): got %q, want %q", tt.n, got, tt.want)
		}
	}
}

type detection struct {
	Species string `json:"species"`
	Sex     string `json:"sex"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"raw", `{"species":"Cattle","sex":"Female"}`, "Cattle", false},
		{"fenced", "```json\n{\"species\":\"Buffalo\",\"sex\":\"Male\"}\n```", "Buffalo", false},
		{"prose", `Here is the result: {"species":"Cattle","sex":"Male"} hope this helps`, "Cattle", false},
		{"garbage", "I cannot help with that.", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[detection](tt.content)
			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Errorf("err: got %v, want ErrParseFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Species != tt.want {
				t.Errorf("species: got %q, want %q", got.Species, tt.want)
			}
		})
	}
}

func TestParseArray(t *testing.T) {
	got, err := formatting.Parse[[]detection]("```\n[{\"species\":\"Cattle\"},{\"species\":\"Buffalo\"}]\n```")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Species != "Buffalo" {
		t.Errorf("got %+v", got)
	}
}
