package resource

import (
	"errors"
	"testing"
	"time"
)

func TestOn(t *testing.T) {
	cmd := On(true)
	if cmd.Name != "on" {
		t.Errorf("Name = %q, want %q", cmd.Name, "on")
	}
	on, ok := cmd.Body["on"].(map[string]any)
	if !ok {
		t.Fatalf("Body[on] = %v, want map", cmd.Body["on"])
	}
	if on["on"] != true {
		t.Errorf("Body[on][on] = %v, want true", on["on"])
	}
}

func TestDimming(t *testing.T) {
	tests := []struct {
		name       string
		brightness float64
		wantBody   map[string]any
	}{
		{
			name:       "plain brightness",
			brightness: 40,
			wantBody:   map[string]any{"dimming": map[string]any{"brightness": 40.0}},
		},
		{
			name:       "clamped above 100",
			brightness: 150,
			wantBody:   map[string]any{"dimming": map[string]any{"brightness": 100.0}},
		},
		{
			name:       "zero is a literal brightness",
			brightness: 0,
			wantBody:   map[string]any{"dimming": map[string]any{"brightness": 0.0}},
		},
		{
			name:       "negative stops the transition",
			brightness: -1,
			wantBody:   map[string]any{"dimming_delta": map[string]any{"action": "stop"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := Dimming(tt.brightness)
			if cmd.Name != "dimming" {
				t.Errorf("Name = %q, want %q", cmd.Name, "dimming")
			}
			assertBodyEqual(t, cmd.Body, tt.wantBody)
		})
	}
}

func TestDimming_NegativeNeverEncodesBrightness(t *testing.T) {
	cmd := Dimming(-20)
	if _, ok := cmd.Body["dimming"]; ok {
		t.Errorf("negative brightness encoded a dimming payload: %v", cmd.Body)
	}
	if _, ok := cmd.Body["dimming_delta"]; !ok {
		t.Errorf("negative brightness missing dimming_delta: %v", cmd.Body)
	}
}

func TestColorTemperature(t *testing.T) {
	tests := []struct {
		name  string
		mirek float64
		want  int
	}{
		{"rounds down", 200.4, 200},
		{"rounds up", 200.5, 201},
		{"clamped low", 100, 153},
		{"clamped high", 900, 500},
		{"boundary low", 153, 153},
		{"boundary high", 500, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := ColorTemperature(tt.mirek)
			ct, ok := cmd.Body["color_temperature"].(map[string]any)
			if !ok {
				t.Fatalf("Body[color_temperature] = %v, want map", cmd.Body)
			}
			if ct["mirek"] != tt.want {
				t.Errorf("mirek = %v, want %d", ct["mirek"], tt.want)
			}
		})
	}
}

func TestColorName(t *testing.T) {
	cmd, err := ColorName("red")
	if err != nil {
		t.Fatalf("ColorName(red) error = %v", err)
	}
	color, ok := cmd.Body["color"].(map[string]any)
	if !ok {
		t.Fatalf("Body[color] = %v, want map", cmd.Body)
	}
	xy, ok := color["xy"].(map[string]any)
	if !ok {
		t.Fatalf("color[xy] = %v, want map", color)
	}
	if xy["x"] != 0.6750 || xy["y"] != 0.3220 {
		t.Errorf("xy = %v, want {0.6750 0.3220}", xy)
	}
}

func TestColorName_Unknown(t *testing.T) {
	_, err := ColorName("mauve")
	if !errors.Is(err, ErrUnknownColor) {
		t.Errorf("ColorName(mauve) error = %v, want ErrUnknownColor", err)
	}
}

func TestRecall(t *testing.T) {
	cmd := Recall()
	if cmd.Name != "recall" {
		t.Errorf("Name = %q, want %q", cmd.Name, "recall")
	}
	recall, ok := cmd.Body["recall"].(map[string]any)
	if !ok {
		t.Fatalf("Body[recall] = %v, want map", cmd.Body)
	}
	if recall["action"] != "active" {
		t.Errorf("recall action = %v, want active", recall["action"])
	}
}

func TestWithDuration(t *testing.T) {
	base := On(true)
	cmd := base.WithDuration(400 * time.Millisecond)

	dynamics, ok := cmd.Body["dynamics"].(map[string]any)
	if !ok {
		t.Fatalf("Body[dynamics] = %v, want map", cmd.Body)
	}
	if dynamics["duration"] != 400 {
		t.Errorf("duration = %v, want 400", dynamics["duration"])
	}
	if _, ok := cmd.Body["on"]; !ok {
		t.Errorf("original payload lost: %v", cmd.Body)
	}

	// The original command body must not be mutated.
	if _, ok := base.Body["dynamics"]; ok {
		t.Errorf("WithDuration mutated the source command: %v", base.Body)
	}
}

func TestColorNames(t *testing.T) {
	names := ColorNames()
	if len(names) != len(colorPalette) {
		t.Errorf("ColorNames() returned %d names, want %d", len(names), len(colorPalette))
	}
	seen := make(map[string]bool)
	for _, name := range names {
		if _, ok := colorPalette[name]; !ok {
			t.Errorf("ColorNames() contains %q, not in palette", name)
		}
		if seen[name] {
			t.Errorf("ColorNames() contains duplicate %q", name)
		}
		seen[name] = true
	}
}

// assertBodyEqual compares two single-level nested command bodies.
func assertBodyEqual(t *testing.T, got, want map[string]any) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("body = %v, want %v", got, want)
	}
	for key, wantInner := range want {
		gotInner, ok := got[key].(map[string]any)
		if !ok {
			t.Fatalf("body[%s] = %v, want %v", key, got[key], wantInner)
		}
		for k, v := range wantInner.(map[string]any) {
			if gotInner[k] != v {
				t.Errorf("body[%s][%s] = %v, want %v", key, k, gotInner[k], v)
			}
		}
	}
}
