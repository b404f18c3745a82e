package relay

import (
	"errors"
	"testing"

	"github.com/nerrad567/huelink-core/internal/resource"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantName string
		check    func(t *testing.T, cmd resource.Command)
	}{
		{
			name:     "on",
			payload:  `{"command":"on","on":true}`,
			wantName: "on",
			check: func(t *testing.T, cmd resource.Command) {
				on := cmd.Body["on"].(map[string]any)
				if on["on"] != true {
					t.Errorf("on = %v, want true", on["on"])
				}
			},
		},
		{
			name:     "off",
			payload:  `{"command":"on","on":false}`,
			wantName: "on",
			check: func(t *testing.T, cmd resource.Command) {
				on := cmd.Body["on"].(map[string]any)
				if on["on"] != false {
					t.Errorf("on = %v, want false", on["on"])
				}
			},
		},
		{
			name:     "dimming",
			payload:  `{"command":"dimming","brightness":40}`,
			wantName: "dimming",
			check: func(t *testing.T, cmd resource.Command) {
				dimming := cmd.Body["dimming"].(map[string]any)
				if dimming["brightness"] != 40.0 {
					t.Errorf("brightness = %v, want 40", dimming["brightness"])
				}
			},
		},
		{
			name:     "dimming stop",
			payload:  `{"command":"dimming","brightness":-1}`,
			wantName: "dimming",
			check: func(t *testing.T, cmd resource.Command) {
				delta, ok := cmd.Body["dimming_delta"].(map[string]any)
				if !ok || delta["action"] != "stop" {
					t.Errorf("body = %v, want dimming_delta stop", cmd.Body)
				}
			},
		},
		{
			name:     "color by name",
			payload:  `{"command":"color","name":"blue"}`,
			wantName: "color",
			check: func(t *testing.T, cmd resource.Command) {
				color := cmd.Body["color"].(map[string]any)
				if _, ok := color["xy"]; !ok {
					t.Errorf("body = %v, want xy payload", cmd.Body)
				}
			},
		},
		{
			name:     "color by xy",
			payload:  `{"command":"color","x":0.41,"y":0.52}`,
			wantName: "color",
			check: func(t *testing.T, cmd resource.Command) {
				xy := cmd.Body["color"].(map[string]any)["xy"].(map[string]any)
				if xy["x"] != 0.41 || xy["y"] != 0.52 {
					t.Errorf("xy = %v, want {0.41 0.52}", xy)
				}
			},
		},
		{
			name:     "color temperature",
			payload:  `{"command":"color_temperature","mirek":366}`,
			wantName: "color_temperature",
			check: func(t *testing.T, cmd resource.Command) {
				ct := cmd.Body["color_temperature"].(map[string]any)
				if ct["mirek"] != 366 {
					t.Errorf("mirek = %v, want 366", ct["mirek"])
				}
			},
		},
		{
			name:     "recall",
			payload:  `{"command":"recall"}`,
			wantName: "recall",
			check: func(t *testing.T, cmd resource.Command) {
				recall := cmd.Body["recall"].(map[string]any)
				if recall["action"] != "active" {
					t.Errorf("recall = %v, want active action", recall)
				}
			},
		},
		{
			name:     "duration merged",
			payload:  `{"command":"dimming","brightness":40,"duration_ms":400}`,
			wantName: "dimming",
			check: func(t *testing.T, cmd resource.Command) {
				dynamics, ok := cmd.Body["dynamics"].(map[string]any)
				if !ok || dynamics["duration"] != 400 {
					t.Errorf("body = %v, want dynamics duration 400", cmd.Body)
				}
				if _, ok := cmd.Body["dimming"]; !ok {
					t.Errorf("body = %v, dimming payload lost", cmd.Body)
				}
			},
		},
		{
			name:     "zero duration ignored",
			payload:  `{"command":"on","on":true,"duration_ms":0}`,
			wantName: "on",
			check: func(t *testing.T, cmd resource.Command) {
				if _, ok := cmd.Body["dynamics"]; ok {
					t.Errorf("body = %v, zero duration should not add dynamics", cmd.Body)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand([]byte(tt.payload))
			if err != nil {
				t.Fatalf("ParseCommand() error = %v", err)
			}
			if cmd.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", cmd.Name, tt.wantName)
			}
			tt.check(t, cmd)
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"malformed json", `{"command":`},
		{"unknown command", `{"command":"explode"}`},
		{"on without field", `{"command":"on"}`},
		{"dimming without brightness", `{"command":"dimming"}`},
		{"color without name or xy", `{"command":"color"}`},
		{"color with half a pair", `{"command":"color","x":0.4}`},
		{"color temperature without mirek", `{"command":"color_temperature"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCommand([]byte(tt.payload)); err == nil {
				t.Errorf("ParseCommand(%s) expected error, got nil", tt.payload)
			}
		})
	}
}

func TestParseCommand_UnknownColorName(t *testing.T) {
	_, err := ParseCommand([]byte(`{"command":"color","name":"mauve"}`))
	if !errors.Is(err, resource.ErrUnknownColor) {
		t.Errorf("ParseCommand() error = %v, want ErrUnknownColor", err)
	}
}

func TestParseCommand_UnknownCommandSentinel(t *testing.T) {
	_, err := ParseCommand([]byte(`{"command":"explode"}`))
	if !errors.Is(err, ErrUnknownCommandType) {
		t.Errorf("ParseCommand() error = %v, want ErrUnknownCommandType", err)
	}
}

func TestResourceIDFromTopic(t *testing.T) {
	tests := []struct {
		topic  string
		wantID string
		wantOK bool
	}{
		{"huelink/command/light/l1", "l1", true},
		{"huelink/command/grouped_light/g1", "g1", true},
		{"huelink/command/light", "", false},
		{"huelink/command/light/l1/extra", "", false},
		{"huelink/command/light/", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			id, ok := resourceIDFromTopic(tt.topic)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("resourceIDFromTopic(%q) = (%q, %v), want (%q, %v)",
					tt.topic, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}
