package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/huelink-core/internal/resource"
)

// ErrUnknownCommandType indicates a command message naming a command
// the relay cannot encode.
var ErrUnknownCommandType = errors.New("unknown command type")

// commandMessage is the JSON shape accepted on command topics.
//
// Examples:
//
//	{"command":"on","on":true}
//	{"command":"dimming","brightness":40,"duration_ms":400}
//	{"command":"dimming","brightness":-1}
//	{"command":"color","name":"red"}
//	{"command":"color","x":0.41,"y":0.52}
//	{"command":"color_temperature","mirek":366}
//	{"command":"recall"}
type commandMessage struct {
	Command    string   `json:"command"`
	On         *bool    `json:"on,omitempty"`
	Brightness *float64 `json:"brightness,omitempty"`
	Name       string   `json:"name,omitempty"`
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
	Mirek      *float64 `json:"mirek,omitempty"`
	DurationMS *int     `json:"duration_ms,omitempty"`
}

// ParseCommand decodes a command message into an encoded resource
// command, applying the optional transition duration.
//
// Returns:
//   - resource.Command: Ready for Registry.IssueCommand
//   - error: Malformed JSON, missing fields, or unknown command type
func ParseCommand(payload []byte) (resource.Command, error) {
	var msg commandMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return resource.Command{}, fmt.Errorf("decoding command message: %w", err)
	}

	var cmd resource.Command
	switch msg.Command {
	case "on":
		if msg.On == nil {
			return resource.Command{}, fmt.Errorf("on command requires an \"on\" field")
		}
		cmd = resource.On(*msg.On)

	case "dimming":
		if msg.Brightness == nil {
			return resource.Command{}, fmt.Errorf("dimming command requires a \"brightness\" field")
		}
		cmd = resource.Dimming(*msg.Brightness)

	case "color":
		switch {
		case msg.Name != "":
			named, err := resource.ColorName(msg.Name)
			if err != nil {
				return resource.Command{}, err
			}
			cmd = named
		case msg.X != nil && msg.Y != nil:
			cmd = resource.ColorXY(*msg.X, *msg.Y)
		default:
			return resource.Command{}, fmt.Errorf("color command requires a \"name\" or an x/y pair")
		}

	case "color_temperature":
		if msg.Mirek == nil {
			return resource.Command{}, fmt.Errorf("color_temperature command requires a \"mirek\" field")
		}
		cmd = resource.ColorTemperature(*msg.Mirek)

	case "recall":
		cmd = resource.Recall()

	default:
		return resource.Command{}, fmt.Errorf("%w: %q", ErrUnknownCommandType, msg.Command)
	}

	if msg.DurationMS != nil && *msg.DurationMS > 0 {
		cmd = cmd.WithDuration(time.Duration(*msg.DurationMS) * time.Millisecond)
	}
	return cmd, nil
}
