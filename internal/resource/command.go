package resource

import (
	"fmt"
	"math"
	"time"
)

// Command is an encoded bridge command: the capability name it resolves
// against and the JSON body PUT to the implementing resource.
type Command struct {
	Name string
	Body map[string]any
}

// On encodes a power command.
func On(on bool) Command {
	return Command{
		Name: "on",
		Body: map[string]any{"on": map[string]any{"on": on}},
	}
}

// Dimming encodes a brightness command. Brightness is a percentage,
// clamped to 0..100. A negative value encodes a stop-transition action
// instead of a literal brightness; it halts whatever dimming transition
// is in flight.
func Dimming(brightness float64) Command {
	if brightness < 0 {
		return Command{
			Name: "dimming",
			Body: map[string]any{"dimming_delta": map[string]any{"action": "stop"}},
		}
	}
	if brightness > 100 {
		brightness = 100
	}
	return Command{
		Name: "dimming",
		Body: map[string]any{"dimming": map[string]any{"brightness": brightness}},
	}
}

// ColorXY encodes a color command in bridge-native coordinates. The
// pair is passed through untouched.
func ColorXY(x, y float64) Command {
	return Command{
		Name: "color",
		Body: map[string]any{"color": map[string]any{
			"xy": map[string]any{"x": x, "y": y},
		}},
	}
}

// ColorName encodes a color command from a palette name.
//
// Returns ErrUnknownColor for names outside the palette.
func ColorName(name string) (Command, error) {
	xy, ok := colorPalette[name]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownColor, name)
	}
	return ColorXY(xy.X, xy.Y), nil
}

// ColorTemperature encodes a color-temperature command. The value is
// rounded to the nearest integer mirek and clamped to the bridge's
// accepted range.
func ColorTemperature(mirek float64) Command {
	m := int(math.Round(mirek))
	if m < 153 {
		m = 153
	}
	if m > 500 {
		m = 500
	}
	return Command{
		Name: "color_temperature",
		Body: map[string]any{"color_temperature": map[string]any{"mirek": m}},
	}
}

// Recall encodes a scene activation command.
func Recall() Command {
	return Command{
		Name: "recall",
		Body: map[string]any{"recall": map[string]any{"action": "active"}},
	}
}

// RawCommand wraps an arbitrary payload under an existing capability
// name. The payload is sent as-is; no validation is performed.
func RawCommand(name string, body map[string]any) Command {
	return Command{Name: name, Body: body}
}

// WithDuration merges a transition duration into the command body. The
// bridge expects milliseconds under dynamics.duration.
func (c Command) WithDuration(d time.Duration) Command {
	body := make(map[string]any, len(c.Body)+1)
	for k, v := range c.Body {
		body[k] = v
	}
	body["dynamics"] = map[string]any{"duration": int(d.Milliseconds())}
	return Command{Name: c.Name, Body: body}
}

// colorPalette maps common color names to bridge-native coordinates.
// Values target the wide gamut of current lamp generations; lamps clamp
// out-of-gamut points themselves.
var colorPalette = map[string]XY{
	"red":    {X: 0.6750, Y: 0.3220},
	"orange": {X: 0.5562, Y: 0.4084},
	"yellow": {X: 0.4432, Y: 0.5154},
	"green":  {X: 0.4091, Y: 0.5180},
	"cyan":   {X: 0.2857, Y: 0.2744},
	"blue":   {X: 0.1670, Y: 0.0400},
	"purple": {X: 0.2485, Y: 0.0917},
	"pink":   {X: 0.3824, Y: 0.1601},
	"white":  {X: 0.3127, Y: 0.3290},
}

// ColorNames returns the palette's color names. Order is unspecified.
func ColorNames() []string {
	names := make([]string, 0, len(colorPalette))
	for name := range colorPalette {
		names = append(names, name)
	}
	return names
}
