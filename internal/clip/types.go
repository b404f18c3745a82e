package clip

import (
	"fmt"
	"strconv"
)

// BridgeInfo is the subset of GET /api/config the mirror uses.
type BridgeInfo struct {
	Name       string `json:"name"`
	BridgeID   string `json:"bridgeid"`
	ModelID    string `json:"modelid"`
	APIVersion string `json:"apiversion"`
	SWVersion  string `json:"swversion"`
}

// BuildNumber parses the bridge's software version token. The bridge
// reports it as a decimal string.
func (b BridgeInfo) BuildNumber() (int64, error) {
	n, err := strconv.ParseInt(b.SWVersion, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing swversion %q: %w", b.SWVersion, err)
	}
	return n, nil
}

// envelope is the response wrapper every v2 resource call returns.
type envelope struct {
	Errors []apiError       `json:"errors"`
	Data   []map[string]any `json:"data"`
}

// apiError is one bridge-reported error inside an envelope.
type apiError struct {
	Description string `json:"description"`
}
