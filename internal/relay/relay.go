package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nerrad567/huelink-core/internal/infrastructure/logging"
	"github.com/nerrad567/huelink-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/huelink-core/internal/resource"
)

// CommandIssuer is the registry surface the relay drives for incoming
// commands.
type CommandIssuer interface {
	IssueCommand(ctx context.Context, id string, cmd resource.Command) error
}

// Relay bridges the mirrored resource graph onto MQTT.
//
// Property changes go out retained on huelink/state/{kind}/{id}, so a
// new subscriber immediately sees current state. Commands come in on
// huelink/command/{kind}/{id} and are routed into the registry's
// command path; outcomes are observed the same way as any other state
// change, via the event stream.
//
// Thread Safety:
//   - PublishChange is called from the registry's change sink on the
//     single writer goroutine.
//   - Incoming command handlers run on paho goroutines; IssueCommand
//     is safe to call from them.
type Relay struct {
	client *mqtt.Client
	issuer CommandIssuer
	qos    byte
	log    *logging.Logger
	topics mqtt.Topics
}

// statePayload is the JSON shape published on state topics.
type statePayload struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Key       string `json:"key"`
	Value     any    `json:"value"`
	Timestamp string `json:"timestamp"`
}

// New creates a relay.
//
// Parameters:
//   - client: Connected MQTT client
//   - issuer: Command target (the registry)
//   - qos: QoS level for state publishes
//   - log: Logger
func New(client *mqtt.Client, issuer CommandIssuer, qos byte, log *logging.Logger) *Relay {
	return &Relay{
		client: client,
		issuer: issuer,
		qos:    qos,
		log:    log.WithComponent("relay"),
	}
}

// Start subscribes to the command intake topics.
//
// Returns:
//   - error: If the subscription fails
func (r *Relay) Start() error {
	return r.client.Subscribe(r.topics.AllCommands(), r.qos, r.handleCommand)
}

// PublishChange republishes one property change onto its state topic.
// Publish failures are logged, never propagated: MQTT is an outbound
// mirror and must not stall the delta pipeline.
func (r *Relay) PublishChange(ev resource.ChangeEvent) {
	payload, err := json.Marshal(statePayload{
		ID:        ev.ID,
		Kind:      string(ev.Kind),
		Name:      ev.Name,
		Key:       ev.Key,
		Value:     ev.Value,
		Timestamp: ev.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		r.log.Error("encoding state payload", "id", ev.ID, "key", ev.Key, "error", err)
		return
	}

	topic := r.topics.ResourceState(string(ev.Kind), ev.ID)
	if err := r.client.PublishRetained(topic, payload); err != nil {
		r.log.Warn("publishing state", "topic", topic, "error", err)
	}
}

// AnnounceReady publishes the one-shot ready message after the first
// successful resync.
func (r *Relay) AnnounceReady(resourceCount int) {
	payload := fmt.Sprintf(`{"status":"ready","resources":%d}`, resourceCount)
	if err := r.client.Publish(r.topics.SystemReady(), []byte(payload), r.qos, false); err != nil {
		r.log.Warn("publishing ready announcement", "error", err)
	}
}

// handleCommand decodes one command message and routes it into the
// registry. Malformed messages and unknown targets are logged and
// dropped; the relay never replies on MQTT.
func (r *Relay) handleCommand(topic string, payload []byte) error {
	id, ok := resourceIDFromTopic(topic)
	if !ok {
		return fmt.Errorf("malformed command topic %q", topic)
	}

	cmd, err := ParseCommand(payload)
	if err != nil {
		return fmt.Errorf("parsing command on %q: %w", topic, err)
	}

	if err := r.issuer.IssueCommand(context.Background(), id, cmd); err != nil {
		return fmt.Errorf("issuing command %q to %s: %w", cmd.Name, id, err)
	}

	r.log.Debug("command relayed", "id", id, "command", cmd.Name)
	return nil
}

// resourceIDFromTopic extracts the resource id from a command topic
// (huelink/command/{kind}/{id}).
func resourceIDFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[3] == "" {
		return "", false
	}
	return parts[3], true
}
