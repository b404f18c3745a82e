// Package mqtt provides MQTT client connectivity for Huelink Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//
// # Architecture
//
// Huelink republishes mirrored resource state onto MQTT and accepts
// commands back over it, so automation systems can drive lighting
// without speaking the bridge's API:
//
//	Lighting Bridge ↔ Huelink Core ↔ MQTT Broker ↔ Automations
//
// State goes out retained on huelink/state/{kind}/{id}; commands come
// in on huelink/command/{kind}/{id}.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        // route into the registry
//	        return nil
//	    })
package mqtt
