// Package mqttlight exposes the light registry over MQTT.
//
// The bridge mirrors every cached state mutation to a retained state
// topic and accepts commands on a per-light command topic, so dashboards
// and automations can observe and drive lights without the REST API.
//
// # Topics
//
//	lumen/light/{id}/state  — retained JSON state, published on every mutation
//	lumen/light/{id}/set    — inbound commands, JSON
//
// # Command payload
//
// A command sets any combination of power, brightness, and colour.
// Fields are applied in that order; absent fields are left untouched:
//
//	{"power": "on"}
//	{"brightness": 128}
//	{"color": {"mode": "rgb", "r": 255, "g": 64, "b": 0}}
//	{"power": "on", "brightness": 255, "color": {"mode": "white", "kelvin": 2700}}
//
// # Lifecycle
//
// Wire the bridge into the registry before Start so no mutation is
// missed:
//
//	bridge := mqttlight.NewBridge(mqttlight.BridgeOptions{
//	    MQTTClient: mqttClient,
//	    Lights:     registry,
//	    Logger:     log,
//	})
//	registry.AddStateListener(bridge.OnStateChange)
//	if err := bridge.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer bridge.Stop()
package mqttlight
