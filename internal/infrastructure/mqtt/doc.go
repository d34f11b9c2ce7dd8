// Package mqtt is Lumen Core's broker connection, wrapping
// paho.mqtt.golang.
//
// The hub mirrors the light registry onto the broker: every light gets
// a retained state topic and a command topic (see Topics), so
// dashboards and automations can observe and drive lights without the
// REST API. The client arms an LWT on lumen/system/status and retains
// online/offline announcements there, replays subscriptions after a
// reconnect, and recovers from panicking handlers.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.Subscribe(mqtt.Topics{}.AllLightCommands(), 1, bridge.OnCommand)
//	client.PublishRetained(mqtt.Topics{}.LightState(id), payload)
//
// Enable TLS (cfg.Broker.TLS) outside of local development; payloads
// are plaintext beyond the transport.
package mqtt
