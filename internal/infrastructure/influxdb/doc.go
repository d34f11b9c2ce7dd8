// Package influxdb records light state history, wrapping
// influxdb-client-go v2.
//
// Every dispatched mutation lands as one point in the light_state
// measurement, batched and written asynchronously so recording never
// blocks a command. Batch sizes and flush interval come from the
// influxdb section of config.yaml; batch failures reach the owner via
// SetOnError.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteLightState("tuya-abc123", "Kitchen Spots", st)
package influxdb
