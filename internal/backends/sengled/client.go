package sengled

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// defaultRequestTimeout bounds a single cloud call.
const defaultRequestTimeout = 15 * time.Second

// Device is one bulb as reported by the cloud.
type Device struct {
	UUID string `json:"deviceUuid"`
	Name string `json:"deviceName"`
}

// API is the subset of the Sengled cloud used by the capability adapter.
type API interface {
	SetPower(ctx context.Context, uuid string, on bool) error
	SetBrightness(ctx context.Context, uuid string, level uint8) error
	SetColorRGB(ctx context.Context, uuid string, r, g, b uint8) error
	SetColorTemperature(ctx context.Context, uuid string, kelvin uint32) error
}

// Client talks to the Sengled element cloud API. A session id obtained
// at login authenticates subsequent calls.
//
// Thread Safety: all methods are safe for concurrent use after Login.
type Client struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
}

// NewClient creates a cloud client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

// Login exchanges account credentials for a session id.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp struct {
		SessionID string `json:"jsessionId"`
		Message   string `json:"info"`
	}
	err := c.post(ctx, "/zigbee/customer/login.json", map[string]string{
		"user":    username,
		"pwd":     password,
		"os_type": "android",
		"uuid":    "lumen",
	}, &resp)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	if resp.SessionID == "" {
		return fmt.Errorf("%w: %s", ErrAuthFailed, resp.Message)
	}
	c.sessionID = resp.SessionID
	return nil
}

// Scan lists the bulbs registered to the account.
func (c *Client) Scan(ctx context.Context) ([]Device, error) {
	var resp struct {
		DeviceInfos []struct {
			LampInfos []Device `json:"lampInfos"`
		} `json:"deviceInfos"`
	}
	if err := c.post(ctx, "/zigbee/device/getDeviceDetails.json", map[string]string{}, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	var devices []Device
	for _, hub := range resp.DeviceInfos {
		devices = append(devices, hub.LampInfos...)
	}
	return devices, nil
}

// SetPower turns a bulb on or off.
func (c *Client) SetPower(ctx context.Context, uuid string, on bool) error {
	value := "0"
	if on {
		value = "1"
	}
	return c.control(ctx, "/zigbee/device/deviceSetOnOff.json", uuid, "onoff", value)
}

// SetBrightness sets a bulb's brightness (0-255, the cloud's raw range).
func (c *Client) SetBrightness(ctx context.Context, uuid string, level uint8) error {
	return c.control(ctx, "/zigbee/device/deviceSetBrightness.json", uuid, "brightness", fmt.Sprint(level))
}

// SetColorRGB sets a bulb's colour as an RGB triple.
func (c *Client) SetColorRGB(ctx context.Context, uuid string, r, g, b uint8) error {
	value := fmt.Sprintf("%d:%d:%d", r, g, b)
	return c.control(ctx, "/zigbee/device/deviceSetGroup.json", uuid, "color", value)
}

// SetColorTemperature sets a bulb's white temperature in Kelvin.
func (c *Client) SetColorTemperature(ctx context.Context, uuid string, kelvin uint32) error {
	return c.control(ctx, "/zigbee/device/deviceSetColorTemperature.json", uuid, "colorTemperature", fmt.Sprint(kelvin))
}

// control posts one attribute change for one device.
func (c *Client) control(ctx context.Context, path, uuid, attribute, value string) error {
	var resp struct {
		Ret     int    `json:"ret"`
		Message string `json:"msg"`
	}
	err := c.post(ctx, path, map[string]string{
		"deviceUuid": uuid,
		attribute:    value,
	}, &resp)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if resp.Ret != 0 {
		return fmt.Errorf("%w: %s returned %d: %s", ErrRequestFailed, path, resp.Ret, resp.Message)
	}
	return nil
}

// post sends one JSON request with the session cookie and decodes the
// response into out.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "JSESSIONID", Value: c.sessionID})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
