package tuya

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultRequestTimeout bounds a single cloud call.
const defaultRequestTimeout = 15 * time.Second

// Device is one bulb as reported by the cloud discovery endpoint.
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// API is the subset of the Tuya cloud used by the capability adapter.
// Declared as an interface so adapter tests run without the cloud.
type API interface {
	SetPower(ctx context.Context, deviceID string, on bool) error
	SetBrightness(ctx context.Context, deviceID string, level uint8) error
	SetColor(ctx context.Context, deviceID string, hue float64, saturation float64, brightness uint8) error
}

// Client talks to the Tuya "home assistant" compatibility cloud API.
//
// Thread Safety: all methods are safe for concurrent use once the access
// token is set (via Login or SetAccessToken).
type Client struct {
	baseURL     string
	region      string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a cloud client for the given base URL and region
// (eu, us, cn).
func NewClient(baseURL, region string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		region:  region,
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

// SetAccessToken installs a previously cached token, skipping Login.
func (c *Client) SetAccessToken(token string) {
	c.accessToken = token
}

// AccessToken returns the current token for caching.
func (c *Client) AccessToken() string {
	return c.accessToken
}

// Login exchanges account credentials for an access token.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{
		"userName":    {username},
		"password":    {password},
		"countryCode": {"44"},
		"bizType":     {"smart_life"},
		"from":        {"tuya"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/homeassistant/auth.do", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	var body struct {
		AccessToken string `json:"access_token"`
		ErrorMsg    string `json:"errorMsg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrAuthFailed, err)
	}
	if body.AccessToken == "" {
		return fmt.Errorf("%w: %s", ErrAuthFailed, body.ErrorMsg)
	}
	c.accessToken = body.AccessToken
	return nil
}

// skillRequest is the envelope of the /homeassistant/skill endpoint.
type skillRequest struct {
	Header  skillHeader `json:"header"`
	Payload any         `json:"payload"`
}

type skillHeader struct {
	Name           string `json:"name"`
	Namespace      string `json:"namespace"`
	PayloadVersion int    `json:"payloadVersion"`
}

type skillResponse struct {
	Header struct {
		Code string `json:"code"`
	} `json:"header"`
	Payload json.RawMessage `json:"payload"`
}

// Scan discovers the devices registered to the account.
func (c *Client) Scan(ctx context.Context) ([]Device, error) {
	raw, err := c.skill(ctx, "Discovery", "discovery", map[string]any{
		"accessToken": c.accessToken,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Devices []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			DevType string `json:"dev_type"`
		} `json:"devices"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode devices: %w", ErrRequestFailed, err)
	}

	devices := make([]Device, 0, len(payload.Devices))
	for _, d := range payload.Devices {
		if d.DevType != "" && d.DevType != "light" {
			continue
		}
		devices = append(devices, Device{ID: d.ID, Name: d.Name})
	}
	return devices, nil
}

// SetPower turns a bulb on or off.
func (c *Client) SetPower(ctx context.Context, deviceID string, on bool) error {
	value := 0
	if on {
		value = 1
	}
	return c.control(ctx, "turnOnOff", deviceID, value)
}

// SetBrightness sets a bulb's brightness (0-255, the cloud's raw range).
func (c *Client) SetBrightness(ctx context.Context, deviceID string, level uint8) error {
	return c.control(ctx, "brightnessSet", deviceID, int(level))
}

// SetColor sets a bulb's colour in the cloud's HSB model: hue in degrees,
// saturation 0-1, brightness 0-255.
func (c *Client) SetColor(ctx context.Context, deviceID string, hue float64, saturation float64, brightness uint8) error {
	_, err := c.skill(ctx, "colorSet", "control", map[string]any{
		"accessToken": c.accessToken,
		"devId":       deviceID,
		"color": map[string]any{
			"hue":        hue,
			"saturation": saturation,
			"brightness": int(brightness),
		},
	})
	return err
}

// control issues a single-value control command.
func (c *Client) control(ctx context.Context, name, deviceID string, value int) error {
	_, err := c.skill(ctx, name, "control", map[string]any{
		"accessToken": c.accessToken,
		"devId":       deviceID,
		"value":       value,
	})
	return err
}

// skill posts one request to the skill endpoint and checks the result code.
func (c *Client) skill(ctx context.Context, name, namespace string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(skillRequest{
		Header:  skillHeader{Name: name, Namespace: namespace, PayloadVersion: 1},
		Payload: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/homeassistant/skill", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrRequestFailed, err)
	}

	var sr skillResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrRequestFailed, err)
	}
	if sr.Header.Code != "SUCCESS" {
		return nil, fmt.Errorf("%w: %s returned %q", ErrRequestFailed, name, sr.Header.Code)
	}
	return sr.Payload, nil
}
