package sdk

import (
	"context"
	"errors"
	"math"
	"strconv"
)

// Default gesture durations in milliseconds, matching the CLI's own.
const (
	defaultLongPressMS = 1500
	defaultSwipeMS     = 500
)

// Target selects an on-screen element for gesture subcommands, either by
// natural-language label or by explicit coordinates. The two forms are
// mutually exclusive by construction; the zero Target is invalid.
type Target struct {
	kind  targetKind
	label string
	x, y  int
}

type targetKind int

const (
	targetNone targetKind = iota
	targetByLabel
	targetByCoords
)

// TargetLabel selects an element by descriptive label.
func TargetLabel(label string) Target {
	return Target{kind: targetByLabel, label: label}
}

// TargetAt selects a point by x/y screen coordinates.
func TargetAt(x, y int) Target {
	return Target{kind: targetByCoords, x: x, y: y}
}

// args renders the selector flags.
func (t Target) args() ([]string, error) {
	switch t.kind {
	case targetByLabel:
		if t.label == "" {
			return nil, errors.New("target label must not be empty")
		}
		return []string{"--target", t.label}, nil
	case targetByCoords:
		return []string{"--x", strconv.Itoa(t.x), "--y", strconv.Itoa(t.y)}, nil
	default:
		return nil, errors.New("provide a target label or x/y coordinates")
	}
}

// StartOptions configures a new device session.
type StartOptions struct {
	// Platform is required: "ios" or "android".
	Platform string
	// TimeoutSeconds bounds session startup; zero uses the CLI default.
	TimeoutSeconds int
	// OpenViewer opens the interactive device viewer.
	OpenViewer bool

	// App selection, all optional.
	AppID          string
	BuildVersionID string
	AppURL         string
	AppLink        string
}

func (o StartOptions) args() ([]string, error) {
	if o.Platform == "" {
		return nil, errors.New("start session: platform is required")
	}

	args := []string{"device", "start", "--platform", o.Platform}
	if o.TimeoutSeconds > 0 {
		args = append(args, "--timeout", strconv.Itoa(o.TimeoutSeconds))
	}
	if o.OpenViewer {
		args = append(args, "--open")
	}
	if o.AppID != "" {
		args = append(args, "--app-id", o.AppID)
	}
	if o.BuildVersionID != "" {
		args = append(args, "--build-version-id", o.BuildVersionID)
	}
	if o.AppURL != "" {
		args = append(args, "--app-url", o.AppURL)
	}
	if o.AppLink != "" {
		args = append(args, "--app-link", o.AppLink)
	}

	return args, nil
}

// DeviceClient wraps the `revyl device` subcommands. It tracks the current
// session index as explicit state on the client value; an explicit index
// passed to a call always wins over the tracked one.
type DeviceClient struct {
	runner  *Runner
	session *int
}

// NewDeviceClient returns a client with no tracked session.
func NewDeviceClient(runner *Runner) *DeviceClient {
	return &DeviceClient{runner: runner}
}

// StartDevice starts a session and returns a client tracking it.
func StartDevice(ctx context.Context, runner *Runner, opts StartOptions) (*DeviceClient, error) {
	client := NewDeviceClient(runner)
	if _, err := client.StartSession(ctx, opts); err != nil {
		return nil, err
	}
	return client, nil
}

// SessionIndex returns the tracked session index, if any.
func (c *DeviceClient) SessionIndex() (int, bool) {
	if c.session == nil {
		return 0, false
	}
	return *c.session, true
}

// Close stops the tracked session best-effort. Command failures are
// swallowed; there is nothing actionable for a caller tearing down.
func (c *DeviceClient) Close() error {
	if c.session == nil {
		return nil
	}

	_, err := c.StopSession(context.Background())
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return nil
	}
	return err
}

// StartSession starts a device session. A result object carrying an
// integer "index" updates the tracked session index.
func (c *DeviceClient) StartSession(ctx context.Context, opts StartOptions) (map[string]interface{}, error) {
	args, err := opts.args()
	if err != nil {
		return nil, err
	}

	result, err := c.runner.RunJSON(ctx, args...)
	if err != nil {
		return nil, err
	}

	obj := asObject(result)
	if idx, ok := intField(obj, "index"); ok {
		c.session = &idx
	}
	return obj, nil
}

// StopSession stops a session (the tracked one unless an explicit index is
// given) and clears the tracked index when it was the one stopped.
func (c *DeviceClient) StopSession(ctx context.Context, session ...int) (map[string]interface{}, error) {
	args := append([]string{"device", "stop"}, c.sessionArgs(session)...)

	result, err := c.runner.RunJSON(ctx, args...)
	if err != nil {
		return nil, err
	}

	if c.session != nil && (len(session) == 0 || session[0] == *c.session) {
		c.session = nil
	}
	return asObject(result), nil
}

// StopAll stops every session and clears the tracked index.
func (c *DeviceClient) StopAll(ctx context.Context) (map[string]interface{}, error) {
	c.session = nil

	result, err := c.runner.RunJSON(ctx, "device", "stop", "--all")
	if err != nil {
		return nil, err
	}
	return asObject(result), nil
}

// ListSessions returns the active sessions.
func (c *DeviceClient) ListSessions(ctx context.Context) ([]map[string]interface{}, error) {
	result, err := c.runner.RunJSON(ctx, "device", "list")
	if err != nil {
		return nil, err
	}

	items, _ := result.([]interface{})
	sessions := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			sessions = append(sessions, obj)
		}
	}
	return sessions, nil
}

// UseSession makes the given session the tracked default.
func (c *DeviceClient) UseSession(ctx context.Context, index int) (string, error) {
	output, err := c.runner.Run(ctx, "device", "use", strconv.Itoa(index))
	if err != nil {
		return "", err
	}

	c.session = &index
	return output, nil
}

// Info returns details about a session.
func (c *DeviceClient) Info(ctx context.Context, session ...int) (map[string]interface{}, error) {
	args := append([]string{"device", "info"}, c.sessionArgs(session)...)
	return c.runObject(ctx, args)
}

// Doctor runs connection diagnostics and returns the human-readable report.
func (c *DeviceClient) Doctor(ctx context.Context, session ...int) (string, error) {
	args := append([]string{"device", "doctor"}, c.sessionArgs(session)...)
	return c.runner.Run(ctx, args...)
}

// Screenshot captures the device screen; out optionally names the output
// file.
func (c *DeviceClient) Screenshot(ctx context.Context, out string, session ...int) (map[string]interface{}, error) {
	args := append([]string{"device", "screenshot"}, c.sessionArgs(session)...)
	if out != "" {
		args = append(args, "--out", out)
	}
	return c.runObject(ctx, args)
}

// Tap taps the target.
func (c *DeviceClient) Tap(ctx context.Context, target Target, session ...int) (map[string]interface{}, error) {
	return c.gesture(ctx, "tap", target, nil, session)
}

// DoubleTap double-taps the target.
func (c *DeviceClient) DoubleTap(ctx context.Context, target Target, session ...int) (map[string]interface{}, error) {
	return c.gesture(ctx, "double-tap", target, nil, session)
}

// LongPress presses and holds the target. durationMS <= 0 uses the default.
func (c *DeviceClient) LongPress(ctx context.Context, target Target, durationMS int, session ...int) (map[string]interface{}, error) {
	if durationMS <= 0 {
		durationMS = defaultLongPressMS
	}
	extra := []string{"--duration", strconv.Itoa(durationMS)}
	return c.gesture(ctx, "long-press", target, extra, session)
}

// TypeText types text into the target field. clearFirst is always rendered
// explicitly so the CLI default cannot drift underneath callers.
func (c *DeviceClient) TypeText(ctx context.Context, text string, target Target, clearFirst bool, session ...int) (map[string]interface{}, error) {
	extra := []string{"--text", text, "--clear-first=" + strconv.FormatBool(clearFirst)}
	return c.gesture(ctx, "type", target, extra, session)
}

// Swipe swipes from the target in a direction. durationMS <= 0 uses the
// default.
func (c *DeviceClient) Swipe(ctx context.Context, direction string, target Target, durationMS int, session ...int) (map[string]interface{}, error) {
	if durationMS <= 0 {
		durationMS = defaultSwipeMS
	}
	extra := []string{"--direction", direction, "--duration", strconv.Itoa(durationMS)}
	return c.gesture(ctx, "swipe", target, extra, session)
}

// Drag performs a drag between two coordinate pairs.
func (c *DeviceClient) Drag(ctx context.Context, startX, startY, endX, endY int, session ...int) (map[string]interface{}, error) {
	args := []string{
		"device", "drag",
		"--start-x", strconv.Itoa(startX),
		"--start-y", strconv.Itoa(startY),
		"--end-x", strconv.Itoa(endX),
		"--end-y", strconv.Itoa(endY),
	}
	args = append(args, c.sessionArgs(session)...)
	return c.runObject(ctx, args)
}

// InstallApp installs an app from a URL; bundleID is optional.
func (c *DeviceClient) InstallApp(ctx context.Context, appURL, bundleID string, session ...int) (map[string]interface{}, error) {
	args := []string{"device", "install", "--app-url", appURL}
	args = append(args, c.sessionArgs(session)...)
	if bundleID != "" {
		args = append(args, "--bundle-id", bundleID)
	}
	return c.runObject(ctx, args)
}

// LaunchApp launches an installed app by bundle identifier.
func (c *DeviceClient) LaunchApp(ctx context.Context, bundleID string, session ...int) (map[string]interface{}, error) {
	args := []string{"device", "launch", "--bundle-id", bundleID}
	args = append(args, c.sessionArgs(session)...)
	return c.runObject(ctx, args)
}

// gesture builds and runs a target-addressed subcommand.
func (c *DeviceClient) gesture(ctx context.Context, name string, target Target, extra []string, session []int) (map[string]interface{}, error) {
	targetArgs, err := target.args()
	if err != nil {
		return nil, err
	}

	args := append([]string{"device", name}, targetArgs...)
	args = append(args, extra...)
	args = append(args, c.sessionArgs(session)...)
	return c.runObject(ctx, args)
}

func (c *DeviceClient) runObject(ctx context.Context, args []string) (map[string]interface{}, error) {
	result, err := c.runner.RunJSON(ctx, args...)
	if err != nil {
		return nil, err
	}
	return asObject(result), nil
}

// sessionArgs renders the session selector: an explicit index wins, then
// the tracked one, then nothing.
func (c *DeviceClient) sessionArgs(session []int) []string {
	if len(session) > 0 {
		return []string{"-s", strconv.Itoa(session[0])}
	}
	if c.session != nil {
		return []string{"-s", strconv.Itoa(*c.session)}
	}
	return nil
}

// asObject coerces a decoded JSON value to an object, yielding an empty
// object for any other shape.
func asObject(value interface{}) map[string]interface{} {
	if obj, ok := value.(map[string]interface{}); ok {
		return obj
	}
	return map[string]interface{}{}
}

// intField extracts an integer-valued field from a decoded JSON object.
// encoding/json decodes numbers as float64; only integral values count.
func intField(obj map[string]interface{}, key string) (int, bool) {
	raw, ok := obj[key]
	if !ok {
		return 0, false
	}
	num, ok := raw.(float64)
	if !ok || num != math.Trunc(num) {
		return 0, false
	}
	return int(num), true
}
