// Package tailscale is the unified management client. Given a logical
// operation it validates every caller-supplied argument, picks the CLI
// or API transport (explicit mode or automatic based on what is
// available), dispatches, and normalizes the result shape regardless
// of transport.
package tailscale

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"tailnetctl/internal/domain"
	"tailnetctl/internal/errors"
	"tailnetctl/internal/logging"
	"tailnetctl/internal/validate"
)

// Options configures the unified client. Runner and API are the
// constructed transports; a nil API means no control-plane credentials
// are configured.
type Options struct {
	Mode    domain.TransportMode
	Tailnet string
	Runner  domain.CommandRunner
	API     domain.APIRequester
	Logger  *logging.Logger
}

// Client dispatches logical operations over one of two transports.
// Mode is fixed for the client's lifetime.
type Client struct {
	mode    domain.TransportMode
	tailnet string
	runner  domain.CommandRunner
	api     domain.APIRequester
	logger  *logging.Logger
}

// New creates a unified client. Explicit CLI mode fails here when the
// local binary is not discoverable; explicit API mode fails here when
// no credentials are configured. AUTO defers the choice to each call.
func New(opts Options) (*Client, error) {
	mode := opts.Mode
	if mode == "" {
		mode = domain.ModeAuto
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	switch mode {
	case domain.ModeCLI:
		if opts.Runner == nil || !opts.Runner.Available() {
			return nil, errors.NewValidationError("mode", string(mode), "cli-available",
				"cli mode requires a locally installed tailscale binary")
		}
	case domain.ModeAPI:
		if opts.API == nil {
			return nil, errors.NewAuthenticationError("",
				"api mode requires a static API key or OAuth credentials", nil)
		}
	case domain.ModeAuto:
	default:
		return nil, errors.NewValidationError("mode", string(mode), "supported_values",
			"mode must be one of: cli, api, auto")
	}

	return &Client{
		mode:    mode,
		tailnet: opts.Tailnet,
		runner:  opts.Runner,
		api:     opts.API,
		logger:  logger,
	}, nil
}

// Mode returns the client's transport mode.
func (c *Client) Mode() domain.TransportMode {
	return c.mode
}

// resolveTransport picks the transport for one call. In AUTO mode the
// API is preferred when credentials are configured, with CLI fallback.
func (c *Client) resolveTransport() (domain.TransportMode, error) {
	switch c.mode {
	case domain.ModeCLI, domain.ModeAPI:
		return c.mode, nil
	default:
		if c.api != nil {
			return domain.ModeAPI, nil
		}
		if c.runner != nil && c.runner.Available() {
			return domain.ModeCLI, nil
		}
		return "", errors.NewValidationError("mode", string(c.mode), "transport-available",
			"no usable transport: neither API credentials nor a local tailscale binary are available")
	}
}

// requireCLI resolves the CLI transport for operations only the local
// binary can perform.
func (c *Client) requireCLI(operation string) error {
	if c.mode == domain.ModeAPI {
		return errors.NewValidationError("operation", operation, "cli-only",
			fmt.Sprintf("%s is only available through the local tailscale binary", operation))
	}
	if c.runner == nil || !c.runner.Available() {
		return errors.NewValidationError("operation", operation, "cli-available",
			fmt.Sprintf("%s requires a locally installed tailscale binary", operation))
	}
	return nil
}

// requireAPI resolves the API transport for operations only the
// control plane can perform.
func (c *Client) requireAPI(operation string) error {
	if c.mode == domain.ModeCLI {
		return errors.NewValidationError("operation", operation, "api-only",
			fmt.Sprintf("%s is only available through the control-plane API", operation))
	}
	if c.api == nil {
		return errors.NewAuthenticationError("",
			fmt.Sprintf("%s requires a static API key or OAuth credentials", operation), nil)
	}
	return nil
}

func (c *Client) operationLogger(operation string) *logging.Logger {
	return c.logger.WithOperation(operation, uuid.NewString())
}

// devicesResponse is the control plane's device-listing shape.
type devicesResponse struct {
	Devices []domain.Device `json:"devices"`
}

// cliStatus is the subset of `tailscale status --json` this client
// reads.
type cliStatus struct {
	Self *cliPeer            `json:"Self"`
	Peer map[string]*cliPeer `json:"Peer"`
}

type cliPeer struct {
	ID           string   `json:"ID"`
	HostName     string   `json:"HostName"`
	DNSName      string   `json:"DNSName"`
	OS           string   `json:"OS"`
	TailscaleIPs []string `json:"TailscaleIPs"`
	Online       bool     `json:"Online"`
	Tags         []string `json:"Tags"`
}

func (p *cliPeer) toDevice() domain.Device {
	return domain.Device{
		ID:        p.ID,
		Name:      strings.TrimSuffix(p.DNSName, "."),
		Hostname:  p.HostName,
		Addresses: p.TailscaleIPs,
		OS:        p.OS,
		Online:    p.Online,
		Tags:      p.Tags,
	}
}

// Status reports the tailnet's connectivity state.
func (c *Client) Status(ctx context.Context) (domain.Result, error) {
	transport, err := c.resolveTransport()
	if err != nil {
		return domain.Result{}, err
	}
	log := c.operationLogger("status").WithTransport(string(transport))

	if transport == domain.ModeCLI {
		out, err := c.runner.Execute(ctx, "status")
		if err != nil {
			return domain.Result{}, err
		}
		log.Debug("status retrieved")
		return domain.Result{Success: true, Message: strings.TrimSpace(out.Stdout)}, nil
	}

	devices, err := c.listDevicesAPI(ctx)
	if err != nil {
		return domain.Result{}, err
	}
	online := 0
	for _, device := range devices {
		if device.Online {
			online++
		}
	}
	log.Debug("status retrieved", "devices", len(devices))
	return domain.Result{
		Success: true,
		Message: fmt.Sprintf("tailnet %s: %d devices (%d online)", c.tailnet, len(devices), online),
	}, nil
}

// ListDevices returns the devices in the tailnet. The API reports the
// control plane's view; the CLI fallback reads the local daemon's
// status.
func (c *Client) ListDevices(ctx context.Context) ([]domain.Device, error) {
	transport, err := c.resolveTransport()
	if err != nil {
		return nil, err
	}
	log := c.operationLogger("list-devices").WithTransport(string(transport))

	if transport == domain.ModeAPI {
		devices, err := c.listDevicesAPI(ctx)
		if err != nil {
			return nil, err
		}
		log.Debug("devices listed", "count", len(devices))
		return devices, nil
	}

	out, err := c.runner.Execute(ctx, "status", "--json")
	if err != nil {
		return nil, err
	}

	var status cliStatus
	if err := json.Unmarshal([]byte(out.Stdout), &status); err != nil {
		return nil, errors.NewCLIExecutionError("tailscale status --json", 0,
			"unparseable status output: "+err.Error(), err)
	}

	devices := make([]domain.Device, 0, len(status.Peer)+1)
	if status.Self != nil {
		devices = append(devices, status.Self.toDevice())
	}
	for _, peer := range status.Peer {
		devices = append(devices, peer.toDevice())
	}
	log.Debug("devices listed", "count", len(devices))
	return devices, nil
}

func (c *Client) listDevicesAPI(ctx context.Context) ([]domain.Device, error) {
	raw, err := c.api.Request(ctx, "GET", c.tailnetPath("devices"), nil)
	if err != nil {
		return nil, err
	}
	var parsed devicesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, errors.NewAPIError(0, "GET", c.tailnetPath("devices"),
			"unparseable device list: "+err.Error())
	}
	return parsed.Devices, nil
}

// Ping probes connectivity to a target device. Pings originate from
// the local node, so this is a CLI-only operation.
func (c *Client) Ping(ctx context.Context, target string) (domain.Result, error) {
	if err := validate.Target(target); err != nil {
		return domain.Result{}, err
	}
	if err := c.requireCLI("ping"); err != nil {
		return domain.Result{}, err
	}
	log := c.operationLogger("ping").WithTransport(string(domain.ModeCLI))

	out, err := c.runner.Execute(ctx, "ping", "--c", "4", target)
	if err != nil {
		return domain.Result{}, err
	}
	log.Debug("ping completed", "target", target)
	return domain.Result{Success: true, Message: strings.TrimSpace(out.Stdout)}, nil
}

// Connect brings the local node up. Already being connected is a
// benign condition, not a failure.
func (c *Client) Connect(ctx context.Context) (domain.Result, error) {
	if err := c.requireCLI("connect"); err != nil {
		return domain.Result{}, err
	}
	log := c.operationLogger("connect").WithTransport(string(domain.ModeCLI))

	out, err := c.runner.Execute(ctx, "up")
	if err != nil {
		if benign, msg := benignCLICondition(err, "already"); benign {
			log.Debug("connect: already connected")
			return domain.Result{Success: true, Message: msg}, nil
		}
		return domain.Result{}, err
	}
	log.Info("connected to tailnet")
	return domain.Result{Success: true, Message: firstNonEmpty(strings.TrimSpace(out.Stdout), "connected")}, nil
}

// Disconnect brings the local node down. Already being disconnected is
// a benign condition, not a failure.
func (c *Client) Disconnect(ctx context.Context) (domain.Result, error) {
	if err := c.requireCLI("disconnect"); err != nil {
		return domain.Result{}, err
	}
	log := c.operationLogger("disconnect").WithTransport(string(domain.ModeCLI))

	out, err := c.runner.Execute(ctx, "down")
	if err != nil {
		if benign, msg := benignCLICondition(err, "already", "not running"); benign {
			log.Debug("disconnect: already down")
			return domain.Result{Success: true, Message: msg}, nil
		}
		return domain.Result{}, err
	}
	log.Info("disconnected from tailnet")
	return domain.Result{Success: true, Message: firstNonEmpty(strings.TrimSpace(out.Stdout), "disconnected")}, nil
}

// AdvertiseRoutes announces subnet routes from the local node. All
// routes are validated before any transport side effect; the argument
// value is built only from validated CIDRs.
func (c *Client) AdvertiseRoutes(ctx context.Context, routes []string) (domain.Result, error) {
	if err := validate.Routes(routes); err != nil {
		return domain.Result{}, err
	}
	if err := c.requireCLI("advertise-routes"); err != nil {
		return domain.Result{}, err
	}
	log := c.operationLogger("advertise-routes").WithTransport(string(domain.ModeCLI))

	_, err := c.runner.Execute(ctx, "set", "--advertise-routes="+strings.Join(routes, ","))
	if err != nil {
		return domain.Result{}, err
	}
	log.Info("routes advertised", "count", len(routes))
	return domain.Result{
		Success: true,
		Message: fmt.Sprintf("advertising %d route(s): %s", len(routes), strings.Join(routes, ", ")),
	}, nil
}

// DeviceRoutes returns the control plane's route state for a device.
func (c *Client) DeviceRoutes(ctx context.Context, deviceID string) (domain.DeviceRoutes, error) {
	if err := validate.DeviceID(deviceID); err != nil {
		return domain.DeviceRoutes{}, err
	}
	if err := c.requireAPI("device-routes"); err != nil {
		return domain.DeviceRoutes{}, err
	}

	raw, err := c.api.Request(ctx, "GET", c.devicePath(deviceID, "routes"), nil)
	if err != nil {
		return domain.DeviceRoutes{}, err
	}
	var routes domain.DeviceRoutes
	if err := json.Unmarshal(raw, &routes); err != nil {
		return domain.DeviceRoutes{}, errors.NewAPIError(0, "GET", c.devicePath(deviceID, "routes"),
			"unparseable route state: "+err.Error())
	}
	return routes, nil
}

// SetDeviceRoutes approves the set of enabled subnet routes for a
// device in the control plane.
func (c *Client) SetDeviceRoutes(ctx context.Context, deviceID string, routes []string) (domain.Result, error) {
	if err := validate.DeviceID(deviceID); err != nil {
		return domain.Result{}, err
	}
	if err := validate.Routes(routes); err != nil {
		return domain.Result{}, err
	}
	if err := c.requireAPI("set-device-routes"); err != nil {
		return domain.Result{}, err
	}
	log := c.operationLogger("set-device-routes").WithTransport(string(domain.ModeAPI))

	body := map[string][]string{"routes": routes}
	if _, err := c.api.Request(ctx, "POST", c.devicePath(deviceID, "routes"), body); err != nil {
		return domain.Result{}, err
	}
	log.Info("device routes updated", "device", deviceID, "count", len(routes))
	return domain.Result{
		Success: true,
		Message: fmt.Sprintf("enabled %d route(s) for device %s", len(routes), deviceID),
	}, nil
}

// AuthorizeDevice sets a device's authorization state in the control
// plane.
func (c *Client) AuthorizeDevice(ctx context.Context, deviceID string, authorized bool) (domain.Result, error) {
	if err := validate.DeviceID(deviceID); err != nil {
		return domain.Result{}, err
	}
	if err := c.requireAPI("authorize-device"); err != nil {
		return domain.Result{}, err
	}
	log := c.operationLogger("authorize-device").WithTransport(string(domain.ModeAPI))

	body := map[string]bool{"authorized": authorized}
	if _, err := c.api.Request(ctx, "POST", c.devicePath(deviceID, "authorized"), body); err != nil {
		return domain.Result{}, err
	}

	state := "authorized"
	if !authorized {
		state = "deauthorized"
	}
	log.Info("device authorization updated", "device", deviceID, "authorized", authorized)
	return domain.Result{Success: true, Message: fmt.Sprintf("device %s %s", deviceID, state)}, nil
}

// DeleteDevice removes a device from the tailnet.
func (c *Client) DeleteDevice(ctx context.Context, deviceID string) (domain.Result, error) {
	if err := validate.DeviceID(deviceID); err != nil {
		return domain.Result{}, err
	}
	if err := c.requireAPI("delete-device"); err != nil {
		return domain.Result{}, err
	}
	log := c.operationLogger("delete-device").WithTransport(string(domain.ModeAPI))

	if _, err := c.api.Request(ctx, "DELETE", "/api/v2/device/"+url.PathEscape(deviceID), nil); err != nil {
		return domain.Result{}, err
	}
	log.Info("device deleted", "device", deviceID)
	return domain.Result{Success: true, Message: fmt.Sprintf("device %s removed from tailnet", deviceID)}, nil
}

func (c *Client) tailnetPath(suffix string) string {
	return "/api/v2/tailnet/" + url.PathEscape(c.tailnet) + "/" + suffix
}

func (c *Client) devicePath(deviceID, suffix string) string {
	return "/api/v2/device/" + url.PathEscape(deviceID) + "/" + suffix
}

// benignCLICondition reports whether a CLI failure's stderr names a
// known harmless condition, returning the matched message.
func benignCLICondition(err error, markers ...string) (bool, string) {
	var cliErr *errors.CLIExecutionError
	if !goerrors.As(err, &cliErr) || cliErr.TimedOut {
		return false, ""
	}
	stderr := strings.ToLower(cliErr.Stderr)
	for _, marker := range markers {
		if strings.Contains(stderr, marker) {
			return true, strings.TrimSpace(cliErr.Stderr)
		}
	}
	return false, ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
