package out

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	detectorrpc "nadi/internal/modules/detect/adapter/out/rpc"
	"nadi/internal/modules/detect/domain"
	detectout "nadi/internal/modules/detect/port/out"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 2 * time.Second
)

// GRPCDetector hosts a detector plugin process over go-plugin. Unlike a
// one-off command host, the process stays alive between samples: Sample is
// called once per second and respawning the plugin each time would cost more
// than the sample itself. A failed call kills the process so the next call
// reconnects fresh.
type GRPCDetector struct {
	binary string

	mu     sync.Mutex
	plugin *plugin.Client
	client detectorrpc.DetectorClient
}

func NewGRPCDetector(binary string) detectout.Detector {
	return &GRPCDetector{binary: binary}
}

func (d *GRPCDetector) Sample(ctx context.Context) (domain.Signal, error) {
	client, err := d.ensureClient()
	if err != nil {
		return domain.Signal{}, err
	}
	callCtx, cancel := d.callContext(ctx, defaultCallTimeout)
	defer cancel()
	response, err := client.Sample(callCtx)
	if err != nil {
		d.Close()
		return domain.Signal{}, fmt.Errorf("sample detector: %w", err)
	}
	return domain.Signal{
		FaceVisible:      response.FaceVisible,
		PostureDeviation: response.PostureDeviation,
		HeadDeviation:    response.HeadDeviation,
		EyesOpen:         response.EyesOpen,
	}, nil
}

func (d *GRPCDetector) Check(ctx context.Context) (domain.DetectorInfo, error) {
	client, err := d.ensureClient()
	if err != nil {
		return domain.DetectorInfo{}, err
	}
	callCtx, cancel := d.callContext(ctx, defaultCallTimeout)
	defer cancel()
	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		d.Close()
		return domain.DetectorInfo{}, fmt.Errorf("get metadata: %w", err)
	}
	return domain.DetectorInfo{Name: meta.Name, Version: meta.Version, Capabilities: meta.Capabilities}, nil
}

// Close kills the plugin process. The detector stays usable; the next call
// starts a fresh process.
func (d *GRPCDetector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.plugin != nil {
		d.plugin.Kill()
		d.plugin = nil
		d.client = nil
	}
}

func (d *GRPCDetector) ensureClient() (detectorrpc.DetectorClient, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.client != nil {
		return d.client, nil
	}
	if d.binary == "" {
		return nil, fmt.Errorf("no detector binary configured")
	}
	pluginClient := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  detectorrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          detectorrpc.PluginMap(nil),
		Cmd:              exec.Command(d.binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})
	rpcClient, err := pluginClient.Client()
	if err != nil {
		pluginClient.Kill()
		return nil, fmt.Errorf("start detector plugin: %w", err)
	}
	raw, err := rpcClient.Dispense(detectorrpc.PluginMapKey)
	if err != nil {
		pluginClient.Kill()
		return nil, fmt.Errorf("dispense detector: %w", err)
	}
	typed, ok := raw.(detectorrpc.DetectorClient)
	if !ok {
		pluginClient.Kill()
		return nil, fmt.Errorf("detector rpc client type mismatch")
	}
	d.plugin = pluginClient
	d.client = typed
	return typed, nil
}

func (d *GRPCDetector) callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
