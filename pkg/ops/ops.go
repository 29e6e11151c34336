// Package ops is the in-process operation dispatcher corenoded exposes
// locally: one named handler per module/blueprint/script operation, taking
// and returning json.RawMessage so a future transport can sit in front of it
// without this package knowing anything about wire formats.
package ops

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cuemby/corenode/pkg/events"
	"github.com/cuemby/corenode/pkg/log"
	"github.com/cuemby/corenode/pkg/metrics"
	"github.com/cuemby/corenode/pkg/modules"
	"github.com/cuemby/corenode/pkg/scripts"
)

// Handler processes one named operation's raw JSON arguments and returns raw
// JSON results, or an error.
type Handler func(args json.RawMessage) (json.RawMessage, error)

// Dispatcher registers and routes named operations against a module
// repository and a script API: one handler per named operation, the same
// shape as a typical RPC method table, condensed to a single in-process map.
type Dispatcher struct {
	repository *modules.Repository
	scripts    *scripts.API
	broker     *events.Broker
	handlers   map[string]Handler
}

// New builds a Dispatcher and registers every module, blueprint, and script
// operation. broker may be nil.
func New(repository *modules.Repository, scriptAPI *scripts.API, broker *events.Broker) *Dispatcher {
	d := &Dispatcher{
		repository: repository,
		scripts:    scriptAPI,
		broker:     broker,
	}
	d.handlers = map[string]Handler{
		"add_module":        d.handleAddModule,
		"add_blueprint":     d.handleAddBlueprint,
		"list_modules":      d.handleListModules,
		"get_interface":     d.handleGetInterface,
		"get_blueprints":    d.handleGetBlueprints,
		"resolve_blueprint": d.handleResolveBlueprint,
		"add_script":        d.handleAddScript,
		"remove_script":     d.handleRemoveScript,
	}
	return d
}

// Dispatch looks up operation and runs it, timing and counting module
// operations through pkg/metrics. Unknown operations return an error rather
// than panicking.
func (d *Dispatcher) Dispatch(operation string, args json.RawMessage) (json.RawMessage, error) {
	handler, ok := d.handlers[operation]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", operation)
	}

	timer := metrics.NewTimer()
	result, err := handler(args)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		log.WithComponent("ops").Warn().Str("operation", operation).Err(err).Msg("operation failed")
	}
	metrics.ModuleOperationsTotal.WithLabelValues(operation, outcome).Inc()
	timer.ObserveDurationVec(metrics.ModuleOperationDuration, operation)
	return result, err
}

func (d *Dispatcher) publish(t events.EventType, message string) {
	if d.broker == nil {
		return
	}
	d.broker.Publish(&events.Event{Type: t, Message: message, Timestamp: time.Now()})
}

type addModuleArgs struct {
	Module string               `json:"module"`
	Config modules.ModuleConfig `json:"config"`
}

func (d *Dispatcher) handleAddModule(args json.RawMessage) (json.RawMessage, error) {
	var req addModuleArgs
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("decode add_module args: %w", err)
	}
	hexHash, err := d.repository.AddModule(req.Module, req.Config)
	if err != nil {
		return nil, err
	}
	d.publish(events.EventModuleAdded, hexHash)
	return json.Marshal(hexHash)
}

func (d *Dispatcher) handleAddBlueprint(args json.RawMessage) (json.RawMessage, error) {
	var req modules.AddBlueprintRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("decode add_blueprint args: %w", err)
	}
	id, err := d.repository.AddBlueprint(req)
	if err != nil {
		return nil, err
	}
	d.publish(events.EventBlueprintAdded, id)
	return json.Marshal(id)
}

func (d *Dispatcher) handleListModules(json.RawMessage) (json.RawMessage, error) {
	return json.Marshal(d.repository.ListModules())
}

type getInterfaceArgs struct {
	Hash string `json:"hash"`
}

func (d *Dispatcher) handleGetInterface(args json.RawMessage) (json.RawMessage, error) {
	var req getInterfaceArgs
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("decode get_interface args: %w", err)
	}
	return d.repository.GetInterface(req.Hash)
}

func (d *Dispatcher) handleGetBlueprints(json.RawMessage) (json.RawMessage, error) {
	return json.Marshal(d.repository.GetBlueprints())
}

type resolveBlueprintArgs struct {
	ID string `json:"id"`
}

func (d *Dispatcher) handleResolveBlueprint(args json.RawMessage) (json.RawMessage, error) {
	var req resolveBlueprintArgs
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("decode resolve_blueprint args: %w", err)
	}
	descriptors, err := d.repository.ResolveBlueprint(req.ID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(descriptors)
}

type addScriptArgs struct {
	Src             string `json:"src"`
	IntervalSeconds *int64 `json:"interval_seconds,omitempty"`
}

func (d *Dispatcher) handleAddScript(args json.RawMessage) (json.RawMessage, error) {
	if d.scripts == nil {
		return nil, fmt.Errorf("script scheduler not configured")
	}
	var req addScriptArgs
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("decode add_script args: %w", err)
	}
	var interval *time.Duration
	if req.IntervalSeconds != nil {
		v := time.Duration(*req.IntervalSeconds) * time.Second
		interval = &v
	}
	id, err := d.scripts.AddScript(req.Src, interval)
	if err != nil {
		return nil, err
	}
	return json.Marshal(id)
}

type removeScriptArgs struct {
	UUID string `json:"uuid"`
}

func (d *Dispatcher) handleRemoveScript(args json.RawMessage) (json.RawMessage, error) {
	if d.scripts == nil {
		return nil, fmt.Errorf("script scheduler not configured")
	}
	var req removeScriptArgs
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("decode remove_script args: %w", err)
	}
	reply, err := d.scripts.RemoveScript(req.UUID)
	if err != nil {
		return nil, err
	}
	existed := <-reply
	return json.Marshal(existed)
}
