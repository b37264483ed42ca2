// Package scripthost implements the §4.10/§9 polyglot script host: a JS
// engine confined to a single dedicated goroutine, with stage-facing proxy
// callables that marshal calls across that boundary using pkg/value.
//
// Grounded on rogchap.com/v8go usage in other_examples/danprince-sietch
// (isolate + context + RunScript + JSON (de)serialization at the engine
// boundary).
package scripthost

import (
	"context"
	"encoding/json"
	"fmt"

	"rogchap.com/v8go"

	"vitrine/pkg/value"
)

// FunctionID names where a callback belongs, per spec.md §4.10:
// FeedFilter(i), LayoutFilter(name), etc.
type FunctionID struct {
	Kind  string // "feed_filter", "layout_filter", "layout_function", "layout_test", "markdown_render"
	Name  string // layout filter/function/test name, empty for feed filters
	Index int    // feed index, for feed_filter
}

func (id FunctionID) String() string {
	if id.Name != "" {
		return fmt.Sprintf("%s(%s)", id.Kind, id.Name)
	}
	return fmt.Sprintf("%s(%d)", id.Kind, id.Index)
}

type call struct {
	id    FunctionID
	args  []value.Value
	reply chan result
}

type result struct {
	value value.Value
	err   error
}

// Host owns one v8go.Isolate and one v8go.Context for the lifetime of a
// build. Every call into the engine happens on the goroutine running
// Host.Run; nothing else may touch the isolate (spec.md §5).
type Host struct {
	iso     *v8go.Isolate
	ctx     *v8go.Context
	exports *v8go.Object
	fns     map[FunctionID]*v8go.Function
	calls   chan call
}

// New creates a Host and evaluates `source` (a CommonJS-flavored config
// module: the script assigns to `module.exports`) inside a fresh isolate.
// It returns the Host plus the default export's JSON-serializable subset
// as a Value (function-valued properties are omitted from the Value tree;
// callers discover and Register them separately via Callables).
func New(source, filename string) (host *Host, config value.Value, err error) {
	iso := v8go.NewIsolate()
	ctx := v8go.NewContext(iso)

	wrapped := "(function(){ const module = {exports:{}}; const exports = module.exports;\n" +
		source +
		"\nglobalThis.__vitrine_exports = module.exports;\n" +
		"return JSON.stringify(module.exports, (k,v) => typeof v === 'function' ? undefined : v);\n})()"

	val, runErr := ctx.RunScript(wrapped, filename)
	if runErr != nil {
		return nil, value.Null(), fmt.Errorf("evaluating script config %q: %w", filename, runErr)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(val.String()), &raw); err != nil {
		return nil, value.Null(), fmt.Errorf("decoding script config %q: %w", filename, err)
	}

	exportsVal, runErr := ctx.RunScript("globalThis.__vitrine_exports", filename)
	if runErr != nil {
		return nil, value.Null(), fmt.Errorf("fetching script config exports %q: %w", filename, runErr)
	}
	exportsObj, objErr := exportsVal.AsObject()
	if objErr != nil {
		return nil, value.Null(), fmt.Errorf("script config %q must export an object: %w", filename, objErr)
	}

	host = &Host{
		iso:     iso,
		ctx:     ctx,
		exports: exportsObj,
		fns:     make(map[FunctionID]*v8go.Function),
		calls:   make(chan call),
	}

	return host, value.FromGo(raw), nil
}

// Callables walks the well-known callback locations from spec.md §4.10
// (layout_filters, layout_functions, layout_tests, feeds[N].filter,
// markdown_render) off the live exports object and registers whichever are
// present as function values, returning their FunctionIDs.
func (host *Host) Callables(feedCount int) ([]FunctionID, error) {
	var ids []FunctionID

	registerGroup := func(groupKey, kind string) error {
		groupVal, err := host.exports.Get(groupKey)
		if err != nil || groupVal.IsUndefined() || groupVal.IsNull() {
			return nil
		}
		group, err := groupVal.AsObject()
		if err != nil {
			return fmt.Errorf("script config: %q must be an object: %w", groupKey, err)
		}
		for _, name := range group.GetOwnPropertyNames() {
			fnVal, err := group.Get(name)
			if err != nil {
				return err
			}
			if !fnVal.IsFunction() {
				continue
			}
			fn, err := fnVal.AsFunction()
			if err != nil {
				return err
			}
			id := FunctionID{Kind: kind, Name: name}
			host.fns[id] = fn
			ids = append(ids, id)
		}
		return nil
	}

	if err := registerGroup("layout_filters", "layout_filter"); err != nil {
		return nil, err
	}
	if err := registerGroup("layout_functions", "layout_function"); err != nil {
		return nil, err
	}
	if err := registerGroup("layout_tests", "layout_test"); err != nil {
		return nil, err
	}

	if renderVal, err := host.exports.Get("markdown_render"); err == nil && renderVal.IsFunction() {
		fn, err := renderVal.AsFunction()
		if err != nil {
			return nil, err
		}
		id := FunctionID{Kind: "markdown_render"}
		host.fns[id] = fn
		ids = append(ids, id)
	}

	feedsVal, err := host.exports.Get("feeds")
	if err == nil && !feedsVal.IsUndefined() && !feedsVal.IsNull() {
		feedsObj, objErr := feedsVal.AsObject()
		if objErr != nil {
			return ids, nil
		}
		for i := 0; i < feedCount; i++ {
			entry, err := feedsObj.GetIdx(uint32(i))
			if err != nil {
				continue
			}
			entryObj, err := entry.AsObject()
			if err != nil {
				continue
			}
			filterVal, err := entryObj.Get("filter")
			if err != nil || !filterVal.IsFunction() {
				continue
			}
			fn, err := filterVal.AsFunction()
			if err != nil {
				return nil, err
			}
			id := FunctionID{Kind: "feed_filter", Index: i}
			host.fns[id] = fn
			ids = append(ids, id)
		}
	}

	return ids, nil
}

// Run is the host-thread loop from spec.md §4.10: read a message, look up
// the function, invoke it, serialize the result, push it on the reply
// channel. Every v8go call happens inside this loop's goroutine.
func (host *Host) Run(ctx context.Context) error {
	defer host.iso.Dispose()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-host.calls:
			if !ok {
				return nil
			}
			v, err := host.invoke(c.id, c.args)
			select {
			case c.reply <- result{value: v, err: err}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (host *Host) invoke(id FunctionID, args []value.Value) (value.Value, error) {
	fn, ok := host.fns[id]
	if !ok {
		return value.Null(), fmt.Errorf("scripthost: no callable registered for %s", id)
	}

	jsArgs := make([]v8go.Valuer, len(args))
	for i, a := range args {
		data, err := json.Marshal(a)
		if err != nil {
			return value.Null(), err
		}
		jv, err := v8go.JSONParse(host.ctx, string(data))
		if err != nil {
			return value.Null(), err
		}
		jsArgs[i] = jv
	}

	out, err := fn.Call(v8go.Undefined(host.iso), jsArgs...)
	if err != nil {
		return value.Null(), fmt.Errorf("scripthost: invoking %s: %w", id, err)
	}

	s, err := v8go.JSONStringify(host.ctx, out)
	if err != nil {
		return value.Null(), fmt.Errorf("scripthost: serializing result of %s: %w", id, err)
	}
	var v value.Value
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return value.Null(), err
	}
	return v, nil
}

// Proxy returns a stage-facing callable for `id`: invoking it pushes a
// message onto the host's call channel and blocks on a reply channel, per
// spec.md §9 ("this inverts 'callback calls stage' into 'stage requests
// callback'"). Safe to call concurrently from any number of pipeline
// workers; every actual invocation still happens serialized on Host.Run's
// goroutine.
func (host *Host) Proxy(id FunctionID) func(ctx context.Context, args ...value.Value) (value.Value, error) {
	return func(ctx context.Context, args ...value.Value) (value.Value, error) {
		reply := make(chan result, 1)
		select {
		case host.calls <- call{id: id, args: args, reply: reply}:
		case <-ctx.Done():
			return value.Null(), ctx.Err()
		}
		select {
		case r := <-reply:
			return r.value, r.err
		case <-ctx.Done():
			return value.Null(), ctx.Err()
		}
	}
}

// Close shuts down the call channel, letting Host.Run return on its next
// iteration once drained.
func (host *Host) Close() {
	close(host.calls)
}
