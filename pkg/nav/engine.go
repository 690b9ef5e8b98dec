package nav

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/vango-dev/fractals/internal/errors"
	"github.com/vango-dev/fractals/pkg/history"
	"github.com/vango-dev/fractals/pkg/routepath"
	"github.com/vango-dev/fractals/pkg/view"
)

// DefaultLoadTimeout bounds a single view load.
const DefaultLoadTimeout = 30 * time.Second

const tracerName = "github.com/vango-dev/fractals/pkg/nav"

// Option configures an Engine.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	metrics     *Metrics
	tracer      trace.Tracer
	loadTimeout time.Duration
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records navigation metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTracer sets the tracer used for navigation spans.
// Default: the global OpenTelemetry tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithLoadTimeout bounds each view load. Zero keeps the default.
func WithLoadTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.loadTimeout = d
		}
	}
}

// Engine matches locations to routes, loads views and drives a history.
type Engine struct {
	routes  []Route
	root    *routeNode
	byName  map[string]int
	history history.History

	logger      *slog.Logger
	metrics     *Metrics
	tracer      trace.Tracer
	loadTimeout time.Duration

	loads singleflight.Group

	mu        sync.Mutex
	views     map[int]*view.View
	current   *Navigation
	seq       uint64
	cancel    context.CancelFunc
	listeners map[int]MatchedFunc
	nextID    int
	closed    bool
}

// New creates an engine over routes and h. Routes are matched in order;
// when two routes claim the same path or name the first one wins.
func New(routes []Route, h history.History, opts ...Option) (*Engine, error) {
	if h == nil {
		return nil, errors.New("N006").WithDetail("nil history")
	}

	o := options{loadTimeout: DefaultLoadTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default().With("component", "nav")
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}

	e := &Engine{
		routes:      append([]Route(nil), routes...),
		root:        newRouteNode(""),
		byName:      make(map[string]int, len(routes)),
		history:     h,
		logger:      o.logger,
		metrics:     o.metrics,
		tracer:      o.tracer,
		loadTimeout: o.loadTimeout,
		views:       make(map[int]*view.View),
		listeners:   make(map[int]MatchedFunc),
	}

	for i := range e.routes {
		r := &e.routes[i]
		if r.Load == nil {
			return nil, errors.New("R004").WithDetailf("route %q", r.Path)
		}
		for _, p := range append([]string{r.Path}, r.Aliases...) {
			canon, err := routepath.Canonicalize(p)
			if err != nil {
				return nil, errors.New("R005").WithDetailf("path %q", p).Wrap(err)
			}
			if !e.root.insert(canon, i) {
				e.logger.Warn("route path shadowed by an earlier route",
					"path", p, "route", r.Name)
			}
		}
		if r.Name == "" {
			continue
		}
		if _, dup := e.byName[r.Name]; dup {
			e.logger.Warn("duplicate route name, first route wins",
				"name", r.Name, "path", r.Path)
			continue
		}
		e.byName[r.Name] = i
	}

	e.metrics.engineOpened()
	return e, nil
}

// History returns the engine's history.
func (e *Engine) History() history.History {
	return e.history
}

// Routes returns a copy of the engine's routes.
func (e *Engine) Routes() []Route {
	return append([]Route(nil), e.routes...)
}

// Resolve matches a target against the route table without navigating.
func (e *Engine) Resolve(to Target) (*Resolved, error) {
	var (
		idx int
		loc routepath.Location
		err error
	)

	switch {
	case to.Name != "":
		var ok bool
		idx, ok = e.byName[to.Name]
		if !ok {
			return nil, errors.New("N002").WithDetailf("name %q", to.Name)
		}
		loc, err = routepath.Parse(e.routes[idx].Path)
		if err != nil {
			return nil, errors.New("N005").WithDetailf("route %q", to.Name).Wrap(err)
		}

	default:
		raw := to.Path
		if to.URL != "" {
			raw = e.history.Strip(to.URL)
		}
		loc, err = routepath.Parse(raw)
		if err != nil {
			return nil, errors.New("N005").WithDetailf("path %q", raw).Wrap(err)
		}
		var ok bool
		idx, ok = e.root.match(loc.Path)
		if !ok {
			return nil, errors.New("N001").WithDetailf("path %q", loc.Path)
		}
	}

	if len(to.Query) > 0 {
		q, _ := url.ParseQuery(loc.Query)
		for k, v := range to.Query {
			q[k] = v
		}
		loc.Query = q.Encode()
	}
	if to.Fragment != "" {
		loc.Fragment = to.Fragment
	}

	return &Resolved{
		Route:    &e.routes[idx],
		Index:    idx,
		Location: loc,
		Href:     e.history.Href(loc.String()),
	}, nil
}

// Navigate resolves to, loads its view and updates the history.
func (e *Engine) Navigate(ctx context.Context, to Target, opts ...NavigateOption) (*Navigation, error) {
	var o NavigateOptions
	for _, opt := range opts {
		opt(&o)
	}
	kind := KindPush
	if o.Replace {
		kind = KindReplace
	}
	return e.navigate(ctx, o.apply(to), kind, o.Force, 0)
}

// Push navigates to a new history entry.
func (e *Engine) Push(ctx context.Context, to Target) (*Navigation, error) {
	return e.navigate(ctx, to, KindPush, false, 0)
}

// Replace navigates by rewriting the current history entry.
func (e *Engine) Replace(ctx context.Context, to Target) (*Navigation, error) {
	return e.navigate(ctx, to, KindReplace, false, 0)
}

// Back is Go(ctx, -1).
func (e *Engine) Back(ctx context.Context) (*Navigation, error) {
	return e.Go(ctx, -1)
}

// Forward is Go(ctx, 1).
func (e *Engine) Forward(ctx context.Context) (*Navigation, error) {
	return e.Go(ctx, 1)
}

// Go moves through the history by delta and resolves the location it
// lands on. If that navigation fails the history is moved back, unless
// a newer navigation superseded it. A delta that leaves the history
// returns ErrOutOfRange and moves nothing.
func (e *Engine) Go(ctx context.Context, delta int) (*Navigation, error) {
	if e.isClosed() {
		return nil, ErrClosed
	}
	loc, moved := e.history.Go(delta)
	if !moved {
		return nil, errors.New("N007").WithDetailf("delta %d at position %d of %d",
			delta, e.history.Position(), e.history.Len())
	}
	n, err := e.navigate(ctx, ToPath(loc), KindPop, true, delta)
	if err != nil {
		if !stderrors.Is(err, ErrCancelled) {
			e.history.Go(-delta)
		}
		return nil, err
	}
	return n, nil
}

// Start performs the initial navigation to the history's current location.
func (e *Engine) Start(ctx context.Context) (*Navigation, error) {
	return e.navigate(ctx, ToPath(e.history.Location()), KindInitial, true, 0)
}

// Current returns the last completed navigation, or nil before Start.
func (e *Engine) Current() *Navigation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// OnMatched registers fn for route-matched events and returns a function
// that removes it. Listeners run synchronously after each navigation.
func (e *Engine) OnMatched(fn MatchedFunc) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.listeners, id)
			e.mu.Unlock()
		})
	}
}

// Close cancels any pending navigation and drops listeners and cached views.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.listeners = map[int]MatchedFunc{}
	e.views = map[int]*view.View{}
	e.mu.Unlock()

	e.metrics.engineClosed()
}

// CancelPending supersedes the navigation that is still loading, if any.
// That navigation returns ErrCancelled and emits nothing.
func (e *Engine) CancelPending() {
	e.mu.Lock()
	e.supersedeLocked()
	e.mu.Unlock()
}

// supersedeLocked invalidates the pending navigation. e.mu must be held.
func (e *Engine) supersedeLocked() {
	if e.cancel == nil {
		return
	}
	e.seq++
	e.cancel()
	e.cancel = nil
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *Engine) navigate(ctx context.Context, to Target, kind Kind, force bool, delta int) (*Navigation, error) {
	ctx, span := e.tracer.Start(ctx, "nav."+string(kind),
		trace.WithAttributes(
			attribute.String("nav.target", to.String()),
			attribute.Int("nav.delta", delta),
		))
	defer span.End()

	res, err := e.Resolve(to)
	if err != nil {
		e.metrics.recordNavigation("", resultFor(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve failed")
		e.logger.Debug("navigation not resolved", "target", to.String(), "error", err)
		return nil, err
	}
	routeName := res.Route.Name
	span.SetAttributes(
		attribute.String("nav.route", routeName),
		attribute.String("nav.path", res.Location.Path),
	)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	if !force && e.current != nil && e.current.FullPath() == res.FullPath() {
		// Staying put still supersedes a navigation that is loading.
		e.supersedeLocked()
		cur := e.current
		e.mu.Unlock()
		e.metrics.recordNavigation(routeName, resultDuplicate)
		return cur, nil
	}
	e.supersedeLocked()
	e.seq++
	token := e.seq
	navCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()
	defer cancel()

	v, err := e.loadView(navCtx, res)

	e.mu.Lock()
	if e.seq != token || e.closed {
		e.mu.Unlock()
		e.metrics.recordNavigation(routeName, resultCancelled)
		span.SetStatus(codes.Error, "cancelled")
		return nil, errors.New("N003").WithDetail(res.FullPath())
	}
	e.cancel = nil
	if err != nil {
		e.mu.Unlock()
		result := resultLoadError
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			result = resultCancelled
		}
		e.metrics.recordNavigation(routeName, result)
		span.RecordError(err)
		span.SetStatus(codes.Error, "view load failed")
		e.logger.Warn("view load failed", "route", routeName, "path", res.Location.Path, "error", err)
		return nil, err
	}

	from := ""
	if e.current != nil {
		from = e.current.FullPath()
	}
	switch kind {
	case KindPush:
		e.history.Push(res.FullPath())
	case KindReplace:
		e.history.Replace(res.FullPath())
	}
	n := &Navigation{
		Resolved: *res,
		Kind:     kind,
		From:     from,
		View:     v,
		At:       time.Now(),
	}
	e.current = n
	listeners := make([]MatchedFunc, 0, len(e.listeners))
	for _, fn := range e.listeners {
		listeners = append(listeners, fn)
	}
	e.mu.Unlock()

	e.metrics.recordNavigation(routeName, resultOK)
	e.logger.Debug("route matched",
		"kind", string(kind),
		"route", routeName,
		"path", res.FullPath(),
		"from", from)

	for _, fn := range listeners {
		fn(n)
	}
	return n, nil
}

// loadView returns the cached view of a route or runs its loader once.
// The loader runs detached from the caller's cancellation so a load that
// a superseded navigation started still fills the cache.
func (e *Engine) loadView(ctx context.Context, res *Resolved) (*view.View, error) {
	idx := res.Index
	name := res.Route.Name

	e.mu.Lock()
	v, ok := e.views[idx]
	e.mu.Unlock()
	if ok {
		e.metrics.recordLoad(name, resultCached, 0)
		return v, nil
	}

	load := res.Route.Load
	ch := e.loads.DoChan(strconv.Itoa(idx), func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.loadTimeout)
		defer cancel()
		loadCtx, span := e.tracer.Start(loadCtx, "nav.load",
			trace.WithAttributes(attribute.String("nav.route", name)))
		defer span.End()

		start := time.Now()
		v, err := load(loadCtx)
		if err == nil && v == nil {
			err = fmt.Errorf("loader returned no view")
		}
		if err != nil {
			e.metrics.recordLoad(name, resultLoadError, time.Since(start))
			span.RecordError(err)
			span.SetStatus(codes.Error, "load failed")
			return nil, errors.New("V001").WithDetailf("route %q", name).Wrap(err)
		}
		e.metrics.recordLoad(name, resultOK, time.Since(start))

		e.mu.Lock()
		if !e.closed {
			e.views[idx] = v
		}
		e.mu.Unlock()
		return v, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*view.View), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// resultFor maps a resolve error to a metric label.
func resultFor(err error) string {
	switch {
	case stderrors.Is(err, ErrNoMatch):
		return resultNoMatch
	case stderrors.Is(err, ErrUnknownRoute):
		return resultUnknown
	}
	return resultInvalid
}
