package viewer

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/bookview/internal/bridge"
	"github.com/GriffinCanCode/bookview/internal/bridge/callback"
	"github.com/GriffinCanCode/bookview/internal/domain/book"
	"github.com/GriffinCanCode/bookview/internal/domain/session"
	"github.com/GriffinCanCode/bookview/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/bookview/internal/shared/utils"
)

// Options configures a View
type Options struct {
	// Scheme is the private content scheme navigation is allowed to
	Scheme      string
	Host        Host
	Prefs       *session.Store
	Environment Environment
	Logger      *zap.Logger
	Metrics     *monitoring.Metrics
}

type bookLoad struct {
	key         []string
	initialCFI  interface{}
	initialNode interface{}
	source      string
}

// View drives one rendering surface over the bridge
type View struct {
	scheme  string
	host    Host
	prefs   *session.Store
	env     Environment
	logger  *zap.Logger
	metrics *monitoring.Metrics

	channel   *bridge.Channel
	callbacks *callback.Registry

	lastLoad      *bookLoad
	currentCFI    string
	crashNotified bool
}

// New creates a view with a disconnected channel
func New(opts Options) *View {
	v := &View{
		scheme:    strings.ToLower(opts.Scheme),
		host:      opts.Host,
		prefs:     opts.Prefs,
		env:       opts.Environment,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		callbacks: callback.New(),
	}
	if v.host == nil {
		v.host = NopHost{}
	}
	if v.prefs == nil {
		v.prefs = session.NewMemory()
	}
	if v.logger == nil {
		v.logger = zap.NewNop()
	}
	if v.env.FontFamilies == nil {
		v.env = DefaultEnvironment()
	}
	v.channel = v.newChannel()
	return v
}

func (v *View) newChannel() *bridge.Channel {
	c := bridge.NewChannel(v.logger, v.metrics)
	c.OnReady(v.createView)
	for _, event := range bridge.Events {
		event := event
		c.On(event, func(args bridge.Args) { v.dispatch(event, args) })
	}
	return c
}

// Channel returns the current bridge channel
func (v *View) Channel() *bridge.Channel {
	return v.channel
}

// Callbacks returns the registry of outstanding correlated calls
func (v *View) Callbacks() *callback.Registry {
	return v.callbacks
}

// Attach connects a peer
func (v *View) Attach(t bridge.Transport) error {
	return v.channel.Attach(t)
}

// Detach disconnects the peer. A channel that was ready is replaced by a
// fresh one: its pending callbacks can never be answered and are purged,
// and the last book load is queued again for the next peer.
func (v *View) Detach() {
	if !v.channel.Detach() {
		return
	}
	if n := v.callbacks.PurgeAll(); n > 0 {
		v.logger.Debug("Purged pending callbacks", zap.Int("count", n))
	}
	v.reportPending()

	v.channel = v.newChannel()
	if v.lastLoad != nil {
		v.enqueueLoad(*v.lastLoad)
	}
}

// Receive handles one inbound frame
func (v *View) Receive(frame []byte) {
	v.channel.Receive(frame)
}

// Shutdown drops all outstanding callbacks and closes the channel
func (v *View) Shutdown() {
	v.callbacks.PurgeAll()
	v.reportPending()
	v.channel.Detach()
}

// SessionPref reads a preference from session data. An empty group means
// session.DefaultPrefGroup.
func (v *View) SessionPref(name string, def interface{}, group string) interface{} {
	if group == "" {
		group = session.DefaultPrefGroup
	}
	return v.prefs.Pref(name, def, group)
}

func (v *View) createView() {
	v.channel.Enqueue(bridge.ActionCreateView,
		v.prefs.SessionData(),
		v.env.FontFamilies,
		v.env.FieldMetadata,
		v.env.DefaultFontFamily,
		v.env.DefaultFontSize,
	)
}

// ShowPreparingMessage tells the peer a book is being prepared
func (v *View) ShowPreparingMessage(msg string) {
	v.channel.Enqueue(bridge.ActionShowPreparingMessage, msg)
}

// StartBookLoad asks the peer to load ctx. initialCFI and initialTOCNode
// may be nil.
func (v *View) StartBookLoad(ctx *book.Context, initialCFI, initialTOCNode interface{}) {
	load := bookLoad{
		key:         ctx.Key(),
		initialCFI:  initialCFI,
		initialNode: initialTOCNode,
		source:      ctx.Source(),
	}
	v.lastLoad = &load
	v.enqueueLoad(load)
}

func (v *View) enqueueLoad(load bookLoad) {
	v.channel.Enqueue(bridge.ActionStartBookLoad, load.key, load.initialCFI, load.initialNode, load.source)
}

// GotoTOCNode navigates to a table of contents node
func (v *View) GotoTOCNode(id int) {
	v.channel.Enqueue(bridge.ActionGotoTOCNode, id)
}

// GotoCFI navigates to a position
func (v *View) GotoCFI(cfi string) {
	v.channel.Enqueue(bridge.ActionGotoCFI, cfi)
}

// FullScreenStateChanged tells the peer the window's full screen state
func (v *View) FullScreenStateChanged(fullScreen bool) {
	v.channel.Enqueue(bridge.ActionFullScreenStateChanged, fullScreen)
}

// ShowHomePage returns the peer to its home page
func (v *View) ShowHomePage() {
	v.channel.Enqueue(bridge.ActionShowHomePage)
}

// GetCurrentCFI asks the peer for its position. fn runs once with the
// reply, or never if the channel goes away first.
func (v *View) GetCurrentCFI(fn func(data json.RawMessage)) callback.ID {
	id := v.callbacks.Issue()
	v.callbacks.Register(id, callback.Continuation(fn))
	v.reportPending()
	v.channel.Enqueue(bridge.ActionGetCurrentCFI, id)
	return id
}

func (v *View) reportPending() {
	if v.metrics != nil {
		v.metrics.SetPendingCallbacks(v.callbacks.Pending())
	}
}

func (v *View) dispatch(event bridge.Event, args bridge.Args) {
	switch event {
	case bridge.EventBridgeReady:
		v.logger.Debug("Bridge ready")
	case bridge.EventSetSessionData:
		v.setSessionData(args)
	case bridge.EventReloadBook:
		v.host.ReloadBook()
	case bridge.EventToggleTOC:
		v.host.TogglePanel(PanelTOC)
	case bridge.EventToggleBookmarks:
		v.host.TogglePanel(PanelBookmarks)
	case bridge.EventToggleInspector:
		v.host.TogglePanel(PanelInspector)
	case bridge.EventToggleLookup:
		v.host.TogglePanel(PanelLookup)
	case bridge.EventToggleFullScreen:
		v.host.ToggleFullScreen()
	case bridge.EventUpdateCurrentTOCNodes:
		v.host.TOCNodesChanged(args.Raw(0), args.Raw(1))
	case bridge.EventSelectionChanged:
		v.host.SelectionChanged(args.String(0))
	case bridge.EventAskForOpen:
		v.host.OpenRequested(args.String(0))
	case bridge.EventCopySelection:
		v.host.CopySelection(args.String(0))
	case bridge.EventViewImage:
		v.host.ViewImage(args.String(0))
	case bridge.EventReportCFI:
		v.reportCFI(args)
	default:
		v.logger.Debug("Unhandled event", zap.String("event", string(event)))
	}
}

func (v *View) setSessionData(args bridge.Args) {
	key := args.String(0)
	if err := utils.ValidateSessionKey(key); err != nil {
		v.logger.Warn("Ignored session data update", zap.Error(err))
		return
	}
	value := args.Value(1)
	if err := utils.ValidateJSONDepth(value, utils.MaxJSONDepth); err != nil {
		v.logger.Warn("Ignored session data update", zap.String("key", key), zap.Error(err))
		return
	}

	change, err := v.prefs.SetSessionData(key, value)
	if err != nil {
		v.logger.Error("Failed to save session data", zap.String("key", key), zap.Error(err))
	}
	if change.FontsChanged {
		v.host.FontSettingsChanged(v.prefs.SessionData())
	}
}

func (v *View) reportCFI(args bridge.Args) {
	var id callback.ID
	if err := args.Decode(0, &id); err != nil {
		v.logger.Debug("Ignored position report without id", zap.Error(err))
		return
	}
	v.callbacks.Resolve(id, args.Raw(1))
	v.reportPending()
}
