package bridge

// Action is a call the host makes into the peer
type Action string

const (
	ActionCreateView             Action = "create_view"
	ActionShowPreparingMessage   Action = "show_preparing_message"
	ActionStartBookLoad          Action = "start_book_load"
	ActionGotoTOCNode            Action = "goto_toc_node"
	ActionGotoCFI                Action = "goto_cfi"
	ActionFullScreenStateChanged Action = "full_screen_state_changed"
	ActionGetCurrentCFI          Action = "get_current_cfi"
	ActionShowHomePage           Action = "show_home_page"
)

// Actions lists the whole host to peer catalog
var Actions = []Action{
	ActionCreateView,
	ActionShowPreparingMessage,
	ActionStartBookLoad,
	ActionGotoTOCNode,
	ActionGotoCFI,
	ActionFullScreenStateChanged,
	ActionGetCurrentCFI,
	ActionShowHomePage,
}

// Valid reports whether a is in the catalog
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// Event is a notification the peer sends to the host
type Event string

const (
	EventBridgeReady           Event = "bridge_ready"
	EventSetSessionData        Event = "set_session_data"
	EventReloadBook            Event = "reload_book"
	EventToggleTOC             Event = "toggle_toc"
	EventToggleBookmarks       Event = "toggle_bookmarks"
	EventToggleInspector       Event = "toggle_inspector"
	EventToggleLookup          Event = "toggle_lookup"
	EventToggleFullScreen      Event = "toggle_full_screen"
	EventUpdateCurrentTOCNodes Event = "update_current_toc_nodes"
	EventSelectionChanged      Event = "selection_changed"
	EventAskForOpen            Event = "ask_for_open"
	EventCopySelection         Event = "copy_selection"
	EventViewImage             Event = "view_image"
	EventReportCFI             Event = "report_cfi"
)

// Events lists the whole peer to host catalog
var Events = []Event{
	EventBridgeReady,
	EventSetSessionData,
	EventReloadBook,
	EventToggleTOC,
	EventToggleBookmarks,
	EventToggleInspector,
	EventToggleLookup,
	EventToggleFullScreen,
	EventUpdateCurrentTOCNodes,
	EventSelectionChanged,
	EventAskForOpen,
	EventCopySelection,
	EventViewImage,
	EventReportCFI,
}

// ParseEvent maps a wire name to a catalog event
func ParseEvent(name string) (Event, bool) {
	for _, e := range Events {
		if string(e) == name {
			return e, true
		}
	}
	return "", false
}
