package types

import "context"

type EventKind string

const (
	EventText     EventKind = "text"
	EventDocument EventKind = "document"
	EventCallback EventKind = "callback"
	EventCommand  EventKind = "command"
)

// Event is a normalized inbound update. Document holds preloaded bytes; when it is
// nil the router fetches DocumentID on demand.
type Event struct {
	UserID       int64
	Username     string
	FirstName    string
	Kind         EventKind
	Text         string
	Command      string
	DocumentName string
	DocumentID   string
	Document     []byte
	Callback     string
}

type Outcome string

const (
	OutcomeRegisterFirst   Outcome = "register_first"
	OutcomeWelcome         Outcome = "welcome"
	OutcomeMainMenu        Outcome = "main_menu"
	OutcomeHelp            Outcome = "help"
	OutcomeStatus          Outcome = "status"
	OutcomePremiumInfo     Outcome = "premium_info"
	OutcomeUnknownCommand  Outcome = "unknown_command"
	OutcomeNumbersFound    Outcome = "numbers_found"
	OutcomeNoIntent        Outcome = "no_intent"
	OutcomeChannelList     Outcome = "channel_list"
	OutcomeChannelPrompt   Outcome = "channel_prompt"
	OutcomeChannelLimit    Outcome = "channel_limit"
	OutcomeChannelAdded    Outcome = "channel_added"
	OutcomeChannelRemoved  Outcome = "channel_removed"
	OutcomeSessionMenu     Outcome = "session_menu"
	OutcomeSessionPrompt   Outcome = "session_prompt"
	OutcomeSessionStored   Outcome = "session_stored"
	OutcomeSessionConfirm  Outcome = "session_remove_confirm"
	OutcomeSessionRemoved  Outcome = "session_removed"
	OutcomeNoSession       Outcome = "no_session"
	OutcomeSessionDetected Outcome = "session_detected"
	OutcomeFrozenMenu      Outcome = "frozen_menu"
	OutcomeFrozenPrompt    Outcome = "frozen_prompt"
	OutcomeBulkLoaded      Outcome = "bulk_loaded"
	OutcomeFrozenReport    Outcome = "frozen_report"
	OutcomeNumbersDetected Outcome = "numbers_detected"
	OutcomeUnrecognized    Outcome = "unrecognized_file"
	OutcomeWithdrawMenu    Outcome = "withdraw_menu"
	OutcomeWithdrawPrompt  Outcome = "withdraw_prompt"
	OutcomeWithdrawReady   Outcome = "withdraw_ready"
	OutcomeWithdrawReport  Outcome = "withdraw_report"
	OutcomeAdminPanel      Outcome = "admin_panel"
	OutcomeAdminUsers      Outcome = "admin_users"
	OutcomeAdminStats      Outcome = "admin_stats"
	OutcomeAdminSettings   Outcome = "admin_settings"
	OutcomeAdminPrompt     Outcome = "admin_prompt"
	OutcomePremiumUpdated  Outcome = "premium_updated"
	OutcomeError           Outcome = "error"
)

type ErrorKind string

const (
	ErrInvalidFormat    ErrorKind = "invalid_format"
	ErrNameTooLong      ErrorKind = "name_too_long"
	ErrDuplicateChannel ErrorKind = "duplicate_channel"
	ErrUnsupportedFile  ErrorKind = "unsupported_file"
	ErrNoNumbers        ErrorKind = "no_numbers"
	ErrNoSessionData    ErrorKind = "no_session_data"
	ErrFetchFailed      ErrorKind = "fetch_failed"
	ErrStoreFailure     ErrorKind = "store_failure"
	ErrAccessDenied     ErrorKind = "access_denied"
	ErrInvalidUserID    ErrorKind = "invalid_user_id"
	ErrUnknownUser      ErrorKind = "unknown_user"
	ErrUnknownAction    ErrorKind = "unknown_action"
	ErrNothingToProcess ErrorKind = "nothing_to_process"
	ErrNoChannels       ErrorKind = "no_channels"
	ErrProcessingFailed ErrorKind = "processing_failed"
)

type FrozenReport struct {
	Source          string
	Total           int
	Frozen          int
	Active          int
	ChannelsChecked int
	FrozenNumbers   []string
}

type WithdrawReport struct {
	RequestID  int64
	Processed  int
	Successful int
	Failed     int
}

// Result is what the rendering boundary turns into a reply. Err is set only when
// Outcome is OutcomeError; State is the mode the user is left in.
type Result struct {
	Outcome      Outcome
	State        UserState
	Err          ErrorKind
	Numbers      []string
	Total        int
	FileName     string
	Channel      *Channel
	Channels     []Channel
	Premium      bool
	IsAdmin      bool
	HasSession   bool
	TargetUserID int64
	Limit        int
	CheckType    CheckType
	Frozen       *FrozenReport
	Withdraw     *WithdrawReport
	Stats        *Stats
	Settings     *Settings
}

type FrozenChecker interface {
	Check(ctx context.Context, channels []Channel, numbers []string) (FrozenReport, error)
}

type WithdrawProcessor interface {
	Process(ctx context.Context, req WithdrawRequest) (WithdrawReport, error)
}
