package types

type UserState string

const (
	StateIdle               UserState = "idle"
	StateChannelSetup       UserState = "channel_setup"
	StateChannelEdit        UserState = "channel_edit"
	StateSessionUpload      UserState = "session_upload"
	StateWithdrawProcessing UserState = "withdraw_processing"
	StateAdminCommand       UserState = "admin_command"
	StateFileUpload         UserState = "file_upload"
)

type WithdrawStatus string

const (
	WithdrawPending   WithdrawStatus = "pending"
	WithdrawProcessed WithdrawStatus = "processed"
	WithdrawFailed    WithdrawStatus = "failed"
)

type CheckType string

const (
	CheckSingle CheckType = "single"
	CheckBulk   CheckType = "bulk"
)

type AdminAction string

const (
	AdminAddPremium    AdminAction = "add_premium"
	AdminRemovePremium AdminAction = "remove_premium"
)
