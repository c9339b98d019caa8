package messages

import (
	"fmt"
	"strings"
	"time"

	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

const ParseModeHTML = "HTML"

// previewLimit bounds how many numbers or channels are listed inline.
const previewLimit = 5

func Escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(strings.TrimSpace(s))
}

// Title renders a bold heading led by an icon.
func Title(icon, text string) string {
	if icon == "" {
		return "<b>" + Escape(text) + "</b>"
	}
	return icon + " <b>" + Escape(text) + "</b>"
}

func FileLine(fileName string) string {
	name := strings.TrimSpace(fileName)
	if name == "" {
		name = "message"
	}
	return fmt.Sprintf("📄 <b>Source:</b> %s", Escape(name))
}

func yesNo(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

func accountLines(res types.Result) string {
	var sb strings.Builder
	sb.WriteString("• Status: " + yesNo(res.Premium, "⭐ Premium", "🆓 Free") + "\n")
	sb.WriteString("• Session: " + yesNo(res.HasSession, "✅ Connected", "🔄 Required") + "\n")
	sb.WriteString(fmt.Sprintf("• Channels: %d/%d", len(res.Channels), res.Limit))
	return sb.String()
}

func Welcome(firstName string, res types.Result) string {
	name := Escape(firstName)
	if name == "" {
		name = "there"
	}
	return Title("🤖", "Welcome to RTX Toolkit!") + "\n\n" +
		fmt.Sprintf("👋 Hi %s! I check Telegram numbers against your channels.\n\n", name) +
		"📊 <b>Your account</b>\n" + accountLines(res) + "\n\n" +
		"🚀 Upload a session, add channels, then check numbers."
}

func MainMenu(res types.Result) string {
	return Title("🤖", "RTX Toolkit Dashboard") + "\n\n📊 <b>Your account</b>\n" + accountLines(res) +
		"\n\n🚀 <b>Quick actions:</b>"
}

func Help() string {
	return Title("🤖", "RTX Toolkit Help") + "\n\n" +
		"<b>📋 Features</b>\n" +
		"• ❄️ Check frozen numbers\n" +
		"• 📂 Manage channels\n" +
		"• 💰 Process withdraw requests\n" +
		"• 🔐 Session management\n\n" +
		"<b>🎯 How to use</b>\n" +
		"1. Upload your session file\n" +
		"2. Add the channels to check against\n" +
		"3. Send numbers as text or a .txt/.csv/.zip file\n\n" +
		"Commands: /start /status /cancel /help"
}

func Status(res types.Result) string {
	var sb strings.Builder
	sb.WriteString(Title("📊", "Your Status") + "\n\n")
	sb.WriteString(accountLines(res))
	if res.FileName != "" {
		sb.WriteString("\n• Session file: " + Escape(res.FileName))
	}
	if len(res.Channels) > 0 {
		sb.WriteString("\n\n📂 <b>Channels</b>")
		for i, ch := range res.Channels {
			if i == previewLimit {
				sb.WriteString(fmt.Sprintf("\n… and %d more", len(res.Channels)-previewLimit))
				break
			}
			sb.WriteString("\n🔹 " + Escape(ch.Name))
		}
	}
	return sb.String()
}

func PremiumInfo(premium bool) string {
	if premium {
		return Title("⭐", "You are Premium") + "\n\n" +
			"• Up to 100 channels\n" +
			"• Bulk checks and withdraw processing\n" +
			"• Priority processing"
	}
	return Title("⭐", "Premium Access") + "\n\n" +
		"Free accounts are limited to 5 channels.\n" +
		"Premium raises the limit to 100 and unlocks priority processing.\n\n" +
		"Contact an administrator to upgrade."
}

func RegisterFirst() string {
	return Title("👋", "Welcome!") + "\nPlease start the bot first with /start."
}

func UnknownCommand() string {
	return Title("❓", "Unknown command") + "\nUse /help to see what I can do."
}

func NoIntent() string {
	return Title("🤖", "Nothing to do with this text") + "\nSend phone numbers or pick an option below."
}

func numberPreview(nums []string) string {
	var sb strings.Builder
	for i, n := range nums {
		if i == previewLimit {
			sb.WriteString(fmt.Sprintf("\n… and %d more", len(nums)-previewLimit))
			break
		}
		sb.WriteString("\n<code>" + Escape(n) + "</code>")
	}
	return sb.String()
}

func NumbersFound(res types.Result) string {
	return fmt.Sprintf("📱 <b>Found %d numbers</b>", res.Total) + numberPreview(res.Numbers) +
		"\n\nWhat should I do with them?"
}

func NumbersDetected(res types.Result) string {
	return fmt.Sprintf("📥 <b>Detected %d numbers</b>\n", res.Total) + FileLine(res.FileName) +
		numberPreview(res.Numbers) + "\n\nWhat should I do with them?"
}

func SessionDetected(fileName string) string {
	return Title("🔐", "Looks like a session file") + "\n" + FileLine(fileName) +
		"\n\nOpen the session menu and tap Upload to store it."
}

func Unrecognized(fileName string) string {
	return Title("🤔", "Unrecognized file") + "\n" + FileLine(fileName) +
		"\n\nSend a .session/.zip for sessions or .txt/.csv/.zip with numbers."
}

func ChannelList(res types.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📂 <b>Your Channels</b> (%d/%d)\n", len(res.Channels), res.Limit))
	if len(res.Channels) == 0 {
		sb.WriteString("\nNo channels yet. Add one to start checking.")
		return sb.String()
	}
	for i, ch := range res.Channels {
		sb.WriteString(fmt.Sprintf("\n%d. %s <code>%s</code>", i+1, Escape(ch.Name), Escape(ch.ChannelRef)))
	}
	return sb.String()
}

func ChannelRemoved(res types.Result) string {
	return Title("✅", "Channel removed") + "\n\n" + ChannelList(res)
}

func ChannelPrompt() string {
	return Title("➕", "Add Channel") + "\n\n" +
		"Send the channel reference followed by its name:\n" +
		"<code>@mychannel My Channel</code>\n" +
		"<code>-1001234567890 My Channel</code>\n\n" +
		"Names are limited to 100 characters."
}

func ChannelLimit(res types.Result) string {
	msg := fmt.Sprintf("⚠️ <b>Channel limit reached</b>\nYou have %d of %d channels.", len(res.Channels), res.Limit)
	if !res.Premium {
		msg += "\n\n⭐ Premium raises the limit."
	}
	return msg
}

func ChannelAdded(ch *types.Channel) string {
	if ch == nil {
		return Title("✅", "Channel added")
	}
	return fmt.Sprintf("✅ <b>Channel added</b>\n\n📂 %s\n<code>%s</code>", Escape(ch.Name), Escape(ch.ChannelRef))
}

func SessionMenu(res types.Result) string {
	if res.HasSession {
		return Title("🔐", "Session Management") + "\n\n✅ Session connected\n" + FileLine(res.FileName)
	}
	return Title("🔐", "Session Management") + "\n\n🔄 No session uploaded yet.\n" +
		"Upload a .session file or a .zip containing one."
}

func SessionPrompt() string {
	return Title("📤", "Upload Session") + "\n\n" +
		"Send your session file as a document.\n" +
		"Accepted: .session, .zip, .tdata, .json"
}

func SessionStored(fileName string) string {
	return Title("✅", "Session stored") + "\n" + FileLine(fileName)
}

func SessionConfirm(fileName string) string {
	return Title("⚠️", "Remove session?") + "\n" + FileLine(fileName) +
		"\n\nThe stored credentials will be erased."
}

func SessionRemoved() string {
	return Title("🗑️", "Session removed")
}

func NoSession() string {
	return Title("🔄", "No active session") + "\nThere is nothing to remove."
}

func FrozenMenu(res types.Result) string {
	if res.Total > 0 {
		return fmt.Sprintf("❄️ <b>Frozen Check</b>\n\n📱 %d numbers ready\n", res.Total) + FileLine(res.FileName)
	}
	return Title("❄️", "Frozen Check") + "\n\nCheck a single number or upload a file with many."
}

func FrozenPrompt(checkType types.CheckType) string {
	if checkType == types.CheckSingle {
		return Title("📄", "Single Check") + "\n\nSend the phone number as text or in a .txt file."
	}
	return Title("📁", "Bulk Check") + "\n\nUpload a .txt file with one number per line."
}

func BulkLoaded(res types.Result) string {
	return fmt.Sprintf("✅ <b>%d numbers loaded</b>\n", res.Total) + FileLine(res.FileName) +
		numberPreview(res.Numbers)
}

func FrozenReport(r *types.FrozenReport) string {
	if r == nil {
		return Title("❄️", "Frozen check complete")
	}
	var sb strings.Builder
	sb.WriteString("❄️ <b>Frozen check complete</b>\n")
	sb.WriteString(FileLine(r.Source) + "\n\n")
	sb.WriteString(fmt.Sprintf("📱 Total: %d\n🧊 Frozen: %d\n✅ Active: %d\n📂 Channels: %d",
		r.Total, r.Frozen, r.Active, r.ChannelsChecked))
	if len(r.FrozenNumbers) > 0 {
		sb.WriteString("\n\n<b>Frozen numbers</b>")
		sb.WriteString(numberPreview(r.FrozenNumbers))
	}
	return sb.String()
}

func WithdrawMenu(res types.Result) string {
	if res.Total > 0 {
		return fmt.Sprintf("💰 <b>Withdraw Processing</b>\n\n📱 %d numbers ready\n", res.Total) + FileLine(res.FileName)
	}
	return Title("💰", "Withdraw Processing") + "\n\nSend numbers as text or upload .txt/.zip files."
}

func WithdrawPrompt() string {
	return Title("📤", "Send numbers") + "\n\nPaste numbers or upload .txt/.zip files.\nFiles are merged into one batch."
}

func WithdrawReady(res types.Result) string {
	return fmt.Sprintf("💰 <b>%d numbers ready to process</b>", res.Total) + numberPreview(res.Numbers)
}

func WithdrawReport(r *types.WithdrawReport) string {
	if r == nil {
		return Title("💰", "Withdraw processed")
	}
	return fmt.Sprintf("💰 <b>Withdraw processed</b>\n\n🧾 Request #%d\n📱 Processed: %d\n✅ Successful: %d\n❌ Failed: %d",
		r.RequestID, r.Processed, r.Successful, r.Failed)
}

func AdminPanel() string {
	return Title("🔧", "Admin Panel")
}

func AdminUsers() string {
	return Title("👥", "User Management") + "\n\nGrant or revoke premium access."
}

func AdminStats(st *types.Stats, at time.Time) string {
	if st == nil {
		return Title("📊", "Statistics")
	}
	return fmt.Sprintf("📊 <b>Statistics</b>\n\n👥 Users: %d\n⭐ Premium: %d\n📂 Active channels: %d\n🔐 Active sessions: %d\n💰 Pending withdrawals: %d\n\n<i>%s</i>",
		st.Users, st.PremiumUsers, st.ActiveChannels, st.ActiveSessions, st.PendingWithdrawals,
		at.UTC().Format("2006-01-02 15:04 MST"))
}

func AdminSettings(st *types.Settings) string {
	if st == nil {
		return Title("⚙️", "Settings")
	}
	return Title("⚙️", "Settings") + fmt.Sprintf("\n\n🆓 Free channel limit: %d\n⭐ Premium channel limit: %d\n❄️ Frozen cache: %s",
		st.FreeChannels, st.PremiumChannels, st.FrozenCacheTTL)
}

func AdminPrompt(grant bool) string {
	return yesNo(grant, "➕ <b>Add Premium</b>", "➖ <b>Remove Premium</b>") +
		"\n\nSend the numeric user ID."
}

func PremiumUpdated(userID int64, premium bool) string {
	return fmt.Sprintf("✅ <b>Premium %s</b> for user <code>%d</code>", yesNo(premium, "granted", "revoked"), userID)
}

func Error(kind types.ErrorKind) string {
	switch kind {
	case types.ErrInvalidFormat:
		return Title("🚫", "Invalid format") + "\nUse <code>@handle Name</code> or <code>-100&lt;id&gt; Name</code>."
	case types.ErrNameTooLong:
		return Title("🚫", "Name too long") + "\nChannel names are limited to 100 characters."
	case types.ErrDuplicateChannel:
		return Title("⚠️", "Channel already added")
	case types.ErrUnsupportedFile:
		return Title("🚫", "Unsupported file type")
	case types.ErrNoNumbers:
		return Title("🔍", "No phone numbers found") + "\nNumbers need 10 to 15 digits."
	case types.ErrNoSessionData:
		return Title("🚫", "No session data found in the archive")
	case types.ErrFetchFailed:
		return Title("🚫", "Could not download the file") + "\nPlease try again."
	case types.ErrAccessDenied:
		return Title("⛔", "Access denied") + "\nAdmins only."
	case types.ErrInvalidUserID:
		return Title("🚫", "Invalid user ID") + "\nSend digits only."
	case types.ErrUnknownUser:
		return Title("🔍", "User not found") + "\nThe user has to /start the bot first. Check the ID and send it again."
	case types.ErrUnknownAction:
		return Title("🔄", "Unknown action") + "\nPlease try again."
	case types.ErrNothingToProcess:
		return Title("📭", "Nothing to process") + "\nSend numbers first."
	case types.ErrNoChannels:
		return Title("📂", "No channels") + "\nAdd at least one channel first."
	case types.ErrProcessingFailed:
		return Title("🚫", "Processing failed") + "\nPlease try again."
	}
	return ErrorDefault()
}

func ErrorDefault() string {
	return Title("🚫", "Something went wrong") + "\nPlease try again."
}

func ErrorUnsupportedMessageType() string {
	return Title("🤖", "I can't handle that") + "\nSend text, a file or use the menu."
}
