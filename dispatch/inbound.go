// Package dispatch is the conversation-turn dispatcher: for one inbound
// message it applies the ethics filter, the access gate, pending-mode
// resolution and capability routing, then records the turn in the user's
// history. Both the Telegram runtime and the web API construct the same
// normalized Inbound value and feed it here.
package dispatch

type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelWeb      Channel = "web"
)

type Inbound struct {
	UserID  int64
	ChatID  int64
	Text    string
	Channel Channel
}

// Reply is the single outbound response of a turn. ShowMenu hints the
// transport to attach the capability keyboard.
type Reply struct {
	Text     string
	ShowMenu bool
}
