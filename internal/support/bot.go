package support

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	Greeting        = "Hello! I am the CineWatch Support Bot. How can I help you today?"
	connectingAgent = "Connecting you to a live agent. Please wait a moment..."
	agentHello      = "Hello, this is a live agent. How can I assist you today?"
	agentReviewing  = "Thank you for your message. A live agent is now reviewing your query."
	fallbackReply   = "I'm sorry, I don't have an answer for that. Would you like to be connected to a live agent?"
)

var agentKeywords = []string{"live agent", "talk to agent", "human", "representative", "connect to support"}

// Rule names which step of the chain produced a reply.
type Rule string

const (
	RuleEmpty     Rule = "empty"
	RuleLiveAgent Rule = "live_agent"
	RuleAgentMode Rule = "agent_mode"
	RuleTrouble   Rule = "trouble_word"
	RuleFAQ       Rule = "faq"
	RuleCinema    Rule = "cinema"
	RuleFallback  Rule = "fallback"
)

type Message struct {
	From string    `json:"from"` // "user" or "bot"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Conversation is one visitor's chat. The switch to live-agent mode is
// one-way.
type Conversation struct {
	mu        sync.Mutex
	liveAgent bool
	messages  []Message
}

func NewConversation() *Conversation {
	return &Conversation{
		messages: []Message{{From: "bot", Text: Greeting, At: time.Now()}},
	}
}

func (c *Conversation) LiveAgent() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveAgent
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

type Reply struct {
	Text      string
	FollowUp  string
	LiveAgent bool
	Rule      Rule
}

// Lines returns the non-empty reply messages in order.
func (r Reply) Lines() []string {
	var out []string
	if r.Text != "" {
		out = append(out, r.Text)
	}
	if r.FollowUp != "" {
		out = append(out, r.FollowUp)
	}
	return out
}

type Bot struct {
	data *Data
}

func NewBot(data *Data) *Bot {
	return &Bot{data: data}
}

// Respond answers text within conv and records both sides in the
// transcript.
func (b *Bot) Respond(conv *Conversation, text string) Reply {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{Rule: RuleEmpty, LiveAgent: conv.LiveAgent()}
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	now := time.Now()
	conv.messages = append(conv.messages, Message{From: "user", Text: text, At: now})

	var r Reply
	if conv.liveAgent {
		r = Reply{Text: agentReviewing, Rule: RuleAgentMode}
	} else {
		r = b.match(strings.ToLower(text))
		if r.Rule == RuleLiveAgent {
			conv.liveAgent = true
		}
	}
	r.LiveAgent = conv.liveAgent

	for _, line := range r.Lines() {
		conv.messages = append(conv.messages, Message{From: "bot", Text: line, At: now})
	}
	return r
}

// match runs the rule chain; the first rule that matches wins.
func (b *Bot) match(query string) Reply {
	for _, k := range agentKeywords {
		if strings.Contains(query, k) {
			return Reply{Text: connectingAgent, FollowUp: agentHello, Rule: RuleLiveAgent}
		}
	}

	if msg, ok := b.data.TroubleWords[query]; ok {
		return Reply{Text: msg, Rule: RuleTrouble}
	}

	for _, f := range b.data.FAQs {
		if strings.Contains(strings.ToLower(f.Question), query) {
			return Reply{Text: f.Answer, Rule: RuleFAQ}
		}
		for _, k := range f.Keywords {
			if strings.Contains(query, strings.ToLower(k)) {
				return Reply{Text: f.Answer, Rule: RuleFAQ}
			}
		}
	}

	if text, ok := b.matchCinema(query); ok {
		return Reply{Text: text, Rule: RuleCinema}
	}

	return Reply{Text: fallbackReply, Rule: RuleFallback}
}

func (b *Bot) matchCinema(query string) (string, bool) {
	askPayment := strings.Contains(query, "payment") || strings.Contains(query, "pay")
	askTransport := strings.Contains(query, "transport") || strings.Contains(query, "get to")
	askSnack := strings.Contains(query, "snack") || strings.Contains(query, "food")

	for _, ref := range b.data.Halls() {
		h := ref.Hall

		if strings.Contains(strings.ToLower(h.Name), query) {
			return fmt.Sprintf("I can help with %s in %s. Ask me about payment, transport or snacks.", h.Name, ref.City), true
		}
		if askPayment && mentionsAny(query, h.PaymentMethods) {
			return fmt.Sprintf("%s accepts the following payment methods: %s.", h.Name, strings.Join(h.PaymentMethods, ", ")), true
		}
		if askTransport && mentionsAny(query, h.TransportServices) {
			return fmt.Sprintf("You can get to %s using: %s.", h.Name, strings.Join(h.TransportServices, ", ")), true
		}
		if askSnack {
			for _, s := range h.Snacks {
				if strings.Contains(query, strings.ToLower(s.Name)) {
					return fmt.Sprintf("Yes, %s serves snacks. You can get %s for %d KES.", h.Name, s.Name, s.Price), true
				}
			}
		}
	}
	return "", false
}

func mentionsAny(query string, values []string) bool {
	for _, v := range values {
		if strings.Contains(query, strings.ToLower(v)) {
			return true
		}
	}
	return false
}
