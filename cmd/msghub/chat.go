package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/msghub/pkg/hub"
	"github.com/go-go-golems/msghub/pkg/sessions"
	"github.com/go-go-golems/msghub/pkg/transport"
	"github.com/go-go-golems/msghub/pkg/ui"
)

const (
	envelopeMessage  = "message"
	envelopePresence = "presence"
)

// Envelope is the chat wire payload, carried as a msgpack object.
type Envelope struct {
	Type string    `msgpack:"type"`
	Nick string    `msgpack:"nick"`
	Text string    `msgpack:"text,omitempty"`
	At   time.Time `msgpack:"at"`
}

// ChatUI is the stateful UI instance the hub serves. Lines is mutated only
// on the bubbletea update loop.
type ChatUI struct {
	id    int
	Lines []string
}

func NewChatUI(id int) *ChatUI { return &ChatUI{id: id} }

func (u *ChatUI) ID() int      { return u.id }
func (u *ChatUI) Kind() string { return "chat" }

func (u *ChatUI) Append(line string) {
	u.Lines = append(u.Lines, line)
	if len(u.Lines) > 500 {
		u.Lines = append([]string{}, u.Lines[len(u.Lines)-500:]...)
	}
}

func handleInbound(raw ui.UI, msg *message.Message) {
	cu, ok := raw.(*ChatUI)
	if !ok {
		return
	}
	var env Envelope
	if hub.IsObject(msg) {
		if err := hub.DecodeObject(msg, &env); err != nil {
			cu.Append("(undecodable message)")
			return
		}
	} else {
		env = Envelope{Type: envelopeMessage, Nick: "?", Text: string(msg.Payload)}
	}
	switch env.Type {
	case envelopePresence:
		cu.Append(fmt.Sprintf("* %s is online", env.Nick))
	default:
		cu.Append(fmt.Sprintf("<%s> %s", env.Nick, env.Text))
	}
}

type sendErrMsg struct{ err error }

type chatModel struct {
	chat  *ChatUI
	hub   *hub.Hub
	topic string
	nick  string

	width  int
	height int

	input   textinput.Model
	vp      viewport.Model
	errLine string
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func newChatModel(chat *ChatUI, h *hub.Hub, topic, nick string) chatModel {
	input := textinput.New()
	input.Placeholder = "say something…"
	input.Prompt = "> "
	input.CharLimit = 500
	input.Focus()

	m := chatModel{chat: chat, hub: h, topic: topic, nick: nick, input: input}
	m.vp = viewport.New(0, 0)
	return m
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = v.Width, v.Height
		m = m.resizeViewport()
		return m, nil

	case accessMsg:
		v.fn()
		m = m.refreshViewportContent()
		return m, nil

	case sendErrMsg:
		m.errLine = v.err.Error()
		return m, nil

	case tea.KeyMsg:
		switch v.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.errLine = ""
			h := m.hub
			env := Envelope{Type: envelopeMessage, Nick: m.nick, Text: text, At: time.Now()}
			return m, func() tea.Msg {
				if err := h.SendObject(env); err != nil {
					return sendErrMsg{err: err}
				}
				return nil
			}
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(v)
		return m, cmd
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m chatModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("msghub chat — %s as %s", m.topic, m.nick)))
	b.WriteString("\n\n")
	b.WriteString(m.vp.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.errLine != "" {
		b.WriteString(errStyle.Render("send failed: " + m.errLine))
		b.WriteString("\n")
	}
	return b.String()
}

func (m chatModel) resizeViewport() chatModel {
	usableHeight := m.height - 5
	if usableHeight < 3 {
		usableHeight = 3
	}
	m.vp.Width = m.width
	m.vp.Height = usableHeight
	m = m.refreshViewportContent()
	return m
}

func (m chatModel) refreshViewportContent() chatModel {
	if len(m.chat.Lines) == 0 {
		m.vp.SetContent("(no messages yet)")
		return m
	}
	m.vp.SetContent(strings.Join(m.chat.Lines, "\n"))
	m.vp.GotoBottom()
	return m
}

func runChat(ctx context.Context, cfg *Config) error {
	log := zerolog.Nop()
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrap(err, "open log file")
		}
		defer func() { _ = f.Close() }()
		log = zerolog.New(f).With().Timestamp().Logger()
	}

	broker := transport.NewGoChannelBroker(log)
	defer func() { _ = broker.Close() }()

	chatUI := NewChatUI(1)
	exec := newTeaExecutor()

	h, err := hub.New(chatUI, hub.Options{
		TopicName:         cfg.Topic,
		ConnectionFactory: cfg.ConnectionFactory,
		Handler:           handleInbound,
		Broker:            broker,
		Exec:              exec,
		Storage:           sessions.NewMemory(),
		Logger:            log,
	})
	if err != nil {
		return errors.Wrap(err, "create hub")
	}
	if err := h.StartListening(); err != nil {
		return errors.Wrap(err, "start listening")
	}

	p := tea.NewProgram(newChatModel(chatUI, h, cfg.Topic, cfg.Nick), tea.WithAltScreen(), tea.WithContext(ctx))
	exec.SetProgram(p)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, runCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		ann := &Announcer{Hub: h, Nick: cfg.Nick, Interval: time.Duration(cfg.PresenceInterval), Logger: log}
		return ann.Run(runCtx)
	})
	g.Go(func() error {
		_, err := p.Run()
		cancel()
		// The program exiting discards the UI for good; the hub's discard
		// hook closes the transport handle and deregisters it.
		exec.Detach(chatUI)
		return errors.Wrap(err, "run chat ui")
	})
	return g.Wait()
}
