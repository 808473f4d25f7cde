package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"seniorkiosk/internal/kiosk"
	"seniorkiosk/internal/models"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var screenLabels = map[models.Screen]string{
	models.ScreenLanding:    "대기 화면",
	models.ScreenMenu:       "메뉴",
	models.ScreenMenuDetail: "메뉴 상세",
	models.ScreenCartView:   "장바구니",
	models.ScreenSuccess:    "주문 완료",
}

// Model defines the terminal kiosk state
type Model struct {
	client  *ApiClient
	timeout time.Duration

	menu    table.Model
	input   textinput.Model
	spinner spinner.Model

	session kiosk.Snapshot
	message string
	err     string
	loading bool
}

type menuMsg struct{ items []models.MenuItem }

type sessionMsg struct{ snap kiosk.Snapshot }

type actionMsg struct{ resp *ActionResponse }

type errorMsg struct{ err string }

func initialModel(client *ApiClient, timeout time.Duration) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	columns := []table.Column{
		{Title: "ID", Width: 4},
		{Title: "메뉴", Width: 14},
		{Title: "가격", Width: 10},
		{Title: "", Width: 6},
	}
	menu := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(6),
	)

	ti := textinput.New()
	ti.Placeholder = "말씀하실 내용을 입력하세요 (예: 아메리카노 주세요)"
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 50

	return Model{
		client:  client,
		timeout: timeout,
		menu:    menu,
		input:   ti,
		spinner: s,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchMenu(m.client, m.timeout), fetchSession(m.client, m.timeout))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.loading {
				return m, nil
			}
			cmd, err := parseInput(m.input.Value())
			if err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.input.SetValue("")
			m.err = ""
			if cmd.kind == cmdRefresh {
				return m, fetchSession(m.client, m.timeout)
			}
			m.loading = true
			return m, runCommand(m.client, m.timeout, cmd)
		}
	case menuMsg:
		m.menu.SetRows(menuRows(msg.items))
		return m, nil
	case sessionMsg:
		m.loading = false
		m.session = msg.snap
		if m.message == "" {
			m.message = msg.snap.LastMessage
		}
		return m, nil
	case actionMsg:
		m.loading = false
		m.session = msg.resp.Session
		m.message = msg.resp.Message
		if msg.resp.Ignored {
			m.err = "이 화면에서는 할 수 없는 동작입니다"
		}
		return m, nil
	case errorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder

	screen := screenLabels[m.session.Screen]
	if screen == "" {
		screen = "연결 중"
	}
	b.WriteString(titleStyle.Render("시니어 키오스크") + " " + infoStyle.Render(screen) + "\n\n")
	b.WriteString(m.menu.View() + "\n\n")
	b.WriteString(detailView(m.session))
	b.WriteString(cartView(m.session) + "\n")

	if m.session.Alert != nil {
		b.WriteString(errorStyle.Render(m.session.Alert.Message) + "\n")
	}
	if m.message != "" {
		b.WriteString("🔊 " + m.message + "\n")
	}
	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err) + "\n")
	}

	b.WriteString("\n")
	if m.loading {
		b.WriteString(m.spinner.View() + " ")
	}
	b.WriteString(m.input.View() + "\n")
	b.WriteString(dimStyle.Render(helpText+"  (esc to quit)") + "\n")

	return docStyle.Render(b.String())
}

func detailView(snap kiosk.Snapshot) string {
	if snap.Selected == nil {
		return ""
	}
	return fmt.Sprintf("선택: %s %s\n\n", snap.Temperature.Label(), snap.Selected.Name)
}

func cartView(snap kiosk.Snapshot) string {
	if snap.Screen == models.ScreenSuccess && snap.Order != nil {
		return successStyle.Render(fmt.Sprintf("주문번호 %d번 · %s · 약 %d분",
			snap.Order.Number, kiosk.FormatWon(snap.Order.Total), snap.Order.PrepMinutes)) + "\n"
	}
	if len(snap.Cart) == 0 {
		return dimStyle.Render("장바구니가 비어있습니다") + "\n"
	}

	var b strings.Builder
	b.WriteString("장바구니\n")
	for i, line := range snap.Cart {
		fmt.Fprintf(&b, "%d. %s %s  %s\n", i+1, line.Temperature.Label(), line.Item.Name, kiosk.FormatWon(line.Item.Price))
	}
	fmt.Fprintf(&b, "합계 %s\n", kiosk.FormatWon(snap.Total))
	return b.String()
}

func menuRows(items []models.MenuItem) []table.Row {
	rows := make([]table.Row, len(items))
	for i, item := range items {
		status := ""
		if item.SoldOut {
			status = "품절"
		}
		rows[i] = table.Row{item.ID, item.Name, kiosk.FormatWon(item.Price), status}
	}
	return rows
}

func fetchMenu(client *ApiClient, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		items, err := client.Menu(ctx)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching menu: %v", err)}
		}
		return menuMsg{items: items}
	}
}

func fetchSession(client *ApiClient, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		snap, err := client.Session(ctx)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching session: %v", err)}
		}
		return sessionMsg{snap: snap}
	}
}

func runCommand(client *ApiClient, timeout time.Duration, cmd command) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := execute(ctx, client, cmd)
		if err != nil {
			return errorMsg{err: err.Error()}
		}
		return actionMsg{resp: resp}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	apiURL := flag.String("api", envOr("KIOSK_API_URL", "http://localhost:8080"), "Kiosk API base URL")
	token := flag.String("token", os.Getenv("KIOSK_TOKEN"), "Device token when API auth is enabled")
	timeout := flag.Duration("timeout", 15*time.Second, "Per-request timeout")
	flag.Parse()

	client := NewApiClient(strings.TrimRight(*apiURL, "/"), *token, *timeout)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	err := client.CheckHealth(ctx)
	cancel()
	if err != nil {
		fmt.Printf("Kiosk API at %s is not available: %v\n", *apiURL, err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(client, *timeout), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
