package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fridgechef/internal/client"
	"fridgechef/internal/models"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const requestTimeout = 10 * time.Second

type focus int

const (
	focusTable focus = iota
	focusSearch
	focusAdd
	focusReceipt
)

// Model defines the application state
type Model struct {
	client   *client.APIClient
	debounce *client.Debouncer
	latest   *client.Latest

	fridge    []models.IngredientRecord
	table     table.Model
	search    textinput.Model
	addFields []textinput.Model
	addIndex  int
	recipes   models.RecipeResult
	spinner   spinner.Model

	receiptPath textinput.Model
	receipt     string

	// online is nil until the first health check answers
	online *bool

	focus   focus
	loading bool
	status  string
	error   string
	width   int
}

// Custom message types for the tea.Model
type fridgeMsg struct {
	seq   uint64
	items []models.IngredientRecord
}

type mutationMsg struct {
	seq     uint64
	message string
	items   []models.IngredientRecord
}

type recipesMsg struct {
	result models.RecipeResult
}

type recipeTickMsg struct{}

type searchTickMsg struct {
	ticket uint64
}

type healthMsg struct {
	err error
}

type receiptMsg struct {
	name string
	text string
}

type errorMsg struct {
	err string
}

func initialModel(c *client.APIClient) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Ingredient", Width: 24},
			{Title: "Amount", Width: 10},
			{Title: "Unit", Width: 8},
			{Title: "Added", Width: 17},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	search := textinput.New()
	search.Placeholder = "search ingredients"
	search.Prompt = "/ "
	search.CharLimit = 64

	placeholders := []string{"name", "amount", strings.Join(unitNames(), "|")}
	fields := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		fields[i] = textinput.New()
		fields[i].Placeholder = p
		fields[i].CharLimit = 64
	}

	path := textinput.New()
	path.Placeholder = "path to receipt image or pdf"
	path.Prompt = "receipt: "
	path.CharLimit = 256

	return Model{
		client:      c,
		debounce:    client.NewDebouncer(client.SearchDelay),
		latest:      &client.Latest{},
		table:       t,
		search:      search,
		addFields:   fields,
		spinner:     s,
		receiptPath: path,
		loading:     true,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, checkHealth(m.client), fetchFridge(m.client, m.latest, ""), fetchRecipes(m.client), pollRecipes())
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.focus {
		case focusSearch:
			return m.updateSearch(msg)
		case focusAdd:
			return m.updateAdd(msg)
		case focusReceipt:
			return m.updateReceipt(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "/":
			m.focus = focusSearch
			m.table.Blur()
			return m, m.search.Focus()
		case "a":
			m.focus = focusAdd
			m.table.Blur()
			m.addIndex = 0
			return m, m.addFields[0].Focus()
		case "u":
			m.focus = focusReceipt
			m.table.Blur()
			return m, m.receiptPath.Focus()
		case "d", "delete":
			row := m.table.SelectedRow()
			if row == nil {
				return m, nil
			}
			m.loading = true
			return m, removeIngredient(m.client, m.latest, row[0])
		case "r":
			m.loading = true
			return m, tea.Batch(fetchFridge(m.client, m.latest, m.search.Value()), fetchRecipes(m.client))
		}

	case searchTickMsg:
		if !m.debounce.Live(msg.ticket) {
			return m, nil
		}
		m.loading = true
		return m, fetchFridge(m.client, m.latest, m.search.Value())

	case fridgeMsg:
		m.loading = false
		if m.latest.Apply(msg.seq) {
			m.setFridge(msg.items)
			m.error = ""
		}
		return m, nil

	case mutationMsg:
		m.loading = false
		m.status = msg.message
		m.error = ""
		if m.latest.Apply(msg.seq) {
			m.setFridge(msg.items)
		}
		cmds := []tea.Cmd{fetchRecipes(m.client)}
		if q := m.search.Value(); q != "" {
			cmds = append(cmds, fetchFridge(m.client, m.latest, q))
		}
		return m, tea.Batch(cmds...)

	case recipeTickMsg:
		return m, tea.Batch(checkHealth(m.client), fetchRecipes(m.client), pollRecipes())

	case healthMsg:
		online := msg.err == nil
		m.online = &online
		return m, nil

	case receiptMsg:
		m.loading = false
		m.error = ""
		m.status = fmt.Sprintf("Parsed %s", msg.name)
		m.receipt = msg.text
		return m, nil

	case recipesMsg:
		m.recipes = msg.result
		return m, nil

	case errorMsg:
		m.loading = false
		m.error = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.search.Blur()
		m.table.Focus()
		m.focus = focusTable
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}

	ticket := m.debounce.Next()
	return m, tea.Batch(cmd, tea.Tick(m.debounce.Delay(), func(time.Time) tea.Msg {
		return searchTickMsg{ticket: ticket}
	}))
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.resetAddForm()
		return m, nil
	case "tab", "shift+tab":
		step := 1
		if msg.String() == "shift+tab" {
			step = len(m.addFields) - 1
		}
		m.addFields[m.addIndex].Blur()
		m.addIndex = (m.addIndex + step) % len(m.addFields)
		return m, m.addFields[m.addIndex].Focus()
	case "enter":
		if m.addIndex < len(m.addFields)-1 {
			m.addFields[m.addIndex].Blur()
			m.addIndex++
			return m, m.addFields[m.addIndex].Focus()
		}
		name := strings.TrimSpace(m.addFields[0].Value())
		value, err := strconv.ParseFloat(strings.TrimSpace(m.addFields[1].Value()), 64)
		if name == "" || err != nil {
			m.error = "Enter a name and a numeric amount"
			return m, nil
		}
		unit := strings.TrimSpace(m.addFields[2].Value())
		m.resetAddForm()
		m.loading = true
		return m, addIngredient(m.client, m.latest, name, value, unit)
	}

	var cmd tea.Cmd
	m.addFields[m.addIndex], cmd = m.addFields[m.addIndex].Update(msg)
	return m, cmd
}

func (m Model) updateReceipt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeReceiptForm()
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.receiptPath.Value())
		if path == "" {
			m.error = "Enter the path of a receipt file"
			return m, nil
		}
		m.closeReceiptForm()
		m.loading = true
		return m, uploadReceipt(m.client, path)
	}

	var cmd tea.Cmd
	m.receiptPath, cmd = m.receiptPath.Update(msg)
	return m, cmd
}

func (m *Model) closeReceiptForm() {
	m.receiptPath.Blur()
	m.receiptPath.SetValue("")
	m.focus = focusTable
	m.table.Focus()
}

func (m *Model) resetAddForm() {
	for i := range m.addFields {
		m.addFields[i].Blur()
		m.addFields[i].SetValue("")
	}
	m.addIndex = 0
	m.focus = focusTable
	m.table.Focus()
}

// setFridge replaces local state with a server snapshot
func (m *Model) setFridge(items []models.IngredientRecord) {
	m.fridge = items
	rows := make([]table.Row, len(items))
	for i, it := range items {
		rows[i] = table.Row{
			it.Name,
			strconv.FormatFloat(it.Quantity.Value, 'g', -1, 64),
			string(it.Quantity.Unit),
			it.CreatedAt.Local().Format("Jan 2 15:04"),
		}
	}
	m.table.SetRows(rows)
}

func fetchFridge(c *client.APIClient, latest *client.Latest, search string) tea.Cmd {
	seq := latest.Issue()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		items, err := c.ListFridge(ctx, search)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching fridge: %v", err)}
		}
		return fridgeMsg{seq: seq, items: items}
	}
}

func addIngredient(c *client.APIClient, latest *client.Latest, name string, value float64, unit string) tea.Cmd {
	seq := latest.Issue()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := c.AddIngredient(ctx, name, value, unit)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error adding %s: %v", name, err)}
		}
		return mutationMsg{seq: seq, message: res.Message, items: res.Fridge}
	}
}

func removeIngredient(c *client.APIClient, latest *client.Latest, name string) tea.Cmd {
	seq := latest.Issue()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := c.RemoveIngredient(ctx, name)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error removing %s: %v", name, err)}
		}
		return mutationMsg{seq: seq, message: res.Message, items: res.Fridge}
	}
}

func fetchRecipes(c *client.APIClient) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := c.Recipes(ctx)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching recipes: %v", err)}
		}
		return recipesMsg{result: res}
	}
}

func checkHealth(c *client.APIClient) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return healthMsg{err: c.CheckHealth(ctx)}
	}
}

func uploadReceipt(c *client.APIClient, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error opening receipt: %v", err)}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		name := filepath.Base(path)
		text, err := c.ParseReceipt(ctx, name, f)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error parsing %s: %v", name, err)}
		}
		return receiptMsg{name: name, text: text}
	}
}

func pollRecipes() tea.Cmd {
	return tea.Tick(client.RecipePollInterval, func(time.Time) tea.Msg {
		return recipeTickMsg{}
	})
}

func unitNames() []string {
	names := make([]string, len(models.Units))
	for i, u := range models.Units {
		names[i] = string(u)
	}
	return names
}

func main() {
	defaultURL := os.Getenv("FRIDGECHEF_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:4000"
	}
	apiURL := flag.String("api", defaultURL, "fridgechef API base URL")
	token := flag.String("token", os.Getenv("FRIDGECHEF_TOKEN"), "bearer token for mutating requests")
	flag.Parse()

	c := client.NewAPIClient(*apiURL, requestTimeout)
	c.Token = *token

	p := tea.NewProgram(initialModel(c), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
