// Package tui provides an interactive calculator that recomputes tax as the
// user types.
package tui

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/taxflow/internal/model"
)

// Calculator is the subset of the engine the TUI needs.
type Calculator interface {
	Calculate(in model.TaxInput) (model.TaxResult, error)
}

type field int

const (
	fieldIncome field = iota
	fieldItemized
	fieldCredits
	fieldYear
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldIncome:   "Gross income",
	fieldItemized: "Itemized deduction",
	fieldCredits:  "Credits",
	fieldYear:     "Tax year",
}

// Model is the main TUI model.
type Model struct {
	calc     Calculator
	err      error
	help     help.Model
	keymap   KeyMap
	config   Config
	inputs   []textinput.Model
	result   model.TaxResult
	status   model.FilingStatus
	focus    field
	width    int
	itemize  bool
	showHelp bool
}

// New creates the calculator model and computes the initial result.
func New(calc Calculator, cfg Config) Model {
	m := Model{
		calc:    calc,
		config:  cfg,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		status:  cfg.Status,
		itemize: cfg.Itemize,
		inputs:  make([]textinput.Model, fieldCount),
	}

	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 16
		ti.Width = 16
		m.inputs[i] = ti
	}
	m.inputs[fieldIncome].Placeholder = "50,000"
	m.inputs[fieldItemized].Placeholder = "0"
	m.inputs[fieldCredits].Placeholder = "0"
	m.inputs[fieldYear].SetValue(strconv.Itoa(cfg.Year))
	m.inputs[fieldYear].CharLimit = 4
	m.inputs[fieldIncome].Focus()

	m.recalculate()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keymap.ToggleHelp):
			m.showHelp = !m.showHelp
			m.help.ShowAll = m.showHelp
			return m, nil
		case key.Matches(msg, m.keymap.Next):
			return m, m.setFocus((m.focus + 1) % fieldCount)
		case key.Matches(msg, m.keymap.Prev):
			return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		case key.Matches(msg, m.keymap.CycleStatus):
			m.status = m.status.Next()
			m.recalculate()
			return m, nil
		case key.Matches(msg, m.keymap.ToggleDeduction):
			m.itemize = !m.itemize
			m.recalculate()
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.inputs[m.focus].Value()
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.inputs[m.focus].Value() != before {
		m.recalculate()
	}
	return m, cmd
}

func (m *Model) setFocus(f field) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = f
	return m.inputs[m.focus].Focus()
}

// Input builds the calculation input from the current field values.
func (m Model) Input() model.TaxInput {
	year := int(parseAmount(m.inputs[fieldYear].Value()))
	if year <= 0 {
		year = m.config.Year
	}
	return model.TaxInput{
		Jurisdiction:         m.config.Jurisdiction,
		FilingStatus:         m.status,
		Year:                 year,
		GrossIncome:          parseAmount(m.inputs[fieldIncome].Value()),
		ItemizedDeduction:    parseAmount(m.inputs[fieldItemized].Value()),
		Credits:              parseAmount(m.inputs[fieldCredits].Value()),
		UseStandardDeduction: !m.itemize,
	}
}

// Result returns the most recent calculation.
func (m Model) Result() model.TaxResult {
	return m.result
}

// Err returns the error from the most recent calculation, if any.
func (m Model) Err() error {
	return m.err
}

func (m *Model) recalculate() {
	result, err := m.calc.Calculate(m.Input())
	m.err = err
	if err != nil {
		m.result = model.TaxResult{}
		return
	}
	m.result = result
}

// parseAmount reads a user-typed number. Thousands separators and currency
// symbols are ignored; anything unparseable is 0.
func parseAmount(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', '_', ' ', '$', '£', '€':
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
