package cmd

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"

	"sim86/internal/binimg"
	"sim86/internal/config"
	"sim86/internal/cpu"
	"sim86/internal/decoder"
	"sim86/internal/disasm"
	"sim86/internal/sim86/styles"
	"sim86/internal/ui/colorize"
)

type viewMode int

const (
	viewListing viewMode = iota
	viewInstructions
	viewRegisters
	viewCount
)

type instItem struct {
	inst disasm.Inst
}

func (i instItem) Title() string       { return fmt.Sprintf("%04x  %s", i.inst.Addr, i.inst.Text) }
func (i instItem) Description() string { return "" }
func (i instItem) FilterValue() string { return i.inst.Text }

type itemDelegate struct {
	noColor bool
}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(instItem)
	if !ok {
		return
	}
	indicator := " "
	addrStyle := styles.Address
	if index == m.Index() {
		indicator = ">"
		addrStyle = styles.Selected
	}
	fmt.Fprintf(w, " %s  %s  %s",
		indicator,
		addrStyle.Render(fmt.Sprintf("%04x", i.inst.Addr)),
		colorize.Line(i.inst.Text, d.noColor))
}

type model struct {
	listing   viewport.Model
	insts     list.Model
	registers viewport.Model
	spinner   spinner.Model
	mode      viewMode

	// data is a private copy of the image: the decode command may still
	// run after the program exits and the image is unmapped.
	data   []byte
	path   string
	cfg    config.Config
	digest string

	decoding    bool
	stream      disasm.Stream
	decodeErr   error
	regs        string
	headerLines int

	width  int
	height int
}

type decodedMsg struct {
	stream disasm.Stream
	err    error
	regs   string
}

// decodeCmd decodes the image and runs the register simulator over the
// decoded text.
func decodeCmd(data []byte, origin uint32) tea.Cmd {
	return func() tea.Msg {
		decoded, err := decoder.Decode(data)
		stream := disasm.Build(origin, decoded)

		var text strings.Builder
		for _, ins := range stream {
			text.WriteString(ins.Text)
			text.WriteByte('\n')
		}
		var c cpu.CPU
		var regs bytes.Buffer
		if simErr := c.Simulate(strings.NewReader(text.String()), nil); simErr != nil {
			fmt.Fprintf(&regs, "; simulation stopped: %v\n", simErr)
		}
		_ = c.Dump(&regs)

		return decodedMsg{stream: stream, err: err, regs: regs.String()}
	}
}

func NewModel(img *binimg.Image, cfg config.Config) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	insts := list.New([]list.Item{}, itemDelegate{noColor: cfg.NoColor}, 80, 24)
	insts.SetShowStatusBar(false)
	insts.SetFilteringEnabled(true)
	insts.Title = "Instructions"
	insts.Styles.Title = styles.ListTitle
	insts.SetShowHelp(true)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	rvp := viewport.New()
	rvp.SetWidth(80)
	rvp.SetHeight(24)

	m := model{
		listing:   vp,
		insts:     insts,
		registers: rvp,
		spinner:   s,
		mode:      viewListing,
		data:      bytes.Clone(img.All),
		path:      img.Path,
		cfg:       cfg,
		digest:    img.Digest(),
		decoding:  true,
		width:     80,
		height:    24,
	}
	m.updateContent()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		decodeCmd(m.data, m.cfg.Origin),
		m.spinner.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case decodedMsg:
		m.decoding = false
		m.stream = msg.stream
		m.decodeErr = msg.err
		m.regs = msg.regs
		m.updateInstructions()
		m.updateContent()
		return m, nil

	case spinner.TickMsg:
		if !m.decoding {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateContent()
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.listing.SetWidth(msg.Width)
			m.listing.SetHeight(msg.Height - 2)
			m.insts.SetWidth(msg.Width)
			m.insts.SetHeight(msg.Height - 2)
			m.registers.SetWidth(msg.Width)
			m.registers.SetHeight(msg.Height - 2)
			m.updateContent()
		}

	case tea.KeyMsg:
		if m.mode == viewInstructions && m.insts.FilterState() == list.Filtering {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "l":
			m.mode = viewListing
			return m, nil
		case "i":
			m.mode = viewInstructions
			return m, nil
		case "r":
			m.mode = viewRegisters
			return m, nil
		case "tab":
			m.cycle(1)
			return m, nil
		case "shift+tab":
			m.cycle(-1)
			return m, nil
		case "enter":
			if m.mode == viewInstructions {
				m.jumpToSelected()
			}
			return m, nil
		}
	}

	switch m.mode {
	case viewInstructions:
		m.insts, cmd = m.insts.Update(msg)
	case viewRegisters:
		m.registers, cmd = m.registers.Update(msg)
	default:
		m.listing, cmd = m.listing.Update(msg)
	}
	return m, cmd
}

func (m *model) cycle(step int) {
	m.mode = (m.mode + viewMode(step) + viewCount) % viewCount
}

// jumpToSelected shows the listing scrolled to the selected instruction.
func (m *model) jumpToSelected() {
	item, ok := m.insts.SelectedItem().(instItem)
	if !ok {
		return
	}
	for n, ins := range m.stream {
		if ins.Addr == item.inst.Addr {
			m.mode = viewListing
			m.listing.SetYOffset(m.headerLines + n)
			return
		}
	}
}

func (m model) View() string {
	var content string
	var menu string
	switch m.mode {
	case viewInstructions:
		content = m.insts.View()
		menu = " Enter: show in listing • /: filter • L: listing • R: registers • Tab: cycle • Q: quit "
	case viewRegisters:
		content = m.registers.View()
		menu = " L: listing • I: instructions • Tab: cycle • Q: quit "
	default:
		content = m.listing.View()
		menu = " I: instructions • R: registers • Tab: cycle • Q: quit "
	}
	return content + "\n" + styles.MenuBar.Width(m.width).Render(menu)
}

// updateContent renders the summary header above the listing.
func (m *model) updateContent() {
	lines := []string{
		"; " + m.path,
		"; " + m.digest,
		fmt.Sprintf("; %d bytes, origin %04x", len(m.data), m.cfg.Origin),
	}
	if !m.decoding {
		lines = append(lines, fmt.Sprintf("; %d instructions", len(m.stream)))
	}
	md := fmt.Sprintf("# sim86\n\n```\n%s\n```", strings.Join(lines, "\n"))
	if m.decoding {
		md += fmt.Sprintf("\n\n%s Decoding...", m.spinner.View())
	}
	if m.decodeErr != nil {
		md += "\n\n**Decoding stopped:** `" + m.decodeErr.Error() + "`"
	}

	width := m.width
	if width == 0 {
		width = 80
	}
	header := strings.TrimSuffix(styles.RenderMarkdown(md, width-2), "\n")
	m.headerLines = strings.Count(header, "\n") + 1

	var body strings.Builder
	body.WriteString(header)
	body.WriteByte('\n')
	if len(m.stream) > 0 {
		var listing bytes.Buffer
		opts := disasm.LineOptions{Offsets: m.cfg.Offsets, Bytes: m.cfg.Bytes}
		_ = m.stream.Write(&listing, false, opts)
		text, _ := colorize.Listing(listing.String(), m.cfg.NoColor)
		body.WriteString(text)
	}
	if m.decodeErr != nil {
		body.WriteString(styles.Error.Render("; " + m.decodeErr.Error()))
	}
	m.listing.SetContent(strings.TrimSuffix(body.String(), "\n"))
	m.registers.SetContent(m.regs)
}

func (m *model) updateInstructions() {
	items := make([]list.Item, 0, len(m.stream))
	for _, ins := range m.stream {
		items = append(items, instItem{inst: ins})
	}
	m.insts.SetItems(items)
}
