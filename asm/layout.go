package asm

import "github.com/tjbrennan/cm0asm/node"

// Layout is a Program with absolute addresses resolved and the synthetic
// system-call tail appended to .text: user text, then print_char,
// print_int, the __STARTUP trampoline and finally the stop sentinel.
type Layout struct {
	Text        []node.Cell
	BSS         []node.Cell
	Data        []node.Cell
	Labels      map[string]node.Label
	StackSize   uint32
	StartupAddr uint32 // initial PC
}

// BuildLayout finalizes a Program: appends the four synthetic cells,
// registers the reserved labels (print_char, print_int, __STACKSIZE),
// and rewrites every label from (section, cell index) to an absolute
// byte address using the fixed region order [stack][.text][.bss][.data].
func BuildLayout(p *Program, stackSize uint32, startLabel string) *Layout {
	printCharIdx := len(p.Text)
	printIntIdx := len(p.Text) + 1
	startupIdx := len(p.Text) + 2

	text := make([]node.Cell, 0, len(p.Text)+4)
	text = append(text, p.Text...)
	text = append(text,
		node.SystemCall("print_char", behaviorPrintChar),
		node.SystemCall("print_int", behaviorPrintInt),
		node.SystemCall("__STARTUP", behaviorStartup(startLabel)),
		node.SystemCall("__STOP", behaviorStop),
	)

	labels := make(map[string]node.Label, len(p.Labels)+3)
	for _, l := range p.Labels {
		labels[l.Name] = l
	}
	labels["print_char"] = node.Label{Name: "print_char", Section: node.SectionText, CellIndex: printCharIdx}
	labels["print_int"] = node.Label{Name: "print_int", Section: node.SectionText, CellIndex: printIntIdx}
	// __STACKSIZE resolves numerically to stackSize itself: a Text label
	// at cell index 0 whose base offset IS stackSize.
	labels["__STACKSIZE"] = node.Label{Name: "__STACKSIZE", Section: node.SectionText, CellIndex: 0}

	for name, l := range labels {
		var base uint32
		switch l.Section {
		case node.SectionText:
			base = stackSize
		case node.SectionBSS:
			base = stackSize + uint32(len(text))*4
		case node.SectionData:
			base = stackSize + uint32(len(text))*4 + uint32(len(p.BSS))*4
		}
		l.Address = base + uint32(l.CellIndex)*4
		labels[name] = l
	}

	return &Layout{
		Text:        text,
		BSS:         p.BSS,
		Data:        p.Data,
		Labels:      labels,
		StackSize:   stackSize,
		StartupAddr: stackSize + uint32(startupIdx)*4,
	}
}
