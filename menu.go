package main

import (
	"fmt"
	"strings"

	"qtermsim/sim"
)

// menuItem represents a single gate choice in the menu.
type menuItem struct {
	name        string
	gateType    sim.GateType
	symbol      string
	needsTarget bool
	angleHint   string // non-empty for rotations
}

// menuCategory groups related menu items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

// gateMenu defines the gate picker categories and items.
var gateMenu = []menuCategory{
	{
		name: "Single Qubit",
		items: []menuItem{
			{name: "Hadamard", gateType: sim.GateH, symbol: "H"},
			{name: "Pauli-X (NOT)", gateType: sim.GateX, symbol: "X"},
			{name: "Pauli-Y", gateType: sim.GateY, symbol: "Y"},
			{name: "Pauli-Z", gateType: sim.GateZ, symbol: "Z"},
		},
	},
	{
		name: "Rotation",
		items: []menuItem{
			{name: "Rotate X", gateType: sim.GateRX, symbol: "RX", angleHint: "pi/2"},
			{name: "Rotate Y", gateType: sim.GateRY, symbol: "RY", angleHint: "pi/2"},
			{name: "Rotate Z", gateType: sim.GateRZ, symbol: "RZ", angleHint: "pi/4"},
		},
	},
	{
		name: "Multi Qubit",
		items: []menuItem{
			{name: "CNOT", gateType: sim.GateCNOT, symbol: "●─⊕", needsTarget: true},
		},
	},
}

// renderMenu renders the floating gate-picker popup.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Add Gate"))
	sb.WriteString("\n")

	// Category tabs
	for i, cat := range gateMenu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeGateStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(gateMenu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 40)))
	sb.WriteString("\n")

	cat := gateMenu[m.menuCat]
	for i, item := range cat.items {
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-16s", item.name)))
			sb.WriteString(gateStyle.Render(item.symbol))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-16s", item.name)))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		if item.needsTarget {
			sb.WriteString(dimStyle.Render(" →target"))
		}
		if item.angleHint != "" {
			sb.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", item.angleHint)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Ok  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}

// selectedItem returns the highlighted menu entry.
func (m Model) selectedItem() menuItem {
	return gateMenu[m.menuCat].items[m.menuItem]
}
