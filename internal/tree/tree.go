// Package tree shapes hardware readings into the display-node tree served
// as data.json.
package tree

import (
	"hwmonitor/internal/hardware"
)

const RootText = "Sensor"

// Node is one row of the display tree. Min, Value, Max and ImageURL are
// always serialised, empty when they do not apply.
type Node struct {
	ID       int     `json:"id"`
	Text     string  `json:"Text"`
	Min      string  `json:"Min"`
	Value    string  `json:"Value"`
	Max      string  `json:"Max"`
	ImageURL string  `json:"ImageURL"`
	Children []*Node `json:"Children"`
	Type     string  `json:"Type,omitempty"`
	SensorID string  `json:"SensorId,omitempty"`
}

type Builder struct {
	hostname  string
	formatter *hardware.ValueFormatter
}

func NewBuilder(hostname string, formatter *hardware.ValueFormatter) *Builder {
	return &Builder{hostname: hostname, formatter: formatter}
}

// Build converts the computer's current readings into a tree. The caller
// must hold exclusive access to c for the duration of the call.
func (b *Builder) Build(c hardware.Computer) *Node {
	s := &build{formatter: b.formatter}

	root := s.node(RootText)
	host := s.node(b.hostname)
	root.Children = append(root.Children, host)

	for _, hw := range c.Hardware() {
		host.Children = append(host.Children, s.hardware(hw))
	}

	return root
}

// build carries the id counter of a single Build call.
type build struct {
	next      int
	formatter *hardware.ValueFormatter
}

func (s *build) node(text string) *Node {
	n := &Node{ID: s.next, Text: text, Children: []*Node{}}
	s.next++
	return n
}

func (s *build) hardware(hw *hardware.Hardware) *Node {
	n := s.node(hw.Name)
	n.Type = hw.Type.String()

	for _, group := range hardware.GroupByType(hw.Sensors) {
		n.Children = append(n.Children, s.group(group))
	}
	for _, sub := range hw.SubHardware {
		n.Children = append(n.Children, s.hardware(sub))
	}

	return n
}

func (s *build) group(sensors []*hardware.Sensor) *Node {
	kind := sensors[0].Type
	n := s.node(kind.Plural())

	for _, sensor := range sensors {
		child := s.node(sensor.Name)
		child.Min, child.Value, child.Max = s.formatter.Sensor(sensor)
		child.Type = kind.String()
		child.SensorID = sensor.Identifier
		n.Children = append(n.Children, child)
	}

	return n
}

// Walk visits n and its descendants in pre-order.
func Walk(n *Node, fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
