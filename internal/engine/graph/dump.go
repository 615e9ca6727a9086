package graph

import (
	"fmt"
	"io"
	"strings"

	"go.trai.ch/pulse/internal/core/domain"
)

// Dump writes the instance tree with its bindings and forwards to w.
func (g *Graph) Dump(w io.Writer) error {
	for inst := range g.Walk() {
		depth := g.depth(inst)
		indent := strings.Repeat("  ", depth)
		if _, err := fmt.Fprintf(w, "%s%s (%s)\n", indent, inst.Name, inst.Symbol.Name); err != nil {
			return err
		}
		for _, b := range inst.inputs {
			if _, err := fmt.Fprintf(w, "%s  < %s%s\n", indent, b.Def.Name, g.describeBinding(b)); err != nil {
				return err
			}
		}
		for _, c := range inst.outputs {
			if _, err := fmt.Fprintf(w, "%s  > %s%s\n", indent, c.Def.Name, g.describeCell(c)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) depth(inst *Instance) int {
	d := 0
	for cur := inst; !cur.Parent.IsZero(); cur = g.instances[cur.Parent] {
		d++
	}
	return d
}

func (g *Graph) describeBinding(b *Binding) string {
	if len(b.sources) == 0 {
		if b.Def.Multi {
			return " []"
		}
		return fmt.Sprintf(" = %v", b.literal)
	}
	labels := make([]string, len(b.sources))
	for i, src := range b.sources {
		labels[i] = g.label(src)
	}
	return " <- " + strings.Join(labels, ", ")
}

func (g *Graph) describeCell(c *Cell) string {
	var sb strings.Builder
	if c.flag.Trigger != domain.TriggerNone {
		sb.WriteString(" [" + c.flag.Trigger.String() + "]")
	}
	if c.owner.IsComposite() {
		if c.forward.IsZero() {
			sb.WriteString(" -> (unforwarded)")
		} else {
			sb.WriteString(" -> " + g.label(c.forward))
		}
	}
	return sb.String()
}
