package lang

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/expr-lang/expr/ast"

	"github.com/ardnew/ddpaper/log"
)

// memberPatcher rewrites every member access x[p] into the strict lookup
// __member__(x, p, path), where path names the accessed value for error
// messages. The tree is walked bottom-up, so x has already been rewritten
// when its parent is visited.
type memberPatcher struct {
	logger log.Logger
}

// Visit implements ast.Visitor for memberPatcher.
func (p *memberPatcher) Visit(node *ast.Node) {
	m, ok := (*node).(*ast.MemberNode)
	if !ok {
		return
	}

	path := memberPath(m)

	ast.Patch(node, &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: memberFunc},
		Arguments: []ast.Node{m.Node, m.Property, &ast.StringNode{Value: path}},
	})

	p.logger.Trace("patch member", slog.String("path", path))
}

// memberPath describes the value selected by m in path syntax.
func memberPath(m *ast.MemberNode) string {
	var base string

	switch n := m.Node.(type) {
	case *ast.IdentifierNode:
		if n.Value != "$env" {
			base = n.Value
		}

	case *ast.CallNode:
		base = "value"

		if id, ok := n.Callee.(*ast.IdentifierNode); ok && id.Value == memberFunc &&
			len(n.Arguments) == 3 {
			if s, ok := n.Arguments[2].(*ast.StringNode); ok {
				base = s.Value
			}
		}

	default:
		base = "value"
	}

	switch prop := m.Property.(type) {
	case *ast.StringNode:
		switch {
		case base == "":
			return prop.Value
		case isIdent(prop.Value):
			return base + "." + prop.Value
		default:
			return base + "[" + quoteSingle(prop.Value) + "]"
		}

	case *ast.IntegerNode:
		return base + "[" + strconv.Itoa(prop.Value) + "]"

	case *ast.UnaryNode:
		return base + "[" + prop.Operator + strings.TrimSpace(prop.Node.String()) + "]"
	}

	return base + "[?]"
}
