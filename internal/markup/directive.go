package markup

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/blogbuilder/internal/directives"
	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// KindDirective is the AST node kind for body directives.
var KindDirective = gmast.NewNodeKind("Directive")

// directiveNode is the parsed form of one directive block:
//
//	.. name:: optional-argument
//	   :option: value
//	   :flag:
//
//	   indented content
//
// The block ends at the first non-indented, non-blank line.
type directiveNode struct {
	gmast.BaseBlock

	DirName string
	Arg     string
	Options map[string]string
	Content []byte
	Offset  int // byte offset of the marker line in the source
}

func (n *directiveNode) Kind() gmast.NodeKind { return KindDirective }

func (n *directiveNode) IsRaw() bool { return true }

func (n *directiveNode) Dump(source []byte, level int) {
	gmast.DumpHelper(n, source, level, map[string]string{
		"Name": n.DirName,
		"Arg":  n.Arg,
	}, nil)
}

var (
	markerPattern = regexp.MustCompile(`^\.\.[ \t]+([A-Za-z][A-Za-z0-9_-]*)::[ \t]*(.*)$`)
	optionPattern = regexp.MustCompile(`^:([A-Za-z][A-Za-z0-9_-]*):(?:[ \t]+(.*))?$`)
)

type directiveBlockParser struct{}

func (p *directiveBlockParser) Trigger() []byte { return []byte{'.'} }

func (p *directiveBlockParser) Open(parent gmast.Node, reader text.Reader, pc parser.Context) (gmast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 {
		return nil, parser.NoChildren
	}

	m := markerPattern.FindSubmatch(util.TrimRightSpace(line[pos:]))
	if m == nil {
		return nil, parser.NoChildren
	}

	node := &directiveNode{
		DirName: string(m[1]),
		Arg:     string(bytes.TrimSpace(m[2])),
		Options: map[string]string{},
		Offset:  segment.Start,
	}
	reader.Advance(segment.Len() - 1)
	return node, parser.NoChildren
}

func (p *directiveBlockParser) Continue(node gmast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	if util.IsBlank(line) {
		node.Lines().Append(segment)
		return parser.Continue | parser.NoChildren
	}
	if line[0] != ' ' && line[0] != '\t' {
		return parser.Close
	}

	node.Lines().Append(segment)
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (p *directiveBlockParser) Close(node gmast.Node, reader text.Reader, pc parser.Context) {
	d := node.(*directiveNode)
	d.parseBlock(blockLines(d, reader.Source()))
}

func (p *directiveBlockParser) CanInterruptParagraph() bool { return false }

func (p *directiveBlockParser) CanAcceptIndentedLine() bool { return false }

// blockLines collects the raw continuation lines of the block.
func blockLines(node *directiveNode, source []byte) [][]byte {
	lines := node.Lines()
	raw := make([][]byte, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		raw = append(raw, bytes.TrimRight(seg.Value(source), "\r\n"))
	}
	return raw
}

// parseBlock splits the continuation lines into leading option lines and
// dedented content.
func (d *directiveNode) parseBlock(lines [][]byte) {
	i := 0
	for ; i < len(lines); i++ {
		trimmed := bytes.TrimSpace(lines[i])
		if len(trimmed) == 0 {
			break
		}
		m := optionPattern.FindSubmatch(trimmed)
		if m == nil {
			break
		}
		d.Options[string(m[1])] = string(bytes.TrimSpace(m[2]))
	}

	content := lines[i:]
	for len(content) > 0 && len(bytes.TrimSpace(content[0])) == 0 {
		content = content[1:]
	}
	for len(content) > 0 && len(bytes.TrimSpace(content[len(content)-1])) == 0 {
		content = content[:len(content)-1]
	}
	if len(content) == 0 {
		return
	}

	d.Content = bytes.Join(dedent(content), []byte("\n"))
	d.Content = append(d.Content, '\n')
}

// dedent strips the common leading whitespace of the non-blank lines.
func dedent(lines [][]byte) [][]byte {
	indent := -1
	for _, line := range lines {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		n := 0
		for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
			n++
		}
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return lines
	}

	out := make([][]byte, len(lines))
	for i, line := range lines {
		if len(line) >= indent {
			out[i] = line[indent:]
		} else {
			out[i] = nil
		}
	}
	return out
}

// directiveHTMLRenderer dispatches directive nodes to their handlers and
// splices the returned fragments into the output document.
type directiveHTMLRenderer struct {
	registry *directives.Registry
	dctx     *directives.Context
}

func (r *directiveHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindDirective, r.render)
}

func (r *directiveHTMLRenderer) render(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	if !entering {
		return gmast.WalkContinue, nil
	}

	d := node.(*directiveNode)
	line := 1 + bytes.Count(source[:d.Offset], []byte("\n"))

	handler, ok := r.registry.Lookup(d.DirName)
	if !ok {
		return gmast.WalkStop, apperrors.DirectiveFailed(d.DirName, line,
			apperrors.New(apperrors.CategoryDirective, apperrors.SeverityError, "unknown directive"))
	}

	fragment, err := handler.Render(r.dctx, &directives.Invocation{
		Name:    d.DirName,
		Arg:     d.Arg,
		Options: d.Options,
		Content: d.Content,
		Line:    line,
	})
	if err != nil {
		return gmast.WalkStop, apperrors.DirectiveFailed(d.DirName, line, err)
	}

	_, _ = w.WriteString(fragment)
	_ = w.WriteByte('\n')
	return gmast.WalkContinue, nil
}

// directiveExtension wires the block parser and renderer into goldmark.
type directiveExtension struct {
	registry *directives.Registry
	dctx     *directives.Context
}

func (e *directiveExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(&directiveBlockParser{}, 500),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&directiveHTMLRenderer{registry: e.registry, dctx: e.dctx}, 500),
	))
}
