package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/font"
	"github.com/npillmayer/mdpdf/core/font/subset"
	"github.com/npillmayer/mdpdf/engine/convert"
	"github.com/npillmayer/mdpdf/input/markdown"
	"github.com/pterm/pterm"
)

// Intp is our interpreter object
type Intp struct {
	repl   *readline.Instance
	opts   convert.Options
	path   string
	text   string
	result *convert.Result
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd := parseCommand(line)
		quit, err := intp.execute(cmd)
		if err != nil {
			pterm.Error.Println(core.UserMessage(err))
			tracer().Infof(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Op is a console operation.
type Op int

const (
	QUIT Op = iota
	HELP
	LOAD
	TOKENS
	PLAN
	FONTS
	CHARS
	CHECK
)

// Command is an operation with its arguments, as in "plan:20" or
// "tokens:json".
type Command struct {
	op   Op
	arg  string
	line string
}

func parseCommand(line string) Command {
	c := strings.SplitN(strings.TrimSpace(line), ":", 2)
	cmd := Command{line: line, op: HELP}
	if len(c) > 1 {
		cmd.arg = strings.TrimSpace(c[1])
	}
	switch strings.ToLower(c[0]) {
	case "quit", "exit":
		cmd.op = QUIT
	case "load":
		cmd.op = LOAD
	case "tokens", "tree":
		cmd.op = TOKENS
	case "plan":
		cmd.op = PLAN
	case "fonts":
		cmd.op = FONTS
	case "chars", "subset":
		cmd.op = CHARS
	case "check":
		cmd.op = CHECK
	case "help":
		cmd.arg = ""
	default:
		cmd.arg = c[0]
	}
	tracer().Debugf("parse command = %v", cmd)
	return cmd
}

func (intp *Intp) execute(cmd Command) (bool, error) {
	switch cmd.op {
	case QUIT:
		return true, nil
	case HELP:
		help(cmd.arg)
		return false, nil
	case LOAD:
		return false, intp.load(cmd.arg)
	}
	if intp.path == "" {
		return false, errors.New("no document loaded; use load:<file>")
	}
	switch cmd.op {
	case TOKENS:
		return false, intp.tokens(cmd.arg)
	case CHECK:
		return false, intp.check()
	}
	res, err := intp.convert()
	if err != nil {
		return false, err
	}
	switch cmd.op {
	case PLAN:
		n := len(res.Plan.Instructions)
		if cmd.arg != "" {
			if n, err = strconv.Atoi(cmd.arg); err != nil {
				return false, core.Error(core.EINVALID, "not a number: %s", cmd.arg)
			}
		}
		for i, ins := range res.Plan.Instructions {
			if i >= n {
				pterm.Printfln("... %d more", len(res.Plan.Instructions)-n)
				break
			}
			pterm.Printfln("%4d %v", i, ins)
		}
	case FONTS:
		fontTable(res)
	case CHARS:
		charsTable(res.Plan.Used)
	}
	return false, nil
}

func (intp *Intp) convert() (*convert.Result, error) {
	if intp.result != nil {
		return intp.result, nil
	}
	res, err := convert.Convert(intp.text, intp.opts)
	if err != nil {
		return nil, err
	}
	intp.result = res
	return res, nil
}

func (intp *Intp) tokens(format string) error {
	doc := markdown.Lex(intp.text)
	if format == "json" {
		return markdown.Dump(os.Stdout, doc.Tokens)
	}
	root := pterm.TreeNode{Text: intp.path}
	for _, t := range doc.Tokens {
		root.Children = append(root.Children, treeNode(t))
	}
	return pterm.DefaultTree.WithRoot(root).Render()
}

func treeNode(t *markdown.Token) pterm.TreeNode {
	n := pterm.TreeNode{Text: t.Kind.String()}
	switch {
	case t.Kind == markdown.Heading:
		n.Text = fmt.Sprintf("%s %d", n.Text, t.Level)
	case t.Kind == markdown.Emphasis:
		n.Text = fmt.Sprintf("%s level %d", n.Text, t.Level)
	case t.Kind == markdown.Link || t.Kind == markdown.Image:
		n.Text = fmt.Sprintf("%s → %s", n.Text, t.Dest)
	case t.Kind == markdown.ListItem:
		n.Text = fmt.Sprintf("%s depth %d", n.Text, t.Depth)
	}
	if t.Text != "" {
		n.Text = fmt.Sprintf("%s %q", n.Text, t.Text)
	}
	for _, ch := range t.Children {
		n.Children = append(n.Children, treeNode(ch))
	}
	return n
}

func (intp *Intp) check() error {
	rep, err := convert.DryRun(intp.text, intp.opts)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("%d blocks, %d tokens, %d images", rep.Blocks, rep.Tokens, rep.Images)
	if rep.OK() {
		pterm.Success.Println("no issues found")
	}
	for _, d := range rep.Diagnostics {
		pterm.Warning.Printfln("[%s] %v", d.Kind, d)
	}
	return nil
}

func fontTable(res *convert.Result) {
	data := pterm.TableData{{"Font", "Used by", "Characters", "Embedded"}}
	for _, emb := range res.Fonts {
		keys := make([]string, len(emb.Keys))
		for i, k := range emb.Keys {
			keys[i] = k.String()
		}
		size := subset.FormatBytes(len(emb.Data()))
		if emb.IsSubset() {
			size = fmt.Sprintf("%s of %s (%d glyphs)", size, subset.FormatBytes(len(emb.Font.Binary)),
				emb.Blob.NumGlyphs())
		}
		data = append(data, []string{emb.Font.Fontname, strings.Join(keys, ", "),
			strconv.Itoa(emb.Chars.Len()), size})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	for _, d := range res.Diagnostics {
		pterm.Warning.Println(d.Message)
	}
}

func charsTable(used subset.UsedCharacters) {
	data := pterm.TableData{{"Role", "Count", "Characters"}}
	for _, role := range font.Roles() {
		s, ok := used[role]
		if !ok {
			continue
		}
		data = append(data, []string{role.String(), strconv.Itoa(s.Len()), s.String()})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	if topic != "" {
		pterm.Error.Printfln("unknown command: %s", topic)
	}
	pterm.Info.Println("Commands")
	pterm.Println(`
	load:<file>     load a Markdown document
	tokens[:json]   show the token tree, optionally as JSON
	plan[:n]        show the first n instructions of the render plan
	fonts           show the fonts to embed and their subsets
	chars           show the characters used per font role
	check           check the document without converting it
	quit            leave the console
	`)
}
