/*
Command mdinspect is an interactive console for inspecting the conversion
of a Markdown document: its token tree, render plan, fonts and diagnostics.

	mdinspect [flags] document.md

Flags select fonts and style sheet the way a converter would. Inside the
console, type "help" for a list of commands.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/font/fontregistry"
	"github.com/npillmayer/mdpdf/engine/convert"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	flag "github.com/spf13/pflag"
)

// tracer traces with key 'mdpdf.inspect'
func tracer() tracing.Trace {
	return tracing.Select("mdpdf.inspect")
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.StringP("trace", "t", "Error", "Trace level [Debug|Info|Error]")
	stylePath := flag.StringP("style", "s", "", "Style sheet (.toml or .css)")
	defaultFont := flag.String("font", "", "Font for body text")
	codeFont := flag.String("code-font", "", "Font for code")
	fallbacks := flag.StringSlice("fallback", nil, "Fallback fonts, in order of preference")
	fontDirs := flag.StringSlice("font-dir", nil, "Additional font directories")
	continueNumbering := flag.Bool("continue-numbering", false, "Continue numbering of interrupted lists")
	noSubset := flag.Bool("no-subset", false, "Embed complete fonts")
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":      "go",
		"trace.mdpdf.inspect":  *tlevel,
		"trace.mdpdf.convert":  *tlevel,
		"trace.mdpdf.font":     *tlevel,
		"trace.mdpdf.subset":   *tlevel,
		"trace.mdpdf.markdown": *tlevel,
		"trace.mdpdf.plan":     *tlevel,
		"trace.mdpdf.style":    *tlevel,
		"trace.mdpdf.validate": *tlevel,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	pterm.Info.Println("Welcome to the Markdown inspection console")

	opts := convert.DefaultOptions()
	opts.Catalog = fontregistry.NewCatalog(nil, *fontDirs...)
	opts.Fonts.DefaultFont = *defaultFont
	opts.Fonts.CodeFont = *codeFont
	opts.Fonts.Fallbacks = *fallbacks
	opts.Fonts.Subsetting = !*noSubset
	opts.Plan.ContinueNumbering = *continueNumbering
	if *stylePath != "" {
		table, err := convert.LoadStyleSheet(*stylePath)
		if err != nil {
			pterm.Warning.Printfln("%s, using built-in styles", core.UserMessage(err))
		} else {
			opts.Style = table
		}
		opts.StylePath = *stylePath
	}
	//
	// set up REPL
	repl, err := readline.New("md > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl, opts: opts}
	if flag.NArg() > 0 {
		if err := intp.load(flag.Arg(0)); err != nil {
			core.UserError(err)
			os.Exit(4)
		}
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func (intp *Intp) load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.WrapError(err, core.EMISSING, "cannot read %s", path)
	}
	intp.path, intp.text, intp.result = path, string(data), nil
	intp.opts.BaseDir = filepath.Dir(path)
	pterm.Info.Printfln("loaded %s (%d bytes)", path, len(data))
	return nil
}
