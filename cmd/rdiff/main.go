// Command rdiff compares two versions of a source file, structurally for
// brace languages with conditional compilation, line by line for everything
// else.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/gops/agent"
	log "github.com/sirupsen/logrus"

	"github.com/randlee/roslyn-diff-sub001/changes"
	"github.com/randlee/roslyn-diff-sub001/config"
	"github.com/randlee/roslyn-diff-sub001/diff"
	"github.com/randlee/roslyn-diff-sub001/render"
	"github.com/randlee/roslyn-diff-sub001/structural"
	"github.com/randlee/roslyn-diff-sub001/syntax/csharp"
)

var (
	// To set this at build time, use go build -ldflags '-X main.version=something'.
	version = "unknown"

	cmdContext struct {
		base     string
		logLevel string
		targets  string
		mode     string
		format   string
		policy   string
		ignoreWS bool
		context  int
		version  bool
	}
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("rdiff", flag.ExitOnError)
	fs.StringVar(&cmdContext.base, "base", config.DefaultBaseDirectoryPath, "`directory` for configuration and logs")
	var levels []string
	for _, l := range log.AllLevels {
		levels = append(levels, l.String())
	}
	fs.StringVar(&cmdContext.logLevel, "verbosity", "warning", "sets the log `level`, among "+strings.Join(levels, ", "))
	fs.StringVar(&cmdContext.targets, "targets", "", "comma-separated `list` of target identifiers, e.g. net472,net8.0")
	fs.StringVar(&cmdContext.mode, "mode", "auto", "diff `mode`: auto, structural or lines")
	fs.StringVar(&cmdContext.format, "format", "", "output `format`: text, term or json (default: term on a terminal, text otherwise)")
	fs.StringVar(&cmdContext.policy, "ws", "", "whitespace `policy`: exact, trim, ignore-all or language-aware")
	fs.BoolVar(&cmdContext.ignoreWS, "b", false, "ignore leading and trailing whitespace (overridden by -ws)")
	fs.IntVar(&cmdContext.context, "U", -1, "number of unified context `lines` in line mode")
	fs.BoolVar(&cmdContext.version, "version", false, "show version information and exit")
	return fs
}

func exitUsage(fs *flag.FlagSet, msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [flags] OLDFILE NEWFILE\n", os.Args[0])
	fs.PrintDefaults()
	os.Exit(2)
}

func main() {
	fs := newFlagSet()
	_ = fs.Parse(os.Args[1:])
	if cmdContext.version {
		fmt.Println(version)
		return
	}
	if fs.NArg() != 2 {
		exitUsage(fs, fmt.Sprintf("expected 2 file arguments, got %d", fs.NArg()))
	}
	oldPath, newPath := fs.Arg(0), fs.Arg(1)

	log.SetOutput(os.Stderr)
	ll, err := log.ParseLevel(cmdContext.logLevel)
	if err != nil {
		log.Fatalf("Could not parse log level %q: %v", cmdContext.logLevel, err)
	}
	log.SetLevel(ll)

	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		log.Warningf("Could not start gops agent: %v", err)
	}

	cfg, err := config.Load(cmdContext.base)
	if err != nil {
		log.Fatalf("Could not load config from %q: %v", cmdContext.base, err)
	}

	oldText, err := readFile(oldPath)
	if err != nil {
		log.Fatalf("Could not read %q: %v", oldPath, err)
	}
	newText, err := readFile(newPath)
	if err != nil {
		log.Fatalf("Could not read %q: %v", newPath, err)
	}

	opts := structural.Options{
		Targets: splitTargets(cmdContext.targets, cfg.Targets),
		Mode:    pickMode(cmdContext.mode, newPath, oldPath, fs),
		Whitespace: diff.Options{
			LegacyIgnore: cmdContext.ignoreWS,
			OldPath:      oldPath,
			NewPath:      newPath,
		},
	}
	policyName := cmdContext.policy
	if policyName == "" {
		policyName = cfg.Whitespace
	}
	if policyName != "" {
		p, err := parsePolicy(policyName)
		if err != nil {
			exitUsage(fs, err.Error())
		}
		opts.Whitespace.Policy = p
		opts.Whitespace.PolicySet = true
	}

	engine := structural.NewEngine(csharp.New())
	result, err := engine.Compare(context.Background(), oldText, newText, opts)
	if err != nil {
		log.Fatalf("Could not compare %q and %q: %v", oldPath, newPath, err)
	}
	if diff.LineEndingsChanged(oldText, newText) {
		log.WithFields(log.Fields{"old": oldPath, "new": newPath}).Info("dominant line-ending style changed")
	}

	renderer, err := pickRenderer(cmdContext.format, cfg)
	if err != nil {
		exitUsage(fs, err.Error())
	}
	if err := renderer.Render(os.Stdout, result); err != nil {
		log.Fatalf("Could not render result: %v", err)
	}
	if result.Stats.Total() > 0 {
		os.Exit(1)
	}
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}

func splitTargets(flagValue string, configured []string) []string {
	if flagValue == "" {
		return configured
	}
	var out []string
	for _, t := range strings.Split(flagValue, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// pickMode maps "auto" to structural for the languages the parse provider
// understands, lines for everything else.
func pickMode(mode, newPath, oldPath string, fs *flag.FlagSet) changes.Mode {
	switch mode {
	case "structural":
		return changes.ModeStructural
	case "lines":
		return changes.ModeLines
	case "auto":
		path := newPath
		if path == "" {
			path = oldPath
		}
		lower := strings.ToLower(path)
		if strings.HasSuffix(lower, ".cs") || strings.HasSuffix(lower, ".vb") {
			return changes.ModeStructural
		}
		return changes.ModeLines
	}
	exitUsage(fs, fmt.Sprintf("%q: mode not recognized", mode))
	panic("not reached")
}

func parsePolicy(name string) (diff.Policy, error) {
	switch name {
	case "exact":
		return diff.Exact, nil
	case "trim", "ignore-leading-trailing":
		return diff.IgnoreLeadingTrailing, nil
	case "ignore-all":
		return diff.IgnoreAll, nil
	case "language-aware":
		return diff.LanguageAware, nil
	}
	return diff.Exact, fmt.Errorf("%q: whitespace policy not recognized", name)
}

func pickRenderer(format string, cfg *config.C) (render.Renderer, error) {
	if format == "" {
		format = cfg.Format
	}
	ctx := cfg.Context(render.DefaultContextLines)
	if cmdContext.context >= 0 {
		ctx = cmdContext.context
	}
	switch format {
	case "json":
		return render.NewJSON(), nil
	case "text":
		return render.NewText(ctx), nil
	case "term":
		return render.NewTerm(ctx), nil
	case "":
		if render.IsTerminal(os.Stdout) {
			return render.NewTerm(ctx), nil
		}
		return render.NewText(ctx), nil
	}
	return nil, fmt.Errorf("%q: format not recognized", format)
}
