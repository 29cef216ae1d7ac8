package structural

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/randlee/roslyn-diff-sub001/changes"
	"github.com/randlee/roslyn-diff-sub001/diff"
	"github.com/randlee/roslyn-diff-sub001/syntax"
	"github.com/randlee/roslyn-diff-sub001/target"
)

// concurrencyThreshold is the target count at which the per-target fan-out
// switches from sequential to one goroutine per target.
const concurrencyThreshold = 3

// defaultTarget supplies the symbol set for the single-parse path when no
// targets were requested at all.
const defaultTarget = "net8.0"

// Options parameterize one comparison.
type Options struct {
	// Targets lists the requested target identifiers. Empty means single
	// parse under the default symbol set.
	Targets []string
	// Mode selects structural or line diffing.
	Mode changes.Mode
	// Whitespace feeds the line differ and carries the path hints.
	Whitespace diff.Options
}

// Engine is the multi-target orchestrator: it owns the parse provider and a
// per-run symbol cache, decides between the single-parse path and the
// per-target fan-out, and assembles merged, classified results.
type Engine struct {
	provider syntax.Provider
}

func NewEngine(provider syntax.Provider) *Engine {
	return &Engine{provider: provider}
}

// Compare diffs two versions of a file. All inputs are supplied up front;
// the context only matters for cancelling a multi-target fan-out. The
// returned result is immutable.
func (e *Engine) Compare(ctx context.Context, oldText, newText string, opts Options) (*changes.DiffResult, error) {
	result := &changes.DiffResult{
		OldPath: opts.Whitespace.OldPath,
		NewPath: opts.Whitespace.NewPath,
		Mode:    opts.Mode,
	}
	if opts.Mode == changes.ModeLines {
		root := diff.Lines(oldText, newText, opts.Whitespace)
		Classify(root)
		result.Changes = []*changes.Node{root}
		result.Stats = changes.Count(result.Changes)
		return result, nil
	}
	if e.provider == nil {
		return nil, fmt.Errorf("structural mode requires a parse provider")
	}

	// Malformed identifiers fail before any parsing or diffing: silently
	// diffing against the wrong target set could hide platform-specific
	// regressions. With a mix of valid and invalid targets only the
	// invalid ones are dropped.
	cache := target.NewCache()
	var valid []string
	var firstErr error
	for _, id := range opts.Targets {
		if _, _, err := cache.Resolve(id); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			log.WithField("target", id).Warn("skipping unresolvable target")
			continue
		}
		valid = append(valid, id)
	}
	if firstErr != nil && len(valid) == 0 {
		return nil, firstErr
	}

	if len(valid) == 0 || !syntax.HasDirectivesEither(oldText, newText) {
		// Single-parse optimization: without directives every target sees
		// the same tree, so one pass under one symbol set is exact.
		symbols := e.symbolsForSinglePass(cache, valid)
		root := e.diffOnce(oldText, newText, symbols)
		Classify(root)
		result.Changes = []*changes.Node{root}
		result.Stats = changes.Count(result.Changes)
		return result, nil
	}

	variants, err := e.fanOut(ctx, oldText, newText, cache, valid)
	if err != nil {
		return nil, err
	}
	result.AnalyzedTargets = valid
	result.Changes = mergeTargets(valid, variants)
	for _, root := range result.Changes {
		Classify(root)
	}
	result.Stats = changes.Count(result.Changes)
	return result, nil
}

func (e *Engine) symbolsForSinglePass(cache *target.Cache, valid []string) *target.SymbolSet {
	id := defaultTarget
	if len(valid) > 0 {
		id = valid[0]
	}
	_, symbols, err := cache.Resolve(id)
	if err != nil {
		// The default target is a known-good constant and valid entries
		// already resolved once.
		panic(fmt.Sprintf("target %q stopped resolving: %v", id, err))
	}
	return symbols
}

// fanOut runs one structural diff per target, sequentially for small target
// counts and concurrently from concurrencyThreshold up. A target's failure
// is isolated: its slot stays nil and its siblings still complete. Results
// are keyed by target, so reassembly is in request order no matter the
// completion order.
func (e *Engine) fanOut(ctx context.Context, oldText, newText string, cache *target.Cache, targets []string) (map[string]*changes.Node, error) {
	roots := make([]*changes.Node, len(targets))
	symbols := make([]*target.SymbolSet, len(targets))
	for i, id := range targets {
		_, s, err := cache.Resolve(id)
		if err != nil {
			return nil, err
		}
		symbols[i] = s
	}

	if len(targets) < concurrencyThreshold {
		for i := range targets {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			roots[i] = e.diffTarget(oldText, newText, targets[i], symbols[i])
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		for i := range targets {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				roots[i] = e.diffTarget(oldText, newText, targets[i], symbols[i])
				return nil
			})
		}
		// Only cancellation surfaces as an error; per-target failures are
		// already folded into the slots.
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	variants := make(map[string]*changes.Node, len(targets))
	for i, id := range targets {
		variants[id] = roots[i]
	}
	return variants, nil
}

// diffTarget produces one target's change root. It never fails: a parse
// failure degrades to a coarse file-level change (the partial result the
// merge can still attribute), and anything worse leaves a nil slot that
// simply contributes nothing.
func (e *Engine) diffTarget(oldText, newText, id string, symbols *target.SymbolSet) (root *changes.Node) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("target", id).WithField("panic", r).Error("structural diff failed; excluding target from merge")
			root = nil
		}
	}()
	return e.diffOnce(oldText, newText, symbols)
}

// diffOnce parses both sides under one symbol set and diffs the trees,
// degrading to a file-level change when a side fails to parse.
func (e *Engine) diffOnce(oldText, newText string, symbols *target.SymbolSet) *changes.Node {
	oldTree, oldErr := e.provider.Parse(oldText, symbols)
	newTree, newErr := e.provider.Parse(newText, symbols)
	if oldErr != nil || newErr != nil {
		return fallback(oldText, newText, oldErr, newErr)
	}
	return Diff(oldTree, newTree)
}

// fallback is the coarse file-level change reported when parsing fails on
// either side: partial results still reach the caller instead of an error.
func fallback(oldText, newText string, oldErr, newErr error) *changes.Node {
	err := oldErr
	if err == nil {
		err = newErr
	}
	log.WithError(err).Debug("degrading to file-level change after parse failure")
	n := &changes.Node{Kind: syntax.File}
	if oldText == newText {
		n.Type = changes.Unchanged
		return n
	}
	n.Type = changes.Modified
	n.OldContent = oldText
	n.NewContent = newText
	return n
}
