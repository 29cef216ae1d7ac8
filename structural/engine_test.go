package structural

import (
	"context"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randlee/roslyn-diff-sub001/changes"
	"github.com/randlee/roslyn-diff-sub001/diff"
	"github.com/randlee/roslyn-diff-sub001/target"
)

func compare(t *testing.T, oldText, newText string, opts Options) *changes.DiffResult {
	t.Helper()
	res, err := NewEngine(outlineProvider{}).Compare(context.Background(), oldText, newText, opts)
	require.Nil(t, err)
	return res
}

func findNode(roots []*changes.Node, name string) *changes.Node {
	var found *changes.Node
	for _, root := range roots {
		root.Walk(func(n *changes.Node) bool {
			if n.Name == name && n.Meaningful() && found == nil {
				found = n
			}
			return true
		})
	}
	return found
}

const plainOld = `class Counter public class Counter
  field count private int count
`

const plainNew = `class Counter public class Counter
  field count private int count
  method Reset public void Reset() { count = 0; }
`

func TestCompareIdempotence(t *testing.T) {
	src := plainNew
	for _, targets := range [][]string{nil, {"net8.0"}, {"net8.0", "net6.0"}} {
		res := compare(t, src, src, Options{Targets: targets})
		assert.Equal(t, 0, res.Stats.Total())
		for _, root := range res.Changes {
			root.Walk(func(n *changes.Node) bool {
				assert.Equal(t, changes.Unchanged, n.Type)
				assert.Equal(t, changes.ImpactNone, n.Impact)
				return true
			})
		}
	}
}

func TestComparePreScanOptimization(t *testing.T) {
	// No directives anywhere: analyzedTargets stays absent no matter how
	// many targets were requested, and results are identical.
	var results []*changes.DiffResult
	for _, targets := range [][]string{nil, {}, {"net8.0"}, {"net8.0", "net6.0"}} {
		res := compare(t, plainOld, plainNew, Options{Targets: targets})
		assert.Nil(t, res.AnalyzedTargets, "targets %v", targets)
		results = append(results, res)
	}
	for _, res := range results[1:] {
		assert.Equal(t, results[0].Stats, res.Stats)
		if d := cmp.Diff(results[0].Changes, res.Changes); d != "" {
			t.Errorf("results differ (-first +other):\n%s", d)
		}
	}
}

const directiveNew = `class Counter public class Counter
  field count private int count
#if NET8_0
  method Reset public void Reset() { count = 0; }
#endif
`

func TestCompareDirectiveGatedMember(t *testing.T) {
	t.Run("target defining the symbol sees the addition", func(t *testing.T) {
		res := compare(t, plainOld, directiveNew, Options{Targets: []string{"net8.0"}})
		assert.Equal(t, []string{"net8.0"}, res.AnalyzedTargets)
		n := findNode(res.Changes, "Reset")
		require.NotNil(t, n)
		assert.Equal(t, changes.Added, n.Type)
	})
	t.Run("target without the symbol sees nothing", func(t *testing.T) {
		res := compare(t, plainOld, directiveNew, Options{Targets: []string{"net6.0"}})
		assert.Equal(t, []string{"net6.0"}, res.AnalyzedTargets)
		assert.Nil(t, findNode(res.Changes, "Reset"))
		assert.Equal(t, 0, res.Stats.Total())
	})
}

const orGreaterNew = `class Counter public class Counter
  field count private int count
#if NET8_0_OR_GREATER
  method Reset public void Reset() { count = 0; }
#endif
#if NET10_0_OR_GREATER
  method Clear public void Clear() { count = 0; }
#endif
`

func TestCompareOrGreaterMonotonicity(t *testing.T) {
	res := compare(t, plainOld, orGreaterNew, Options{Targets: []string{"net8.0", "net10.0"}})
	require.Equal(t, []string{"net8.0", "net10.0"}, res.AnalyzedTargets)

	reset := findNode(res.Changes, "Reset")
	require.NotNil(t, reset)
	// Both analyzed targets satisfy NET8_0_OR_GREATER: universal shorthand.
	assert.Empty(t, reset.ApplicableTargets)

	clear := findNode(res.Changes, "Clear")
	require.NotNil(t, clear)
	assert.Equal(t, []string{"net10.0"}, clear.ApplicableTargets)
}

func TestCompareInvalidTargetFailsFast(t *testing.T) {
	eng := NewEngine(outlineProvider{})
	_, err := eng.Compare(context.Background(), plainOld, directiveNew, Options{
		Targets: []string{"not-a-real-target"},
	})
	assert.ErrorIs(t, err, target.ErrInvalidTarget)
}

func TestCompareInvalidTargetAmongValidIsDropped(t *testing.T) {
	res := compare(t, plainOld, directiveNew, Options{Targets: []string{"bogus", "net8.0"}})
	assert.Equal(t, []string{"net8.0"}, res.AnalyzedTargets)
	assert.NotNil(t, findNode(res.Changes, "Reset"))
}

func TestComparePartialFailureIsolation(t *testing.T) {
	defer leaktest.Check(t)()
	// net472 lacks NET, so only it materializes the broken branch.
	brokenNew := `class Counter public class Counter
  field count private int count
#if NET
  method Reset public void Reset() { count = 0; }
#endif
#if NETFRAMEWORK
PARSE_ERROR
#endif
`
	res := compare(t, plainOld, brokenNew, Options{Targets: []string{"net6.0", "net8.0", "net472"}})
	require.Equal(t, []string{"net6.0", "net8.0", "net472"}, res.AnalyzedTargets)
	n := findNode(res.Changes, "Reset")
	require.NotNil(t, n)
	assert.Equal(t, changes.Added, n.Type)
	// The two healthy targets are attributed explicitly; the failed one
	// contributed only a coarse file-level change.
	assert.Equal(t, []string{"net6.0", "net8.0"}, n.ApplicableTargets)
}

func TestCompareConcurrentFanOut(t *testing.T) {
	defer leaktest.Check(t)()
	// Four targets crosses the concurrency threshold.
	res := compare(t, plainOld, orGreaterNew, Options{
		Targets: []string{"net6.0", "net7.0", "net8.0", "net10.0"},
	})
	require.Equal(t, []string{"net6.0", "net7.0", "net8.0", "net10.0"}, res.AnalyzedTargets)
	reset := findNode(res.Changes, "Reset")
	require.NotNil(t, reset)
	assert.Equal(t, []string{"net8.0", "net10.0"}, reset.ApplicableTargets)
}

func TestCompareCancelledContext(t *testing.T) {
	defer leaktest.CheckTimeout(t, time.Second)()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine(outlineProvider{}).Compare(ctx, plainOld, directiveNew, Options{
		Targets: []string{"net6.0", "net7.0", "net8.0"},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompareLineMode(t *testing.T) {
	res := compare(t, "a\nb\n", "a\nc\n", Options{Mode: changes.ModeLines})
	assert.Equal(t, changes.ModeLines, res.Mode)
	assert.Nil(t, res.AnalyzedTargets)
	assert.Equal(t, 1, res.Stats.Modifications)
}

func TestCompareLineModeWhitespacePolicy(t *testing.T) {
	opts := Options{Mode: changes.ModeLines, Whitespace: diff.Options{
		Policy: diff.IgnoreLeadingTrailing, PolicySet: true,
	}}
	res := compare(t, "  text  \n", "text\n", opts)
	assert.Equal(t, 0, res.Stats.Total())
}

func TestCompareStructuralRequiresProvider(t *testing.T) {
	_, err := NewEngine(nil).Compare(context.Background(), "a", "b", Options{})
	assert.NotNil(t, err)
}
