package dom

import (
	"log/slog"

	"github.com/chromedp/cdproto/cdp"
	"github.com/google/uuid"
)

// Options configures one page's extraction pipeline.
type Options struct {
	// OcclusionFilter enables the paint-order pass that suppresses nodes
	// fully covered by opaque content painted above them.
	OcclusionFilter bool

	// IncludeAttributes overrides the serializer's attribute allow-list.
	// Empty means DefaultIncludeAttributes.
	IncludeAttributes []string

	// ViewportTolerance is the near-viewport slack in px (<= 0 selects the
	// default).
	ViewportTolerance float64

	// OcclusionOpacity is the minimum opacity for a node to count as
	// covering content below it (<= 0 selects the default).
	OcclusionOpacity float64
}

// DefaultOptions returns the options used when callers pass the zero value.
func DefaultOptions() Options {
	return Options{OcclusionFilter: true}
}

// Extraction is the result of one pipeline pass. The selector map stays
// valid until the caller replaces it with the next extraction's map; the
// pass ID ties log lines and stale-handle failures back to the pass that
// produced them.
type Extraction struct {
	PassID    uuid.UUID
	Tree      string
	Selectors SelectorMap
	Stats     Stats
}

// Stats counts what the pass saw and what survived.
type Stats struct {
	BuiltNodes  int
	Interactive int
}

// Extractor drives the pipeline for one monitored page: build, simplify,
// occlusion-filter, optimize, assign, serialize. It owns the page's tree
// builder and is not reentrant; each page gets its own instance and the
// internal memoization is reset at the start of every pass.
type Extractor struct {
	logger     *slog.Logger
	opts       Options
	builder    *TreeBuilder
	serializer *Serializer
}

// NewExtractor returns an extractor for one page.
func NewExtractor(opts Options) *Extractor {
	return &Extractor{
		logger:     slog.Default().With("component", "dom-extractor"),
		opts:       opts,
		builder:    NewTreeBuilder(opts.ViewportTolerance),
		serializer: NewSerializer(opts.IncludeAttributes),
	}
}

// Extract runs the synchronous pipeline over one set of raw inputs. It never
// fails: an empty or unreachable root yields an empty tree and an empty
// selector map.
func (e *Extractor) Extract(root *RawNode, samples map[cdp.BackendNodeID]*LayoutSample, ax map[cdp.BackendNodeID]*AXData) *Extraction {
	result := &Extraction{
		PassID:    uuid.New(),
		Selectors: make(SelectorMap),
	}

	e.builder.Reset()
	enhanced := e.builder.Build(root, samples, ax)
	result.Stats.BuiltNodes = len(e.builder.built)
	if enhanced == nil {
		return result
	}

	simplified := Simplify(enhanced)
	if simplified == nil {
		return result
	}

	if e.opts.OcclusionFilter {
		ApplyPaintOrderFilter(simplified, e.opts.OcclusionOpacity)
		simplified = Optimize(simplified)
		if simplified == nil {
			return result
		}
	}

	detector := NewDetector()
	AssignInteractiveIndexes(simplified, detector, result.Selectors)
	result.Stats.Interactive = len(result.Selectors)

	result.Tree = e.serializer.Serialize(simplified)

	e.logger.Debug("extraction pass complete",
		"pass", result.PassID,
		"built", result.Stats.BuiltNodes,
		"interactive", result.Stats.Interactive)

	return result
}

// XPath exposes the builder's positional XPath for diagnostics on nodes from
// the current pass.
func (e *Extractor) XPath(node *EnhancedNode) string {
	return e.builder.XPath(node)
}
