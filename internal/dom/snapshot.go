package dom

import (
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/domsnapshot"

	"github.com/neboloop/pagelens/internal/geometry"
)

// SnapshotStyles is the computed-style subset the pipeline needs from
// DOMSnapshot.captureSnapshot. Callers fetching the snapshot must request
// exactly this list; the decoder keys style values by position in it.
var SnapshotStyles = []string{
	"display",
	"visibility",
	"opacity",
	"cursor",
	"overflow",
	"overflow-x",
	"overflow-y",
	"background-color",
	"pointer-events",
}

// SamplesFromSnapshot decodes a DOMSnapshot.captureSnapshot result into
// per-backend-ID layout samples. Snapshot rectangles arrive scaled by the
// device pixel ratio; they are normalized back to CSS pixels here. styleList
// must be the computed-style list the snapshot was captured with.
func SamplesFromSnapshot(docs []*domsnapshot.DocumentSnapshot, strTable []string, styleList []string, devicePixelRatio float64) map[cdp.BackendNodeID]*LayoutSample {
	if devicePixelRatio <= 0 {
		devicePixelRatio = 1
	}
	samples := make(map[cdp.BackendNodeID]*LayoutSample)

	str := func(idx domsnapshot.StringIndex) string {
		if idx < 0 || int(idx) >= len(strTable) {
			return ""
		}
		return strTable[idx]
	}

	for _, doc := range docs {
		if doc == nil || doc.Nodes == nil {
			continue
		}
		nodes := doc.Nodes
		layout := doc.Layout

		// Rare-data lookups: indexes of nodes the flag applies to.
		clickable := make(map[int64]bool)
		if nodes.IsClickable != nil {
			for _, idx := range nodes.IsClickable.Index {
				clickable[idx] = true
			}
		}

		// node index -> layout row
		layoutRow := make(map[int64]int)
		if layout != nil {
			for row, nodeIdx := range layout.NodeIndex {
				layoutRow[nodeIdx] = row
			}
		}

		for i := range nodes.NodeType {
			if i >= len(nodes.BackendNodeID) {
				break
			}
			backendID := nodes.BackendNodeID[i]
			if backendID == 0 {
				continue
			}

			sample := &LayoutSample{Clickable: clickable[int64(i)]}

			if row, ok := layoutRow[int64(i)]; ok && layout != nil {
				sample.Bounds = rectAt(layout.Bounds, row, devicePixelRatio)
				sample.ClientRect = rectAt(layout.ClientRects, row, devicePixelRatio)
				sample.ScrollRect = rectAt(layout.ScrollRects, row, devicePixelRatio)

				if row < len(layout.PaintOrders) {
					sample.PaintOrder = int(layout.PaintOrders[row])
					sample.HasPaint = true
				}

				if row < len(layout.Styles) {
					styles := layout.Styles[row]
					sample.Styles = make(map[string]string, len(styleList))
					for pos, name := range styleList {
						if pos < len(styles) {
							sample.Styles[name] = str(domsnapshot.StringIndex(styles[pos]))
						}
					}
					sample.Cursor = sample.Styles["cursor"]
				}
			}

			// The document node carries the document's scroll offsets,
			// which the builder subtracts when entering the document.
			if nodes.NodeType[i] == 9 { // DOCUMENT_NODE
				sample.IsDocument = true
				sample.ScrollOffsetX = doc.ScrollOffsetX / devicePixelRatio
				sample.ScrollOffsetY = doc.ScrollOffsetY / devicePixelRatio
			}

			samples[backendID] = sample
		}
	}

	return samples
}

// rectAt reads one snapshot rectangle ([x, y, w, h]) and scales it from
// device pixels to CSS pixels. Returns nil when the row has no usable rect.
func rectAt(rects []domsnapshot.Rectangle, row int, dpr float64) *geometry.Rect {
	if row < 0 || row >= len(rects) {
		return nil
	}
	r := rects[row]
	if len(r) < 4 {
		return nil
	}
	return &geometry.Rect{
		X:      r[0] / dpr,
		Y:      r[1] / dpr,
		Width:  r[2] / dpr,
		Height: r[3] / dpr,
	}
}
