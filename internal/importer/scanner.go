package importer

import (
	"context"
	"fmt"

	"promptforge/internal/events"
	"promptforge/internal/fsaccess"
)

// ScanResult is the metadata-only view of a root.
type ScanResult struct {
	Tops  []TopEntry
	Meta  []ScanMetaEntry
	Stats RejectionStats
}

type scanItem struct {
	dir    fsaccess.DirectoryHandle
	prefix string
}

// ScanMinimalMetadata lists the root's children into Tops, then walks the
// whole tree breadth-first recording every node into Meta. No file content
// is read. Recording stops at DiscoveryCap and the walk aborts once
// ProcessedCap entries have been visited. Only a failure to list the root
// itself yields an empty result.
func ScanMinimalMetadata(ctx context.Context, root fsaccess.DirectoryHandle, limits Limits) ScanResult {
	var res ScanResult

	var first []fsaccess.Handle
	for h, err := range root.Entries(ctx) {
		if err != nil {
			var stats RejectionStats
			stats.classify(err)
			events.Emit(ctx, events.ImporterScan, events.NewError(fmt.Sprintf("cannot list %s: %v", root.Name(), err)))
			return ScanResult{Stats: stats}
		}
		if len(first) >= limits.ProcessedCap {
			res.Stats.LimitReached++
			break
		}
		first = append(first, h)
		res.Tops = append(res.Tops, TopEntry{Name: h.Name(), Kind: h.Kind()})
	}

	processed := 0
	var queue []scanItem

	// visit records h and reports whether the walk may continue.
	visit := func(h fsaccess.Handle, prefix string) bool {
		processed++
		if processed > limits.ProcessedCap {
			res.Stats.LimitReached++
			return false
		}
		if len(res.Meta) >= limits.DiscoveryCap {
			res.Stats.LimitReached++
			return true
		}
		p := joinPath(prefix, h.Name())
		res.Meta = append(res.Meta, ScanMetaEntry{Path: p, Kind: h.Kind()})
		if dir, ok := h.(fsaccess.DirectoryHandle); ok {
			queue = append(queue, scanItem{dir: dir, prefix: p})
		}
		return true
	}

	aborted := false
	for _, h := range first {
		if !visit(h, "") {
			aborted = true
			break
		}
	}

	for !aborted && len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		for h, err := range item.dir.Entries(ctx) {
			if err != nil {
				res.Stats.classify(err)
				break
			}
			if !visit(h, item.prefix) {
				aborted = true
				break
			}
		}
	}

	evt := events.NewInfo(fmt.Sprintf("scanned %s: %d entries", root.Name(), len(res.Meta)))
	if aborted {
		evt = events.NewWarn(fmt.Sprintf("scan of %s stopped after %d entries", root.Name(), limits.ProcessedCap))
	}
	events.Emit(ctx, events.ImporterScan, evt.
		WithMeta("entries", fmt.Sprint(len(res.Meta))).
		WithMeta("skipped", fmt.Sprint(res.Stats.Total())))
	return res
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
