// Package admin builds administrative hierarchies from OpenStreetMap.
//
// Boundary relations list their direct sub-areas as relation members with
// the role "subarea". [Builder] follows those members level by level, with
// one Overpass request per level, and returns a [tree.Node] hierarchy ready to
// be loaded into the tree widget.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"

	apperrors "github.com/osmtree/osmtree/pkg/errors"
	"github.com/osmtree/osmtree/pkg/integrations"
	"github.com/osmtree/osmtree/pkg/integrations/overpass"
	"github.com/osmtree/osmtree/pkg/tree"
)

// SubareaRole is the member role linking a boundary to its sub-areas.
const SubareaRole = "subarea"

// DefaultBatchSize caps the number of ids sent in one request.
const DefaultBatchSize = 500

// Fetcher looks up relations by id. [*overpass.Client] implements it.
type Fetcher interface {
	FetchRelations(ctx context.Context, ids []string, detail overpass.Detail, refresh bool) (*overpass.Response, error)
}

// Builder expands relations into a hierarchy.
type Builder struct {
	Fetcher Fetcher
	Logger  *log.Logger

	// Prefix is prepended to relation ids to form widget ids.
	Prefix string

	// BatchSize caps the ids per request. Levels larger than this are split.
	BatchSize int

	// Refresh bypasses the relation cache.
	Refresh bool
}

// NewBuilder creates a builder producing widget ids with [tree.DefaultPrefix].
func NewBuilder(f Fetcher, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{
		Fetcher:   f,
		Logger:    logger,
		Prefix:    tree.DefaultPrefix,
		BatchSize: DefaultBatchSize,
	}
}

// Build fetches rootIDs and expands their sub-areas depth levels deep. A depth
// of 0 returns the roots without children.
//
// Every relation appears at most once, so widget ids stay unique. A sub-area
// listed by several parents is kept under the first one reached. Sub-areas that Overpass does not
// return appear as leaves named after their id. Nothing is selected.
func (b *Builder) Build(ctx context.Context, rootIDs []string, depth int) ([]*tree.Node, error) {
	if err := apperrors.ValidateRelationIDs(rootIDs); err != nil {
		return nil, err
	}
	if depth < 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "depth must not be negative, got %d", depth)
	}

	visited := make(map[string]bool)
	roots := make([]*tree.Node, 0, len(rootIDs))
	for _, id := range rootIDs {
		if visited[id] {
			continue
		}
		visited[id] = true
		roots = append(roots, b.stub(id))
	}

	level := roots
	for lvl := 0; len(level) > 0; lvl++ {
		ids := make([]string, len(level))
		for i, n := range level {
			ids[i] = b.relationID(n)
		}

		index, err := b.fetch(ctx, ids)
		if err != nil {
			if lvl > 0 && errors.Is(err, integrations.ErrEmptyResult) {
				b.Logger.Warn("no data for sub-areas", "level", lvl, "ids", len(ids))
				break
			}
			return nil, err
		}
		if lvl == 0 && len(index) == 0 {
			return nil, fmt.Errorf("build hierarchy: %w", integrations.ErrEmptyResult)
		}

		var next []*tree.Node
		for _, n := range level {
			e, ok := index[b.relationID(n)]
			if !ok {
				continue
			}
			if name := e.Name(); name != "" {
				n.Name = name
			}
			if lvl >= depth {
				continue
			}
			for _, ref := range Subareas(*e) {
				if visited[ref] {
					b.Logger.Debug("skipping repeated sub-area", "id", ref, "parent", b.relationID(n))
					continue
				}
				visited[ref] = true
				child := b.stub(ref)
				n.Children = append(n.Children, child)
				next = append(next, child)
			}
		}
		b.Logger.Debug("expanded level", "level", lvl, "relations", len(level), "subareas", len(next))
		level = next
	}
	return roots, nil
}

func (b *Builder) fetch(ctx context.Context, ids []string) (map[string]*overpass.Element, error) {
	size := b.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	index := make(map[string]*overpass.Element, len(ids))
	found := false
	var lastErr error
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		resp, err := b.Fetcher.FetchRelations(ctx, ids[start:end], overpass.DetailBody, b.Refresh)
		if err != nil {
			if errors.Is(err, integrations.ErrEmptyResult) {
				lastErr = err
				continue
			}
			return nil, err
		}
		found = true
		for id, e := range overpass.Index(resp) {
			index[id] = e
		}
	}
	if !found && lastErr != nil {
		return nil, lastErr
	}
	return index, nil
}

func (b *Builder) stub(id string) *tree.Node {
	return &tree.Node{ID: b.Prefix + id, Name: "relation " + id, Children: []*tree.Node{}}
}

func (b *Builder) relationID(n *tree.Node) string {
	return n.ID[len(b.Prefix):]
}

// Subareas returns the ids of e's sub-area relation members in member order,
// without duplicates.
func Subareas(e overpass.Element) []string {
	var ids []string
	seen := make(map[int64]bool)
	for _, m := range e.Members {
		if m.Type != "relation" || m.Role != SubareaRole || seen[m.Ref] {
			continue
		}
		seen[m.Ref] = true
		ids = append(ids, strconv.FormatInt(m.Ref, 10))
	}
	return ids
}
