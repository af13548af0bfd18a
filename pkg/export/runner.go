package export

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"

	apperrors "github.com/osmtree/osmtree/pkg/errors"
	"github.com/osmtree/osmtree/pkg/geo"
	"github.com/osmtree/osmtree/pkg/integrations"
	"github.com/osmtree/osmtree/pkg/integrations/overpass"
	"github.com/osmtree/osmtree/pkg/observability"
	"github.com/osmtree/osmtree/pkg/tree"
)

// RelationFetcher looks up relations by id. [*overpass.Client] implements it.
type RelationFetcher interface {
	FetchRelations(ctx context.Context, ids []string, detail overpass.Detail, refresh bool) (*overpass.Response, error)
}

// GeoConverter turns Overpass elements into GeoJSON features whose ids are
// "relation/<id>". [geo.Convert] is the default.
type GeoConverter func([]overpass.Element) *geojson.FeatureCollection

// Runner executes export runs.
//
// The Runner holds no per-run state. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Fetcher    RelationFetcher
	Convert    GeoConverter
	Normalizer tree.Normalizer
	Logger     *log.Logger
}

// NewRunner creates a runner using fetcher for enrichment. fetcher may be nil
// when only Include simple is used.
func NewRunner(fetcher RelationFetcher, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Fetcher:    fetcher,
		Convert:    geo.Convert,
		Normalizer: tree.DefaultNormalizer,
		Logger:     logger,
	}
}

// Result is the outcome of a successful run.
type Result struct {
	// ID identifies the run in logs and API responses.
	ID string

	// Data is the serialized file content.
	Data []byte

	FileName    string
	ContentType string

	// Records is the flat, enriched selection in output order.
	Records []Record

	// Branches is the assembled hierarchy. It is nil for nodes output.
	Branches []*Branch

	// Orphans are the ids of records that could not be placed in the tree.
	Orphans []string

	Stats Stats
}

// Stats contains run statistics.
type Stats struct {
	Selected  int // selected widget nodes
	Records   int
	Missing   int // records without enrichment data
	Orphans   int
	FetchTime time.Duration
	Duration  time.Duration
}

// Execute runs the full pipeline over widget nodes.
func (r *Runner) Execute(ctx context.Context, nodes []*tree.Node, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	records := Records(r.Normalizer.FilterSelected(nodes, tree.Root))
	return r.ExecuteRecords(ctx, records, opts)
}

// ExecuteRecords runs the pipeline from already flattened records. records
// is not modified.
func (r *Runner) ExecuteRecords(ctx context.Context, records []Record, opts Options) (res *Result, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	logger := opts.Logger

	start := time.Now()
	res = &Result{
		ID:          uuid.NewString(),
		FileName:    opts.FileName(),
		ContentType: opts.ContentType(),
		Records:     append([]Record(nil), records...),
	}
	res.Stats.Selected = len(records)

	observability.Export().OnExportStart(ctx, len(records), opts.Format)
	defer func() {
		observability.Export().OnExportComplete(ctx, res.Stats.Records, opts.Format, time.Since(start), err)
		if err != nil {
			res = nil
		}
	}()

	if detail, ok := opts.Detail(); ok && len(records) > 0 {
		fetchStart := time.Now()
		missing, err := r.enrich(ctx, logger, res.Records, detail, opts.Refresh)
		res.Stats.FetchTime = time.Since(fetchStart)
		if err != nil {
			return res, err
		}
		res.Stats.Missing = missing
		logger.Debug("enriched selection",
			"records", len(records),
			"detail", detail,
			"missing", missing,
			"duration", res.Stats.FetchTime)
	}

	var payload any
	switch opts.Structure {
	case StructureTree:
		branches, orphans := Assemble(res.Records)
		for _, o := range orphans {
			res.Orphans = append(res.Orphans, o.ID)
		}
		res.Stats.Orphans = len(orphans)
		if len(orphans) > 0 {
			if opts.Strict {
				return res, apperrors.New(apperrors.ErrCodeStructural,
					"%d record(s) have no reachable parent: %s", len(orphans), strings.Join(res.Orphans, ", "))
			}
			logger.Warn("dropped records without a reachable parent", "ids", res.Orphans)
		}
		res.Branches = branches
		res.Stats.Records = len(res.Records) - len(orphans)
		payload = branches
	case StructureNodes:
		res.Records = Strip(res.Records)
		res.Stats.Records = len(res.Records)
		payload = res.Records
	}

	data, err := Marshal(payload, opts.Format)
	if err != nil {
		return res, apperrors.Wrap(apperrors.ErrCodeInternal, err, "serialize %s", opts.Format)
	}
	res.Data = data
	res.Stats.Duration = time.Since(start)

	logger.Info("exported selection",
		"id", res.ID,
		"records", res.Stats.Records,
		"format", opts.Format,
		"structure", opts.Structure,
		"duration", res.Stats.Duration)
	return res, nil
}

// enrich fetches all record ids in one request and merges the results in
// place. It returns the number of records left without data.
func (r *Runner) enrich(ctx context.Context, logger *log.Logger, records []Record, detail overpass.Detail, refresh bool) (int, error) {
	if r.Fetcher == nil {
		return 0, apperrors.New(apperrors.ErrCodeInternal, "no relation fetcher configured for include level %s", detail)
	}

	ids := uniqueIDs(records)
	start := time.Now()
	resp, err := r.Fetcher.FetchRelations(ctx, ids, detail, refresh)
	observability.Export().OnEnrich(ctx, len(ids), string(detail), time.Since(start), err)
	if err != nil {
		return 0, classify(err)
	}

	index := overpass.Index(resp)
	var features map[string]*geojson.Feature
	if detail == overpass.DetailGeometry && r.Convert != nil {
		features = geo.Index(r.Convert(resp.Elements))
	}

	missing := 0
	for i := range records {
		rec := &records[i]
		e, ok := index[rec.ID]
		if !ok {
			missing++
			logger.Warn("no relation data", "id", rec.ID)
			continue
		}
		rec.Tags = e.Tags
		rec.Bounds = e.Bounds
		rec.Members = e.Members
		if f, ok := features[rec.ID]; ok && f.Geometry != nil {
			rec.Geometry = geojson.NewGeometry(f.Geometry)
		}
	}
	return missing, nil
}

// classify attaches an error code to a fetch failure, keeping the cause.
func classify(err error) error {
	switch {
	case apperrors.GetCode(err) != "":
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, integrations.ErrEmptyResult), errors.Is(err, integrations.ErrNotFound):
		return apperrors.Wrap(apperrors.ErrCodeEmptyResult, err, "no relation data")
	default:
		return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "fetch relation data")
	}
}

func uniqueIDs(records []Record) []string {
	seen := make(map[string]bool, len(records))
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		if !seen[rec.ID] {
			seen[rec.ID] = true
			ids = append(ids, rec.ID)
		}
	}
	return ids
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
