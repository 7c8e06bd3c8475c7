// Package batch implements the batch runner (C16): the periodic cycle
// that drives news polling, duplicate detection, and — on the
// coordinator node — the link graph, PageRank, BM25 stats, and lexicon
// rebuilds, per §4.16.
package batch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lueurxax/websearch-engine/internal/bm25"
	"github.com/lueurxax/websearch-engine/internal/dedup"
	"github.com/lueurxax/websearch-engine/internal/lexicon"
	"github.com/lueurxax/websearch-engine/internal/linkgraph"
	"github.com/lueurxax/websearch-engine/internal/newsfeed"
	"github.com/lueurxax/websearch-engine/internal/platform/observability"
	"github.com/lueurxax/websearch-engine/internal/platform/worker"
	db "github.com/lueurxax/websearch-engine/internal/storage"
)

const coordinatorLockName = "batch-coordinator"

// Role selects which parts of the cycle a node runs.
type Role string

const (
	// RoleAuto is coordinator iff node_index == 0 or total_nodes == 1.
	RoleAuto        Role = "auto"
	RoleCoordinator Role = "coordinator"
	RoleWorker      Role = "worker"
)

// Config configures a Runner.
type Config struct {
	Role          Role
	HolderID      string
	TotalNodes    int
	NodeIndex     int
	CycleInterval time.Duration
	ErrorSleep    time.Duration
	QueueTTL      time.Duration
	LockTTL       time.Duration
	DupThreshold  int
	FeedsPerCycle int
	LexiconTop    int
	LexiconMeta   string
	External      lexicon.ExternalFrequencies
}

// Runner drives one node's batch cycle.
type Runner struct {
	store  *db.DB
	poller *newsfeed.Poller
	cfg    Config
	logger *zerolog.Logger
}

// New returns a Runner.
func New(store *db.DB, poller *newsfeed.Poller, cfg Config, logger *zerolog.Logger) *Runner {
	if cfg.CycleInterval <= 0 {
		cfg.CycleInterval = 5 * time.Minute
	}

	if cfg.ErrorSleep <= 0 {
		cfg.ErrorSleep = 15 * time.Second
	}

	if cfg.QueueTTL <= 0 {
		cfg.QueueTTL = 15 * time.Minute
	}

	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}

	if cfg.DupThreshold <= 0 {
		cfg.DupThreshold = 3
	}

	if cfg.FeedsPerCycle <= 0 {
		cfg.FeedsPerCycle = 100
	}

	if cfg.LexiconTop <= 0 {
		cfg.LexiconTop = 120000
	}

	return &Runner{store: store, poller: poller, cfg: cfg, logger: logger}
}

// IsCoordinator resolves the static role per §4.16: auto is coordinator
// iff node_index == 0 or total_nodes == 1.
func (r *Runner) IsCoordinator() bool {
	switch r.cfg.Role {
	case RoleCoordinator:
		return true
	case RoleWorker:
		return false
	default:
		return r.cfg.NodeIndex == 0 || r.cfg.TotalNodes <= 1
	}
}

// Run loops forever, running one cycle then sleeping for the remainder
// of the configured interval, retrying sooner after a failed cycle.
func (r *Runner) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := time.Now()

		if err := r.RunCycle(ctx); err != nil {
			observability.BatchCycleErrors.Inc()
			r.logger.Error().Err(err).Msg("batch cycle failed")

			if err := worker.Wait(ctx, r.cfg.ErrorSleep); err != nil {
				return err
			}

			continue
		}

		elapsed := time.Since(start)

		remaining := r.cfg.CycleInterval - elapsed
		if remaining < time.Second {
			remaining = time.Second
		}

		if err := worker.Wait(ctx, remaining); err != nil {
			return err
		}
	}
}

// RunCycle runs one batch cycle per §4.16: always the sharded tasks,
// then the coordinator-only tasks if this node is the coordinator.
// Every log line for the cycle carries a run_id so operators can
// correlate its sub-steps (news poll, dedup, rebuilds) in aggregated
// log output.
func (r *Runner) RunCycle(ctx context.Context) error {
	cycleLog := r.logger.With().Str("run_id", uuid.NewString()).Logger()

	reaped, err := r.store.ReapStale(ctx, r.cfg.QueueTTL)
	if err != nil {
		cycleLog.Warn().Err(err).Msg("reap stale queue entries failed")
	} else {
		observability.QueueReaped.Add(float64(reaped))
	}

	if r.poller != nil {
		pollStart := time.Now()
		pollErr := r.poller.PollDue(ctx, r.cfg.FeedsPerCycle)
		observability.BatchCycleDuration.WithLabelValues("news_fetcher").Observe(time.Since(pollStart).Seconds())

		if pollErr != nil {
			observability.FeedsPolled.WithLabelValues("error").Inc()
			cycleLog.Warn().Err(pollErr).Msg("news poll failed")
		} else {
			observability.FeedsPolled.WithLabelValues("ok").Inc()
		}
	}

	dupStart := time.Now()

	if err := r.detectDuplicates(ctx, &cycleLog); err != nil {
		cycleLog.Warn().Err(err).Msg("duplicate detection failed")
	}

	observability.BatchCycleDuration.WithLabelValues("duplicate_detector").Observe(time.Since(dupStart).Seconds())

	isCoordinator := r.IsCoordinator()
	if isCoordinator {
		observability.IsCoordinator.Set(1)
	} else {
		observability.IsCoordinator.Set(0)
	}

	if !isCoordinator {
		return nil
	}

	acquired, err := r.store.TryAcquireSchedulerLock(ctx, coordinatorLockName, r.cfg.HolderID, r.cfg.LockTTL)
	if err != nil {
		return err
	}

	if !acquired {
		cycleLog.Info().Msg("coordinator lock held by another node; skipping coordinator tasks this cycle")
		return nil
	}

	defer func() {
		if err := r.store.ReleaseSchedulerLock(ctx, coordinatorLockName, r.cfg.HolderID); err != nil {
			cycleLog.Warn().Err(err).Msg("release coordinator lock failed")
		}
	}()

	linkGraphStart := time.Now()

	if err := r.rebuildLinkGraph(ctx); err != nil {
		return err
	}

	observability.BatchCycleDuration.WithLabelValues("link_graph").Observe(time.Since(linkGraphStart).Seconds())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		start := time.Now()
		defer func() { observability.BatchCycleDuration.WithLabelValues("pagerank").Observe(time.Since(start).Seconds()) }()

		return r.rebuildPageRank(gctx)
	})
	g.Go(func() error {
		start := time.Now()
		defer func() { observability.BatchCycleDuration.WithLabelValues("bm25").Observe(time.Since(start).Seconds()) }()

		return r.rebuildBM25(gctx)
	})
	g.Go(func() error {
		start := time.Now()
		defer func() { observability.BatchCycleDuration.WithLabelValues("lexicon").Observe(time.Since(start).Seconds()) }()

		return r.rebuildLexicon(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if docTotal, err := r.store.CountDoneDocuments(ctx); err == nil {
		observability.DocumentCount.Set(float64(docTotal))
	}

	return nil
}

// detectDuplicates implements C10: compute a SimHash fingerprint for
// every done document in this node's shard and stage-merge it.
func (r *Runner) detectDuplicates(ctx context.Context, logger *zerolog.Logger) error {
	ids, err := r.store.IterDoneDocumentIDs(ctx, max(r.cfg.TotalNodes, 1), r.cfg.NodeIndex)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		return nil
	}

	fps := make([]db.Fingerprint, 0, len(ids))

	for _, id := range ids {
		content, err := r.store.DocumentContent(ctx, id)
		if err != nil {
			logger.Warn().Err(err).Int64("doc_id", id).Msg("read document content failed")
			continue
		}

		fps = append(fps, db.Fingerprint{DocID: id, Fingerprint: dedup.SignedFingerprint(content)})
	}

	if err := r.store.UpsertFingerprints(ctx, fps); err != nil {
		return err
	}

	logClusters(logger, r.cfg.DupThreshold, fps)

	return nil
}

// logClusters reports near-duplicate groups found in this shard's
// batch, for operator visibility; clustering is O(n^2) and only
// sensible at per-cycle shard scale.
func logClusters(logger *zerolog.Logger, dupThreshold int, fps []db.Fingerprint) {
	clusters := 0

	for i := range fps {
		for j := i + 1; j < len(fps); j++ {
			if dedup.HammingDistance(fps[i].Fingerprint, fps[j].Fingerprint) <= dupThreshold {
				clusters++
			}
		}
	}

	if clusters > 0 {
		observability.DuplicateClustersFound.Add(float64(clusters))
		logger.Info().Int("near_duplicate_pairs", clusters).Msg("duplicate detector found near-duplicate pairs")
	}
}

// rebuildLinkGraph implements C11's edge-resolution step: truncate
// resolved edges, then insert distinct (source, target) pairs where an
// outlink's target URL matches a known document.
func (r *Runner) rebuildLinkGraph(ctx context.Context) error {
	outgoing, err := r.store.AllOutgoingTargets(ctx)
	if err != nil {
		return err
	}

	urlToID, err := r.store.AllDoneDocumentURLs(ctx)
	if err != nil {
		return err
	}

	pairs := linkgraph.ResolveEdges(outgoing, urlToID)

	resolved := make([]db.ResolvedEdge, len(pairs))
	for i, p := range pairs {
		resolved[i] = db.ResolvedEdge{SourceDocID: p[0], TargetDocID: p[1]}
	}

	return r.store.RebuildResolvedLinks(ctx, resolved)
}

// rebuildPageRank implements C11's PageRank step, run from the edges
// rebuildLinkGraph just persisted.
func (r *Runner) rebuildPageRank(ctx context.Context) error {
	edges, err := r.store.AllResolvedEdges(ctx)
	if err != nil {
		return err
	}

	nodeSet := make(map[int64]struct{}, len(edges)*2)
	pairs := make([][2]int64, 0, len(edges))

	for _, e := range edges {
		nodeSet[e.SourceDocID] = struct{}{}
		nodeSet[e.TargetDocID] = struct{}{}
		pairs = append(pairs, [2]int64{e.SourceDocID, e.TargetDocID})
	}

	urlToID, err := r.store.AllDoneDocumentURLs(ctx)
	if err != nil {
		return err
	}

	for _, id := range urlToID {
		nodeSet[id] = struct{}{}
	}

	nodeIDs := make([]int64, 0, len(nodeSet))
	for id := range nodeSet {
		nodeIDs = append(nodeIDs, id)
	}

	scores := linkgraph.PageRank(nodeIDs, pairs)

	rows := make([]db.Authority, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, db.Authority{DocID: s.DocID, PageRank: s.PageRank, InlinkCount: s.InlinkCount})
	}

	return r.store.UpsertAuthorityBulk(ctx, rows)
}

// rebuildBM25 implements C12: corpus-wide term statistics.
func (r *Runner) rebuildBM25(ctx context.Context) error {
	docTotal, err := r.store.CountDoneDocuments(ctx)
	if err != nil {
		return err
	}

	avgDocLen, err := r.store.AverageDocumentLength(ctx)
	if err != nil {
		return err
	}

	docFreq, err := r.store.TermDocFrequency(ctx)
	if err != nil {
		return err
	}

	stats := bm25.BuildTermStats(docFreq, docTotal, avgDocLen)

	rows := make([]db.TermStat, len(stats))
	for i, s := range stats {
		rows[i] = db.TermStat{Term: s.Term, DocFreq: s.DocFreq, IDF: s.IDF, AvgDocLen: s.AvgDocLen}
	}

	return r.store.ReplaceTermStatistics(ctx, rows)
}

// rebuildLexicon implements C13: extract real dictionary words from raw
// document and article text — not the stemmed tokens table, which
// would otherwise populate the dictionary with Porter stems — and
// merge their corpus frequencies with the pre-loaded external lists
// into scored lexicon rows.
func (r *Runner) rebuildLexicon(ctx context.Context) error {
	webTexts, err := r.store.DocumentCorpusTexts(ctx)
	if err != nil {
		return err
	}

	newsTexts, err := r.store.ArticleCorpusTexts(ctx)
	if err != nil {
		return err
	}

	docFreq, totalFreq := lexicon.BuildCorpusFrequencies(append(webTexts, newsTexts...))

	entries := lexicon.Build(docFreq, totalFreq, r.cfg.External)

	if err := r.store.UpsertLexiconBulk(ctx, lexicon.ToStorageRows(entries)); err != nil {
		return err
	}

	observability.LexiconWordCount.Set(float64(len(entries)))

	if r.cfg.LexiconMeta == "" {
		return nil
	}

	return lexicon.WriteMetaFile(r.cfg.LexiconMeta, entries, r.cfg.LexiconTop)
}
