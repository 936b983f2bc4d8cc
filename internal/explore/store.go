package explore

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/viewspace/internal/associate"
	"github.com/danielpatrickdp/viewspace/internal/cluster"
	"github.com/danielpatrickdp/viewspace/internal/eval"
	"github.com/danielpatrickdp/viewspace/internal/field"
	"github.com/danielpatrickdp/viewspace/internal/likes"
	"github.com/danielpatrickdp/viewspace/internal/logging"
	"github.com/danielpatrickdp/viewspace/internal/page"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

const flagAssociations = "associations"

// #region store-struct
// Store owns the exploration state of one ingested data source. All
// methods are safe for concurrent use; clustering runs without holding
// the lock and the last invocation wins.
type Store struct {
	mu      sync.Mutex
	engine  *cluster.Engine
	ranker  *associate.Ranker
	harness *eval.EvalHarness
	opts    Options

	source     string
	sessionID  string
	fields     field.Catalog
	subspaces  []viewspace.Subspace
	candidates []viewspace.ViewSpace
	views      []viewspace.ViewSpace
	groups     []viewspace.ClusterGroup
	nav        *page.Navigator
	likes      *likes.Registry
	focus      *viewspace.ViewSpace
	loading    bool
	status     Status
	mode       cluster.Mode
	generation uint64

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// #endregion store-struct

// #region constructor
// NewStore creates an empty store. Nil engine or ranker get defaults.
func NewStore(engine *cluster.Engine, ranker *associate.Ranker, opts Options) *Store {
	if engine == nil {
		engine = cluster.NewEngine(nil, nil, cluster.DefaultConfig())
	}
	if ranker == nil {
		ranker = associate.NewRanker(engine.Scorer(), associate.DefaultConfig())
	}
	if opts.Eval == (eval.EvalConfig{}) {
		opts.Eval = eval.DefaultEvalConfig()
	}
	return &Store{
		engine:  engine,
		ranker:  ranker,
		harness: eval.NewEvalHarness(opts.Eval),
		opts:    opts,
		nav:     page.NewNavigator(0),
		likes:   likes.NewRegistry(),
		status:  Status{Code: StatusOK},
		subs:    make(map[int]chan Event),
	}
}

// #endregion constructor

// #region init
// Init replaces the state with a new data source. Candidates get indices
// 0..n-1 in ingestion order and are all navigable until the first
// clustering. Likes are cleared and any clustering still in flight is
// discarded when it completes. It returns the new session ID.
func (s *Store) Init(src DataSource, fields field.Catalog, subspaces []viewspace.Subspace) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw []viewspace.ViewSpace
	label := ""
	if src != nil {
		raw = src.Candidates()
		label = src.Label()
	}
	candidates := make([]viewspace.ViewSpace, len(raw))
	for i, c := range raw {
		c.Index = i
		c.Dimensions = append([]string(nil), c.Dimensions...)
		c.Measures = append([]string(nil), c.Measures...)
		c.Schema = c.Schema.Clone()
		candidates[i] = c
	}

	s.generation++
	s.source = label
	s.sessionID = s.openSession(label, len(candidates))
	s.fields = fields
	s.subspaces = append([]viewspace.Subspace(nil), subspaces...)
	s.candidates = candidates
	s.views = append([]viewspace.ViewSpace(nil), candidates...)
	s.groups = nil
	s.nav.Reset(len(s.views))
	s.likes.Reset()
	s.focus = nil
	s.loading = false
	s.status = Status{Code: StatusOK}
	s.mode = ""

	log.Printf("[EXPLORE] init: source=%q candidates=%d subspaces=%d fields=%d session=%s",
		label, len(candidates), len(subspaces), fields.Len(), s.sessionID)
	s.emit(Event{Type: EventInit, Generation: s.generation, Page: 0})
	return s.sessionID
}

func (s *Store) openSession(label string, candidates int) string {
	if s.opts.Sessions != nil {
		sess, err := s.opts.Sessions.CreateSession(label, candidates)
		if err == nil {
			return sess.ID
		}
		log.Printf("[EXPLORE] create session failed, continuing unpersisted: %v", err)
	}
	return uuid.New().String()
}

// #endregion init

// #region cluster-measures
// ClusterMeasures re-clusters all ingested candidates into at most
// maxGroups groups (0 means no cap) and makes the representatives the page
// list. A result superseded by a later call or a new Init is discarded and
// reported as stale. When clustering fails the previous list stays, the
// status turns degraded and an ErrClusteringFailed error is returned.
func (s *Store) ClusterMeasures(ctx context.Context, maxGroups int, useRemote bool) (RunReport, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	candidates := s.candidates
	fields := s.fields
	sessionID := s.sessionID
	s.loading = true
	s.emit(Event{Type: EventLoading, Generation: gen, Page: s.nav.Current()})
	s.mu.Unlock()

	res, err := s.engine.Cluster(ctx, candidates, fields, maxGroups, useRemote)

	entry := logging.RunEntry{
		SessionID:  sessionID,
		Generation: gen,
		Mode:       string(res.Mode),
		Attempts:   res.Attempts,
		MaxGroups:  maxGroups,
		Candidates: len(candidates),
		Groups:     len(res.Groups),
	}
	if res.RemoteErr != nil {
		entry.RemoteError = res.RemoteErr.Error()
	}
	report := RunReport{Generation: gen, Mode: res.Mode, Attempts: res.Attempts, Groups: len(res.Groups)}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		report.Stale = true
		entry.Outcome = "stale"
		entry.Reason = ErrStaleResult.Error()
		log.Printf("[EXPLORE] discarding clustering generation %d (current %d)", gen, s.generation)
		s.emit(Event{Type: EventStale, Generation: gen, Page: s.nav.Current()})
		s.recordRun(entry)
		return report, nil
	}

	s.loading = false
	if err != nil {
		s.status = Status{Code: StatusDegraded, Message: err.Error()}
		entry.Outcome = "failed"
		entry.Reason = err.Error()
		log.Printf("[EXPLORE] clustering failed, keeping %d previous pages: %v", len(s.views), err)
		s.emit(Event{Type: EventDegraded, Generation: gen, Page: s.nav.Current(), Message: err.Error()})
		s.recordRun(entry)
		return report, fmt.Errorf("%w: %v", ErrClusteringFailed, err)
	}

	s.groups = res.Groups
	s.views = viewspace.Representatives(res.Groups)
	s.mode = res.Mode
	if s.nav.Resize(len(s.views)) {
		s.focus = nil
	}
	if res.Mode == cluster.ModeFallback {
		s.status = Status{Code: StatusFallback, Message: fmt.Sprintf("remote clustering unavailable: %v", res.RemoteErr)}
	} else {
		s.status = Status{Code: StatusOK}
	}

	result := s.harness.Run(res.Groups, fields, s.engine.Scorer())
	report.Applied = true
	report.Eval = &result
	entry.Outcome = "applied"
	entry.Reason = result.Reason
	entry.MetricsJSON = s.encodeRun(result, useRemote, res.Groups)

	log.Printf("[EXPLORE] clustered generation %d: mode=%s candidates=%d groups=%d eval=%s",
		gen, res.Mode, len(candidates), len(res.Groups), result.Reason)
	s.emit(Event{Type: EventClustered, Generation: gen, Page: s.nav.Current()})
	s.recordRun(entry)
	return report, nil
}

func (s *Store) encodeRun(result eval.EvalResult, useRemote bool, groups []viewspace.ClusterGroup) string {
	w := s.engine.Scorer().Weights()
	metrics := make(map[string]float64, len(result.Metrics))
	for _, m := range result.Metrics {
		metrics[m.Name] = m.Value
	}
	reps := make([]int, len(groups))
	for i, g := range groups {
		reps[i] = g.Representative.Index
	}
	raw, err := logging.EncodeRecord(logging.RunRecord{
		Threshold:       s.engine.Config().Threshold,
		UseRemote:       useRemote,
		Weights:         logging.RunRecordWeights{Dimension: w.Dimension, Measure: w.Measure, Profile: w.Profile},
		EvalPassed:      result.Passed,
		EvalReason:      result.Reason,
		Metrics:         metrics,
		Representatives: reps,
	})
	if err != nil {
		log.Printf("[EXPLORE] %v", err)
		return ""
	}
	return raw
}

func (s *Store) recordRun(entry logging.RunEntry) {
	if s.opts.Runs == nil {
		return
	}
	if err := s.opts.Runs.RecordRun(entry); err != nil {
		log.Printf("[EXPLORE] record run failed: %v", err)
	}
}

// #endregion cluster-measures

// #region paging
// GoToPage moves to page n modulo the page count. With no pages it is a no-op.
func (s *Store) GoToPage(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moved(s.nav.GoTo(n))
}

// NextPage advances one page with wrap-around.
func (s *Store) NextPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moved(s.nav.Next())
}

// LastPage steps back one page with wrap-around.
func (s *Store) LastPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moved(s.nav.Last())
}

// GoToDisplayPage moves to a 1-based page number typed by a user.
func (s *Store) GoToDisplayPage(value string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moved(s.nav.GoToDisplay(value))
}

func (s *Store) moved(changed bool) int {
	cur := s.nav.Current()
	if changed {
		s.focus = nil
		s.emit(Event{Type: EventPage, Generation: s.generation, Page: cur})
	}
	return cur
}

// #endregion paging

// #region likes
// LikeIt toggles the like for a page position and returns the new
// membership. The schema is snapshotted; the position is not range-checked.
func (s *Store) LikeIt(pageIndex int, schema viewspace.Schema) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggleLike(pageIndex, schema)
}

// LikeCurrent toggles the like for the current page with its schema.
// ok is false when there are no pages.
func (s *Store) LikeCurrent() (liked bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.views) == 0 {
		return false, false
	}
	cur := s.nav.Current()
	return s.toggleLike(cur, s.views[cur].Schema), true
}

func (s *Store) toggleLike(pageIndex int, schema viewspace.Schema) bool {
	liked := s.likes.Toggle(pageIndex, schema)
	if s.opts.Likes != nil {
		var err error
		if liked {
			entry, _ := s.likes.Get(pageIndex)
			err = s.opts.Likes.SaveLike(s.sessionID, entry)
		} else {
			err = s.opts.Likes.DeleteLike(s.sessionID, pageIndex)
		}
		if err != nil {
			log.Printf("[EXPLORE] persist like %d failed: %v", pageIndex, err)
		}
	}
	msg := "unliked"
	if liked {
		msg = "liked"
	}
	s.emit(Event{Type: EventLike, Generation: s.generation, Page: pageIndex, Message: msg})
	return liked
}

// IsLiked reports whether a page position is liked.
func (s *Store) IsLiked(pageIndex int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likes.IsLiked(pageIndex)
}

// Likes returns the liked pages ordered by position.
func (s *Store) Likes() []likes.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likes.Entries()
}

// RestoreLikes replaces the likes with saved entries and persists them
// under the current session.
func (s *Store) RestoreLikes(entries []likes.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likes.Restore(entries)
	if s.opts.Likes == nil {
		return
	}
	for _, e := range s.likes.Entries() {
		if err := s.opts.Likes.SaveLike(s.sessionID, e); err != nil {
			log.Printf("[EXPLORE] persist restored like %d failed: %v", e.PageIndex, err)
		}
	}
}

// #endregion likes

// #region focus
// SelectFocus makes the candidate with the given index the association
// focus until the page changes. Unknown indices are ignored.
func (s *Store) SelectFocus(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.candidates {
		if c.Index == index {
			f := c
			s.focus = &f
			s.emit(Event{Type: EventFocus, Generation: s.generation, Page: s.nav.Current(), Message: fmt.Sprintf("index %d", index)})
			return true
		}
	}
	return false
}

// Focus returns the explicit focus, or the current page's candidate.
func (s *Store) Focus() (viewspace.ViewSpace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentFocus()
}

func (s *Store) currentFocus() (viewspace.ViewSpace, bool) {
	if s.focus != nil {
		return s.focus.Clone(), true
	}
	if len(s.views) == 0 {
		return viewspace.ViewSpace{}, false
	}
	return s.views[s.nav.Current()].Clone(), true
}

// #endregion focus

// #region associations
// OpenAssociations shows the association panel for the current page.
func (s *Store) OpenAssociations() {
	s.setAssociations(true)
}

// CloseAssociations hides the association panel.
func (s *Store) CloseAssociations() {
	s.setAssociations(false)
}

func (s *Store) setAssociations(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav.SetFlag(flagAssociations, open)
	msg := "closed"
	if open {
		msg = "opened"
	}
	s.emit(Event{Type: EventAssociation, Generation: s.generation, Page: s.nav.Current(), Message: msg})
}

// Associations ranks the subspaces related to the focus candidate. Each
// result carries the index of a navigable candidate with the same
// composition, or -1.
func (s *Store) Associations() []associate.Result {
	s.mu.Lock()
	focus, ok := s.currentFocus()
	subspaces := s.subspaces
	fields := s.fields
	views := s.views
	s.mu.Unlock()

	if !ok {
		return nil
	}
	return associate.Resolve(s.ranker.Relate(focus, subspaces, fields), views)
}

// SelectAssociation navigates to the page showing the candidate with the
// given index. Candidates pruned by clustering are not navigable and the
// call is a no-op.
func (s *Store) SelectAssociation(viewIndex int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := associate.Locate(s.views, viewIndex)
	if pos < 0 {
		return false
	}
	s.moved(s.nav.GoTo(pos))
	return true
}

// #endregion associations

// #region snapshot
// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Source:          s.source,
		SessionID:       s.sessionID,
		Generation:      s.generation,
		Candidates:      viewspace.CloneAll(s.candidates),
		ViewSpaces:      viewspace.CloneAll(s.views),
		CurrentPage:     s.nav.Current(),
		Likes:           s.likes.Entries(),
		Loading:         s.loading,
		AssociationOpen: s.nav.Flag(flagAssociations),
		Status:          s.status,
		Mode:            s.mode,
	}
	if s.groups != nil {
		st.Groups = make([]viewspace.ClusterGroup, len(s.groups))
		for i, g := range s.groups {
			st.Groups[i] = g.Clone()
		}
	}
	if s.focus != nil {
		f := s.focus.Clone()
		st.Focus = &f
	}
	return st
}

// Current returns the candidate on the current page.
func (s *Store) Current() (viewspace.ViewSpace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.views) == 0 {
		return viewspace.ViewSpace{}, false
	}
	return s.views[s.nav.Current()].Clone(), true
}

// #endregion snapshot
