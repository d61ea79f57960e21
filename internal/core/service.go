package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/catalog/internal/catalog"
)

// DefaultImportTimeout bounds one import preview, including the wait for a slot.
const DefaultImportTimeout = 2 * time.Minute

// DefaultMaxFileSize is the largest accepted upload.
const DefaultMaxFileSize int64 = 10 << 20

// Options tunes a Service. Zero values fall back to the package defaults.
type Options struct {
	MaxFileSize   int64
	MaxConcurrent int
	MaxWaitTime   time.Duration
	ImportTimeout time.Duration
	SessionTTL    time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	if o.ImportTimeout <= 0 {
		o.ImportTimeout = DefaultImportTimeout
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = DefaultSessionTTL
	}
	return o
}

// Service runs import previews and exports over a catalog store and keeps
// previews in a session store until they are proceeded or expire.
type Service struct {
	store    catalog.Store
	sessions SessionStore
	limiter  *ImportLimiter
	opts     Options
	now      func() time.Time
}

// NewService creates a Service.
func NewService(store catalog.Store, sessions SessionStore, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		store:    store,
		sessions: sessions,
		limiter:  NewImportLimiter(opts.MaxConcurrent, opts.MaxWaitTime),
		opts:     opts,
		now:      time.Now,
	}
}

// Kinds lists the supported import and export kinds.
func (s *Service) Kinds() []KindInfo {
	return All()
}

// PreviewImport validates an uploaded CSV against the current catalog and
// stores the result in a new import session. Nothing in the catalog changes.
func (s *Service) PreviewImport(ctx context.Context, kind ImportKind, fileName string, r io.Reader) (*ImportSession, error) {
	def, err := Get(kind)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.opts.ImportTimeout)
	defer cancel()

	if err := s.limiter.Acquire(ctx); err != nil {
		recordImport(kind, nil, err, started)
		return nil, err
	}
	defer s.limiter.Release()

	sess, err := s.preview(ctx, def, fileName, r)
	if err != nil {
		recordImport(kind, nil, err, started)
		return nil, err
	}
	recordImport(kind, &sess.Result, nil, started)

	slog.With(ClientFrom(ctx).logAttrs()...).Info("import preview stored",
		"import_id", sess.ID,
		"kind", kind,
		"file", fileName,
		"processed", sess.Result.ProcessedRows,
		"skipped", sess.Result.SkippedRows,
		"conflicts", len(sess.Result.Conflicts),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return sess, nil
}

func (s *Service) preview(ctx context.Context, def KindDefinition, fileName string, r io.Reader) (*ImportSession, error) {
	text, err := ReadUpload(r, s.opts.MaxFileSize)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	result := def.Import(text, snap)

	now := s.now().UTC()
	sess := &ImportSession{
		ID:        uuid.New().String(),
		Kind:      def.Info.Kind,
		FileName:  fileName,
		Result:    result,
		Selected:  []string{},
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.SessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save import session: %w", err)
	}
	return sess, nil
}

// snapshot loads the catalog state an import or export works on.
func (s *Service) snapshot(ctx context.Context) (Snapshot, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list products: %w", err)
	}
	facilities, err := s.store.ListFacilities(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list facilities: %w", err)
	}
	return Snapshot{Products: products, Facilities: facilities}, nil
}

// GetImport returns a stored import session.
func (s *Service) GetImport(ctx context.Context, importID string) (*ImportSession, error) {
	return s.sessions.Get(ctx, importID)
}

// ToggleConflict flips the selection of one conflict and reports whether it
// is now selected.
func (s *Service) ToggleConflict(ctx context.Context, importID, conflictID string) (*ImportSession, bool, error) {
	var on bool
	sess, err := s.sessions.Update(ctx, importID, func(sess *ImportSession) error {
		selected, now, err := Selection(sess.Selected).Toggle(&sess.Result, conflictID)
		if err != nil {
			return err
		}
		sess.Selected, on = selected, now
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return sess, on, nil
}

// ProceedImport checks the proceed gate and closes the session. Applying the
// accepted rows to the catalog is not performed here: the result reports
// Applied=false and the accepted conflicts for the caller to act on.
func (s *Service) ProceedImport(ctx context.Context, importID string) (*ProceedResult, error) {
	sess, err := s.sessions.Get(ctx, importID)
	if err != nil {
		return nil, err
	}

	selection := Selection(sess.Selected)
	if err := CanProceed(&sess.Result, selection); err != nil {
		return nil, err
	}

	accepted := selection.Accepted(&sess.Result)
	for _, c := range accepted {
		slog.Info("conflict accepted",
			"import_id", sess.ID,
			"conflict_id", c.ID,
			"product_id", c.ProductID,
			"options", c.DifferingOptions,
			"rows", c.Rows,
		)
	}

	// TODO: apply the previewed rows through catalog.Store once the
	// front end sends a resolution per accepted conflict.
	slog.With(ClientFrom(ctx).logAttrs()...).Info("import proceeded",
		"import_id", sess.ID,
		"kind", sess.Kind,
		"processed", sess.Result.ProcessedRows,
		"accepted_conflicts", len(accepted),
	)
	importsProceededTotal.WithLabelValues(string(sess.Kind)).Inc()

	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		slog.Warn("delete import session", "import_id", sess.ID, "error", err)
	}

	return &ProceedResult{
		ImportID:          sess.ID,
		Kind:              sess.Kind,
		ProcessedRows:     sess.Result.ProcessedRows,
		AcceptedConflicts: accepted,
		Applied:           false,
	}, nil
}

// Export writes the CSV for kind. For the inventory matrix, facilityCodes
// restricts the facilities included; an empty list means all of them.
func (s *Service) Export(ctx context.Context, kind ImportKind, w io.Writer, facilityCodes []string) error {
	def, err := Get(kind)
	if err != nil {
		return err
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		recordExport(kind, err)
		return err
	}

	if len(facilityCodes) > 0 {
		snap.Facilities, err = filterFacilities(snap.Facilities, facilityCodes)
		if err != nil {
			recordExport(kind, err)
			return err
		}
	}

	err = def.Export(w, snap)
	recordExport(kind, err)
	if err != nil {
		return fmt.Errorf("export %s: %w", kind, err)
	}
	return nil
}

// filterFacilities keeps the facilities named by codes, in code order.
func filterFacilities(all []catalog.Facility, codes []string) ([]catalog.Facility, error) {
	byCode := make(map[string]catalog.Facility, len(all))
	for _, f := range all {
		byCode[f.Code] = f
	}

	out := make([]catalog.Facility, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		f, ok := byCode[code]
		if !ok {
			return nil, fmt.Errorf("facility %q: %w", code, catalog.ErrNotFound)
		}
		if !seen[code] {
			seen[code] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// ExportFileName returns the download name for an export taken at t.
func ExportFileName(kind ImportKind, t time.Time) string {
	return fmt.Sprintf("%s_%s.csv", kind, t.Format("20060102_150405"))
}

// WaitForImports blocks until in-flight previews finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}
