package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gg"

	"github.com/karitsu/gridpager/internal/domain"
	"github.com/karitsu/gridpager/internal/grid"
)

// GenerateService orchestrates a generation run: gallery -> mask set ->
// dimension plan -> page partition -> compositor -> encoder, with
// cooperative cancellation and per-page progress. The latest result per
// user is kept in memory until the next run replaces it; results are
// never persisted.
type GenerateService struct {
	pictures domain.PictureRepository
	files    domain.FileStore
	layout   *LayoutService

	mu      sync.Mutex
	cancels map[int64]context.CancelFunc
	results map[int64]*domain.GenerateResult
	bitmaps *bitmapCache
}

// NewGenerateService creates a new GenerateService.
func NewGenerateService(pictures domain.PictureRepository, files domain.FileStore, layout *LayoutService) *GenerateService {
	return &GenerateService{
		pictures: pictures,
		files:    files,
		layout:   layout,
		cancels:  make(map[int64]context.CancelFunc),
		results:  make(map[int64]*domain.GenerateResult),
		bitmaps:  newBitmapCache(),
	}
}

// RunOptions tune one generation run.
type RunOptions struct {
	// Exclude switches the run to strip-and-repack mode: instead of
	// drawing masks over the indexed cells, the indexed pictures are
	// removed before partitioning and the survivors renumber
	// contiguously.
	Exclude bool

	// Progress, when set, is called after each completed page.
	Progress func(domain.Progress)
}

// Run executes one generation run for the user. Only one run per user
// may be active at a time. Cancellation (via ctx or Cancel) is not an
// error: the result comes back with Cancelled set and the pages that
// finished before the signal.
func (s *GenerateService) Run(ctx context.Context, userID int64, opts RunOptions) (*domain.GenerateResult, error) {
	runCtx, err := s.beginRun(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer s.endRun(userID)

	settings, err := s.layout.Get(runCtx, userID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	pics, err := s.pictures.ListByUser(runCtx, userID)
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	if len(pics) == 0 {
		return nil, domain.ErrNoPictures
	}

	maskSet := grid.ParseIndexSet(settings.Mask.Indices)

	cellW, cellH := grid.PlanCell(settings.Columns, settings.CellAspect(), settings.GapPixels)
	rows := settings.RowsPerPage
	if rows == 0 {
		rows = grid.AutoRows(cellH, settings.GapPixels)
	}

	var excluded grid.IndexSet
	renderMask := maskSet
	if opts.Exclude {
		excluded = maskSet
		renderMask = nil
	}
	pages := grid.Partition(len(pics), settings.Numbering.Start, excluded, settings.Columns*rows)
	if len(pages) == 0 {
		return nil, domain.ErrNoPictures
	}

	sticker, err := s.bitmaps.get(runCtx, s.files, settings.Sticker.SourceKey)
	if err != nil {
		slog.Warn("load sticker source", "key", settings.Sticker.SourceKey, "error", err)
	}
	overlay, err := s.bitmaps.get(runCtx, s.files, settings.Overlay.SourceKey)
	if err != nil {
		slog.Warn("load overlay source", "key", settings.Overlay.SourceKey, "error", err)
	}

	comp, err := grid.NewCompositor()
	if err != nil {
		return nil, fmt.Errorf("create compositor: %w", err)
	}

	result := &domain.GenerateResult{
		Quality:   settings.ExportQuality,
		StartedAt: time.Now(),
	}

	for pageIdx, page := range pages {
		if runCtx.Err() != nil {
			result.Cancelled = true
			break
		}

		payloads := make([][]byte, len(page.Positions))
		for i, pos := range page.Positions {
			data, err := s.files.Get(runCtx, pics[pos].StorageKey)
			if err != nil {
				// A missing payload renders as a placeholder tile, the
				// same as a decode failure.
				slog.Warn("load picture payload", "id", pics[pos].ID, "error", err)
				data = nil
			}
			payloads[i] = data
		}

		plan := grid.PagePlan{
			Columns:      settings.Columns,
			Rows:         rowsForPage(len(page.Positions), settings.Columns, rows),
			CellW:        cellW,
			CellH:        cellH,
			Gap:          settings.GapPixels,
			GlobalOffset: page.GlobalOffset,
		}

		if err := comp.RenderPage(runCtx, payloads, plan, settings, renderMask, sticker, overlay); err != nil {
			if runCtx.Err() != nil {
				// The partially drawn page is discarded; pages rendered
				// before the signal stay valid.
				result.Cancelled = true
				break
			}
			return nil, fmt.Errorf("render page %d: %w", pageIdx+1, err)
		}

		data, mimeType, err := grid.EncodePage(comp.Surface(), settings.ExportQuality)
		if err != nil {
			return nil, fmt.Errorf("encode page %d: %w", pageIdx+1, err)
		}

		w, h := plan.Dims()
		result.Pages = append(result.Pages, domain.EncodedPage{
			Index:    pageIdx,
			Filename: fmt.Sprintf("grid-%02d%s", pageIdx+1, grid.FileExt(mimeType)),
			MIMEType: mimeType,
			Data:     data,
			Width:    w,
			Height:   h,
		})

		if opts.Progress != nil {
			opts.Progress(domain.Progress{PagesDone: pageIdx + 1, PagesTotal: len(pages)})
		}
	}

	result.FinishedAt = time.Now()

	s.mu.Lock()
	s.results[userID] = result
	s.mu.Unlock()
	return result, nil
}

// previewScale shrinks preview geometry relative to export geometry.
const previewScale = 4

// Preview renders the first page at reduced scale through the same
// compositing path the export uses. It is recomputed on every call and
// never cached, so the composer always previews the current gallery and
// settings. Previews run independently of export runs.
func (s *GenerateService) Preview(ctx context.Context, userID int64) ([]byte, string, error) {
	settings, err := s.layout.Get(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("load settings: %w", err)
	}

	pics, err := s.pictures.ListByUser(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("list gallery: %w", err)
	}
	if len(pics) == 0 {
		return nil, "", domain.ErrNoPictures
	}

	cellW, cellH := grid.PlanCell(settings.Columns, settings.CellAspect(), settings.GapPixels)
	rows := settings.RowsPerPage
	if rows == 0 {
		rows = grid.AutoRows(cellH, settings.GapPixels)
	}

	pages := grid.Partition(len(pics), settings.Numbering.Start, nil, settings.Columns*rows)
	first := pages[0]

	payloads := make([][]byte, len(first.Positions))
	for i, pos := range first.Positions {
		data, err := s.files.Get(ctx, pics[pos].StorageKey)
		if err != nil {
			data = nil
		}
		payloads[i] = data
	}

	// Font size scales with the geometry so the preview numbering keeps
	// its proportions.
	scaled := *settings
	scaled.Numbering.FontSize = max(1, settings.Numbering.FontSize/previewScale)

	sticker, err := s.bitmaps.get(ctx, s.files, settings.Sticker.SourceKey)
	if err != nil {
		slog.Warn("load sticker source", "key", settings.Sticker.SourceKey, "error", err)
	}
	overlay, err := s.bitmaps.get(ctx, s.files, settings.Overlay.SourceKey)
	if err != nil {
		slog.Warn("load overlay source", "key", settings.Overlay.SourceKey, "error", err)
	}

	comp, err := grid.NewCompositor()
	if err != nil {
		return nil, "", fmt.Errorf("create compositor: %w", err)
	}

	plan := grid.PagePlan{
		Columns:      settings.Columns,
		Rows:         rowsForPage(len(first.Positions), settings.Columns, rows),
		CellW:        max(1, cellW/previewScale),
		CellH:        max(1, cellH/previewScale),
		Gap:          settings.GapPixels / previewScale,
		GlobalOffset: first.GlobalOffset,
	}
	maskSet := grid.ParseIndexSet(settings.Mask.Indices)
	if err := comp.RenderPage(ctx, payloads, plan, &scaled, maskSet, sticker, overlay); err != nil {
		return nil, "", fmt.Errorf("render preview: %w", err)
	}

	data, mimeType, err := grid.EncodePage(comp.Surface(), previewQuality(settings.ExportQuality))
	if err != nil {
		return nil, "", fmt.Errorf("encode preview: %w", err)
	}
	return data, mimeType, nil
}

// previewQuality keeps previews as lightweight JPEGs even when the
// export is lossless.
func previewQuality(exportQuality int) int {
	if exportQuality > 80 {
		return 80
	}
	return exportQuality
}

// Cancel signals the user's active run, if any. Pages already completed
// are kept.
func (s *GenerateService) Cancel(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[userID]; ok {
		cancel()
	}
}

// Result returns the user's latest generation result.
func (s *GenerateService) Result(userID int64) (*domain.GenerateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.results[userID]
	if !ok || len(result.Pages) == 0 {
		return nil, domain.ErrNoResult
	}
	return result, nil
}

// Page returns one encoded page of the latest result.
func (s *GenerateService) Page(userID int64, index int) (*domain.EncodedPage, error) {
	result, err := s.Result(userID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(result.Pages) {
		return nil, domain.ErrNotFound
	}
	return &result.Pages[index], nil
}

// Combined concatenates the latest result's pages vertically into one
// tall image, downscaling uniformly if safe limits demand it. The
// suggested filename carries a marker when a downscale happened.
func (s *GenerateService) Combined(userID int64) (*grid.CombineResult, string, error) {
	result, err := s.Result(userID)
	if err != nil {
		return nil, "", err
	}

	pages := make([][]byte, len(result.Pages))
	for i := range result.Pages {
		pages[i] = result.Pages[i].Data
	}

	combined, err := grid.CombineVertical(pages, result.Quality)
	if err != nil {
		return nil, "", fmt.Errorf("combine pages: %w", err)
	}

	name := "grid-combined"
	if combined.Downscaled {
		name += "-downscaled"
	}
	return combined, name + grid.FileExt(combined.MIMEType), nil
}

// WriteArchive streams the latest result as a ZIP of individual pages.
func (s *GenerateService) WriteArchive(w io.Writer, userID int64) error {
	result, err := s.Result(userID)
	if err != nil {
		return err
	}

	files := make([]grid.ArchiveFile, len(result.Pages))
	for i, p := range result.Pages {
		files[i] = grid.ArchiveFile{Name: p.Filename, Data: p.Data}
	}
	return grid.WriteArchive(w, files)
}

func (s *GenerateService) beginRun(ctx context.Context, userID int64) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, running := s.cancels[userID]; running {
		return nil, domain.ErrGenerateBusy
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancels[userID] = cancel
	return runCtx, nil
}

func (s *GenerateService) endRun(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[userID]; ok {
		cancel()
		delete(s.cancels, userID)
	}
}

// rowsForPage trims the last page's row count to its actual content so a
// short final page is not padded with empty cells.
func rowsForPage(items, columns, rows int) int {
	need := (items + columns - 1) / columns
	if need < rows {
		return need
	}
	return rows
}

// bitmapCache caches the decoded sticker and overlay bitmaps keyed by
// their settings source reference, so the compositor stays a function of
// explicit inputs and a changed source is picked up on the next run.
type bitmapCache struct {
	mu      sync.Mutex
	entries map[string]*gg.ImageBuf
}

func newBitmapCache() *bitmapCache {
	return &bitmapCache{entries: make(map[string]*gg.ImageBuf)}
}

func (c *bitmapCache) get(ctx context.Context, files domain.FileStore, key string) (*gg.ImageBuf, error) {
	if key == "" {
		return nil, nil
	}

	c.mu.Lock()
	if img, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return img, nil
	}
	c.mu.Unlock()

	data, err := files.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	img, err := grid.DecodeImage(data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// Source keys are immutable (a replaced source gets a new key), so
	// the cache only ever grows with live keys; evict stale ones to keep
	// it at one sticker and one overlay per active user.
	if len(c.entries) > 64 {
		c.entries = make(map[string]*gg.ImageBuf)
	}
	c.entries[key] = img
	c.mu.Unlock()
	return img, nil
}
