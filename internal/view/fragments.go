package view

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/karitsu/gridpager/internal/domain"
)

// GalleryGrid renders the ordered picture thumbnails with their position
// numbers and per-picture actions.
func GalleryGrid(pics []domain.Picture) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(pics) == 0 {
			_, err := io.WriteString(w, `<p class="empty">No pictures yet. Upload some to get started.</p>`)
			return err
		}
		for i, p := range pics {
			id := templ.EscapeString(p.ID)
			_, err := fmt.Fprintf(w, `<figure class="tile" data-picture-id="%s">
<img src="/pictures/%s/thumb" alt="%s" loading="lazy">
<figcaption>%d. %s</figcaption>
<button data-on-click="@post('/pictures/%s/delete')">Remove</button>
</figure>`,
				id, id, templ.EscapeString(p.DisplayName), i+1, templ.EscapeString(p.DisplayName), id)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GenerateProgress renders the per-page progress line during a run.
func GenerateProgress(done, total int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<p>Rendering page %d of %d&hellip;</p>`, done, total)
		return err
	})
}

// GenerateNotice renders a one-line message in the progress slot.
func GenerateNotice(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<p class="notice">`+templ.EscapeString(message)+`</p>`)
		return err
	})
}

// GenerateResults renders the download links for a finished run.
func GenerateResults(result *domain.GenerateResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(result.Pages) == 0 {
			_, err := io.WriteString(w, `<p class="notice">The run was cancelled before any page finished.</p>`)
			return err
		}

		if result.Cancelled {
			if _, err := io.WriteString(w, `<p class="notice">Run cancelled; the finished pages are below.</p>`); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<ul class="pages">`); err != nil {
			return err
		}
		for _, p := range result.Pages {
			if _, err := fmt.Fprintf(w, `<li><a href="/export/pages/%d" download>%s</a> <span>%d&times;%d</span></li>`,
				p.Index, templ.EscapeString(p.Filename), p.Width, p.Height); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</ul>`); err != nil {
			return err
		}

		_, err := io.WriteString(w, `<p><a href="/export/combined" download>Combined image</a> &middot; <a href="/export/archive" download>ZIP archive</a></p>`)
		return err
	})
}
