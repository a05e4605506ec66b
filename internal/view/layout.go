package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// page wraps body content in the shared HTML shell.
func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`+templ.EscapeString(title)+`</title><style>`+baseCSS+`</style><script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script></head><body>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

const baseCSS = `body{font-family:system-ui,sans-serif;margin:0;color:#222}
main{max-width:64rem;margin:0 auto;padding:1rem}
.topbar{display:flex;justify-content:space-between;padding:.5rem 1rem;background:#f4f4f4}
.composer{display:grid;gap:1.5rem}
.tile{display:inline-block;margin:.25rem;text-align:center}
.tile img{max-width:8rem;max-height:8rem;display:block}
.error,.notice{color:#b00}
.pages{list-style:none;padding:0}`

func raw(html string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, html)
		return err
	})
}
