package view

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/karitsu/gridpager/internal/domain"
)

// HomePage renders the landing page.
func HomePage() templ.Component {
	return page("Grid Pager", raw(`<main class="landing"><h1>Grid Pager</h1><p>Arrange your pictures into numbered grid pages, mask or drop the ones you do not need, and export the result as images or a ZIP.</p><p><a class="button" href="/login">Sign in</a></p></main>`))
}

// LoginPage renders the combined sign-in and registration page.
func LoginPage() templ.Component {
	return page("Sign in", raw(`<main class="auth">
<h1>Sign in</h1>
<form id="login-form" onsubmit="return submitAuth(this, '/api/auth/login')">
<label>Username <input name="username" required autocomplete="username"></label>
<label>Password <input name="password" type="password" required autocomplete="current-password"></label>
<button type="submit">Sign in</button>
</form>
<h2>New here?</h2>
<form id="register-form" onsubmit="return submitAuth(this, '/api/auth/register')">
<label>Username <input name="username" required autocomplete="username"></label>
<label>Password <input name="password" type="password" required minlength="8" autocomplete="new-password"></label>
<button type="submit">Create account</button>
</form>
<p id="auth-error" class="error" hidden></p>
<script>
async function submitAuth(form, url) {
  event.preventDefault();
  const body = JSON.stringify(Object.fromEntries(new FormData(form)));
  const resp = await fetch(url, {method: 'POST', headers: {'Content-Type': 'application/json'}, body});
  if (resp.ok) {
    if (url.endsWith('/register')) {
      return submitAuth(form, '/api/auth/login');
    }
    window.location = '/app';
    return false;
  }
  const data = await resp.json().catch(() => ({}));
  const el = document.getElementById('auth-error');
  el.textContent = data.error || 'Something went wrong.';
  el.hidden = false;
  return false;
}
</script>
</main>`))
}

// AppPage renders the composer: gallery, layout settings, and the
// generate panel.
func AppPage(username string, pics []domain.Picture, settings *domain.LayoutSettings) templ.Component {
	return page("Composer", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<header class="topbar"><span>`+templ.EscapeString(username)+`</span><button data-on-click="@post('/api/auth/logout'); window.location='/'">Sign out</button></header><main class="composer">`); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<section class="gallery-panel">
<h2>Gallery</h2>
<form id="upload-form" enctype="multipart/form-data">
<input type="file" name="images" multiple accept="image/*">
<button type="button" data-on-click="@post('/pictures', {contentType: 'form'})">Upload</button>
<button type="button" data-on-click="@post('/gallery/clear')">Clear all</button>
</form>
<div id="gallery-grid">`); err != nil {
			return err
		}
		if err := GalleryGrid(pics).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</div></section>`); err != nil {
			return err
		}

		if err := settingsPanel(settings).Render(ctx, w); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<section class="preview-panel">
<h2>Preview</h2>
<img id="preview" src="/preview" alt="First page preview" onerror="this.hidden=true" onload="this.hidden=false">
<button onclick="document.getElementById('preview').src='/preview?'+Date.now()">Refresh</button>
</section>
<section class="generate-panel">
<h2>Generate</h2>
<button data-on-click="@post('/generate')">Generate pages</button>
<button data-on-click="@post('/generate?exclude=true')">Generate without marked</button>
<button data-on-click="@post('/generate/cancel')">Cancel</button>
<div id="generate-progress"></div>
<div id="generate-results"></div>
</section>`); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</main>`)
		return err
	}))
}

func settingsPanel(s *domain.LayoutSettings) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<section class="settings-panel">
<h2>Layout</h2>
<form id="settings-form" onsubmit="return saveSettings(this)">
<label>Columns <input name="columns" type="number" min="1" value="%d"></label>
<label>Rows per page (0 = auto) <input name="rowsPerPage" type="number" min="0" value="%d"></label>
<label>Aspect <input name="aspectWidth" type="number" min="1" value="%s"> : <input name="aspectHeight" type="number" min="1" value="%s"></label>
<label>Gap <input name="gapPixels" type="number" min="0" value="%d"></label>
<label>Quality <input name="exportQuality" type="number" min="1" max="100" value="%d"></label>
<label>Start number <input name="numberingStart" type="number" min="1" value="%d"></label>
<label>Marked cells <input name="maskIndices" value="%s" placeholder="1, 4-6, 9"></label>
<button type="submit">Save</button>
</form>
<div class="asset-slots">
<label>Sticker <input type="file" onchange="uploadAsset(this, 'sticker')"></label>
<label>Overlay <input type="file" onchange="uploadAsset(this, 'overlay')"></label>
</div>
<script>
async function saveSettings(form) {
  event.preventDefault();
  const f = new FormData(form);
  const num = (k) => Number(f.get(k));
  const body = JSON.stringify({
    columns: num('columns'), rowsPerPage: num('rowsPerPage'),
    aspectWidth: num('aspectWidth'), aspectHeight: num('aspectHeight'),
    gapPixels: num('gapPixels'), exportQuality: num('exportQuality'),
    numbering: {enabled: true, start: num('numberingStart')},
    mask: {indices: f.get('maskIndices')}
  });
  await fetch('/api/settings', {method: 'POST', headers: {'Content-Type': 'application/json'}, body});
  return false;
}
async function uploadAsset(input, kind) {
  const f = new FormData();
  f.append('image', input.files[0]);
  await fetch('/settings/assets/' + kind, {method: 'POST', body: f});
}
</script>
</section>`,
			s.Columns, s.RowsPerPage,
			trimFloat(s.AspectWidth), trimFloat(s.AspectHeight),
			s.GapPixels, s.ExportQuality,
			s.Numbering.Start, templ.EscapeString(s.Mask.Indices))
		return err
	})
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
