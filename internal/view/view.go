// Package view renders normalized résumé sections as HTML: the live preview
// page served to the browser and the standalone document used for export.
// Both share the "sections" template so the exported PDF matches the
// preview's section rules.
package view

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"linguacv/internal/domain"
)

//go:embed templates/*.html templates/style.css
var files embed.FS

var (
	templates = template.Must(template.New("").Funcs(template.FuncMap{"href": href}).
			ParseFS(files, "templates/*.html"))
	stylesheet = template.CSS(mustRead("templates/style.css"))
)

func mustRead(name string) string {
	b, err := files.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// href admits only the contact link schemes produced by domain.Normalize.
func href(raw string) template.URL {
	for _, scheme := range []string{"mailto:", "tel:"} {
		if strings.HasPrefix(raw, scheme) {
			return template.URL(scheme + pathEscape(strings.TrimPrefix(raw, scheme)))
		}
	}
	return template.URL("#")
}

func pathEscape(s string) string {
	return strings.NewReplacer(" ", "%20", `"`, "%22", "<", "%3C", ">", "%3E").Replace(s)
}

type sectionsView struct {
	Sections    domain.Sections
	Name        string
	Contact     []domain.ContactItem
	Placeholder bool
}

func newSectionsView(s domain.Sections, placeholder bool) sectionsView {
	v := sectionsView{Sections: s, Placeholder: placeholder}
	if s.Identity != nil {
		v.Name = s.Identity.Name
		v.Contact = s.Identity.Contact
	} else if placeholder {
		v.Name = "Your Name"
	}
	return v
}

// Status is the poll status line shown above the preview.
type Status struct {
	Loading     bool
	Error       string
	RetryIn     int
	LastUpdated string
	CanExport   bool
}

// StatusFrom derives the status line from a poll state.
func StatusFrom(st domain.PollState, sections domain.Sections) Status {
	s := Status{
		Loading:   !st.Loaded() && st.LastError == "",
		Error:     st.LastError,
		RetryIn:   st.RetryIn(),
		CanExport: st.Loaded() && sections.HasAnyContent,
	}
	if !st.LastUpdatedAt.IsZero() {
		s.LastUpdated = st.LastUpdatedAt.Local().Format(time.TimeOnly)
	}
	return s
}

// Voice describes the voice session controls.
type Voice struct {
	Enabled bool
	Active  bool
	Error   string
}

// Page is everything the live preview page needs.
type Page struct {
	sectionsView
	Status        Status
	Voice         Voice
	RefreshMillis int64
	Style         template.CSS
}

// NewPage assembles a preview page for the given poll state.
func NewPage(st domain.PollState, voice Voice, refresh time.Duration) Page {
	sections := domain.Normalize(st.Snapshot)
	return Page{
		sectionsView:  newSectionsView(sections, true),
		Status:        StatusFrom(st, sections),
		Voice:         voice,
		RefreshMillis: refresh.Milliseconds(),
		Style:         stylesheet,
	}
}

// RenderPreview writes the full preview page.
func RenderPreview(w io.Writer, p Page) error {
	return errors.Wrap(templates.ExecuteTemplate(w, "preview", p), "render preview")
}

// RenderFragment writes the part of the page that is swapped on update.
func RenderFragment(w io.Writer, p Page) error {
	return errors.Wrap(templates.ExecuteTemplate(w, "fragment", p), "render fragment")
}

type documentView struct {
	sectionsView
	Title string
	Style template.CSS
}

// RenderDocument produces the standalone, print-ready HTML for export. It
// depends only on the sections, never on the preview page's state.
func RenderDocument(s domain.Sections) (string, error) {
	title := "Resume"
	if s.Identity != nil {
		title = s.Identity.Name
	}
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "document", documentView{
		sectionsView: newSectionsView(s, false),
		Title:        title,
		Style:        stylesheet,
	})
	if err != nil {
		return "", errors.Wrap(err, "render document")
	}
	return buf.String(), nil
}
