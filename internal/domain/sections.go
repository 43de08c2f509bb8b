package domain

import (
	"strings"

	"linguacv/internal/model"
)

// ContactItem is one entry of the identity contact line. Href is empty for
// plain text entries.
type ContactItem struct {
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
}

type Identity struct {
	Name    string        `json:"name"`
	Contact []ContactItem `json:"contact,omitempty"`
}

// ContactLine joins the contact entries the way they are displayed.
func (i Identity) ContactLine() string {
	parts := make([]string, 0, len(i.Contact))
	for _, c := range i.Contact {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, " | ")
}

type EducationSection struct {
	School string `json:"school,omitempty"`
	Degree string `json:"degree,omitempty"`
	Dates  string `json:"dates,omitempty"`
}

type WorkItem struct {
	Role    string   `json:"role,omitempty"`
	Dates   string   `json:"dates,omitempty"`
	Bullets []string `json:"bullets,omitempty"`
}

// Sections is the fixed, presence-qualified display model of a snapshot.
// A nil pointer or empty slice means the section is absent.
type Sections struct {
	Identity       *Identity         `json:"identity,omitempty"`
	Summary        string            `json:"summary,omitempty"`
	Education      *EducationSection `json:"education,omitempty"`
	Work           []WorkItem        `json:"work,omitempty"`
	Certifications []string          `json:"certifications,omitempty"`
	Skills         []string          `json:"skills,omitempty"`
	HasAnyContent  bool              `json:"has_any_content"`
}

// DateRange formats a start/end pair: "" when both are empty, the one that is
// set when only one is, otherwise "start – end".
func DateRange(start, end string) string {
	a := strings.TrimSpace(start)
	b := strings.TrimSpace(end)
	switch {
	case a == "" && b == "":
		return ""
	case b == "":
		return a
	case a == "":
		return b
	default:
		return a + " – " + b
	}
}

func clean(s string) string { return strings.TrimSpace(s) }

func anyPresent(values ...string) bool {
	for _, v := range values {
		if clean(v) != "" {
			return true
		}
	}
	return false
}

// Normalize maps a raw snapshot onto Sections. A nil snapshot yields empty
// Sections.
func Normalize(snap *model.ResumeSnapshot) Sections {
	var out Sections
	if snap == nil {
		return out
	}

	if p := snap.Personal; p != nil && clean(string(p.Name)) != "" {
		id := &Identity{Name: clean(string(p.Name))}
		if v := clean(string(p.Location)); v != "" {
			id.Contact = append(id.Contact, ContactItem{Text: v})
		}
		if v := clean(string(p.Email)); v != "" {
			id.Contact = append(id.Contact, ContactItem{Text: v, Href: "mailto:" + v})
		}
		if v := clean(string(p.Phone)); v != "" {
			id.Contact = append(id.Contact, ContactItem{Text: v, Href: "tel:" + v})
		}
		out.Identity = id
	}

	out.Summary = clean(snap.Summary)

	if e := snap.Education; e != nil && anyPresent(e.School, e.Degree, string(e.Start), string(e.End)) {
		out.Education = &EducationSection{
			School: clean(e.School),
			Degree: clean(e.Degree),
			Dates:  DateRange(string(e.Start), string(e.End)),
		}
	}

	for _, w := range snap.Work {
		if w == nil || !anyPresent(w.Role, string(w.Start), string(w.End), w.Description1, w.Description2) {
			continue
		}
		item := WorkItem{Role: clean(w.Role), Dates: DateRange(string(w.Start), string(w.End))}
		for _, d := range []string{w.Description1, w.Description2} {
			if d = clean(d); d != "" {
				item.Bullets = append(item.Bullets, d)
			}
		}
		out.Work = append(out.Work, item)
	}

	for _, c := range snap.Certifications {
		if c == nil {
			continue
		}
		var parts []string
		for _, v := range []string{c.Name, c.Issuer, string(c.Year)} {
			if v = clean(v); v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) > 0 {
			out.Certifications = append(out.Certifications, strings.Join(parts, " — "))
		}
	}

	if snap.Skills != nil {
		for _, s := range snap.Skills.Skills {
			if s = clean(s); s != "" {
				out.Skills = append(out.Skills, s)
			}
		}
	}

	out.HasAnyContent = out.Identity != nil ||
		out.Summary != "" ||
		out.Education != nil ||
		len(out.Work) > 0 ||
		len(out.Skills) > 0
	return out
}
