package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Go models that match the snapshot served by the backend's /latest endpoint.
// Every field is optional; absent and null values decode to their zero value.

// Text is a string field that also accepts JSON numbers, so a year sent as
// 2021 and one sent as "2021" decode the same way.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*t = Text(strconv.FormatInt(i, 10))
		return nil
	}
	*t = Text(n.String())
	return nil
}

// Personal fields are passed through from extraction unchanged, so a phone
// number may arrive as a JSON number.
type Personal struct {
	Name     Text `json:"name"`
	Location Text `json:"location"`
	Email    Text `json:"email"`
	Phone    Text `json:"phone"`
}

type Education struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Start  Text   `json:"start"`
	End    Text   `json:"end"`
}

// UnmarshalJSON accepts the single-record object as well as a list, in which
// case the first record is used.
func (e *Education) UnmarshalJSON(b []byte) error {
	type plain Education
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var list []*plain
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*e = Education{}
		if len(list) > 0 && list[0] != nil {
			*e = Education(*list[0])
		}
		return nil
	}
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*e = Education(p)
	return nil
}

type WorkEntry struct {
	Role         string `json:"role"`
	Start        Text   `json:"start"`
	End          Text   `json:"end"`
	Description1 string `json:"description1"`
	Description2 string `json:"description2"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Year   Text   `json:"year"`
}

// Skills mirrors the backend's {"skills": [...]} wrapper. A bare list is
// accepted too.
type Skills struct {
	Skills []string `json:"skills"`
}

func (s *Skills) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		s.Skills = list
		return nil
	}
	type plain Skills
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*s = Skills(p)
	return nil
}

// ResumeSnapshot is the backend's current best-known résumé state.
type ResumeSnapshot struct {
	Personal       *Personal        `json:"personal,omitempty"`
	Summary        string           `json:"summary,omitempty"`
	Education      *Education       `json:"education,omitempty"`
	Work           []*WorkEntry     `json:"work,omitempty"`
	Certifications []*Certification `json:"certifications,omitempty"`
	Skills         *Skills          `json:"skills,omitempty"`
}
