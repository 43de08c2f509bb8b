package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguacv/internal/model"
)

func TestDateRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       string
	}{
		{name: "both empty", want: ""},
		{name: "only start", start: "2020", want: "2020"},
		{name: "only end", end: "2022", want: "2022"},
		{name: "both", start: "2020", end: "2022", want: "2020 – 2022"},
		{name: "whitespace is empty", start: "  ", end: "\t", want: ""},
		{name: "trims", start: " Jan 2020 ", end: "Present ", want: "Jan 2020 – Present"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DateRange(tt.start, tt.end))
		})
	}

	// Feeding a single-sided result back in is a fixed point.
	assert.Equal(t, "2020", DateRange(DateRange("2020", ""), ""))
}

func TestNormalize_ScenarioA(t *testing.T) {
	snap := &model.ResumeSnapshot{
		Personal: &model.Personal{Name: "Ana Ruiz", Email: "ana@x.com"},
		Work: []*model.WorkEntry{
			{Role: "Dev", Start: "2020", End: "2022", Description1: "Built APIs"},
		},
	}

	s := Normalize(snap)

	require.NotNil(t, s.Identity)
	assert.Equal(t, "Ana Ruiz", s.Identity.Name)
	assert.Equal(t, "ana@x.com", s.Identity.ContactLine())
	assert.Equal(t, []ContactItem{{Text: "ana@x.com", Href: "mailto:ana@x.com"}}, s.Identity.Contact)
	require.Len(t, s.Work, 1)
	assert.Equal(t, WorkItem{Role: "Dev", Dates: "2020 – 2022", Bullets: []string{"Built APIs"}}, s.Work[0])
	assert.Nil(t, s.Education)
	assert.Empty(t, s.Summary)
	assert.True(t, s.HasAnyContent)
}

func TestNormalize_ContactLineOrder(t *testing.T) {
	s := Normalize(&model.ResumeSnapshot{Personal: &model.Personal{
		Name:     "Ana",
		Phone:    "+34 600",
		Email:    "ana@x.com",
		Location: "Madrid",
	}})

	require.NotNil(t, s.Identity)
	assert.Equal(t, "Madrid | ana@x.com | +34 600", s.Identity.ContactLine())
	assert.Equal(t, "tel:+34 600", s.Identity.Contact[2].Href)
	assert.Empty(t, s.Identity.Contact[0].Href)
}

func TestNormalize_IdentityRequiresName(t *testing.T) {
	s := Normalize(&model.ResumeSnapshot{Personal: &model.Personal{Email: "ana@x.com"}})
	assert.Nil(t, s.Identity)
	assert.False(t, s.HasAnyContent)
}

func TestNormalize_WorkFiltering(t *testing.T) {
	snap := &model.ResumeSnapshot{Work: []*model.WorkEntry{
		{},
		nil,
		{Role: "Engineer"},
		{Start: "2019", Description2: "Second line only"},
	}}

	s := Normalize(snap)

	require.Len(t, s.Work, 2)
	assert.Equal(t, WorkItem{Role: "Engineer"}, s.Work[0])
	assert.Equal(t, WorkItem{Dates: "2019", Bullets: []string{"Second line only"}}, s.Work[1])
}

func TestNormalize_Certifications(t *testing.T) {
	snap := &model.ResumeSnapshot{Certifications: []*model.Certification{
		{Name: "CKA", Issuer: "CNCF", Year: "2021"},
		{},
		{Name: "AWS SAA", Year: "2023"},
		{Issuer: "Coursera"},
	}}

	s := Normalize(snap)

	assert.Equal(t, []string{"CKA — CNCF — 2021", "AWS SAA — 2023", "Coursera"}, s.Certifications)
	// Certifications alone do not make the résumé exportable.
	assert.False(t, s.HasAnyContent)
}

func TestNormalize_Education(t *testing.T) {
	s := Normalize(&model.ResumeSnapshot{Education: &model.Education{End: "2018"}})
	require.NotNil(t, s.Education)
	assert.Equal(t, "2018", s.Education.Dates)
	assert.True(t, s.HasAnyContent)

	s = Normalize(&model.ResumeSnapshot{Education: &model.Education{}})
	assert.Nil(t, s.Education)
}

func TestNormalize_SkillsKeepOrderAndDuplicates(t *testing.T) {
	s := Normalize(&model.ResumeSnapshot{Skills: &model.Skills{Skills: []string{"Go", "SQL", "Go", " "}}})
	assert.Equal(t, []string{"Go", "SQL", "Go"}, s.Skills)
	assert.True(t, s.HasAnyContent)
}

func TestNormalize_ContentGate(t *testing.T) {
	assert.False(t, Normalize(nil).HasAnyContent)
	assert.False(t, Normalize(&model.ResumeSnapshot{}).HasAnyContent)
	assert.False(t, Normalize(&model.ResumeSnapshot{Summary: "   "}).HasAnyContent)
	assert.True(t, Normalize(&model.ResumeSnapshot{Summary: "Go developer"}).HasAnyContent)
}
