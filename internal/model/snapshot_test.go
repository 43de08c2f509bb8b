package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSnapshot_FullShape(t *testing.T) {
	raw := []byte(`{
		"personal": {"name": "Ana Ruiz", "email": "ana@x.com", "phone": null, "location": ""},
		"summary": "Backend developer",
		"education": {"school": "UNAM", "degree": "BSc", "start": "2014", "end": 2018},
		"work": [
			{"role": "Dev", "start": "2020", "end": "2022", "description1": "Built APIs", "description2": ""},
			null,
			{"role": "", "start": "", "end": "", "description1": "", "description2": ""}
		],
		"certifications": [{"name": "CKA", "issuer": "CNCF", "year": 2021}],
		"skills": {"skills": ["Go", "SQL"]}
	}`)

	snap, err := DecodeSnapshot(raw)
	require.NoError(t, err)

	require.NotNil(t, snap.Personal)
	assert.Equal(t, Text("Ana Ruiz"), snap.Personal.Name)
	assert.Empty(t, snap.Personal.Phone)
	require.NotNil(t, snap.Education)
	assert.Equal(t, Text("2018"), snap.Education.End)
	require.Len(t, snap.Work, 3)
	assert.Nil(t, snap.Work[1])
	assert.Equal(t, Text("2021"), snap.Certifications[0].Year)
	assert.Equal(t, []string{"Go", "SQL"}, snap.Skills.Skills)
}

func TestDecodeSnapshot_EmptyObjectIsValid(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{}`))
	require.NoError(t, err)
	assert.Nil(t, snap.Personal)
	assert.Nil(t, snap.Skills)
	assert.Empty(t, snap.Work)
}

func TestDecodeSnapshot_AlternateShapes(t *testing.T) {
	raw := []byte(`{
		"education": [{"school": "MIT", "degree": "MSc"}, {"school": "ignored"}],
		"skills": ["Go", "Rust"]
	}`)

	snap, err := DecodeSnapshot(raw)
	require.NoError(t, err)
	require.NotNil(t, snap.Education)
	assert.Equal(t, "MIT", snap.Education.School)
	assert.Equal(t, []string{"Go", "Rust"}, snap.Skills.Skills)
}

func TestDecodeSnapshot_NumericPersonalFields(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{"personal": {"name": "Ana Ruiz", "phone": 34600000000}}`))
	require.NoError(t, err)
	assert.Equal(t, Text("34600000000"), snap.Personal.Phone)
}

func TestDecodeSnapshot_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `<html>oops</html>`},
		{name: "top-level array", raw: `[1, 2]`},
		{name: "work is a string", raw: `{"work": "Dev at Acme"}`},
		{name: "name is an object", raw: `{"personal": {"name": {"first": "Ana"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSnapshot([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}
