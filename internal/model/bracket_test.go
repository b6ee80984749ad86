package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 {
	return &f
}

var testKey = TableKey{Jurisdiction: JurisdictionUSFederal, Status: StatusSingle, Year: 2023}

func TestBracketTable_Validate(t *testing.T) {
	inf := math.Inf(1)

	tests := []struct {
		name     string
		errMsg   string
		brackets []Bracket
		wantErr  bool
	}{
		{
			name: "valid progressive table",
			brackets: []Bracket{
				{Rate: 0.10, LowerBound: 0, UpperBound: 11000},
				{Rate: 0.12, LowerBound: 11000, UpperBound: 44725},
				{Rate: 0.22, LowerBound: 44725, UpperBound: inf},
			},
		},
		{
			name:     "single flat bracket",
			brackets: []Bracket{{Rate: 0.2, LowerBound: 0, UpperBound: inf}},
		},
		{
			name: "equal adjacent rates allowed",
			brackets: []Bracket{
				{Rate: 0.2, LowerBound: 0, UpperBound: 100},
				{Rate: 0.2, LowerBound: 100, UpperBound: inf},
			},
		},
		{
			name:    "empty table",
			wantErr: true,
			errMsg:  "no brackets",
		},
		{
			name: "first bracket not at zero",
			brackets: []Bracket{
				{Rate: 0.1, LowerBound: 100, UpperBound: inf},
			},
			wantErr: true,
			errMsg:  "first bracket must start at 0",
		},
		{
			name: "gap between brackets",
			brackets: []Bracket{
				{Rate: 0.1, LowerBound: 0, UpperBound: 100},
				{Rate: 0.2, LowerBound: 150, UpperBound: inf},
			},
			wantErr: true,
			errMsg:  "bracket 1 starts at 150 but bracket 0 ends at 100",
		},
		{
			name: "overlapping brackets",
			brackets: []Bracket{
				{Rate: 0.1, LowerBound: 0, UpperBound: 100},
				{Rate: 0.2, LowerBound: 50, UpperBound: inf},
			},
			wantErr: true,
			errMsg:  "bracket 1 starts at 50",
		},
		{
			name: "decreasing rate",
			brackets: []Bracket{
				{Rate: 0.3, LowerBound: 0, UpperBound: 100},
				{Rate: 0.2, LowerBound: 100, UpperBound: inf},
			},
			wantErr: true,
			errMsg:  "lower than previous rate",
		},
		{
			name: "bounded last bracket",
			brackets: []Bracket{
				{Rate: 0.1, LowerBound: 0, UpperBound: 100},
			},
			wantErr: true,
			errMsg:  "last bracket must be unbounded",
		},
		{
			name: "unbounded bracket before the end",
			brackets: []Bracket{
				{Rate: 0.1, LowerBound: 0, UpperBound: inf},
				{Rate: 0.2, LowerBound: inf, UpperBound: inf},
			},
			wantErr: true,
		},
		{
			name: "rate above one",
			brackets: []Bracket{
				{Rate: 1.5, LowerBound: 0, UpperBound: inf},
			},
			wantErr: true,
			errMsg:  "outside [0,1]",
		},
		{
			name: "empty range",
			brackets: []Bracket{
				{Rate: 0.1, LowerBound: 0, UpperBound: 0},
				{Rate: 0.2, LowerBound: 0, UpperBound: inf},
			},
			wantErr: true,
			errMsg:  "not above lower bound",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := BracketTable{Key: testKey, Brackets: tt.brackets}.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTable)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestNewBracketTable(t *testing.T) {
	table, err := NewBracketTable(testKey,
		[]float64{0.10, 0.12, 0.22},
		[]*float64{floatPtr(11000), floatPtr(44725), nil},
	)
	require.NoError(t, err)

	require.Len(t, table.Brackets, 3)
	assert.Equal(t, Bracket{Rate: 0.10, LowerBound: 0, UpperBound: 11000}, table.Brackets[0])
	assert.Equal(t, Bracket{Rate: 0.12, LowerBound: 11000, UpperBound: 44725}, table.Brackets[1])
	assert.Equal(t, 44725.0, table.Brackets[2].LowerBound)
	assert.True(t, table.Brackets[2].Unbounded())
	assert.Equal(t, 0.22, table.TopRate())

	_, err = NewBracketTable(testKey, []float64{0.1}, nil)
	assert.ErrorIs(t, err, ErrInvalidTable)

	_, err = NewBracketTable(testKey, []float64{0.1, 0.2}, []*float64{nil, nil})
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestBracket_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Bracket{Rate: 0.37, LowerBound: 578125, UpperBound: math.Inf(1)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rate":0.37,"lower_bound":578125,"upper_bound":null}`, string(data))

	data, err = json.Marshal(Bracket{Rate: 0.1, LowerBound: 0, UpperBound: 11000})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rate":0.1,"lower_bound":0,"upper_bound":11000}`, string(data))
}

func TestTableKey_String(t *testing.T) {
	assert.Equal(t, "us-federal/single/2023", testKey.String())
}
