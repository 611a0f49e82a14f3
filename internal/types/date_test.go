package types

import (
	"encoding/json"
	"testing"
	"time"

	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionalDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantNil bool
		wantErr bool
	}{
		{name: "blank is null", input: "", wantNil: true},
		{name: "whitespace is null", input: "   ", wantNil: true},
		{name: "calendar date", input: "2026-06-14", want: "2026-06-14"},
		{name: "surrounding spaces", input: " 2026-06-14 ", want: "2026-06-14"},
		{name: "leap day", input: "2028-02-29", want: "2028-02-29"},
		{name: "not a leap year", input: "2026-02-29", wantErr: true},
		{name: "wrong layout", input: "14/06/2026", wantErr: true},
		{name: "timestamp", input: "2026-06-14T10:00:00Z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOptionalDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ierr.IsValidation(err))
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNewDateDropsTimeOfDay(t *testing.T) {
	pst := time.FixedZone("PST", -8*60*60)
	d := NewDate(time.Date(2026, time.March, 10, 23, 30, 0, 0, pst))

	assert.Equal(t, "2026-03-10", d.String())
	assert.Equal(t, time.UTC, d.Location())
	assert.Zero(t, d.Hour())
}

func TestDateJSON(t *testing.T) {
	type payload struct {
		EventDate *Date `json:"event_date"`
		PaidAt    Date  `json:"paid_at"`
	}

	d, err := ParseDate("2026-07-01")
	require.NoError(t, err)

	out, err := json.Marshal(payload{EventDate: &d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event_date":"2026-07-01","paid_at":null}`, string(out))

	var in payload
	require.NoError(t, json.Unmarshal([]byte(`{"event_date":"2026-07-01","paid_at":""}`), &in))
	require.NotNil(t, in.EventDate)
	assert.Equal(t, "2026-07-01", in.EventDate.String())
	assert.True(t, in.PaidAt.IsZero())

	err = json.Unmarshal([]byte(`{"paid_at":"July 1st"}`), &in)
	assert.Error(t, err)
}

func TestDateScanAndValue(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "nil", input: nil, want: ""},
		{name: "time", input: time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC), want: "2026-01-02"},
		{name: "string", input: "2026-01-03", want: "2026-01-03"},
		{name: "bytes", input: []byte("2026-01-04"), want: "2026-01-04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.input))
			assert.Equal(t, tt.want, d.String())

			v, err := d.Value()
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, v)
			} else {
				assert.Equal(t, tt.want, v)
			}
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
}
