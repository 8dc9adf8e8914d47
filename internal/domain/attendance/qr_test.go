package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	qrID      = "0190f3a2-7c1e-7b4a-9d2e-1f6a8c3b5e10"
	otherQRID = "0190f3a2-7c1e-7b4a-9d2e-1f6a8c3b5e19"
)

func TestParseQRPayload_Valid(t *testing.T) {
	raw := `{"qr_code_id":"` + qrID + `","shift_start":"21:00","shift_end":"05:00","shift_type":"Night",
		"location":"Warehouse B","conveyance_base":120,"date":"2024-03-04"}`

	code, err := ParseQRPayload([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, qrID, code.ID)
	assert.Equal(t, ShiftTypeNight, code.Shift.Type)
	assert.Equal(t, TimeOfDay{Hour: 21}, code.Shift.Start)
	assert.Equal(t, TimeOfDay{Hour: 5}, code.Shift.End)
	assert.Equal(t, "Warehouse B", code.Location)
	assert.Equal(t, int64(120), code.ConveyanceBase)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), code.Date)
}

func TestParseQRPayload_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":         `hello`,
		"array":            `[1,2,3]`,
		"number":           `42`,
		"null":             `null`,
		"trailing data":    `{"qr_code_id":"a"} {"x":1}`,
		"missing id":       `{"shift_start":"09:00","shift_end":"17:00","shift_type":"day","location":"HQ","conveyance_base":1,"date":"2024-03-04"}`,
		"bad start":        `{"qr_code_id":"0190f3a2-7c1e-7b4a-9d2e-1f6a8c3b5e10","shift_start":"9am","shift_end":"17:00","shift_type":"day","location":"HQ","conveyance_base":1,"date":"2024-03-04"}`,
		"bad date":         `{"qr_code_id":"0190f3a2-7c1e-7b4a-9d2e-1f6a8c3b5e10","shift_start":"09:00","shift_end":"17:00","shift_type":"day","location":"HQ","conveyance_base":1,"date":"04/03/2024"}`,
		"bad type":         `{"qr_code_id":"0190f3a2-7c1e-7b4a-9d2e-1f6a8c3b5e10","shift_start":"09:00","shift_end":"17:00","shift_type":"swing","location":"HQ","conveyance_base":1,"date":"2024-03-04"}`,
		"negative base":    `{"qr_code_id":"0190f3a2-7c1e-7b4a-9d2e-1f6a8c3b5e10","shift_start":"09:00","shift_end":"17:00","shift_type":"day","location":"HQ","conveyance_base":-5,"date":"2024-03-04"}`,
		"day crosses day":  `{"qr_code_id":"0190f3a2-7c1e-7b4a-9d2e-1f6a8c3b5e10","shift_start":"21:00","shift_end":"05:00","shift_type":"day","location":"HQ","conveyance_base":1,"date":"2024-03-04"}`,
		"missing location": `{"qr_code_id":"0190f3a2-7c1e-7b4a-9d2e-1f6a8c3b5e10","shift_start":"09:00","shift_end":"17:00","shift_type":"day","conveyance_base":1,"date":"2024-03-04"}`,
		"id not uuid":      `{"qr_code_id":"abc","shift_start":"09:00","shift_end":"17:00","shift_type":"day","location":"HQ","conveyance_base":1,"date":"2024-03-04"}`,
		"string base":      `{"qr_code_id":"0190f3a2-7c1e-7b4a-9d2e-1f6a8c3b5e10","shift_start":"09:00","shift_end":"17:00","shift_type":"day","location":"HQ","conveyance_base":"100","date":"2024-03-04"}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseQRPayload([]byte(raw))
			assert.ErrorIs(t, err, ErrInvalidQrFormat)
		})
	}
}

func TestQRPayload_RoundTrip(t *testing.T) {
	d, _ := time.Parse("2006-01-02", "2024-03-04")
	code := QRCode{
		ID:             otherQRID,
		Shift:          dayShift("08:30", "17:30"),
		Location:       "Site A",
		ConveyanceBase: 90,
		Date:           d,
	}

	text, err := NewQRPayload(code).Encode()
	require.NoError(t, err)

	parsed, err := ParseQRPayload([]byte(text))
	require.NoError(t, err)
	assert.Equal(t, code, parsed)
}
