package documents

import "testing"

func TestValidate(t *testing.T) {
	v := NewValidator([]string{"application/pdf", "image/png", "IMAGE/JPEG"}, 1024)

	cases := []struct {
		name      string
		mediaType string
		size      int64
		want      RejectReason
	}{
		{"pdf ok", "application/pdf", 100, ""},
		{"case and params normalized", "Application/PDF; charset=binary", 100, ""},
		{"allow-list entry normalized", "image/jpeg", 100, ""},
		{"unsupported", "application/zip", 100, ReasonUnsupportedType},
		{"unsupported checked before size", "application/zip", 0, ReasonUnsupportedType},
		{"empty", "application/pdf", 0, ReasonEmpty},
		{"negative size", "application/pdf", -1, ReasonEmpty},
		{"too large", "application/pdf", 1025, ReasonTooLarge},
		{"exactly at limit", "application/pdf", 1024, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.mediaType, tc.size)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("expected accept, got %v", err)
				}
				return
			}
			if err == nil || err.Reason != tc.want {
				t.Fatalf("expected %s, got %v", tc.want, err)
			}
		})
	}
}
