package sanitizer

import "testing"

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *string
	}{
		{name: "day month comma year", input: "5 Mar, 1990", want: ptr("1990-03-05")},
		{name: "no comma", input: "07 Jul 2004", want: ptr("2004-07-07")},
		{name: "date prefix", input: "Date: 07 Jul, 2004", want: ptr("2004-07-07")},
		{name: "lowercase prefix", input: "date:12 Dec, 2001", want: ptr("2001-12-12")},
		{name: "trailing garbage ignored", input: "5 Mar, 1990 and more", want: ptr("1990-03-05")},
		{name: "unknown month defaults to january", input: "5 Foo, 1990", want: ptr("1990-01-05")},
		{name: "month lookup is case sensitive", input: "5 mar, 1990", want: ptr("1990-01-05")},
		{name: "already iso", input: "1990-03-05", want: ptr("1990-03-05")},
		{name: "iso month out of range", input: "1990-13-45", want: nil},
		{name: "iso day out of range", input: "2023-02-29", want: nil},
		{name: "iso leap day", input: "2024-02-29", want: ptr("2024-02-29")},
		{name: "day out of range", input: "45 Mar, 1990", want: nil},
		{name: "garbage", input: "garbage", want: nil},
		{name: "leading garbage", input: "on 5 Mar, 1990", want: nil},
		{name: "full month name does not match", input: "5 March, 1990", want: nil},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.input)
			if deref(got) != deref(tt.want) {
				t.Errorf("ParseDate(%q) = %q, want %q", tt.input, deref(got), deref(tt.want))
			}
		})
	}
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *string
	}{
		{name: "date prefix", input: "Date: 5 Mar, 2024 14:07", want: ptr("2024-03-05T14:07:00Z")},
		{name: "hour padded", input: "15 Jan, 2025 9:05", want: ptr("2025-01-15T09:05:00Z")},
		{name: "no comma", input: "1 Oct 2023 23:59", want: ptr("2023-10-01T23:59:00Z")},
		{name: "trailing seconds ignored", input: "1 Oct, 2023 23:59:41", want: ptr("2023-10-01T23:59:00Z")},
		{name: "already iso", input: "2024-03-05T14:07:00Z", want: ptr("2024-03-05T14:07:00Z")},
		{name: "iso hour out of range", input: "2024-03-05T25:07:00Z", want: nil},
		{name: "iso month out of range", input: "2024-13-05T14:07:00Z", want: nil},
		{name: "minute out of range", input: "5 Mar, 2024 14:75", want: nil},
		{name: "date without time", input: "5 Mar, 2024", want: nil},
		{name: "garbage", input: "yesterday", want: nil},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDateTime(tt.input)
			if deref(got) != deref(tt.want) {
				t.Errorf("ParseDateTime(%q) = %q, want %q", tt.input, deref(got), deref(tt.want))
			}
		})
	}
}
