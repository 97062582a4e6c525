package agent

import (
	"testing"
	"time"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain json", `{"intent": "question"}`, `{"intent": "question"}`},
		{"json fence", "```json\n{\"intent\": \"question\"}\n```", `{"intent": "question"}`},
		{"bare fence", "```\n{\"intent\": \"question\"}\n```", `{"intent": "question"}`},
		{"surrounding whitespace", "  \n{\"a\": 1}\n  ", `{"a": 1}`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.in); got != tt.want {
				t.Fatalf("cleanJSONResponse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseExternalTime(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{
			name: "rfc3339",
			in:   "2025-04-10T10:00:00Z",
			want: time.Date(2025, 4, 10, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "epoch seconds",
			in:   "1744279200",
			want: time.Date(2025, 4, 10, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "padded",
			in:   " 1744279200 ",
			want: time.Date(2025, 4, 10, 10, 0, 0, 0, time.UTC),
		},
		{name: "empty", in: "", wantErr: true},
		{name: "garbage", in: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExternalTime(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseExternalTime(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("parseExternalTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassifiedIntentResponseToModel(t *testing.T) {
	raw := classifiedIntentResponse{
		UserID:          "7",
		CourseID:        "12",
		SummarizedInput: "Student asks how the base case works",
		ForumID:         "3",
		PostID:          "456",
		Intent:          "question_about_content",
		Source:          "forum",
		CreatedAt:       "2025-04-10T10:00:00Z",
		UpdatedAt:       "2025-04-10T10:01:00Z",
	}

	intent, err := raw.toModel()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCreated := time.Date(2025, 4, 10, 10, 0, 0, 0, time.UTC)
	if !intent.ExternalCreatedAt.Equal(wantCreated) {
		t.Fatalf("ExternalCreatedAt = %v, want %v", intent.ExternalCreatedAt, wantCreated)
	}
	if intent.ExternalUpdatedAt == nil || !intent.ExternalUpdatedAt.Equal(wantCreated.Add(time.Minute)) {
		t.Fatalf("ExternalUpdatedAt = %v, want created + 1m", intent.ExternalUpdatedAt)
	}
}

func TestClassifiedIntentResponseToModelRejectsBadCreatedAt(t *testing.T) {
	raw := classifiedIntentResponse{PostID: "456", CreatedAt: "not-a-time"}
	if _, err := raw.toModel(); err == nil {
		t.Fatal("expected error for invalid createdAt")
	}
}

func TestClassifiedIntentResponseToModelOptionalUpdatedAt(t *testing.T) {
	raw := classifiedIntentResponse{PostID: "456", CreatedAt: "1744279200"}
	intent, err := raw.toModel()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.ExternalUpdatedAt != nil {
		t.Fatalf("ExternalUpdatedAt = %v, want nil when absent", intent.ExternalUpdatedAt)
	}
}
