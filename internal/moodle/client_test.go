package moodle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Token: "test-token"}, zap.NewNop())
}

func TestGetUpdatesSinceResolvesDiscussions(t *testing.T) {
	var updatesQuery, detailQuery map[string][]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("wstoken") != "test-token" {
			t.Fatalf("wstoken = %q, want test-token", q.Get("wstoken"))
		}

		switch q.Get("wsfunction") {
		case "core_course_get_updates_since":
			updatesQuery = q
			w.Write([]byte(`{
				"instances": [{
					"contextlevel": "module",
					"id": 3,
					"updates": [{"name": "discussions", "timeupdated": 1744279300, "itemids": [456]}]
				}]
			}`))
		case "mod_forum_get_discussion_post":
			detailQuery = q
			w.Write([]byte(`{
				"post": {
					"id": 456,
					"subject": "Doubt about recursion",
					"message": "How does the base case work?",
					"author": {"id": 7, "fullname": "Maria Silva"},
					"timecreated": 1744279200,
					"timemodified": 1744279260
				}
			}`))
		default:
			t.Fatalf("unexpected wsfunction %q", q.Get("wsfunction"))
		}
	})

	details, err := client.GetUpdatesSince(context.Background(), 12, 1744275600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := updatesQuery["courseid"]; len(got) != 1 || got[0] != "12" {
		t.Fatalf("courseid = %v, want [12]", got)
	}
	if got := updatesQuery["since"]; len(got) != 1 || got[0] != "1744275600" {
		t.Fatalf("since = %v, want [1744275600]", got)
	}
	if _, ok := updatesQuery["filter[discussions]"]; !ok {
		t.Fatal("filter[discussions] param missing from updates request")
	}
	if got := detailQuery["postid"]; len(got) != 1 || got[0] != "456" {
		t.Fatalf("postid = %v, want [456]", got)
	}

	if len(details) != 1 {
		t.Fatalf("got %d details, want 1", len(details))
	}
	detail := details[0]
	if detail.ID != 456 || detail.TypeName != "forum" || detail.ModuleID != 3 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if detail.AuthorID != 7 || detail.AuthorFullName != "Maria Silva" {
		t.Fatalf("author not carried through: %+v", detail)
	}
	if detail.CreatedAt != "2025-04-10T10:00:00Z" {
		t.Fatalf("CreatedAt = %q, want RFC3339 of timecreated", detail.CreatedAt)
	}
	if detail.UpdatedAt != "2025-04-10T10:01:00Z" {
		t.Fatalf("UpdatedAt = %q, want RFC3339 of timemodified", detail.UpdatedAt)
	}
}

func TestGetUpdatesSinceSkipsUnknownModuleTypes(t *testing.T) {
	var calls []string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fn := r.URL.Query().Get("wsfunction")
		calls = append(calls, fn)
		if fn != "core_course_get_updates_since" {
			t.Fatalf("no detail call expected for unknown type, got %q", fn)
		}
		w.Write([]byte(`{
			"instances": [{
				"contextlevel": "module",
				"id": 9,
				"updates": [{"name": "wiki", "timeupdated": 1744279300, "itemids": [1, 2]}]
			}]
		}`))
	})

	details, err := client.GetUpdatesSince(context.Background(), 12, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(details) != 0 {
		t.Fatalf("got %d details, want 0", len(details))
	}
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want only the updates call", len(calls))
	}
}

func TestGetUpdatesSinceDropsNonForumDetails(t *testing.T) {
	var detailCalled bool

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch q.Get("wsfunction") {
		case "core_course_get_updates_since":
			w.Write([]byte(`{
				"instances": [{
					"contextlevel": "module",
					"id": 4,
					"updates": [{"name": "assign", "timeupdated": 1744279300, "itemids": [88]}]
				}]
			}`))
		case "mod_assign_get_submissions":
			detailCalled = true
			if got := q.Get("assignmentids[0]"); got != "88" {
				t.Fatalf("assignmentids[0] = %q, want 88", got)
			}
			w.Write([]byte(`{"assignments": []}`))
		default:
			t.Fatalf("unexpected wsfunction %q", q.Get("wsfunction"))
		}
	})

	details, err := client.GetUpdatesSince(context.Background(), 12, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !detailCalled {
		t.Fatal("assignment detail endpoint was never called")
	}
	if len(details) != 0 {
		t.Fatalf("got %d details, want 0 (non-forum details are dropped)", len(details))
	}
}

func TestCallSurfacesMoodleException(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Moodle reports failures inside a 200 body.
		w.Write([]byte(`{
			"exception": "moodle_exception",
			"errorcode": "invalidtoken",
			"message": "Invalid token - token not found"
		}`))
	})

	if _, err := client.GetForumPosts(context.Background(), 55); err == nil {
		t.Fatal("expected error for exception body")
	}
}

func TestCreateAnswerOnPost(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if q.Get("wsfunction") != "mod_forum_add_discussion_post" {
			t.Fatalf("wsfunction = %q", q.Get("wsfunction"))
		}
		if q.Get("postid") != "456" || q.Get("message") == "" || q.Get("subject") == "" {
			t.Fatalf("reply params incomplete: %v", q)
		}
		w.Write([]byte(`{"postid": 999}`))
	})

	result, err := client.CreateAnswerOnPost(context.Background(), 456, "The base case stops the recursion.", "Re: Doubt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PostID != 999 {
		t.Fatalf("PostID = %d, want 999", result.PostID)
	}
	if result.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", result.StatusCode)
	}
}

func TestCreateAnswerOnPostCarriesStatusOnFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	})

	result, err := client.CreateAnswerOnPost(context.Background(), 456, "msg", "subj")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if result == nil || result.StatusCode != http.StatusInternalServerError {
		t.Fatalf("result = %+v, want StatusCode 500 carried through", result)
	}
}
